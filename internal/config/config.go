package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Configuration is the root of the harness configuration. One instance is
// built at startup and handed down explicitly; there is no process-wide
// mutable configuration state.
type Configuration struct {
	Harness Harness `mapstructure:"harness"`
	Target  Target  `mapstructure:"target"`
	Server  Server  `mapstructure:"server"`
	Store   Store   `mapstructure:"store"`

	LogLevel  string `mapstructure:"log_level" default:"info"`
	LogFormat string `mapstructure:"log_format" default:"console"`
}

// Harness holds controller-side behavior settings.
type Harness struct {
	// LogDir is the controller directory collected guest logs land in.
	LogDir string `mapstructure:"log_dir" default:"logs"`
	// RemoteWorkDir is the guest directory payloads are staged and run in.
	RemoteWorkDir string `mapstructure:"remote_work_dir" default:"."`
	// NumWorkers bounds concurrent background remote commands.
	NumWorkers int `mapstructure:"num_workers" default:"3"`
}

// Target identifies the guest VM under test.
type Target struct {
	Name           string `mapstructure:"name"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" default:"22"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

// Server configures the status API.
type Server struct {
	// Mode is "dev" or "prod"; prod runs gin in release mode.
	Mode     string `mapstructure:"mode" default:"dev"`
	HTTPPort int    `mapstructure:"http_port" default:"8000"`
}

// Store configures the result database.
type Store struct {
	// DataFile is the DuckDB database path; ":memory:" for throwaway runs.
	DataFile string `mapstructure:"data_file" default:"guest-harness.db"`
}

// Load reads the configuration file at path (optional) and environment
// overrides with the HARNESS_ prefix, then applies defaults.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix("HARNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Configuration) validate() error {
	if c.Server.Mode != "dev" && c.Server.Mode != "prod" {
		return fmt.Errorf("invalid server mode %q: must be 'dev' or 'prod'", c.Server.Mode)
	}
	if c.Harness.NumWorkers < 1 {
		return fmt.Errorf("harness.num_workers must be >= 1")
	}
	return nil
}
