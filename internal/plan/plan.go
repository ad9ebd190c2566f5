// Package plan loads the test plan file: the list of test cases the
// harness will drive against a guest, each naming a shell payload, its
// parameters and its timing budget.
package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// TestCase describes one guest-side test: the payload script uploaded and
// launched on the guest, the parameters rendered into constants.sh next to
// it, and how long the controller is willing to poll for a terminal state.
type TestCase struct {
	Name    string            `mapstructure:"name"`
	Payload string            `mapstructure:"payload"`
	Params  map[string]string `mapstructure:"params"`

	// Background commands started on the guest before the payload and
	// awaited after it (packet captures and the like).
	Background []string `mapstructure:"background"`

	Timeout    time.Duration `mapstructure:"timeout" default:"10m"`
	Interval   time.Duration `mapstructure:"interval" default:"5s"`
	Iterations int           `mapstructure:"iterations" default:"1"`
	Elevate    bool          `mapstructure:"elevate"`

	// Extra artifacts to pull after the run, on top of the defaults.
	LogPatterns []string `mapstructure:"log_patterns"`
}

type Plan struct {
	Cases []TestCase `mapstructure:"cases"`
}

// Load reads a YAML plan file and applies per-case defaults.
func Load(path string) (*Plan, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	var p Plan
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	for i := range p.Cases {
		if err := defaults.Set(&p.Cases[i]); err != nil {
			return nil, err
		}
		if err := p.Cases[i].validate(); err != nil {
			return nil, fmt.Errorf("plan %s: %w", path, err)
		}
	}
	if len(p.Cases) == 0 {
		return nil, fmt.Errorf("plan %s has no test cases", path)
	}

	return &p, nil
}

func (tc TestCase) validate() error {
	if tc.Name == "" {
		return fmt.Errorf("test case without a name")
	}
	if tc.Payload == "" {
		return fmt.Errorf("test case %s has no payload", tc.Name)
	}
	if tc.Iterations < 1 {
		return fmt.Errorf("test case %s: iterations must be >= 1", tc.Name)
	}
	return nil
}

// ConstantsFile renders the parameter set the way guest payloads expect it:
// one KEY=value per line, sourced by the script as constants.sh.
func (tc TestCase) ConstantsFile() []byte {
	keys := make([]string, 0, len(tc.Params))
	for k := range tc.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, tc.Params[k])
	}
	return []byte(b.String())
}
