package main

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hvlab/guest-harness/internal/config"
)

type rootOptions struct {
	configPath string
	cfg        *config.Configuration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "guest-harness",
		Short:         "Drive Linux guest VMs through shell test payloads over SSH",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return setupLogger(cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the harness config file")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newServeCommand(opts))

	return cmd
}

func setupLogger(cfg *config.Configuration) error {
	var zcfg zap.Config
	if cfg.LogFormat == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
