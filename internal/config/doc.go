// Package config defines the configuration structure for the guest harness.
//
// Configuration is organized into logical sections (Harness, Target,
// Server, Store) plus top-level logging settings, loaded from an optional
// YAML file with HARNESS_-prefixed environment overrides.
//
// # Harness Configuration
//
//	┌─────────────────┬─────────┬───────────────────────────────────────────┐
//	│ Field           │ Default │ Description                               │
//	├─────────────────┼─────────┼───────────────────────────────────────────┤
//	│ LogDir          │ "logs"  │ Controller directory for collected logs   │
//	│ RemoteWorkDir   │ "."     │ Guest directory payloads run in           │
//	│ NumWorkers      │ 3       │ Concurrent background command budget      │
//	└─────────────────┴─────────┴───────────────────────────────────────────┘
//
// # Target Configuration
//
//	┌─────────────────┬─────────┬───────────────────────────────────────────┐
//	│ Field           │ Default │ Description                               │
//	├─────────────────┼─────────┼───────────────────────────────────────────┤
//	│ Host            │ ""      │ Guest address (required for run)          │
//	│ Port            │ 22      │ SSH port                                  │
//	│ Username        │ ""      │ SSH user                                  │
//	│ Password        │ ""      │ SSH password (or use PrivateKeyPath)      │
//	│ PrivateKeyPath  │ ""      │ Path to an SSH private key                │
//	└─────────────────┴─────────┴───────────────────────────────────────────┘
//
// # Server Configuration
//
//	┌──────────┬─────────┬──────────────────────────────────────────────────┐
//	│ Field    │ Default │ Description                                      │
//	├──────────┼─────────┼──────────────────────────────────────────────────┤
//	│ Mode     │ "dev"   │ Server mode: "prod" or "dev"                     │
//	│ HTTPPort │ 8000    │ Status API listen port                           │
//	└──────────┴─────────┴──────────────────────────────────────────────────┘
//
// # Store Configuration
//
//	┌──────────┬────────────────────┬─────────────────────────────────────┐
//	│ Field    │ Default            │ Description                         │
//	├──────────┼────────────────────┼─────────────────────────────────────┤
//	│ DataFile │ "guest-harness.db" │ DuckDB result database path         │
//	└──────────┴────────────────────┴─────────────────────────────────────┘
//
// # Usage Example
//
//	cfg, err := config.Load("harness.yaml")
//	if err != nil {
//	    return err
//	}
//	target := models.RemoteTarget{
//	    Host:     cfg.Target.Host,
//	    Port:     cfg.Target.Port,
//	    Username: cfg.Target.Username,
//	}
package config
