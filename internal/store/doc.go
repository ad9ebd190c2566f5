// Package store implements the data access layer for the guest harness.
//
// This package provides persistent storage using DuckDB. Every test run the
// driver reports is recorded here, one row per run, so run history survives
// the process and can be queried by the status API, the report exporter and
// the CLI.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                           RunStore                              │
//	│                              ▼                                  │
//	│                             runs                                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Created by internal/store/migrations (embedded SQL):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  One row per test run (outcome, timing)     │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Query Building
//
// List queries are composed with squirrel and filtered through ListOption
// values (ByOutcome, ByTest, ByTarget, WithLimit, WithOffset), so callers
// combine filters without touching SQL:
//
//	runs, err := s.Runs().List(ctx,
//	    store.ByOutcome("failed", "aborted"),
//	    store.WithLimit(20),
//	)
package store
