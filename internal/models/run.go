package models

import (
	"time"

	"github.com/google/uuid"
)

// TestRun is one execution of a test case against a guest. Persisted in the
// result store; one row per run, including every iteration of a stress loop.
type TestRun struct {
	ID         uuid.UUID
	TestName   string
	Target     string
	Iteration  int
	Outcome    TestOutcome
	Message    string
	LogDir     string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r TestRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
