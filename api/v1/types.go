// Package v1 holds the wire types of the status API.
package v1

import (
	"time"

	"github.com/hvlab/guest-harness/internal/models"
)

// TestRun is the API view of one recorded test run.
type TestRun struct {
	Id         string    `json:"id"`
	TestName   string    `json:"test_name"`
	Target     string    `json:"target,omitempty"`
	Iteration  int       `json:"iteration"`
	Outcome    string    `json:"outcome"`
	Verdict    string    `json:"verdict"`
	Message    string    `json:"message,omitempty"`
	LogDir     string    `json:"log_dir,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
}

// RunListResponse is the paginated run listing.
type RunListResponse struct {
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	Total     int       `json:"total"`
	Runs      []TestRun `json:"runs"`
}

// NewTestRunFromModel converts a models.TestRun to an API TestRun.
func NewTestRunFromModel(run models.TestRun) TestRun {
	return TestRun{
		Id:         run.ID.String(),
		TestName:   run.TestName,
		Target:     run.Target,
		Iteration:  run.Iteration,
		Outcome:    string(run.Outcome),
		Verdict:    run.Outcome.Verdict(),
		Message:    run.Message,
		LogDir:     run.LogDir,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMs: run.Duration().Milliseconds(),
	}
}
