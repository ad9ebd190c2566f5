package driver

import "github.com/hvlab/guest-harness/internal/models"

// RunContext carries everything a run needs that used to live in process
// globals in older harnesses: the target credentials, the controller-side
// log directory, the guest-side working directory, and the accumulated
// result list. One RunContext per plan execution; the driver owns it
// exclusively.
type RunContext struct {
	Target        models.RemoteTarget
	LogDir        string
	RemoteWorkDir string

	results []models.TestRun
}

func NewRunContext(target models.RemoteTarget, logDir, remoteWorkDir string) *RunContext {
	if remoteWorkDir == "" {
		remoteWorkDir = "."
	}
	return &RunContext{
		Target:        target,
		LogDir:        logDir,
		RemoteWorkDir: remoteWorkDir,
	}
}

func (c *RunContext) record(run models.TestRun) {
	c.results = append(c.results, run)
}

// Results returns all runs recorded so far, in execution order.
func (c *RunContext) Results() []models.TestRun {
	return c.results
}

// Failed reports whether any recorded run ended in something other than
// PASS or SKIPPED.
func (c *RunContext) Failed() bool {
	for _, r := range c.results {
		if r.Outcome != models.OutcomeCompleted && r.Outcome != models.OutcomeSkipped {
			return true
		}
	}
	return false
}
