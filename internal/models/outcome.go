package models

// TestOutcome is the closed set of states a guest-driven test can be in.
// The guest state file is the only source of these values; the classifier
// in internal/classify is the single point mapping raw text to an outcome.
type TestOutcome string

const (
	// OutcomeCompleted - guest reported TestCompleted
	OutcomeCompleted TestOutcome = "completed"
	// OutcomeFailed - guest reported TestFailed
	OutcomeFailed TestOutcome = "failed"
	// OutcomeAborted - guest reported TestAborted, or the controller forced
	// the outcome after a timeout or provisioning error
	OutcomeAborted TestOutcome = "aborted"
	// OutcomeSkipped - guest reported TestSkipped
	OutcomeSkipped TestOutcome = "skipped"
	// OutcomeRunning - guest reported TestRunning; non-terminal
	OutcomeRunning TestOutcome = "running"
	// OutcomeUnknown - state file absent, unreadable or unrecognized
	OutcomeUnknown TestOutcome = "unknown"
)

// IsTerminal reports whether polling can stop on this outcome.
// Running and Unknown keep the poll loop going.
func (o TestOutcome) IsTerminal() bool {
	switch o {
	case OutcomeCompleted, OutcomeFailed, OutcomeAborted, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// Verdict maps an outcome to the user-visible result string. Unknown and
// Running never escape the driver; they fold to ABORTED at the boundary.
func (o TestOutcome) Verdict() string {
	switch o {
	case OutcomeCompleted:
		return "PASS"
	case OutcomeFailed:
		return "FAIL"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "ABORTED"
	}
}
