// Package classify maps raw guest state file content to a TestOutcome.
//
// Guest test scripts write exactly one lifecycle token (TestRunning,
// TestCompleted, ...) into their state file on each transition. This package
// is the single place where those strings become typed outcomes; nothing
// else in the harness compares state file text directly.
package classify

import (
	"strings"

	"github.com/hvlab/guest-harness/internal/models"
)

type tokenMapping struct {
	token   string
	outcome models.TestOutcome
}

// Ordered: first match wins. Tokens are matched as case-insensitive
// substrings so trailing newlines or log prefixes around the token are
// harmless.
var tokenTable = []tokenMapping{
	{"testcompleted", models.OutcomeCompleted},
	{"testfailed", models.OutcomeFailed},
	{"testaborted", models.OutcomeAborted},
	{"testskipped", models.OutcomeSkipped},
	{"testrunning", models.OutcomeRunning},
}

// Classify returns the outcome encoded in raw. Empty or unrecognized
// content yields OutcomeUnknown; callers decide how to fold that (the
// driver maps it to Aborted at its boundary).
func Classify(raw string) models.TestOutcome {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return models.OutcomeUnknown
	}
	for _, m := range tokenTable {
		if strings.Contains(needle, m.token) {
			return m.outcome
		}
	}
	return models.OutcomeUnknown
}
