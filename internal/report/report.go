// Package report turns recorded runs into things humans read: the colored
// console summary at the end of a plan, and an Excel export of run history.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/store"
)

// StoreReporter persists every finished run into the result store. It is
// the driver's default Reporter.
type StoreReporter struct {
	store *store.Store
}

func NewStoreReporter(st *store.Store) *StoreReporter {
	return &StoreReporter{store: st}
}

func (r *StoreReporter) Report(ctx context.Context, run models.TestRun) error {
	return r.store.Runs().Create(ctx, run)
}

var verdictColors = map[string]*color.Color{
	"PASS":    color.New(color.FgGreen),
	"FAIL":    color.New(color.FgRed),
	"ABORTED": color.New(color.FgYellow),
	"SKIPPED": color.New(color.FgCyan),
}

// PrintSummary writes one line per run plus totals.
func PrintSummary(w io.Writer, runs []models.TestRun) {
	totals := map[string]int{}

	for _, run := range runs {
		verdict := run.Outcome.Verdict()
		totals[verdict]++

		c, ok := verdictColors[verdict]
		if !ok {
			c = color.New(color.FgWhite)
		}
		fmt.Fprintf(w, "%-8s %s", c.Sprint(verdict), run.TestName)
		if run.Iteration > 1 {
			fmt.Fprintf(w, " (iteration %d)", run.Iteration)
		}
		fmt.Fprintf(w, "  %s", run.Duration().Round(runDurationPrecision))
		if run.Message != "" {
			fmt.Fprintf(w, "  %s", run.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%d total: %d passed, %d failed, %d aborted, %d skipped\n",
		len(runs), totals["PASS"], totals["FAIL"], totals["ABORTED"], totals["SKIPPED"])
}
