package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hvlab/guest-harness/internal/models"
)

const (
	runSheet             = "Runs"
	runDurationPrecision = time.Second
)

var xlsxHeaders = []string{
	"ID", "Test", "Target", "Iteration", "Verdict", "Outcome",
	"Message", "Started", "Finished", "Duration",
}

// ExportXLSX writes run history to an Excel workbook at path.
func ExportXLSX(runs []models.TestRun, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", runSheet); err != nil {
		return err
	}

	for col, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(runSheet, cell, h); err != nil {
			return err
		}
	}

	for i, run := range runs {
		values := []any{
			run.ID.String(),
			run.TestName,
			run.Target,
			run.Iteration,
			run.Outcome.Verdict(),
			string(run.Outcome),
			run.Message,
			run.StartedAt.Format(time.RFC3339),
			run.FinishedAt.Format(time.RFC3339),
			run.Duration().Round(runDurationPrecision).String(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(runSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
