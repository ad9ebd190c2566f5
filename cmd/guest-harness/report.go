package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hvlab/guest-harness/internal/report"
	"github.com/hvlab/guest-harness/internal/store"
	"github.com/hvlab/guest-harness/internal/store/migrations"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var (
		output   string
		outcomes []string
		tests    []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print and export recorded run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.NewDB(opts.cfg.Store.DataFile)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := migrations.Run(ctx, db); err != nil {
				return err
			}
			st := store.NewStore(db)

			var listOpts []store.ListOption
			if len(outcomes) > 0 {
				listOpts = append(listOpts, store.ByOutcome(outcomes...))
			}
			if len(tests) > 0 {
				listOpts = append(listOpts, store.ByTest(tests...))
			}

			runs, err := st.Runs().List(ctx, listOpts...)
			if err != nil {
				return err
			}

			report.PrintSummary(os.Stdout, runs)

			if output != "" {
				return report.ExportXLSX(runs, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write an XLSX report to this path")
	cmd.Flags().StringSliceVar(&outcomes, "outcome", nil, "filter by outcome (completed, failed, aborted, skipped)")
	cmd.Flags().StringSliceVar(&tests, "test", nil, "filter by test name")

	return cmd
}
