package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hvlab/guest-harness/internal/driver"
	"github.com/hvlab/guest-harness/internal/models"
	"github.com/hvlab/guest-harness/internal/plan"
	"github.com/hvlab/guest-harness/internal/report"
	"github.com/hvlab/guest-harness/internal/store"
	"github.com/hvlab/guest-harness/internal/store/migrations"
	"github.com/hvlab/guest-harness/pkg/jobs"
	"github.com/hvlab/guest-harness/pkg/remote"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a test plan against the configured guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cfg.Target.Host == "" {
				return fmt.Errorf("no target host configured")
			}

			p, err := plan.Load(planPath)
			if err != nil {
				return err
			}

			db, err := store.NewDB(cfg.Store.DataFile)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := migrations.Run(ctx, db); err != nil {
				return err
			}
			st := store.NewStore(db)

			target := models.RemoteTarget{
				Name:           cfg.Target.Name,
				Host:           cfg.Target.Host,
				Port:           cfg.Target.Port,
				Username:       cfg.Target.Username,
				Password:       cfg.Target.Password,
				PrivateKeyPath: cfg.Target.PrivateKeyPath,
			}

			runner := jobs.NewRunner(cfg.Harness.NumWorkers)
			defer runner.Close()

			d := driver.New(
				driver.NewStaticProvisioner(target),
				func(t models.RemoteTarget) driver.Client { return remote.NewClient(t) },
				runner,
				report.NewStoreReporter(st),
			)

			rctx := driver.NewRunContext(target, cfg.Harness.LogDir, cfg.Harness.RemoteWorkDir)

			zap.S().Infow("starting plan", "plan", planPath, "cases", len(p.Cases), "target", target.Addr())
			d.RunPlan(ctx, rctx, p)

			report.PrintSummary(os.Stdout, rctx.Results())

			if rctx.Failed() {
				return fmt.Errorf("plan finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "plan.yaml", "path to the test plan file")

	return cmd
}
