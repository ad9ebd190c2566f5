package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hvlab/guest-harness/internal/handlers"
	"github.com/hvlab/guest-harness/internal/server"
	"github.com/hvlab/guest-harness/internal/services"
	"github.com/hvlab/guest-harness/internal/store"
	"github.com/hvlab/guest-harness/internal/store/migrations"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the status API over recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.NewDB(opts.cfg.Store.DataFile)
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

			handler := handlers.New(services.NewRunService(st))

			srv := server.New(opts.cfg.Server, func(router *gin.RouterGroup) {
				router.GET("/runs", handler.GetRuns)
				router.GET("/runs/:id", handler.GetRun)
			})

			return srv.Start(ctx)
		},
	}

	return cmd
}
