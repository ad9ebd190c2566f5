// Package server provides the HTTP status API for the guest harness.
//
// The server uses the Gin web framework with zap request logging. In dev
// mode Gin runs in debug mode; prod switches to release mode. Handlers are
// registered via callback on a /api/v1 router group:
//
//	srv := server.New(cfg.Server, func(router *gin.RouterGroup) {
//	    router.GET("/runs", handler.GetRuns)
//	})
//	err := srv.Start(ctx) // blocks until error or ctx cancellation
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hvlab/guest-harness/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func New(cfg config.Server, registerHandlers func(*gin.RouterGroup)) *Server {
	if cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	logger := zap.L()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	registerHandlers(api)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: router,
		},
	}
}

// Start serves until the listener fails or ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	zap.S().Named("server").Infow("status API listening", "addr", s.httpServer.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
