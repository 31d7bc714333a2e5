package app

import (
	"context"
	"os/signal"
	"syscall"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/logging"
	"github.com/agbru/sinsum/internal/server"
)

// runServe starts the HTTP service and blocks until SIGINT or SIGTERM.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	srv, err := server.New(server.Config{
		Steps:          a.Config.Steps,
		Terms:          a.Config.Terms,
		Threads:        a.Config.Threads,
		Partition:      a.Config.Partition,
		Scheduler:      a.Config.Scheduler,
		RequestTimeout: a.Config.Timeout,
		Security:       server.DefaultSecurityConfig(),
	}, a.Metrics, a.Logger)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	if err := srv.ListenAndServe(ctx, a.Config.ServeAddr); err != nil {
		a.Logger.Error("server stopped", err, logging.String("addr", a.Config.ServeAddr))
		return apperrors.HandleError(err, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}
