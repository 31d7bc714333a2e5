// Package app wires configuration, orchestration, presentation and the
// optional HTTP service into the sinsum application.
package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agbru/sinsum/internal/config"
	"github.com/agbru/sinsum/internal/logging"
	"github.com/agbru/sinsum/internal/metrics"
	"github.com/agbru/sinsum/internal/ui"
)

// Application represents the sinsum application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	Logger    logging.Logger
	Metrics   *metrics.Registry
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the logger instead of the zerolog console logger built
// from the configured level.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) AppOption {
	return func(a *Application) { a.Metrics = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	programName := "sinsum"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	app := &Application{Config: cfg, ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, "sinsum", cfg.LogLevel)
	}
	if app.Metrics == nil {
		reg, err := metrics.NewRegistry()
		if err != nil {
			return nil, err
		}
		app.Metrics = reg
	}
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if level, err := zerolog.ParseLevel(strings.ToLower(a.Config.LogLevel)); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	ui.InitThemeFor(out, a.Config.NoColor)

	if a.Config.ServeAddr != "" {
		return a.runServe(ctx)
	}
	return a.runCalculate(ctx, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
