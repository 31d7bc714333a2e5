package app

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/sinsum/internal/cli"
	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/logging"
	"github.com/agbru/sinsum/internal/orchestration"
)

// runCalculate runs a single integration or a comparison sweep.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	cfg := a.Config

	// Setup lifecycle (timeout + signals)
	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		defer cancelTimeout()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	runners, err := orchestration.GetRunnersToRun(cfg)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	plain := cfg.Quiet || cfg.JSON
	if !plain && cfg.Verbose {
		cli.PrintExecutionConfig(cfg, out)
		cli.PrintExecutionMode(cfg, out)
	}

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := a.ErrWriter
	if plain {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	a.Logger.Debug("starting",
		logging.Int("steps", cfg.Steps), logging.Int("terms", cfg.Terms),
		logging.Int("runs", len(runners)), logging.String("partition", cfg.Partition))

	var code int
	if len(cfg.CompareThreads) > 0 {
		code = a.runComparison(ctx, runners, progressReporter, progressOut, out)
	} else {
		code = a.runSingle(ctx, runners[0], progressReporter, progressOut, out)
	}

	if cfg.MetricsFile != "" {
		if err := a.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			a.Logger.Error("metrics file not written", err, logging.String("path", cfg.MetricsFile))
			if code == apperrors.ExitSuccess {
				code = apperrors.HandleError(err, a.ErrWriter)
			}
		}
	}
	return code
}

func (a *Application) runSingle(ctx context.Context, runner orchestration.Runner, reporter orchestration.ProgressReporter, progressOut, out io.Writer) int {
	res := orchestration.ExecuteIntegration(ctx, runner, a.Config.Steps, a.Config.Terms, reporter, progressOut)
	res.Err = a.classify(res.Err)
	a.Metrics.ObserveIntegration(res.Result, res.Err)
	if res.Err != nil {
		a.Logger.Error("integration failed", res.Err, logging.Duration("after", res.Duration))
		return apperrors.HandleError(res.Err, a.ErrWriter)
	}

	a.Logger.Info("integration done",
		logging.Float64("value", res.Result.Value),
		logging.Duration("elapsed", res.Result.Elapsed))

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		JSON:       a.Config.JSON,
	}
	if err := cli.DisplayResultWithConfig(out, res.Result, outputCfg); err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

func (a *Application) runComparison(ctx context.Context, runners []orchestration.Runner, reporter orchestration.ProgressReporter, progressOut, out io.Writer) int {
	results := orchestration.ExecuteComparison(ctx, runners, a.Config.Steps, a.Config.Terms, reporter, progressOut)
	for i := range results {
		results[i].Err = a.classify(results[i].Err)
		a.Metrics.ObserveIntegration(results[i].Result, results[i].Err)
	}

	presenter := cli.CLIResultPresenter{}
	code := orchestration.AnalyzeComparisonResults(results, presenter, presenter, out)
	if code == apperrors.ExitSuccess && a.Config.OutputFile != "" {
		if best := orchestration.FastestIndex(results); best >= 0 {
			if err := cli.WriteResultToFile(results[best].Result, cli.OutputConfig{OutputFile: a.Config.OutputFile}); err != nil {
				return apperrors.HandleError(err, a.ErrWriter)
			}
		}
	}
	return code
}

// classify turns a deadline caused by -timeout into a TimeoutError naming
// the limit.
func (a *Application) classify(err error) error {
	if err != nil && a.Config.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: "integration", Limit: a.Config.Timeout}
	}
	return err
}
