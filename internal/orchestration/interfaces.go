package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/agbru/sinsum/internal/quadrature"
)

// Runner is the part of *quadrature.Integrator the orchestrator depends on.
type Runner interface {
	// Options reports the worker count, partition and scheduler in use.
	Options() quadrature.Options
	// Integrate runs one integration, sending optional progress updates.
	Integrate(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error)
}

// RunResult is the outcome of one integration as seen by the orchestrator.
// It is the shared type between orchestration and presentation layers.
type RunResult struct {
	// Threads is the worker count the run used.
	Threads int
	// Result is the integration outcome. It is the zero value if Err is set.
	Result quadrature.Result
	// Duration is the wall time of the whole call, including validation and
	// the endpoint correction. Result.Elapsed covers the parallel region only.
	Duration time.Duration
	// Err contains any error that occurred during the run.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Quiet   bool
	Verbose bool
	JSON    bool
}

// ProgressReporter defines the interface for displaying integration progress.
// Implementations handle the visual representation (spinner, progress bar)
// while the orchestration layer coordinates the workers.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving per-worker progress updates.
	//   - numWorkers: The number of workers reporting on the channel.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, numWorkers int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, numWorkers int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, numWorkers int, out io.Writer) {
	f(wg, progressChan, numWorkers, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting integration results.
type ResultPresenter interface {
	// PresentComparisonTable displays the thread sweep summary table.
	PresentComparisonTable(results []RunResult, out io.Writer)

	// PresentResult displays a single integration result.
	PresentResult(result RunResult, opts PresentationOptions, out io.Writer) error
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed run and returns the exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
