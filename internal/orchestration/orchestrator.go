package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/quadrature"
)

// CompareTolerance is the largest relative difference allowed between the
// results of a comparison sweep. Different thread counts regroup the float64
// additions, so results agree closely but not bit for bit.
const CompareTolerance = 1e-4

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the number of updates dropped when the UI
// is slow to consume them.
const ProgressBufferMultiplier = 5

// ExecuteIntegration runs one integration while a ProgressReporter displays
// the workers' progress.
//
// The progress channel is owned here: it is closed only after Integrate has
// returned, so no worker can send on a closed channel, and the function waits
// for the reporter to finish before returning.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - runner: The integrator to execute.
//   - steps, terms: The problem size.
//   - progressReporter: The progress display (NullProgressReporter for quiet mode).
//   - out: The io.Writer for progress output.
//
// Returns:
//   - RunResult: The outcome, with Err set on failure.
func ExecuteIntegration(ctx context.Context, runner Runner, steps, terms int, progressReporter ProgressReporter, out io.Writer) RunResult {
	threads := runner.Options().Threads
	progressChan := make(chan quadrature.ProgressUpdate, max(threads, 1)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, threads, out)

	startTime := time.Now()
	res, err := runner.Integrate(ctx, steps, terms, progressChan)
	duration := time.Since(startTime)

	close(progressChan)
	displayWg.Wait()

	return RunResult{Threads: threads, Result: res, Duration: duration, Err: err}
}

// ExecuteComparison runs every runner in turn on the same problem. Runs are
// sequential so that each one has the whole machine and the timings can be
// compared. Once ctx is done the remaining runners are not started and their
// results carry the context error.
func ExecuteComparison(ctx context.Context, runners []Runner, steps, terms int, progressReporter ProgressReporter, out io.Writer) []RunResult {
	results := make([]RunResult, len(runners))
	for i, r := range runners {
		if err := ctx.Err(); err != nil {
			results[i] = RunResult{Threads: r.Options().Threads, Err: err}
			continue
		}
		results[i] = ExecuteIntegration(ctx, r, steps, terms, progressReporter, out)
	}
	return results
}

// CheckConsistency verifies that every successful result lies within the
// relative tolerance of the first successful one. It returns a
// apperrors.MismatchError naming the first pair that disagrees.
func CheckConsistency(results []RunResult, tolerance float64) error {
	var ref *RunResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if ref == nil {
			ref = &results[i]
			continue
		}
		a, b := ref.Result.Value, results[i].Result.Value
		rel := relativeError(a, b)
		if rel > tolerance || math.IsNaN(rel) {
			return apperrors.MismatchError{
				Threads:       [2]int{ref.Threads, results[i].Threads},
				Values:        [2]float64{a, b},
				RelativeError: rel,
				Tolerance:     tolerance,
			}
		}
	}
	return nil
}

func relativeError(a, b float64) float64 {
	if a == b {
		return 0
	}
	if a == 0 {
		return math.Abs(b)
	}
	return math.Abs(a-b) / math.Abs(a)
}

// FastestIndex returns the index of the successful result with the shortest
// parallel region, or -1 if none succeeded.
func FastestIndex(results []RunResult) int {
	best := -1
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		if best < 0 || res.Result.Elapsed < results[best].Result.Elapsed {
			best = i
		}
	}
	return best
}

// AnalyzeComparisonResults presents a comparison sweep and decides its
// outcome.
//
// It displays the table in sweep order, then checks that the successful
// results agree within CompareTolerance. When every run failed, the first
// error is reported through errHandler.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []RunResult, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	var firstError error
	var firstErrorDuration time.Duration
	successCount := 0
	for _, res := range results {
		if res.Err != nil {
			if firstError == nil {
				firstError, firstErrorDuration = res.Err, res.Duration
			}
			continue
		}
		successCount++
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No thread count could complete the integration.\n")
		return errHandler.HandleError(firstError, firstErrorDuration, out)
	}

	if err := CheckConsistency(results, CompareTolerance); err != nil {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %v\n", err)
		return apperrors.ExitErrorMismatch
	}

	if firstError != nil {
		fmt.Fprintf(out, "\nGlobal Status: Partial. %d of %d runs succeeded and agree.\n", successCount, len(results))
		return errHandler.HandleError(firstError, firstErrorDuration, out)
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All results agree within %.0e.\n", CompareTolerance)
	return apperrors.ExitSuccess
}
