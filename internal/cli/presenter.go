package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/orchestration"
	"github.com/agbru/sinsum/internal/quadrature"
	"github.com/agbru/sinsum/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for a running integration.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, numWorkers int, out io.Writer) {
	DisplayProgress(wg, progressChan, numWorkers, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentComparisonTable displays the thread sweep table: thread count,
// parallel-region duration, speedup relative to the first row, and status.
// The fastest successful row is marked as optimal. Uses manual padding to
// correctly handle ANSI color codes.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	const (
		threadsHeader  = "Threads"
		durationHeader = "Duration"
		speedupHeader  = "Speedup"
	)
	durations := make([]string, len(results))
	speedups := make([]string, len(results))
	maxThreadsLen, maxDurationLen, maxSpeedupLen := len(threadsHeader), len(durationHeader), len(speedupHeader)

	var base time.Duration
	if len(results) > 0 && results[0].Err == nil {
		base = results[0].Result.Elapsed
	}
	for i, res := range results {
		if n := len(fmt.Sprint(res.Threads)); n > maxThreadsLen {
			maxThreadsLen = n
		}
		durations[i], speedups[i] = "-", "-"
		if res.Err == nil {
			durations[i] = format.FormatExecutionDuration(res.Result.Elapsed)
			if res.Result.Elapsed == 0 {
				durations[i] = "< 1µs"
			}
			if base > 0 && res.Result.Elapsed > 0 {
				speedups[i] = fmt.Sprintf("%.2fx", base.Seconds()/res.Result.Elapsed.Seconds())
			}
		}
		maxDurationLen = max(maxDurationLen, len(durations[i]))
		maxSpeedupLen = max(maxSpeedupLen, len(speedups[i]))
	}

	fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s%s%s   %sStatus%s\n",
		ui.ColorUnderline(), threadsHeader, ui.ColorReset(), padRight("", maxThreadsLen-len(threadsHeader)),
		ui.ColorUnderline(), durationHeader, ui.ColorReset(), padRight("", maxDurationLen-len(durationHeader)),
		ui.ColorUnderline(), speedupHeader, ui.ColorReset(), padRight("", maxSpeedupLen-len(speedupHeader)),
		ui.ColorUnderline(), ui.ColorReset())

	fastest := orchestration.FastestIndex(results)
	for i, res := range results {
		var status string
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		case i == fastest:
			status = fmt.Sprintf("%s✅ Success %s(optimal)%s", ui.ColorGreen(), ui.ColorBold(), ui.ColorReset())
		default:
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		}
		threads := fmt.Sprint(res.Threads)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s   %s\n",
			ui.ColorBlue(), threads, ui.ColorReset(), padRight("", maxThreadsLen-len(threads)),
			ui.ColorYellow(), durations[i], ui.ColorReset(), padRight("", maxDurationLen-len(durations[i])),
			speedups[i], padRight("", maxSpeedupLen-len(speedups[i])),
			status)
	}
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays a single result in the mode selected by opts.
func (CLIResultPresenter) PresentResult(result orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) error {
	switch {
	case opts.JSON:
		return DisplayJSONResult(out, result.Result)
	case opts.Quiet:
		DisplayQuietResult(out, result.Result)
	default:
		DisplayResult(result.Result, opts.Verbose, out)
	}
	return nil
}

// FormatDuration formats a duration for display using the CLI's standard
// duration formatting.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError prints err and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err != nil && duration > 0 {
		fmt.Fprintf(out, "%sRun stopped after %s.%s\n", ui.ColorYellow(), format.FormatExecutionDuration(duration), ui.ColorReset())
	}
	return apperrors.HandleError(err, out)
}

// DisplayMemoryStats shows memory statistics after an integration.
func DisplayMemoryStats(heapAlloc, totalAlloc uint64, numGC uint32, pauseTotalNs uint64, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(heapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(totalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", numGC)
	if pauseTotalNs > 0 {
		fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(pauseTotalNs)/1e6)
	} else {
		fmt.Fprintf(out, "  GC pause total:  0ms\n")
	}
}
