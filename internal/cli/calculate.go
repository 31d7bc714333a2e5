package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/sinsum/internal/config"
	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/ui"
)

// PrintExecutionConfig displays the current execution configuration to the
// user: problem size, layout, timeout and environment.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Integrating %ssin(x) over [0, π]%s with %s%s%s samples and %s%d%s series terms, timeout %s%s%s.\n",
		ui.ColorMagenta(), ui.ColorReset(),
		ui.ColorCyan(), format.FormatInt(cfg.Steps), ui.ColorReset(),
		ui.ColorCyan(), cfg.Terms, ui.ColorReset(),
		ui.ColorYellow(), timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode displays the execution mode (single run vs thread sweep).
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionMode(cfg config.AppConfig, out io.Writer) {
	var modeDesc string
	if len(cfg.CompareThreads) > 0 {
		counts := make([]string, len(cfg.CompareThreads))
		for i, n := range cfg.CompareThreads {
			counts[i] = fmt.Sprint(n)
		}
		modeDesc = fmt.Sprintf("Sequential comparison of thread counts %s%s%s",
			ui.ColorGreen(), strings.Join(counts, ", "), ui.ColorReset())
	} else {
		modeDesc = fmt.Sprintf("Single run with %s%d%s workers",
			ui.ColorGreen(), cfg.Threads, ui.ColorReset())
	}
	partition := cfg.Partition
	if partition == "" {
		partition = "contiguous"
	}
	scheduler := cfg.Scheduler
	if scheduler == "" {
		scheduler = "workers"
	}
	fmt.Fprintf(out, "Execution mode: %s (%s partition, %s scheduler).\n", modeDesc, partition, scheduler)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
