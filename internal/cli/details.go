package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/metrics"
	"github.com/agbru/sinsum/internal/quadrature"
	"github.com/agbru/sinsum/internal/sysmon"
	"github.com/agbru/sinsum/internal/ui"
)

// hostProbeTimeout bounds the gopsutil calls of the verbose report.
const hostProbeTimeout = 2 * time.Second

// FormatDetails returns the body of the verbose report for res: accuracy,
// layout and the per-worker partial sums.
func FormatDetails(res quadrature.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Absolute error:  %.3e\n", res.AbsError())
	fmt.Fprintf(&b, "Partition:       %s\n", res.Partition)
	fmt.Fprintf(&b, "Scheduler:       %s\n", res.Scheduler)
	fmt.Fprintf(&b, "Samples/worker:  %s\n", format.FormatInt(res.Steps/max(res.Threads, 1)))
	if len(res.Partials) > 0 {
		fmt.Fprintf(&b, "Partial sums:\n")
		for w, p := range res.Partials {
			fmt.Fprintf(&b, "  [%2d] %.10f\n", w, p)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DisplayDetails prints the verbose report: result details in a box, then
// host and runtime statistics.
func DisplayDetails(res quadrature.Result, out io.Writer) {
	fmt.Fprintln(out, ui.RenderBox("Details", FormatDetails(res)))

	ctx, cancel := context.WithTimeout(context.Background(), hostProbeTimeout)
	defer cancel()
	DisplayHostStats(ctx, out)

	snap := metrics.NewMemoryCollector().Snapshot()
	DisplayMemoryStats(snap.HeapAlloc, snap.TotalAlloc, snap.NumGC, snap.PauseTotalNs, out)
}

// DisplayHostStats prints the processor description and a CPU and memory
// sample of the host and of this process.
func DisplayHostStats(ctx context.Context, out io.Writer) {
	host := sysmon.Host(ctx)
	load := sysmon.Sample()

	fmt.Fprintf(out, "\nHost:\n")
	if host.ModelName != "" {
		fmt.Fprintf(out, "  CPU:             %s\n", host.ModelName)
	}
	fmt.Fprintf(out, "  Cores:           %d logical, %d physical (GOMAXPROCS %d)\n",
		host.LogicalCores, host.PhysicalCores, runtime.GOMAXPROCS(0))
	if len(host.Features) > 0 {
		fmt.Fprintf(out, "  CPU features:    %s\n", strings.Join(host.Features, " "))
	}
	if host.TotalMemory > 0 {
		fmt.Fprintf(out, "  Memory:          %s (%.1f%% used)\n", format.FormatBytes(host.TotalMemory), load.MemPercent)
	}
	fmt.Fprintf(out, "  CPU load:        %.1f%%\n", load.CPUPercent)
	if self, err := sysmon.Self(ctx); err == nil {
		if self.Executable != "" {
			fmt.Fprintf(out, "  Process:         %s (parent %d)\n", self.Executable, self.ParentPID)
		}
		fmt.Fprintf(out, "  Process RSS:     %s, %d threads\n", format.FormatBytes(self.RSS), self.NumThreads)
	}
}
