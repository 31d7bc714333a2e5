// Package sysmon provides system-wide CPU and memory usage sampling, a
// description of the host processor and the resource usage of the current
// process.
package sysmon

import (
	"context"
	"os"
	"runtime"
	"strings"

	ps "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	xcpu "golang.org/x/sys/cpu"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// HostInfo describes the processor the integration runs on.
type HostInfo struct {
	ModelName     string
	LogicalCores  int
	PhysicalCores int
	TotalMemory   uint64 // bytes
	Features      []string
}

// Host gathers HostInfo. Fields gopsutil cannot read are left zero; the core
// count falls back to runtime.NumCPU.
func Host(ctx context.Context) HostInfo {
	h := HostInfo{Features: CPUFeatures()}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.ModelName = strings.TrimSpace(infos[0].ModelName)
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		h.LogicalCores = n
	} else {
		h.LogicalCores = runtime.NumCPU()
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.PhysicalCores = n
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		h.TotalMemory = vmem.Total
	}
	return h
}

// CPUFeatures lists the SIMD extensions reported by golang.org/x/sys/cpu for
// the running architecture.
func CPUFeatures() []string {
	var features []string
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse2", xcpu.X86.HasSSE2)
		add("sse4.1", xcpu.X86.HasSSE41)
		add("avx", xcpu.X86.HasAVX)
		add("avx2", xcpu.X86.HasAVX2)
		add("fma", xcpu.X86.HasFMA)
		add("avx512f", xcpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", xcpu.ARM64.HasASIMD)
		add("fphp", xcpu.ARM64.HasFPHP)
		add("sve", xcpu.ARM64.HasSVE)
	}
	return features
}

// ProcessStats is the resource usage of the current process.
type ProcessStats struct {
	Executable string
	ParentPID  int
	RSS        uint64  // resident set size in bytes
	CPUPercent float64 // since process start, may exceed 100 on multi-core hosts
	NumThreads int32
}

// Self reads ProcessStats for the current process.
func Self(ctx context.Context) (ProcessStats, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return ProcessStats{}, err
	}
	var stats ProcessStats
	if proc, err := ps.FindProcess(os.Getpid()); err == nil && proc != nil {
		stats.Executable = proc.Executable()
		stats.ParentPID = proc.PPid()
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		stats.RSS = mi.RSS
	}
	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = pct
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		stats.NumThreads = n
	}
	return stats, nil
}
