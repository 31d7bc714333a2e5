package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA bounds the estimate shown to the user so a stalled worker does not
// produce absurd values.
const maxETA = 24 * time.Hour

// ProgressState holds the completion fraction reported by each worker of a
// single integration.
type ProgressState struct {
	progresses []float64
	numWorkers int
}

// NewProgressState creates a ProgressState tracking numWorkers workers.
func NewProgressState(numWorkers int) *ProgressState {
	if numWorkers < 0 {
		numWorkers = 0
	}
	return &ProgressState{
		progresses: make([]float64, numWorkers),
		numWorkers: numWorkers,
	}
}

// Update records the progress of one worker. Out-of-range indices are
// ignored and the value is clamped to [0, 1].
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = clamp01(value)
}

// CalculateAverage returns the mean completion across all workers.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numWorkers == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numWorkers)
}

// ProgressWithETA extends ProgressState with a smoothed completion rate from
// which an estimated time to completion is derived.
type ProgressWithETA struct {
	*ProgressState
	mu           sync.Mutex
	numWorkers   int
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // fraction per second, exponentially smoothed
}

// NewProgressWithETA creates a tracker for numWorkers workers, starting the
// clock immediately.
func NewProgressWithETA(numWorkers int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numWorkers),
		numWorkers:    numWorkers,
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records the progress of one worker and returns the overall
// progress together with the current ETA.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Update(index, value)
	progress := p.CalculateAverage()

	now := time.Now()
	if elapsed := now.Sub(p.lastUpdate).Seconds(); elapsed > 0 && progress > p.lastProgress {
		rate := (progress - p.lastProgress) / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = 0.3*rate + 0.7*p.progressRate
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}
	return progress, p.eta(progress)
}

// GetETA returns the estimated time remaining, or zero when no rate has been
// observed yet.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eta(p.CalculateAverage())
}

func (p *ProgressWithETA) eta(progress float64) time.Duration {
	if p.progressRate <= 0 || progress <= 0 {
		return 0
	}
	remaining := (1 - progress) / p.progressRate
	eta := time.Duration(remaining * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// FormatETA renders an ETA compactly: "45s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders a bar of the given length using full and light shade
// blocks. progress is clamped to [0, 1].
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	filled := int(clamp01(progress) * float64(length))
	if filled > length {
		filled = length
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	progress = clamp01(progress)
	etaStr := FormatETA(eta)
	if progress >= 1 {
		etaStr = "done"
	}
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), progress*100, etaStr)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
