package orchestration

import (
	"time"

	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/quadrature"
)

// ProgressAggregator turns per-worker progress updates into an overall
// completion fraction and ETA. It wraps format.ProgressWithETA.
type ProgressAggregator struct {
	state      *format.ProgressWithETA
	numWorkers int
}

// NewProgressAggregator creates a new aggregator for the given number of
// workers. Returns nil if numWorkers <= 0.
func NewProgressAggregator(numWorkers int) *ProgressAggregator {
	if numWorkers <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:      format.NewProgressWithETA(numWorkers),
		numWorkers: numWorkers,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// Worker is the index of the worker that sent the update.
	Worker int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the mean across all workers.
	AverageProgress float64
	// ETA is the estimated time remaining based on smoothed progress rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update quadrature.ProgressUpdate) AggregatedProgress {
	avgProgress, eta := a.state.UpdateWithETA(update.Worker, update.Value)
	return AggregatedProgress{
		Worker:          update.Worker,
		Value:           update.Value,
		AverageProgress: avgProgress,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
// Used for periodic refresh between updates.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumWorkers returns the number of workers being tracked.
func (a *ProgressAggregator) NumWorkers() int {
	return a.numWorkers
}

// IsMultiWorker returns true if tracking more than one worker.
func (a *ProgressAggregator) IsMultiWorker() bool {
	return a.numWorkers > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan quadrature.ProgressUpdate) {
	for range progressChan {
	}
}
