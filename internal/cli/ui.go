//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/orchestration"
	"github.com/agbru/sinsum/internal/quadrature"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples DisplayProgress from a specific spinner implementation so
// that it can be tested with a mock.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner redraws from its own goroutine, so the field is written under its
// lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner followed by an aggregated progress bar
// until progressChan is closed.
//
// Updates are folded into an orchestration.ProgressAggregator as they arrive;
// the bar itself is redrawn on a ticker so a flood of updates does not flood
// the terminal.
//
// Parameters:
//   - wg: Signalled when the display has stopped.
//   - progressChan: Per-worker progress updates.
//   - numWorkers: The number of workers reporting.
//   - out: The writer the spinner draws on.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan quadrature.ProgressUpdate, numWorkers int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numWorkers)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	defer s.Stop()

	label := "Integrating"
	if agg.IsMultiWorker() {
		label = fmt.Sprintf("Integrating (%d workers)", agg.NumWorkers())
	}

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(label, 1, 0))
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(label, agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

func progressSuffix(label string, progress float64, eta time.Duration) string {
	return " " + label + " " + format.FormatProgressBarWithETA(progress, eta, ProgressBarWidth)
}
