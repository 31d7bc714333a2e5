package orchestration

import (
	"github.com/agbru/sinsum/internal/config"
	"github.com/agbru/sinsum/internal/quadrature"
)

// GetRunnersToRun builds the integrators a run needs: one per entry of the
// comparison sweep, or a single one for cfg.Threads. Runners are returned in
// sweep order so that speedups are relative to the first entry.
func GetRunnersToRun(cfg config.AppConfig) ([]Runner, error) {
	threads := cfg.CompareThreads
	if len(threads) == 0 {
		threads = []int{cfg.Threads}
	}
	runners := make([]Runner, 0, len(threads))
	for _, n := range threads {
		opts, err := cfg.IntegratorOptions(n)
		if err != nil {
			return nil, err
		}
		it, err := quadrature.NewIntegrator(opts)
		if err != nil {
			return nil, err
		}
		runners = append(runners, it)
	}
	return runners, nil
}
