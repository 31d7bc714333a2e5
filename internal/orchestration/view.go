package orchestration

import (
	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/quadrature"
)

// ResultView is the serialised form of a result, shared by the -json output
// and the HTTP service.
type ResultView struct {
	Value     float64   `json:"value"`
	Steps     int       `json:"steps"`
	Terms     int       `json:"terms"`
	Threads   int       `json:"threads"`
	Partition string    `json:"partition"`
	Scheduler string    `json:"scheduler"`
	ElapsedMs float64   `json:"elapsed_ms"`
	AbsError  float64   `json:"abs_error"`
	Partials  []float64 `json:"partials,omitempty"`
}

// NewResultView converts res. Partial sums are included only when
// withPartials is set.
func NewResultView(res quadrature.Result, withPartials bool) ResultView {
	v := ResultView{
		Value:     res.Value,
		Steps:     res.Steps,
		Terms:     res.Terms,
		Threads:   res.Threads,
		Partition: res.Partition.String(),
		Scheduler: res.Scheduler.String(),
		ElapsedMs: format.Millis(res.Elapsed),
		AbsError:  res.AbsError(),
	}
	if withPartials {
		v.Partials = res.Partials
	}
	return v
}
