package quadrature

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/agbru/sinsum/internal/errors"
)

// visits counts how often each index in [0, steps) is assigned to a worker.
func visits(p Partition, steps, threads int) []int {
	seen := make([]int, steps)
	for w := 0; w < threads; w++ {
		start, end, stride := p.span(w, threads, steps)
		n := 0
		for i := start; i < end; i += stride {
			seen[i]++
			n++
		}
		if n != count(start, end, stride) {
			panic("count disagrees with loop")
		}
	}
	return seen
}

func TestPartition_CoversEveryIndexOnce(t *testing.T) {
	t.Parallel()
	for _, p := range []Partition{Contiguous, Striped} {
		for steps := 0; steps <= 64; steps++ {
			for threads := 1; threads <= 17; threads++ {
				for i, n := range visits(p, steps, threads) {
					if n != 1 {
						t.Fatalf("%s steps=%d threads=%d: index %d visited %d times", p, steps, threads, i, n)
					}
				}
			}
		}
	}
}

func TestPartition_ContiguousIsBalanced(t *testing.T) {
	t.Parallel()
	const steps, threads = 1003, 8
	for w := 0; w < threads; w++ {
		start, end, stride := Contiguous.span(w, threads, steps)
		n := count(start, end, stride)
		if n < steps/threads || n > steps/threads+1 {
			t.Errorf("worker %d owns %d indices, want %d or %d", w, n, steps/threads, steps/threads+1)
		}
	}
}

// TestPartition_Coverage_PropertyBased repeats the exactly-once check on
// larger random shapes.
func TestPartition_Coverage_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	for _, p := range []Partition{Contiguous, Striped} {
		properties.Property(p.String()+" visits each index exactly once", prop.ForAll(
			func(steps, threads int) bool {
				for _, n := range visits(p, steps, threads) {
					if n != 1 {
						return false
					}
				}
				return true
			},
			gen.IntRange(0, 20000),
			gen.IntRange(1, 300),
		))
	}

	properties.TestingRun(t)
}

// TestThreadCountInvariance_PropertyBased verifies that the estimate does not
// depend on the worker count beyond float64 rounding.
func TestThreadCountInvariance_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("estimate is independent of threads and partition", prop.ForAll(
		func(steps, threads int, striped bool) bool {
			partition := Contiguous
			if striped {
				partition = Striped
			}
			single, err := Integrate(steps, 15, 1)
			if err != nil {
				return false
			}
			it, err := NewIntegrator(Options{Threads: threads, Partition: partition})
			if err != nil {
				return false
			}
			res, err := it.Integrate(context.Background(), steps, 15, nil)
			if err != nil {
				return false
			}
			return closeEnough(single, res.Value, 1e-9)
		},
		gen.IntRange(2, 5000),
		gen.IntRange(1, 32),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestParsePartition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Partition
		wantErr bool
	}{
		{"", Contiguous, false},
		{"contiguous", Contiguous, false},
		{"Block", Contiguous, false},
		{"striped", Striped, false},
		{" round-robin ", Striped, false},
		{"diagonal", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePartition(tt.in)
		if tt.wantErr {
			var valErr apperrors.ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("ParsePartition(%q): expected ValidationError, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePartition(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestParseScheduler(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Scheduler{"": Workers, "workers": Workers, "ERRGROUP": Workers, "pargo": Pargo} {
		got, err := ParseScheduler(in)
		if err != nil || got != want {
			t.Errorf("ParseScheduler(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseScheduler("dynamic"); err == nil {
		t.Error("ParseScheduler(\"dynamic\") should fail")
	}
}

func TestStringers(t *testing.T) {
	t.Parallel()
	if Contiguous.String() != "contiguous" || Striped.String() != "striped" {
		t.Error("unexpected Partition spelling")
	}
	if Workers.String() != "workers" || Pargo.String() != "pargo" {
		t.Error("unexpected Scheduler spelling")
	}
	if Partition(7).String() != "Partition(7)" || Scheduler(7).String() != "Scheduler(7)" {
		t.Error("unexpected spelling for unknown values")
	}
}
