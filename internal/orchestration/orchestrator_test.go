package orchestration

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/quadrature"
)

// MockResultPresenter is a mock implementation of ResultPresenter for testing.
type MockResultPresenter struct {
	tables  int
	results int
}

func (m *MockResultPresenter) PresentComparisonTable(results []RunResult, out io.Writer) { m.tables++ }
func (m *MockResultPresenter) PresentResult(result RunResult, opts PresentationOptions, out io.Writer) error {
	m.results++
	return nil
}
func (m *MockResultPresenter) FormatDuration(d time.Duration) string { return d.String() }
func (m *MockResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.ExitCode(err)
}

// MockRunner is a mock implementation of Runner used for testing the
// orchestration logic without running the reducer.
type MockRunner struct {
	Threads       int
	IntegrateFunc func(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error)
}

// Options returns options carrying the mocked thread count.
func (m *MockRunner) Options() quadrature.Options {
	return quadrature.Options{Threads: m.Threads}
}

// Integrate invokes the mocked IntegrateFunc.
func (m *MockRunner) Integrate(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error) {
	if m.IntegrateFunc != nil {
		return m.IntegrateFunc(ctx, steps, terms, progress)
	}
	return quadrature.Result{Value: quadrature.Exact, Steps: steps, Terms: terms, Threads: m.Threads}, nil
}

func valueRunner(threads int, value float64, elapsed time.Duration) *MockRunner {
	return &MockRunner{
		Threads: threads,
		IntegrateFunc: func(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error) {
			return quadrature.Result{Value: value, Steps: steps, Terms: terms, Threads: threads, Elapsed: elapsed}, nil
		},
	}
}

// TestExecuteIntegration verifies that a single run is executed and its
// outcome recorded.
func TestExecuteIntegration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		runner      Runner
		expectError bool
	}{
		{
			name:   "Success",
			runner: valueRunner(4, 2.0, time.Millisecond),
		},
		{
			name: "Failure",
			runner: &MockRunner{
				Threads: 2,
				IntegrateFunc: func(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error) {
					return quadrature.Result{}, errors.New("mock error")
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := ExecuteIntegration(context.Background(), tt.runner, 100, 10, NullProgressReporter{}, io.Discard)
			if res.Threads != tt.runner.Options().Threads {
				t.Errorf("Threads = %d, want %d", res.Threads, tt.runner.Options().Threads)
			}
			if tt.expectError && res.Err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && res.Err != nil {
				t.Errorf("unexpected error: %v", res.Err)
			}
		})
	}
}

// TestExecuteIntegrationRealReducer runs the real integrator end to end
// through the orchestrator.
func TestExecuteIntegrationRealReducer(t *testing.T) {
	t.Parallel()
	it, err := quadrature.NewIntegrator(quadrature.Options{Threads: 3})
	if err != nil {
		t.Fatal(err)
	}
	res := ExecuteIntegration(context.Background(), it, 10_000, 20, NullProgressReporter{}, io.Discard)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if d := res.Result.AbsError(); d > 1e-4 {
		t.Errorf("value %.10f too far from 2 (%g)", res.Result.Value, d)
	}
	if res.Duration < res.Result.Elapsed {
		t.Errorf("Duration %v shorter than parallel region %v", res.Duration, res.Result.Elapsed)
	}
}

// TestExecuteComparison verifies that runs happen in order and stop once the
// context is done.
func TestExecuteComparison(t *testing.T) {
	t.Parallel()

	t.Run("AllRun", func(t *testing.T) {
		t.Parallel()
		runners := []Runner{valueRunner(1, 2, 0), valueRunner(2, 2, 0), valueRunner(4, 2, 0)}
		results := ExecuteComparison(context.Background(), runners, 100, 10, NullProgressReporter{}, io.Discard)
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, want := range []int{1, 2, 4} {
			if results[i].Threads != want || results[i].Err != nil {
				t.Errorf("results[%d] = threads %d err %v, want threads %d", i, results[i].Threads, results[i].Err, want)
			}
		}
	})

	t.Run("StopsAfterCancel", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		first := &MockRunner{
			Threads: 1,
			IntegrateFunc: func(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error) {
				calls++
				cancel()
				return quadrature.Result{Value: 2}, nil
			},
		}
		second := &MockRunner{
			Threads: 2,
			IntegrateFunc: func(ctx context.Context, steps, terms int, progress chan<- quadrature.ProgressUpdate) (quadrature.Result, error) {
				calls++
				return quadrature.Result{Value: 2}, nil
			},
		}
		results := ExecuteComparison(ctx, []Runner{first, second}, 100, 10, NullProgressReporter{}, io.Discard)
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
		if !errors.Is(results[1].Err, context.Canceled) {
			t.Errorf("results[1].Err = %v, want context.Canceled", results[1].Err)
		}
		if results[1].Threads != 2 {
			t.Errorf("results[1].Threads = %d, want 2", results[1].Threads)
		}
	})
}

// TestCheckConsistency verifies the relative tolerance check.
func TestCheckConsistency(t *testing.T) {
	t.Parallel()
	ok := func(threads int, v float64) RunResult {
		return RunResult{Threads: threads, Result: quadrature.Result{Value: v}}
	}
	failed := RunResult{Threads: 3, Err: errors.New("fail")}

	tests := []struct {
		name     string
		results  []RunResult
		mismatch bool
	}{
		{"Empty", nil, false},
		{"Single", []RunResult{ok(1, 2)}, false},
		{"Identical", []RunResult{ok(1, 2), ok(2, 2)}, false},
		{"WithinTolerance", []RunResult{ok(1, 2), ok(2, 2*(1+5e-5))}, false},
		{"BeyondTolerance", []RunResult{ok(1, 2), ok(2, 2.01)}, true},
		{"FailuresIgnored", []RunResult{failed, ok(1, 2), failed, ok(2, 2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckConsistency(tt.results, CompareTolerance)
			var mm apperrors.MismatchError
			if got := errors.As(err, &mm); got != tt.mismatch {
				t.Fatalf("mismatch = %v (err %v), want %v", got, err, tt.mismatch)
			}
			if tt.mismatch && mm.Threads != [2]int{1, 2} {
				t.Errorf("Threads = %v, want [1 2]", mm.Threads)
			}
		})
	}
}

// TestFastestIndex verifies that failed runs are never chosen.
func TestFastestIndex(t *testing.T) {
	t.Parallel()
	results := []RunResult{
		{Threads: 1, Result: quadrature.Result{Elapsed: 40 * time.Millisecond}},
		{Threads: 2, Err: errors.New("fail")},
		{Threads: 4, Result: quadrature.Result{Elapsed: 15 * time.Millisecond}},
		{Threads: 8, Result: quadrature.Result{Elapsed: 20 * time.Millisecond}},
	}
	if got := FastestIndex(results); got != 2 {
		t.Errorf("FastestIndex = %d, want 2", got)
	}
	if got := FastestIndex([]RunResult{{Err: errors.New("fail")}}); got != -1 {
		t.Errorf("FastestIndex with no success = %d, want -1", got)
	}
}

// TestAnalyzeComparisonResults verifies the outcome of a sweep: consistent
// results, mismatches and failures.
func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		results        []RunResult
		expectedStatus int
	}{
		{
			name: "All success",
			results: []RunResult{
				{Threads: 1, Result: quadrature.Result{Value: 2}},
				{Threads: 2, Result: quadrature.Result{Value: 2}},
			},
			expectedStatus: apperrors.ExitSuccess,
		},
		{
			name: "Mismatch",
			results: []RunResult{
				{Threads: 1, Result: quadrature.Result{Value: 2}},
				{Threads: 2, Result: quadrature.Result{Value: 2.5}},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
		},
		{
			name: "All failure",
			results: []RunResult{
				{Threads: 1, Err: errors.New("fail")},
				{Threads: 2, Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
		},
		{
			name: "Cancelled after first",
			results: []RunResult{
				{Threads: 1, Result: quadrature.Result{Value: 2}},
				{Threads: 2, Err: context.Canceled},
			},
			expectedStatus: apperrors.ExitErrorCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			presenter := &MockResultPresenter{}
			status := AnalyzeComparisonResults(tt.results, presenter, presenter, io.Discard)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if presenter.tables != 1 {
				t.Errorf("expected the table to be presented once, got %d", presenter.tables)
			}
		})
	}
}
