package quadrature

import (
	"context"
	"math"
	"time"

	pargo "github.com/exascience/pargo/parallel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/parallel"
	"github.com/agbru/sinsum/internal/series"
)

// Exact is the true value of the integral of sin over [0, π].
const Exact = 2.0

// ProgressBlock is the number of samples a worker evaluates between progress
// reports and cancellation checks.
const ProgressBlock = 1 << 14

const tracerName = "github.com/agbru/sinsum/internal/quadrature"

// ProgressUpdate reports the fraction of its samples a worker has evaluated.
type ProgressUpdate struct {
	// Worker is the index of the reporting worker, in [0, Threads).
	Worker int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// Result is the outcome of one integration.
type Result struct {
	Value     float64
	Steps     int
	Terms     int
	Threads   int
	Partition Partition
	Scheduler Scheduler
	// Partials holds each worker's partial sum before the endpoint
	// correction, in worker order. The Pargo scheduler reports one entry.
	Partials []float64
	// Elapsed covers the parallel region only.
	Elapsed time.Duration
}

// AbsError returns the distance between the estimate and Exact.
func (r Result) AbsError() float64 {
	return math.Abs(r.Value - Exact)
}

// Integrator runs the trapezoidal integration with a fixed worker count.
// It holds no mutable state and may be shared between goroutines.
type Integrator struct {
	opts   Options
	tracer trace.Tracer
}

// NewIntegrator validates opts and returns an Integrator.
func NewIntegrator(opts Options) (*Integrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{opts: opts, tracer: otel.Tracer(tracerName)}, nil
}

// Options returns the options the Integrator was built with.
func (it *Integrator) Options() Options {
	return it.opts
}

// Integrate approximates the integral of sin over [0, π] with steps samples
// and terms series terms per sample.
//
// Invalid steps or terms are rejected before any goroutine starts. If
// progress is non-nil, workers send non-blocking updates on it; the channel
// is not closed. A cancelled ctx aborts the workers at the next progress
// block and the context error is returned wrapped in a CalculationError.
func (it *Integrator) Integrate(ctx context.Context, steps, terms int, progress chan<- ProgressUpdate) (Result, error) {
	if err := ValidateProblem(steps, terms); err != nil {
		return Result{}, err
	}

	ctx, span := it.tracer.Start(ctx, "quadrature.Integrate", trace.WithAttributes(
		attribute.Int("steps", steps),
		attribute.Int("terms", terms),
		attribute.Int("threads", it.opts.Threads),
		attribute.String("partition", it.opts.Partition.String()),
		attribute.String("scheduler", it.opts.Scheduler.String()),
	))
	defer span.End()

	stepSize := math.Pi / float64(steps-1)

	start := time.Now()
	var partials []float64
	var err error
	if it.opts.Scheduler == Pargo {
		partials, err = it.reducePargo(ctx, steps, terms, stepSize)
	} else {
		partials, err = it.reduceWorkers(ctx, steps, terms, stepSize, progress)
	}
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, apperrors.CalculationError{Cause: err}
	}

	var rawSum float64
	for _, p := range partials {
		rawSum += p
	}

	// Trapezoidal rule: the two endpoints carry half weight.
	corrected := rawSum - 0.5*(float64(series.Sin(0, terms))+float64(series.Sin(math.Pi, terms)))
	value := corrected * stepSize

	span.SetAttributes(attribute.Float64("value", value))
	return Result{
		Value:     value,
		Steps:     steps,
		Terms:     terms,
		Threads:   it.opts.Threads,
		Partition: it.opts.Partition,
		Scheduler: it.opts.Scheduler,
		Partials:  partials,
		Elapsed:   elapsed,
	}, nil
}

// reduceWorkers starts one goroutine per worker. Each writes only its own
// slot of partials; Wait is the single synchronisation point.
func (it *Integrator) reduceWorkers(ctx context.Context, steps, terms int, stepSize float64, progress chan<- ProgressUpdate) ([]float64, error) {
	threads := it.opts.Threads
	partials := make([]float64, threads)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < threads; w++ {
		g.Go(func() error {
			start, end, stride := it.opts.Partition.span(w, threads, steps)
			sum, err := sumSpan(ctx, w, start, end, stride, terms, stepSize, progress)
			if err != nil {
				return err
			}
			partials[w] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// reducePargo hands the range to pargo, which splits it into Threads batches
// and adds the batch sums. Cancellation is recorded in an ErrorCollector
// because the pargo reducer cannot return an error.
func (it *Integrator) reducePargo(ctx context.Context, steps, terms int, stepSize float64) ([]float64, error) {
	var errs parallel.ErrorCollector
	total := pargo.RangeReduceFloat64Sum(0, steps, it.opts.Threads, func(low, high int) float64 {
		sum, err := sumSpan(ctx, -1, low, high, 1, terms, stepSize, nil)
		errs.SetError(err)
		return sum
	})
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return []float64{total}, nil
}

// sumSpan adds the series value of every sample index in [start, end) with
// the given stride into a private float64 accumulator.
func sumSpan(ctx context.Context, worker, start, end, stride, terms int, stepSize float64, progress chan<- ProgressUpdate) (float64, error) {
	n := count(start, end, stride)
	var sum float64
	done := 0
	for i := start; i < end; i += stride {
		sum += float64(series.Sin(float32(stepSize*float64(i)), terms))
		done++
		if done%ProgressBlock == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			report(progress, worker, float64(done)/float64(n))
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	report(progress, worker, 1)
	return sum, nil
}

func report(progress chan<- ProgressUpdate, worker int, value float64) {
	if progress == nil {
		return
	}
	select {
	case progress <- ProgressUpdate{Worker: worker, Value: value}:
	default:
	}
}

// Integrate is the plain form of the reducer: contiguous partition, errgroup
// workers, no progress and no cancellation.
func Integrate(steps, terms, threads int) (float64, error) {
	it, err := NewIntegrator(Options{Threads: threads})
	if err != nil {
		return 0, err
	}
	res, err := it.Integrate(context.Background(), steps, terms, nil)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}
