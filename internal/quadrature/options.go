package quadrature

import (
	"fmt"
	"strings"

	apperrors "github.com/agbru/sinsum/internal/errors"
)

// Partition selects how sample indices are distributed across workers.
type Partition int

const (
	// Contiguous gives each worker one consecutive block of indices.
	Contiguous Partition = iota
	// Striped deals indices round-robin: worker w owns w, w+T, w+2T, ...
	Striped
)

// String returns the flag spelling of the partition.
func (p Partition) String() string {
	switch p {
	case Contiguous:
		return "contiguous"
	case Striped:
		return "striped"
	default:
		return fmt.Sprintf("Partition(%d)", int(p))
	}
}

// ParsePartition converts a flag value into a Partition. The empty string
// selects Contiguous.
func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contiguous", "chunk", "block":
		return Contiguous, nil
	case "striped", "stripe", "round-robin":
		return Striped, nil
	}
	return 0, apperrors.ValidationError{Field: "partition", Message: fmt.Sprintf("unknown partition %q (want contiguous or striped)", s)}
}

// span returns the index loop bounds [start, end) and stride for worker w of
// threads workers over steps samples.
func (p Partition) span(w, threads, steps int) (start, end, stride int) {
	if p == Striped {
		return w, steps, threads
	}
	return w * steps / threads, (w + 1) * steps / threads, 1
}

// count returns the number of indices visited by a span.
func count(start, end, stride int) int {
	if end <= start {
		return 0
	}
	return (end - start + stride - 1) / stride
}

// Scheduler selects the parallel-for implementation.
type Scheduler int

const (
	// Workers starts exactly Threads goroutines in an errgroup, one per
	// partition slice.
	Workers Scheduler = iota
	// Pargo delegates the range split and the reduction to
	// github.com/exascience/pargo using Threads batches.
	Pargo
)

// String returns the flag spelling of the scheduler.
func (s Scheduler) String() string {
	switch s {
	case Workers:
		return "workers"
	case Pargo:
		return "pargo"
	default:
		return fmt.Sprintf("Scheduler(%d)", int(s))
	}
}

// ParseScheduler converts a flag value into a Scheduler. The empty string
// selects Workers.
func ParseScheduler(s string) (Scheduler, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "workers", "errgroup":
		return Workers, nil
	case "pargo":
		return Pargo, nil
	}
	return 0, apperrors.ValidationError{Field: "scheduler", Message: fmt.Sprintf("unknown scheduler %q (want workers or pargo)", s)}
}

// Options configures an Integrator. The zero value is not usable: Threads
// must be at least 1.
type Options struct {
	// Threads is the fixed number of workers.
	Threads int
	// Partition chooses the index distribution. Ignored by the Pargo scheduler.
	Partition Partition
	// Scheduler chooses the parallel-for implementation.
	Scheduler Scheduler
}

// Validate checks the options before any work is started.
func (o Options) Validate() error {
	if o.Threads < 1 {
		return apperrors.ValidationError{Field: "threads", Message: fmt.Sprintf("must be at least 1, got %d", o.Threads)}
	}
	if o.Partition != Contiguous && o.Partition != Striped {
		return apperrors.ValidationError{Field: "partition", Message: fmt.Sprintf("unknown partition %d", int(o.Partition))}
	}
	if o.Scheduler != Workers && o.Scheduler != Pargo {
		return apperrors.ValidationError{Field: "scheduler", Message: fmt.Sprintf("unknown scheduler %d", int(o.Scheduler))}
	}
	return nil
}

// ValidateProblem checks the sample and term counts. steps must be at least 2
// because the step size divides by steps-1.
func ValidateProblem(steps, terms int) error {
	if steps < 2 {
		return apperrors.ValidationError{Field: "steps", Message: fmt.Sprintf("must be at least 2, got %d", steps)}
	}
	if terms < 1 {
		return apperrors.ValidationError{Field: "terms", Message: fmt.Sprintf("must be at least 1, got %d", terms)}
	}
	return nil
}
