package series

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestOddSymmetry_PropertyBased verifies Sin(-x, n) = -Sin(x, n): every term
// of the expansion is an odd power of x.
func TestOddSymmetry_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Sin is odd", prop.ForAll(
		func(x float32, terms int) bool {
			pos := Sin(x, terms)
			neg := Sin(-x, terms)
			scale := math.Max(1, math.Abs(float64(pos)))
			return math.Abs(float64(pos+neg)) <= 1e-6*scale
		},
		gen.Float32Range(-2*math.Pi, 2*math.Pi),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

// TestSingleTerm_PropertyBased verifies Sin(x, 1) == x for finite x.
func TestSingleTerm_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one term is the angle itself", prop.ForAll(
		func(x float32) bool {
			return Sin(x, 1) == x
		},
		gen.Float32Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// TestBoundedOnHalfPeriod_PropertyBased verifies that with enough terms the
// series stays within [-1, 1] (plus float32 slack) on [0, π].
func TestBoundedOnHalfPeriod_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("converged value is a valid sine", prop.ForAll(
		func(x float32, terms int) bool {
			v := Sin(x, terms)
			return v >= -1e-5 && v <= 1+1e-5
		},
		gen.Float32Range(0, math.Pi),
		gen.IntRange(20, 200),
	))

	properties.TestingRun(t)
}
