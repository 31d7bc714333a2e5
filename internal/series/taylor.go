// Package series evaluates sin(x) from its truncated Taylor expansion in
// single precision.
package series

import "math"

// DefaultTerms is the series length used when none is configured.
const DefaultTerms = 1000

// Sin approximates sin(x) with the first terms of
//
//	x - x³/3! + x⁵/5! - ...
//
// Each term is derived from the previous one, so the cost is linear in terms.
// All arithmetic is float32. terms must be at least 1; smaller values return x.
func Sin(x float32, terms int) float32 {
	term := x
	sum := term
	x2 := x * x
	for n := 1; n < terms; n++ {
		term *= -x2 / float32(2*n*(2*n+1))
		sum += term
	}
	return sum
}

// AbsError returns |Sin(x, terms) - sin(x)| computed in float64, with sin(x)
// taken from the math package at the float32 value of x.
func AbsError(x float32, terms int) float64 {
	return math.Abs(float64(Sin(x, terms)) - math.Sin(float64(x)))
}
