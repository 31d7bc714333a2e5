// Package quadrature integrates sin(x) over [0, π] with the trapezoidal rule.
//
// Samples are evaluated with the single-precision Taylor series from package
// series and summed in float64. The sample range is split across a fixed
// number of worker goroutines; each worker owns a private partial sum, and the
// partials are merged once every worker has finished. The result therefore
// does not depend on which worker finishes first, but it may differ in the
// last bits between thread counts or partitions because float64 addition is
// not associative.
package quadrature
