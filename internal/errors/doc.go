// Package apperrors defines the error classes of sinsum (configuration,
// validation, calculation, timeout, comparison mismatch) and maps each one to
// a process exit code.
//
// Error Wrapping Guidelines:
// Wrapping uses fmt.Errorf with %w. Types that carry a cause implement
// Unwrap() so errors.Is and errors.As see through them.
package apperrors
