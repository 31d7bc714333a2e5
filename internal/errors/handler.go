package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ExitCode maps an error to the process exit status without printing it.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var mismatch MismatchError
	switch {
	case IsConfigError(err):
		return ExitErrorConfig
	case errors.As(err, &mismatch):
		return ExitErrorMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}

// HandleError prints a one-line diagnostic for err to out and returns the
// matching exit code. A nil error prints nothing and returns ExitSuccess.
func HandleError(err error, out io.Writer) int {
	code := ExitCode(err)
	switch code {
	case ExitSuccess:
	case ExitErrorConfig:
		fmt.Fprintf(out, "Configuration error: %v\n", err)
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Timeout. %v\n", err)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "Status: Canceled.\n")
	case ExitErrorMismatch:
		fmt.Fprintf(out, "Status: CRITICAL ERROR! %v\n", err)
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return code
}
