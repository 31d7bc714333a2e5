// Command sinsum approximates the integral of sin(x) over [0, π] with the
// trapezoidal rule, evaluating sin through a truncated Taylor series on a
// pool of worker goroutines.
package main

import (
	"context"
	"os"

	"github.com/agbru/sinsum/internal/app"
	apperrors "github.com/agbru/sinsum/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.HandleError(err, os.Stderr))
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}
