package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version is the release identifier, set at build time with
// -ldflags "-X github.com/agbru/sinsum/internal/app.Version=v1.2.3".
var Version = "dev"

// HasVersionFlag reports whether args request version output. It is checked
// before flag parsing so that -version works alongside otherwise invalid
// arguments.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-version", "--version", "-V":
			return true
		case "--":
			return false
		}
	}
	return false
}

// PrintVersion writes "sinsum <version> (<go version> <os>/<arch>)".
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "sinsum %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
