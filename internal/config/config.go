// Package config defines the application configuration and parses it from
// command-line flags, positional arguments and SINSUM_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/quadrature"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "SINSUM_"

	// DefaultSteps is the default number of samples.
	DefaultSteps = 1_000_000
	// DefaultTerms is the default Taylor series length.
	DefaultTerms = 1000
	// DefaultThreads is the default worker count.
	DefaultThreads = 8
	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "warn"
	// ServeLogLevel replaces DefaultLogLevel in service mode so that
	// requests are logged.
	ServeLogLevel = "info"
)

// positionalFields names the positional arguments in order.
var positionalFields = [...]string{"steps", "terms", "threads"}

// AppConfig aggregates the application's configuration parameters. It is
// filled once at startup and passed by value afterwards.
type AppConfig struct {
	// Steps is the number of trapezoidal samples (at least 2).
	Steps int
	// Terms is the Taylor series length per sample (at least 1).
	Terms int
	// Threads is the fixed worker count (at least 1).
	Threads int
	// Partition is the index distribution: "contiguous" or "striped".
	Partition string
	// Scheduler is the parallel-for implementation: "workers" or "pargo".
	Scheduler string
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
	// Compare is the raw -compare value; CompareThreads is its parsed form.
	Compare        string
	CompareThreads []int
	// Quiet prints only the numeric result.
	Quiet bool
	// Verbose adds error, partial sums and host statistics to the output.
	Verbose bool
	// JSON prints the result as a JSON object.
	JSON bool
	// NoColor disables ANSI colors.
	NoColor bool
	// OutputFile, when set, receives a copy of the result.
	OutputFile string
	// MetricsFile, when set, receives a Prometheus textfile snapshot.
	MetricsFile string
	// ServeAddr, when set, starts the HTTP service instead of a single run.
	ServeAddr string
	// LogLevel is a zerolog level name.
	LogLevel string
}

// IntegratorOptions converts the textual partition and scheduler settings
// into quadrature options for the given thread count.
func (c AppConfig) IntegratorOptions(threads int) (quadrature.Options, error) {
	partition, err := quadrature.ParsePartition(c.Partition)
	if err != nil {
		return quadrature.Options{}, err
	}
	scheduler, err := quadrature.ParseScheduler(c.Scheduler)
	if err != nil {
		return quadrature.Options{}, err
	}
	return quadrature.Options{Threads: threads, Partition: partition, Scheduler: scheduler}, nil
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate() error {
	if err := quadrature.ValidateProblem(c.Steps, c.Terms); err != nil {
		return err
	}
	opts, err := c.IntegratorOptions(c.Threads)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return apperrors.ValidationError{Field: "timeout", Message: fmt.Sprintf("must not be negative, got %s", c.Timeout)}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.ValidationError{Field: "log-level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.ServeAddr != "" && c.Compare != "" {
		return apperrors.NewConfigError("-serve and -compare cannot be combined")
	}
	return nil
}

// ParseConfig parses command-line arguments and returns a validated
// configuration.
//
// Flags and positional arguments may be interleaved. The positional arguments
// are steps, terms and threads, in that order. Priority is: positional >
// flag > SINSUM_* environment variable > default. Giving both a positional
// value and its flag is an error.
//
// Parameters:
//   - programName: The name of the program (used in usage output).
//   - args: The command-line arguments, without the program name.
//   - errorWriter: The writer for usage and flag errors.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for -h/--help, otherwise a ConfigError or
//     ValidationError describing the first problem.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() { usage(fs, programName, errorWriter) }

	config := AppConfig{}
	fs.IntVar(&config.Steps, "steps", DefaultSteps, "Number of samples over [0, π] (at least 2).")
	fs.IntVar(&config.Terms, "terms", DefaultTerms, "Taylor series terms per sample (at least 1).")
	fs.IntVar(&config.Threads, "threads", DefaultThreads, "Number of worker goroutines (at least 1).")
	fs.StringVar(&config.Partition, "partition", "contiguous", "Index distribution: 'contiguous' or 'striped'.")
	fs.StringVar(&config.Scheduler, "scheduler", "workers", "Parallel-for implementation: 'workers' or 'pargo'.")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Maximum run time (e.g. 30s). 0 disables the limit.")
	fs.StringVar(&config.Compare, "compare", "", "Comma-separated thread counts to compare, or 'auto'.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Show error, partial sums and host statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&config.JSON, "json", false, "Print the result as JSON.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.OutputFile, "output", "", "Also write the result to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for -output.")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run.")
	fs.StringVar(&config.ServeAddr, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.Bool("version", false, "Print version information and exit.")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config, err
		}
		return config, apperrors.NewConfigError("%v", err)
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		return config, err
	}
	if config.ServeAddr != "" && !isFlagSet(fs, "log-level") {
		if _, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); !ok {
			config.LogLevel = ServeLogLevel
		}
	}
	if err := applyPositional(&config, fs, positional); err != nil {
		return config, err
	}

	config.CompareThreads, err = ParseThreadList(config.Compare)
	if err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments, and returns the positional arguments in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// A "--" terminator makes everything after it positional.
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// applyPositional assigns steps, terms and threads from positional arguments.
func applyPositional(config *AppConfig, fs *flag.FlagSet, positional []string) error {
	if len(positional) > len(positionalFields) {
		return apperrors.NewConfigError("too many arguments: expected at most %d (steps terms threads), got %d", len(positionalFields), len(positional))
	}
	targets := [...]*int{&config.Steps, &config.Terms, &config.Threads}
	for i, raw := range positional {
		name := positionalFields[i]
		if isFlagSet(fs, name) {
			return apperrors.NewConfigError("%s given both as argument %d and as -%s", name, i+1, name)
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return apperrors.NewConfigError("%s: %q is not an integer", name, raw)
		}
		*targets[i] = v
	}
	return nil
}

// usage prints the command synopsis followed by the flag defaults.
func usage(fs *flag.FlagSet, programName string, out io.Writer) {
	fmt.Fprintf(out, "Usage: %s [flags] [steps [terms [threads]]]\n\n", programName)
	fmt.Fprintf(out, "Approximates the integral of sin(x) over [0, π] with the trapezoidal rule,\n")
	fmt.Fprintf(out, "evaluating each sample with a truncated Taylor series.\n\n")
	fmt.Fprintf(out, "Defaults: steps=%d terms=%d threads=%d\n\nFlags:\n", DefaultSteps, DefaultTerms, DefaultThreads)
	fs.PrintDefaults()
	fmt.Fprintf(out, "\nEnvironment variables (%sSTEPS, %sTERMS, %sTHREADS, ...) apply when the flag is not given.\n", EnvPrefix, EnvPrefix, EnvPrefix)
}
