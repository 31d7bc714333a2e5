// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/sinsum/internal/errors"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the SINSUM_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

// envInt returns an apply function that parses an integer into the field
// selected by field.
func envInt(field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errNotInteger
		}
		*field(c) = parsed
		return nil
	}
}

// envBool returns an apply function that parses a boolean into the field
// selected by field.
func envBool(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, ok := parseBoolEnv(v)
		if !ok {
			return errNotBool
		}
		*field(c) = parsed
		return nil
	}
}

// envString returns an apply function that stores the raw value.
func envString(field func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		*field(c) = v
		return nil
	}
}

type envError string

func (e envError) Error() string { return string(e) }

const (
	errNotInteger  envError = "not an integer"
	errNotBool     envError = "not a boolean (want true/false, 1/0, yes/no)"
	errNotDuration envError = "not a duration (e.g. 30s, 5m)"
)

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"STEPS", []string{"steps"}, envInt(func(c *AppConfig) *int { return &c.Steps })},
	{"TERMS", []string{"terms"}, envInt(func(c *AppConfig) *int { return &c.Terms })},
	{"THREADS", []string{"threads"}, envInt(func(c *AppConfig) *int { return &c.Threads })},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errNotDuration
		}
		c.Timeout = parsed
		return nil
	}},

	// String overrides
	{"PARTITION", []string{"partition"}, envString(func(c *AppConfig) *string { return &c.Partition })},
	{"SCHEDULER", []string{"scheduler"}, envString(func(c *AppConfig) *string { return &c.Scheduler })},
	{"COMPARE", []string{"compare"}, envString(func(c *AppConfig) *string { return &c.Compare })},
	{"OUTPUT", []string{"output", "o"}, envString(func(c *AppConfig) *string { return &c.OutputFile })},
	{"METRICS_FILE", []string{"metrics-file"}, envString(func(c *AppConfig) *string { return &c.MetricsFile })},
	{"SERVE", []string{"serve"}, envString(func(c *AppConfig) *string { return &c.ServeAddr })},
	{"LOG_LEVEL", []string{"log-level"}, envString(func(c *AppConfig) *string { return &c.LogLevel })},

	// Boolean overrides
	{"QUIET", []string{"quiet", "q"}, envBool(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"verbose", "v"}, envBool(func(c *AppConfig) *bool { return &c.Verbose })},
	{"JSON", []string{"json"}, envBool(func(c *AppConfig) *bool { return &c.JSON })},
	{"NO_COLOR", []string{"no-color"}, envBool(func(c *AppConfig) *bool { return &c.NoColor })},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func parseBoolEnv(val string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
// A malformed value is a configuration error rather than a silent default.
//
// Supported environment variables (all prefixed with SINSUM_):
//   - STEPS, TERMS, THREADS, TIMEOUT, PARTITION, SCHEDULER, COMPARE,
//     OUTPUT, METRICS_FILE, SERVE, LOG_LEVEL, QUIET, VERBOSE, JSON, NO_COLOR
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if err := o.apply(config, val); err != nil {
			return apperrors.NewConfigError("%s%s=%q: %v", EnvPrefix, o.envKey, val, err)
		}
	}
	return nil
}
