// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatResultLine], [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/sinsum/internal/format"
	"github.com/agbru/sinsum/internal/orchestration"
	"github.com/agbru/sinsum/internal/quadrature"
	"github.com/agbru/sinsum/internal/ui"
)

// ValueDecimals is the number of decimals printed for the integral.
const ValueDecimals = 10

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the value.
	Quiet bool
	// Verbose adds the detail report.
	Verbose bool
	// JSON prints the result as a JSON object.
	JSON bool
}

// FormatValue renders the integral with ValueDecimals fixed decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', ValueDecimals, 64)
}

// FormatResultLine returns the standard single-line report, without color:
//
//	Integral ≈ 2.0000000000 (steps 1000000, terms 1000, threads 8) in 123.456 ms
func FormatResultLine(res quadrature.Result) string {
	return fmt.Sprintf("Integral ≈ %s (steps %d, terms %d, threads %d) in %s ms",
		FormatValue(res.Value), res.Steps, res.Terms, res.Threads, format.FormatMillis(res.Elapsed))
}

// FormatQuietResult formats a result for quiet mode output: the value alone,
// suitable for scripting.
func FormatQuietResult(res quadrature.Result) string {
	return FormatValue(res.Value)
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, res quadrature.Result) {
	fmt.Fprintln(out, FormatQuietResult(res))
}

// DisplayJSONResult writes res as a single JSON object followed by a newline.
func DisplayJSONResult(out io.Writer, res quadrature.Result) error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(orchestration.NewResultView(res, false)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// DisplayResult prints the result line and, when verbose is set, the detail
// report.
func DisplayResult(res quadrature.Result, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "Integral ≈ %s%s%s (steps %d, terms %d, threads %d) in %s%s ms%s\n",
		ui.ColorGreen(), FormatValue(res.Value), ui.ColorReset(),
		res.Steps, res.Terms, res.Threads,
		ui.ColorYellow(), format.FormatMillis(res.Elapsed), ui.ColorReset())
	if verbose {
		DisplayDetails(res, out)
	}
}

// WriteResultToFile writes a result to config.OutputFile, creating parent
// directories as needed. It does nothing when no file is configured.
func WriteResultToFile(res quadrature.Result, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Integral of sin(x) over [0, pi], trapezoidal rule\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Steps: %d\n", res.Steps)
	fmt.Fprintf(file, "# Terms: %d\n", res.Terms)
	fmt.Fprintf(file, "# Threads: %d\n", res.Threads)
	fmt.Fprintf(file, "# Partition: %s\n", res.Partition)
	fmt.Fprintf(file, "# Scheduler: %s\n", res.Scheduler)
	fmt.Fprintf(file, "# Duration: %s ms\n", format.FormatMillis(res.Elapsed))
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "%s\n", FormatValue(res.Value))

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DisplayResultWithConfig displays a result with the given output
// configuration and saves it to a file when requested.
func DisplayResultWithConfig(out io.Writer, res quadrature.Result, config OutputConfig) error {
	switch {
	case config.JSON:
		if err := DisplayJSONResult(out, res); err != nil {
			return err
		}
	case config.Quiet:
		DisplayQuietResult(out, res)
	default:
		DisplayResult(res, config.Verbose, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(res, config); err != nil {
			return err
		}
		if !config.Quiet && !config.JSON {
			fmt.Fprintf(out, "%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
