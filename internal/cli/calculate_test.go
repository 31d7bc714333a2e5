package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/sinsum/internal/config"
)

// TestPrintExecutionConfig tests the PrintExecutionConfig function.
func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := config.AppConfig{Steps: 1_000_000, Terms: 1000, Threads: 8, Timeout: time.Minute}

	PrintExecutionConfig(cfg, &buf)

	output := buf.String()
	for _, s := range []string{"1,000,000 samples", "1000 series terms", "timeout 1m0s", "logical processors"} {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q, got:\n%s", s, output)
		}
	}
}

// TestPrintExecutionMode tests the PrintExecutionMode function.
func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()

	t.Run("Single run mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		PrintExecutionMode(config.AppConfig{Threads: 8}, &buf)
		if !strings.Contains(buf.String(), "Single run with 8 workers (contiguous partition, workers scheduler)") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("Comparison mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := config.AppConfig{CompareThreads: []int{1, 2, 4}, Partition: "striped"}
		PrintExecutionMode(cfg, &buf)
		if !strings.Contains(buf.String(), "thread counts 1, 2, 4") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "striped partition") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}
