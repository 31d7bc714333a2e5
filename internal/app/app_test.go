package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/logging"
)

func newTestApp(t *testing.T, args ...string) *Application {
	t.Helper()
	var stderr bytes.Buffer
	a, err := New(append([]string{"sinsum"}, args...), &stderr, WithLogger(logging.NewLogger(&bytes.Buffer{}, "test")))
	if err != nil {
		t.Fatalf("New(%v) error: %v (stderr: %s)", args, err, stderr.String())
	}
	return a
}

func TestNew_InvalidArguments(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"-steps", "1"},
		{"-terms", "0"},
		{"-threads", "abc"},
		{"-partition", "diagonal"},
	} {
		_, err := New(append([]string{"sinsum"}, args...), &bytes.Buffer{})
		if err == nil {
			t.Errorf("New(%v) expected error", args)
			continue
		}
		if code := apperrors.HandleError(err, &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
			t.Errorf("New(%v) exit code = %d, want %d", args, code, apperrors.ExitErrorConfig)
		}
	}
}

func TestNew_Help(t *testing.T) {
	t.Parallel()
	_, err := New([]string{"sinsum", "-h"}, &bytes.Buffer{})
	if !IsHelpError(err) {
		t.Fatalf("expected help error, got %v", err)
	}
}

func TestRun_Quiet(t *testing.T) {
	a := newTestApp(t, "-q", "-steps", "10000", "-terms", "30", "-threads", "4")

	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %v)", code, a.ErrWriter)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		t.Fatalf("quiet output %q is not a number: %v", out.String(), err)
	}
	if v < 1.999 || v > 2.001 {
		t.Errorf("integral = %v, want ≈ 2", v)
	}
}

func TestRun_JSON(t *testing.T) {
	a := newTestApp(t, "-json", "-steps", "2000", "-terms", "20", "-threads", "3", "-partition", "striped")

	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want 0", code)
	}
	var view struct {
		Value     float64 `json:"value"`
		Steps     int     `json:"steps"`
		Threads   int     `json:"threads"`
		Partition string  `json:"partition"`
	}
	if err := json.Unmarshal(out.Bytes(), &view); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if view.Steps != 2000 || view.Threads != 3 || view.Partition != "striped" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Value < 1.99 || view.Value > 2.01 {
		t.Errorf("value = %v, want ≈ 2", view.Value)
	}
}

func TestRun_Compare(t *testing.T) {
	a := newTestApp(t, "-compare", "1,2,4", "-steps", "5000", "-terms", "20", "-no-color")

	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want 0\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "Global Status: Success") {
		t.Errorf("missing success status in:\n%s", out.String())
	}
}

func TestRun_CanceledContext(t *testing.T) {
	a := newTestApp(t, "-q", "-steps", "1000000", "-terms", "1000")
	var stderr bytes.Buffer
	a.ErrWriter = &stderr

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := a.Run(ctx, &bytes.Buffer{}); code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRun_Timeout(t *testing.T) {
	a := newTestApp(t, "-q", "-steps", "100000000", "-terms", "1000", "-timeout", "1ms")
	var stderr bytes.Buffer
	a.ErrWriter = &stderr

	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorTimeout {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(stderr.String(), "timed out after 1ms") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_OutputAndMetricsFiles(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "result.txt")
	promFile := filepath.Join(dir, "sinsum.prom")
	a := newTestApp(t, "-q", "-steps", "1000", "-terms", "20", "-o", outFile, "-metrics-file", promFile)

	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want 0", code)
	}

	result, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if !strings.Contains(string(result), "# Steps: 1000") {
		t.Errorf("output file missing header:\n%s", result)
	}

	prom, err := os.ReadFile(promFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(prom), `sinsum_integrations_total{status="success"} 1`) {
		t.Errorf("metrics file missing success counter:\n%s", prom)
	}
}

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"-version"}, true},
		{[]string{"-steps", "10", "--version"}, true},
		{[]string{"-V"}, true},
		{[]string{"--", "-version"}, false},
		{[]string{"-v"}, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "sinsum "+Version+" (go") {
		t.Errorf("PrintVersion() = %q", buf.String())
	}
}

func TestRun_ServeStopsWithContext(t *testing.T) {
	a := newTestApp(t, "-serve", "127.0.0.1:0")
	if a.Config.LogLevel != "info" {
		t.Errorf("serve log level = %q, want info", a.Config.LogLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := a.Run(ctx, &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestRun_ServeBadAddress(t *testing.T) {
	a := newTestApp(t, "-serve", "256.0.0.1:99999")
	var stderr bytes.Buffer
	a.ErrWriter = &stderr

	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(stderr.String(), "listen on") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
