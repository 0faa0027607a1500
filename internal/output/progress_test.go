package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/output"
)

func TestProgressReporterWritesSnapshot(t *testing.T) {
	engine := metrics.NewEngine()
	for i := 0; i < 5; i++ {
		engine.Record(metrics.NewSuccess(metrics.StepInitialize, time.Now(), 30*time.Millisecond))
	}

	var buf bytes.Buffer
	reporter := output.NewProgressReporter(engine, 20*time.Millisecond, &buf)
	reporter.Start()

	time.Sleep(80 * time.Millisecond)
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "Operations: 5") {
		t.Errorf("expected operation count in progress output, got %q", out)
	}
	if !strings.Contains(out, "P50:") {
		t.Errorf("expected P50 in progress output, got %q", out)
	}
}

func TestProgressReporterStopBeforeStart(t *testing.T) {
	engine := metrics.NewEngine()
	reporter := output.NewProgressReporter(engine, 10*time.Millisecond, nil)

	// Stop without Start must not block or panic.
	reporter.Stop()
}

func TestProgressReporterDoubleStart(t *testing.T) {
	engine := metrics.NewEngine()
	var buf bytes.Buffer
	reporter := output.NewProgressReporter(engine, 10*time.Millisecond, &buf)

	reporter.Start()
	reporter.Start()
	reporter.Stop()
	reporter.Stop()
}
