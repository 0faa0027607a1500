package output

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/threshold"
)

// WriteJSONFile writes the report as JSON to the given path.
func WriteJSONFile(path string, report *metrics.Report) error {
	return writeLocked(path, func(f *os.File) error {
		return WriteJSONReport(f, report)
	})
}

// WriteCSVFile writes the report as CSV to the given path.
func WriteCSVFile(path string, report *metrics.Report) error {
	return writeLocked(path, func(f *os.File) error {
		return WriteCSVReport(f, report)
	})
}

// WriteHTMLFile writes the standalone HTML report to the given path.
func WriteHTMLFile(path string, report *metrics.Report, thresholdResults []threshold.Result, targetURL string) error {
	return writeLocked(path, func(f *os.File) error {
		return GenerateHTMLReport(f, report, thresholdResults, targetURL)
	})
}

// writeLocked truncates and writes path under an advisory file lock so
// concurrent runs exporting to the same path do not interleave output.
func writeLocked(path string, fn func(*os.File) error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
