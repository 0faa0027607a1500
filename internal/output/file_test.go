package output_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/output"
)

func TestWriteJSONFile(t *testing.T) {
	report := sampleReport()
	path := filepath.Join(t.TempDir(), "report.json")

	if err := output.WriteJSONFile(path, report); err != nil {
		t.Fatalf("WriteJSONFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded metrics.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if decoded.RunID != report.RunID {
		t.Errorf("run id: got %q, want %q", decoded.RunID, report.RunID)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	if err := output.WriteCSVFile(path, sampleReport()); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty CSV file")
	}
}

func TestWriteHTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	if err := output.WriteHTMLFile(path, sampleReport(), nil, "http://localhost/rpc"); err != nil {
		t.Fatalf("WriteHTMLFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := output.WriteJSONFile(path, sampleReport()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := output.WriteJSONFile(path, failureOnlyReport()); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) == string(second) {
		t.Error("expected the second write to replace the file contents")
	}
}
