package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

func sampleResults() []model.StockForecast {
	return []model.StockForecast{
		{
			Symbol:             "AAPL",
			CurrentPrice:       null.FloatFrom(150),
			TargetMean:         null.FloatFrom(180),
			TargetHigh:         null.FloatFrom(210),
			TargetLow:          null.FloatFrom(140),
			ForecastPercentage: null.FloatFrom(20),
			Source:             model.SourceYahoo,
			Status:             model.StatusSuccess,
		},
		model.ErrorRecord("ZZZZ", "no provider returned price or target data"),
	}
}

func TestJSONStore_SnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir, "test_run")

	path, err := s.Snapshot(sampleResults())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "test_run_") {
		t.Errorf("unexpected snapshot name: %s", path)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
	if loaded[0].TargetMean.Float64 != 180 {
		t.Errorf("target mean lost in round trip: %+v", loaded[0])
	}
	if loaded[1].Status != model.StatusError || loaded[1].CurrentPrice.Valid {
		t.Errorf("error record mangled in round trip: %+v", loaded[1])
	}
}

func TestJSONStore_UniqueNamesPerSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir, "test_run")

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		path, err := s.Snapshot(sampleResults())
		if err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("snapshot name reused: %s", path)
		}
		seen[path] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 snapshot files, found %d", len(entries))
	}
}

func TestJSONStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir, "test_run")
	if _, err := s.Snapshot(sampleResults()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(path, sampleResults()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "AAPL,150.00,140.00,180.00,210.00,20.00") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	// Error record: empty numeric cells, message in the last column.
	if !strings.HasPrefix(lines[2], "ZZZZ,,,,,") {
		t.Errorf("unexpected error row: %s", lines[2])
	}
}
