package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

// JSONStore writes timestamped JSON snapshots into a directory. Files are
// written to a temp name and renamed into place, so a crash mid-write
// cannot corrupt an earlier snapshot.
type JSONStore struct {
	Dir    string
	Prefix string

	mu  sync.Mutex
	seq int
}

// NewJSONStore creates a snapshot store rooted at dir. The directory is
// created on first snapshot.
func NewJSONStore(dir, prefix string) *JSONStore {
	if prefix == "" {
		prefix = "stock_analysis"
	}
	return &JSONStore{Dir: dir, Prefix: prefix}
}

// Snapshot writes results as indented JSON under a unique timestamped name.
func (s *JSONStore) Snapshot(results []model.StockForecast) (string, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// The sequence suffix keeps names unique when two checkpoints land
	// within the same second.
	name := fmt.Sprintf("%s_%s_%03d.json", s.Prefix, time.Now().Format("20060102_150405"), seq)
	path := filepath.Join(s.Dir, name)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+s.Prefix+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename snapshot: %w", err)
	}
	return path, nil
}

// Load reads a snapshot file back into memory.
func Load(path string) ([]model.StockForecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results []model.StockForecast
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return results, nil
}
