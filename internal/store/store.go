package store

import "github.com/yo1233/stock-forecast-analyzer/internal/model"

// Snapshotter persists an accumulated result set durably. The batch runner
// calls it at checkpoint boundaries and once on the way out, so a crash or
// interrupt loses at most one checkpoint interval of work.
type Snapshotter interface {
	// Snapshot writes the full result list and returns where it landed.
	// Each call produces a new snapshot; earlier ones are never touched.
	Snapshot(results []model.StockForecast) (string, error)
}

// Recorder keeps a history of completed runs for later inspection.
type Recorder interface {
	RecordRun(label string, results []model.StockForecast) error
	Close() error
}
