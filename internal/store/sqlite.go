package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

// SQLiteRecorder keeps run history in a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers can query history while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			label     TEXT,
			total     INTEGER,
			succeeded INTEGER,
			failed    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecasts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        INTEGER NOT NULL REFERENCES runs(id),
			symbol        TEXT NOT NULL,
			current_price REAL,
			target_mean   REAL,
			target_high   REAL,
			target_low    REAL,
			forecast_pct  REAL,
			source        TEXT,
			status        TEXT,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_run ON forecasts(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_symbol ON forecasts(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts a run row and all of its records in one transaction.
func (r *SQLiteRecorder) RecordRun(label string, results []model.StockForecast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	succeeded, failed := 0, 0
	for _, rec := range results {
		if rec.Status == model.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs (timestamp, label, total, succeeded, failed)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), label, len(results), succeeded, failed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO forecasts
		(run_id, symbol, current_price, target_mean, target_high, target_low,
		 forecast_pct, source, status, error_message)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range results {
		if _, err := stmt.Exec(runID, rec.Symbol,
			rec.CurrentPrice, rec.TargetMean, rec.TargetHigh, rec.TargetLow,
			rec.ForecastPercentage, string(rec.Source), string(rec.Status), rec.ErrorMessage,
		); err != nil {
			return fmt.Errorf("insert forecast %s: %w", rec.Symbol, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
