// Package results persists benchmark comparison reports in SQLite so
// runs can be compared across invocations.
package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Eugene-Bulog/dl-general-messaround/bench"
	"github.com/Eugene-Bulog/dl-general-messaround/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	config_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS latency_records (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL,
	label   TEXT NOT NULL,
	batches INTEGER NOT NULL,
	mean_us REAL NOT NULL,
	std_us  REAL NOT NULL,
	min_us  REAL NOT NULL,
	p50_us  REAL NOT NULL,
	p95_us  REAL NOT NULL,
	max_us  REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS size_records (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	label        TEXT NOT NULL,
	param_bytes  INTEGER NOT NULL,
	buffer_bytes INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Store manages benchmark reports in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport stores a full comparison report under a fresh run ID.
func (s *Store) SaveReport(report *bench.Report) (string, error) {
	runID := uuid.New().String()

	cfgJSON, err := json.Marshal(report.Config)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, config_json) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), string(cfgJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, rec := range report.Latencies {
		_, err = tx.Exec(
			`INSERT INTO latency_records
				(run_id, label, batches, mean_us, std_us, min_us, p50_us, p95_us, max_us)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.Label, len(rec.Samples),
			utils.DurationUS(rec.Mean), utils.DurationUS(rec.Std),
			utils.DurationUS(rec.Min), utils.DurationUS(rec.P50),
			utils.DurationUS(rec.P95), utils.DurationUS(rec.Max),
		)
		if err != nil {
			return "", fmt.Errorf("insert latency record for %q: %w", rec.Label, err)
		}
	}

	for _, rec := range report.Sizes {
		_, err = tx.Exec(
			`INSERT INTO size_records (run_id, label, param_bytes, buffer_bytes)
				VALUES (?, ?, ?, ?)`,
			runID, rec.Label, rec.ParamBytes, rec.BufferBytes,
		)
		if err != nil {
			return "", fmt.Errorf("insert size record for %q: %w", rec.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// RunCount returns the number of persisted runs.
func (s *Store) RunCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// Labels returns the latency record labels of a run, in insert order.
func (s *Store) Labels(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT label FROM latency_records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// MeanLatencyUS returns the stored mean latency of one variant in a run.
func (s *Store) MeanLatencyUS(runID, label string) (float64, error) {
	var mean float64
	err := s.db.QueryRow(
		`SELECT mean_us FROM latency_records WHERE run_id = ? AND label = ?`,
		runID, label).Scan(&mean)
	if err != nil {
		return 0, fmt.Errorf("query mean latency: %w", err)
	}
	return mean, nil
}
