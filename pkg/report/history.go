package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	generated_at INTEGER NOT NULL,
	org          TEXT NOT NULL DEFAULT '',
	processed    INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	ui_libraries INTEGER NOT NULL,
	collected    INTEGER NOT NULL,
	stats        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_generated_at ON runs (generated_at);
`

// Run is one row of the scan history.
type Run struct {
	RunID       string          `json:"runId" yaml:"runId"`
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Org         string          `json:"org,omitempty" yaml:"org,omitempty"`
	Processed   int             `json:"processed" yaml:"processed"`
	Total       int             `json:"total" yaml:"total"`
	UILibraries int             `json:"uiLibraries" yaml:"uiLibraries"`
	Collected   int             `json:"collected" yaml:"collected"`
	Stats       inventory.Stats `json:"stats" yaml:"stats"`
}

// HistoryStore records one row per scan in a SQLite database.
type HistoryStore struct {
	db   *sql.DB
	path string
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSinkFailed, err, "open %s", path)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeSinkFailed, err, "initialize %s", path)
	}
	return &HistoryStore{db: db, path: path}, nil
}

// Path returns the database file.
func (h *HistoryStore) Path() string { return h.path }

// Write implements Sink. A report without a run id gets a fresh one.
// Writing the same run id twice replaces the row.
func (h *HistoryStore) Write(ctx context.Context, r *inventory.Report) error {
	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	stats, err := json.Marshal(r.Stats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "encode stats")
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, generated_at, org, processed, total, ui_libraries, collected, stats)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.GeneratedAt.UnixNano(), r.Org,
		r.Stats.Processed(), r.Stats.Total, r.Stats.UILibraries(), len(r.Data), string(stats),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "record run %s", runID)
	}
	return nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (h *HistoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, generated_at, org, processed, total, ui_libraries, collected, stats
		 FROM runs ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query history")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run   Run
			at    int64
			stats string
		)
		if err := rows.Scan(&run.RunID, &at, &run.Org, &run.Processed, &run.Total, &run.UILibraries, &run.Collected, &stats); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan history row")
		}
		run.GeneratedAt = time.Unix(0, at).UTC()
		if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stats of run %s", run.RunID)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read history")
	}
	return runs, nil
}

// Close closes the database.
func (h *HistoryStore) Close() error { return h.db.Close() }
