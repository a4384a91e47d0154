package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cwygoda/imgcatcher/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    page_url   TEXT NOT NULL,
    started_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS downloads (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     INTEGER NOT NULL,
    ordinal    INTEGER NOT NULL,
    url        TEXT NOT NULL,
    filename   TEXT NOT NULL,
    status     TEXT NOT NULL,
    reason     TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_downloads_run ON downloads(run_id);
`

// Store implements domain.HistoryStore using SQLite. One row per task
// outcome, grouped by run.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the history database, initializing the schema
// if needed.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts a run row and returns its id.
func (s *Store) BeginRun(ctx context.Context, pageURL string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (page_url, started_at) VALUES (?, ?)`,
		pageURL, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Record inserts one task outcome.
func (s *Store) Record(ctx context.Context, runID int64, task domain.DownloadTask, status domain.TaskStatus, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (run_id, ordinal, url, filename, status, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, task.Ordinal, task.URL, task.Filename, status, reason, time.Now(),
	)
	return err
}

// Run is one recorded invocation.
type Run struct {
	ID        int64
	PageURL   string
	StartedAt time.Time
}

// Download is one recorded task outcome.
type Download struct {
	ID       int64
	RunID    int64
	Ordinal  int
	URL      string
	Filename string
	Status   domain.TaskStatus
	Reason   string
}

// Runs returns all recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page_url, started_at FROM runs ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.PageURL, &r.StartedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Downloads returns the outcomes of one run in ordinal order.
func (s *Store) Downloads(ctx context.Context, runID int64) ([]Download, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, ordinal, url, filename, status, COALESCE(reason, '')
		 FROM downloads WHERE run_id = ? ORDER BY ordinal ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []Download
	for rows.Next() {
		var d Download
		var status string
		if err := rows.Scan(&d.ID, &d.RunID, &d.Ordinal, &d.URL, &d.Filename, &status, &d.Reason); err != nil {
			return nil, err
		}
		d.Status = domain.TaskStatus(status)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
