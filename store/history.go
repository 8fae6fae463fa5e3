// history.go - Request-History in SQLite
// Enthaelt: Job, History (Open, Record, List, Get, Close), Schema-Initialisierung

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren

	"github.com/7blacky7/sarcolor/types/errtypes"
)

// currentSchemaVersion wird bei Schema-Aenderungen erhoeht
const currentSchemaVersion = 1

// Status eines Jobs
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Job ist ein einzelner Colorize-Request
type Job struct {
	ID         string        `json:"id"`
	ImageID    string        `json:"image_id"`
	Category   string        `json:"category,omitempty"`
	Path       string        `json:"path,omitempty"`
	Rows       int           `json:"rows,omitempty"`
	Cols       int           `json:"cols,omitempty"`
	Majority   string        `json:"majority,omitempty"`
	Override   bool          `json:"override"`
	Inferences int           `json:"inferences"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// History speichert Jobs. SQLite serialisiert Schreiber selbst, daher
// gibt es keine zusaetzlichen Locks.
type History struct {
	conn *sql.DB
}

// OpenHistory oeffnet (und erstellt) die Datenbank unter path
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", fmt.Errorf("open database: %w", err))
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", fmt.Errorf("ping database: %w", err))
	}

	h := &History{conn: conn}
	if err := h.init(); err != nil {
		conn.Close()
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", fmt.Errorf("initialize database: %w", err))
	}
	return h, nil
}

func (h *History) init() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	INSERT OR IGNORE INTO meta (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		grid_rows INTEGER NOT NULL DEFAULT 0,
		grid_cols INTEGER NOT NULL DEFAULT 0,
		majority TEXT NOT NULL DEFAULT '',
		override BOOLEAN NOT NULL DEFAULT 0,
		inferences INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`, currentSchemaVersion)

	if _, err := h.conn.Exec(schema); err != nil {
		return err
	}

	var version int
	if err := h.conn.QueryRow("SELECT schema_version FROM meta WHERE id = 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than %d", version, currentSchemaVersion)
	}
	return nil
}

// Close schliesst die Datenbank
func (h *History) Close() error {
	_, _ = h.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return h.conn.Close()
}

// Record speichert einen Job. Fehlende ID und Zeit werden gesetzt.
func (h *History) Record(ctx context.Context, job *Job) error {
	if job.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return errtypes.Wrap(errtypes.KindStorage, "record", err)
		}
		job.ID = id.String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.Status == "" {
		job.Status = StatusOK
	}

	_, err := h.conn.ExecContext(ctx, `
		INSERT INTO jobs (id, image_id, category, path, grid_rows, grid_cols, majority, override, inferences, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.ImageID, job.Category, job.Path, job.Rows, job.Cols, job.Majority, job.Override,
		job.Inferences, job.Status, job.Error, job.Duration.Milliseconds(), job.CreatedAt.UnixMilli())
	if err != nil {
		return errtypes.Wrap(errtypes.KindStorage, "record", fmt.Errorf("insert job: %w", err))
	}
	return nil
}

const selectJobs = `
	SELECT id, image_id, category, path, grid_rows, grid_cols, majority, override, inferences, status, error, duration_ms, created_at
	FROM jobs`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (Job, error) {
	var job Job
	var durationMs, createdAt int64
	err := s.Scan(&job.ID, &job.ImageID, &job.Category, &job.Path, &job.Rows, &job.Cols, &job.Majority,
		&job.Override, &job.Inferences, &job.Status, &job.Error, &durationMs, &createdAt)
	if err != nil {
		return Job{}, err
	}
	job.Duration = time.Duration(durationMs) * time.Millisecond
	job.CreatedAt = time.UnixMilli(createdAt)
	return job, nil
}

// List gibt die neuesten Jobs zuerst zurueck. limit <= 0 bedeutet alle.
func (h *History) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.conn.QueryContext(ctx, selectJobs+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", fmt.Errorf("query jobs: %w", err))
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errtypes.Wrap(errtypes.KindStorage, "history", fmt.Errorf("scan job: %w", err))
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", err)
	}
	return jobs, nil
}

// Get gibt einen einzelnen Job zurueck
func (h *History) Get(ctx context.Context, id string) (*Job, error) {
	job, err := scanJob(h.conn.QueryRowContext(ctx, selectJobs+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notExist("history", id)
	} else if err != nil {
		return nil, errtypes.Wrap(errtypes.KindStorage, "history", err)
	}
	return &job, nil
}
