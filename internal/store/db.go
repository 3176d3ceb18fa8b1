package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"student-insights/internal/model"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

var db *sql.DB

// InitDB opens the run history database and creates its tables, closing
// any database opened before. An empty path leaves history disabled.
func InitDB(dbPath string) error {
	if err := Close(); err != nil {
		return err
	}
	if dbPath == "" {
		return nil
	}
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	runTable := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		params TEXT,
		status TEXT NOT NULL,
		message TEXT,
		row_count INTEGER,
		duration_ms INTEGER,
		created_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, errorTable} {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return err
		}
	}

	db = conn
	return nil
}

// Enabled reports whether a history database is open.
func Enabled() bool {
	return db != nil
}

// Close closes the database if one is open.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun stores a finished analysis run.
func SaveRun(run model.Run) error {
	if db == nil {
		return nil
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO analysis_runs (id, analysis, params, status, message, row_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Analysis, string(params), string(run.Status), run.Message,
		run.RowCount, run.Duration.Milliseconds(), run.CreatedAt.UTC())
	return err
}

// SaveRunError records an unexpected failure for a run.
func SaveRunError(runID string, err error) error {
	if db == nil || err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns all of them.
func ListRuns(limit int) ([]model.Run, error) {
	if db == nil {
		return []model.Run{}, nil
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT id, analysis, params, status, message, row_count, duration_ms, created_at
		FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run together with its recorded errors.
func GetRun(id string) (model.Run, error) {
	if db == nil {
		return model.Run{}, ErrRunNotFound
	}
	row := db.QueryRow(`SELECT id, analysis, params, status, message, row_count, duration_ms, created_at
		FROM analysis_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrRunNotFound
	}
	if err != nil {
		return model.Run{}, err
	}

	rows, err := db.Query(`SELECT id, run_id, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return model.Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e model.RunError
		if err := rows.Scan(&e.ID, &e.RunID, &e.Message, &e.CreatedAt); err != nil {
			return model.Run{}, err
		}
		run.Errors = append(run.Errors, e)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (model.Run, error) {
	var (
		run        model.Run
		params     sql.NullString
		status     string
		message    sql.NullString
		durationMS int64
	)
	if err := s.Scan(&run.ID, &run.Analysis, &params, &status, &message, &run.RowCount, &durationMS, &run.CreatedAt); err != nil {
		return model.Run{}, err
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &run.Params); err != nil {
			return model.Run{}, err
		}
	}
	run.Status = model.RunStatus(status)
	run.Message = message.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

// Recorder hands tracked runs to the package database.
type Recorder struct{}

func (Recorder) SaveRun(run model.Run) error { return SaveRun(run) }

func (Recorder) SaveRunError(runID string, err error) error { return SaveRunError(runID, err) }
