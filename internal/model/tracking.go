package model

import "time"

// RunStatus is the outcome of one analysis run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunOK       RunStatus = "ok"
	RunDeclined RunStatus = "declined"
	RunFailed   RunStatus = "failed"
)

// Run is the history record of one analysis request.
type Run struct {
	ID        string        `json:"id"`
	Analysis  string        `json:"analysis"`
	Params    Params        `json:"params"`
	Status    RunStatus     `json:"status"`
	Message   string        `json:"message,omitempty"`
	RowCount  int           `json:"row_count"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
	Errors    []RunError    `json:"errors,omitempty"`
}

// RunError is an unexpected failure recorded against a run.
type RunError struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DatasetInfo describes the loaded table for the dataset endpoint.
type DatasetInfo struct {
	Path       string         `json:"path"`
	Rows       int            `json:"rows"`
	Columns    []string       `json:"columns"`
	Missing    map[Field]int  `json:"missing"`
	Categories []CategoryInfo `json:"categories"`
	LoadedAt   time.Time      `json:"loaded_at"`
}
