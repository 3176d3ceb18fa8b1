package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"student-insights/internal/infrastructure"
	"student-insights/internal/model"
)

// RunStore persists run history.
type RunStore interface {
	SaveRun(run model.Run) error
	SaveRunError(runID string, err error) error
}

// Tracker runs analyses and records each one: a uuid, the time it took,
// and whether it succeeded, was declined on a precondition or failed.
// A tracker without a store only logs.
type Tracker struct {
	store RunStore
	now   func() time.Time
}

// NewTracker returns a tracker writing to store, which may be nil.
func NewTracker(store RunStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Run computes the named analysis like Run and records the outcome. The
// returned result carries the run id.
func (tr *Tracker) Run(ctx context.Context, ds *Dataset, name string, params model.Params) (model.Result, error) {
	run := model.Run{
		ID:        uuid.NewString(),
		Analysis:  name,
		Params:    params,
		Status:    model.RunRunning,
		CreatedAt: tr.now().UTC(),
	}
	logger := infrastructure.LoggerFromContext(ctx).With("run_id", run.ID, "analysis", name)
	start := time.Now()

	result, err := Run(ctx, ds, name, params)
	run.Duration = time.Since(start)

	switch {
	case err == nil:
		run.Status = model.RunOK
		run.RowCount = result.Rows
		result.RunID = run.ID
		logger.InfoContext(ctx, "analysis completed", "rows", result.Rows, "duration_ms", run.Duration.Milliseconds())
	case IsPrecondition(err):
		run.Status = model.RunDeclined
		run.Message = err.Error()
		logger.InfoContext(ctx, "analysis declined", "reason", err.Error())
	case errors.Is(err, ErrUnknownAnalysis):
		// Not a run: nothing to record.
		logger.WarnContext(ctx, "unknown analysis requested")
		return result, err
	default:
		run.Status = model.RunFailed
		run.Message = err.Error()
		logger.ErrorContext(ctx, "analysis failed", "error", err)
	}

	infrastructure.ObserveRun(name, string(run.Status), run.Duration)
	tr.record(ctx, run, err)
	return result, err
}

func (tr *Tracker) record(ctx context.Context, run model.Run, runErr error) {
	if tr.store == nil {
		return
	}
	logger := infrastructure.LoggerFromContext(ctx)
	if err := tr.store.SaveRun(run); err != nil {
		logger.ErrorContext(ctx, "failed to save run", "run_id", run.ID, "error", err)
		return
	}
	if run.Status == model.RunFailed {
		if err := tr.store.SaveRunError(run.ID, runErr); err != nil {
			logger.ErrorContext(ctx, "failed to save run error", "run_id", run.ID, "error", err)
		}
	}
}
