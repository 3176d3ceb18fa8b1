package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

func openTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "runs.db")))
	t.Cleanup(func() { _ = Close() })
}

func TestSaveAndGetRun(t *testing.T) {
	openTestDB(t)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run := model.Run{
		ID:       "run-1",
		Analysis: "frequency",
		Params: model.Params{
			Field:  model.FieldGrade,
			Filter: model.Filter{Departments: []string{"CS"}, MinAttendance: null.Float64From(60)},
		},
		Status:    model.RunFailed,
		Message:   "boom",
		RowCount:  12,
		Duration:  1500 * time.Millisecond,
		CreatedAt: created,
	}
	require.NoError(t, SaveRun(run))
	require.NoError(t, SaveRunError("run-1", errors.New("boom")))

	got, err := GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "frequency", got.Analysis)
	assert.Equal(t, model.RunFailed, got.Status)
	assert.Equal(t, "boom", got.Message)
	assert.Equal(t, 12, got.RowCount)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, model.FieldGrade, got.Params.Field)
	assert.Equal(t, []string{"CS"}, got.Params.Filter.Departments)
	assert.Equal(t, 60.0, got.Params.Filter.MinAttendance.Float64)

	require.Len(t, got.Errors, 1)
	assert.Equal(t, "boom", got.Errors[0].Message)
	assert.Equal(t, "run-1", got.Errors[0].RunID)
}

func TestGetRunNotFound(t *testing.T) {
	openTestDB(t)

	_, err := GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	openTestDB(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, SaveRun(model.Run{
			ID:        id,
			Analysis:  "grade-distribution",
			Status:    model.RunOK,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "a", runs[2].ID)

	runs, err = ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestDisabledHistory(t *testing.T) {
	require.NoError(t, InitDB(""))
	assert.False(t, Enabled())

	var rec Recorder
	assert.NoError(t, rec.SaveRun(model.Run{ID: "x"}))
	assert.NoError(t, rec.SaveRunError("x", errors.New("ignored")))

	runs, err := ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = GetRun("x")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
