package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-insights/internal/model"
)

func TestReportWholeCatalog(t *testing.T) {
	store := &fakeRunStore{}
	entries, err := Report(context.Background(), NewTracker(store), fiveStudentsDataset(t), nil, model.Params{}, 4)
	require.NoError(t, err)
	require.Len(t, entries, len(Analyses()))

	for i, a := range Analyses() {
		assert.Equal(t, a.Name, entries[i].Analysis)
		if entries[i].Err != nil {
			assert.True(t, IsPrecondition(entries[i].Err), "%s: %v", a.Name, entries[i].Err)
		} else {
			assert.Equal(t, a.Name, entries[i].Result.Analysis)
			assert.NotEmpty(t, entries[i].Result.RunID)
		}
	}
	assert.Len(t, store.runs, len(Analyses()))
}

func TestReportKeepsOrderAndErrors(t *testing.T) {
	names := []string{"grade-distribution", "frequency", "nope", "department-performance"}
	entries, err := Report(context.Background(), NewTracker(nil), fiveStudentsDataset(t), names, model.Params{}, 2)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.NoError(t, entries[0].Err)
	assert.EqualValues(t, 5, entries[0].Result.Rows)
	assert.ErrorIs(t, entries[1].Err, ErrNoSelection)
	assert.ErrorIs(t, entries[2].Err, ErrUnknownAnalysis)
	assert.NoError(t, entries[3].Err)
	assert.Equal(t, "department-performance", entries[3].Result.Analysis)
}

func TestReportLoadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	ds := NewDatasetWithLoader("broken", func(context.Context) (*model.Table, error) { return nil, boom })

	entries, err := Report(context.Background(), NewTracker(nil), ds, nil, model.Params{}, 2)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, entries)
}

func TestReportCancelled(t *testing.T) {
	ds := fiveStudentsDataset(t)
	_, err := ds.Table(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Report(ctx, NewTracker(nil), ds, nil, model.Params{}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
