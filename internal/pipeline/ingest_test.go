package pipeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-insights/internal/model"
)

func TestReadStudentsCoercion(t *testing.T) {
	input := "\ufeffStudent_ID,\"Grade\",Total_Score,Attendance (%),Department\n" +
		"S1,A,91.5,abc,CS\n" +
		"S2,NA,,N/A,\n" +
		"S3,B,nan,80\n"

	table, summary, err := ReadStudents(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"Student_ID", "Grade", "Total_Score", "Attendance (%)", "Department"}, table.Columns())

	s1, s2, s3 := table.At(0), table.At(1), table.At(2)
	assert.Equal(t, "S1", s1.StudentID.String)
	assert.Equal(t, 91.5, s1.Total.Float64)
	assert.False(t, s1.Attendance.Valid, "unparseable numeric becomes missing")

	assert.False(t, s2.Grade.Valid, "NA token is missing in text columns too")
	assert.False(t, s2.Total.Valid)
	assert.False(t, s2.Department.Valid, "empty cell is missing")

	assert.False(t, s3.Total.Valid)
	assert.Equal(t, 80.0, s3.Attendance.Float64)
	assert.False(t, s3.Department.Valid, "short row is padded")

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, summary.Missing[model.FieldTotal])
	assert.Equal(t, 2, summary.Missing[model.FieldAttendance])
	assert.Equal(t, 3, summary.Missing[model.FieldFinal], "absent column is missing everywhere")
}

func TestReadStudentsNumericInvariant(t *testing.T) {
	table := fiveStudents(t)
	for _, r := range table.Records() {
		for _, f := range model.NumericFields {
			v := r.Number(f)
			if v.Valid {
				assert.False(t, math.IsNaN(v.Float64), "%s is NaN", f)
			}
		}
	}
}

func TestReadStudentsHeaderOnly(t *testing.T) {
	table, summary, err := ReadStudents(strings.NewReader("Student_ID,Grade\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.HasColumn(model.FieldGrade))
	assert.Equal(t, 2, summary.Columns)
}

func TestReadStudentsEmpty(t *testing.T) {
	_, _, err := ReadStudents(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadStudentsMissingFile(t *testing.T) {
	_, err := LoadStudents(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadStudentsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(fiveStudentsCSV), 0o644))

	ds := NewDataset(path)
	table, err := ds.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, path, ds.Path())
	assert.False(t, ds.LoadedAt().IsZero())
}

func TestDatasetLoadsOnce(t *testing.T) {
	var calls int32
	table := fiveStudents(t)
	ds := NewDatasetWithLoader("counted", func(context.Context) (*model.Table, error) {
		atomic.AddInt32(&calls, 1)
		return table, nil
	})

	var wg sync.WaitGroup
	got := make([]*model.Table, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tb, err := ds.Table(context.Background())
			assert.NoError(t, err)
			got[i] = tb
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, tb := range got {
		assert.Same(t, table, tb)
	}

	ds.Invalidate()
	assert.True(t, ds.LoadedAt().IsZero())
	_, err := ds.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDatasetLoadSurvivesCancelledCaller(t *testing.T) {
	var calls int32
	table := fiveStudents(t)
	started := make(chan struct{})
	release := make(chan struct{})
	ds := NewDatasetWithLoader("slow", func(ctx context.Context) (*model.Table, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return table, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := ds.Table(ctx)
		firstErr <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	second := make(chan *model.Table, 1)
	go func() {
		tb, err := ds.Table(context.Background())
		assert.NoError(t, err)
		second <- tb
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Same(t, table, <-second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, ds.LoadedAt().IsZero())
}

func TestDatasetDoesNotCacheFailures(t *testing.T) {
	var calls int32
	ds := NewDatasetWithLoader("flaky", func(context.Context) (*model.Table, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("disk on fire")
		}
		return tableOf(), nil
	})

	_, err := ds.Table(context.Background())
	require.Error(t, err)

	tb, err := ds.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tb.Len())
}

func TestDatasetDescribe(t *testing.T) {
	ds := fiveStudentsDataset(t)

	info, err := ds.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixture", info.Path)
	assert.Equal(t, 5, info.Rows)
	assert.Equal(t, 1, info.Missing[model.FieldTotal])
	assert.Equal(t, 0, info.Missing[model.FieldFinal])

	byField := make(map[model.Field]model.CategoryInfo)
	for _, c := range info.Categories {
		byField[c.Field] = c
	}
	assert.Equal(t, []string{"A", "B", "C", "F"}, byField[model.FieldGrade].Values)
	assert.True(t, byField[model.FieldGrade].Ordered)
	assert.False(t, byField[model.FieldExtracurricular].Available)
	assert.True(t, byField[model.FieldSleepGroup].Available)
}
