package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-insights/internal/model"
)

func TestAttendanceBinEdges(t *testing.T) {
	tests := []struct {
		name       string
		attendance []float64
		want       []float64
	}{
		{"low attendance present", []float64{45, 90}, LowAttendanceEdges},
		{"all above half", []float64{62, 99}, HighAttendanceEdges},
		{"zero is ignored", []float64{0, 70}, HighAttendanceEdges},
		{"no attendance", nil, HighAttendanceEdges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []model.StudentRecord
			for _, a := range tt.attendance {
				records = append(records, model.StudentRecord{Attendance: num(a)})
			}
			assert.Equal(t, tt.want, AttendanceBinEdges(tableOf(records...)))
		})
	}
}

func TestCut(t *testing.T) {
	tests := []struct {
		v      float64
		bin    int
		inside bool
	}{
		{50, 0, true},
		{55, 0, true},
		{60, 0, true},
		{60.5, 1, true},
		{100, 7, true},
		{49.9, 0, false},
		{100.1, 0, false},
		{math.NaN(), 0, false},
	}

	for _, tt := range tests {
		bin, ok := Cut(tt.v, HighAttendanceEdges)
		assert.Equal(t, tt.inside, ok, "v=%v", tt.v)
		if ok {
			assert.Equal(t, tt.bin, bin, "v=%v", tt.v)
		}
	}
}

func TestAttendanceImpact(t *testing.T) {
	ai, err := AttendanceImpact(fiveStudents(t))
	require.NoError(t, err)

	assert.Equal(t, LowAttendanceEdges, ai.Edges)
	require.Len(t, ai.Bins, 10)
	assert.Equal(t, 0, ai.Unbinned)

	top := ai.Bins[9]
	assert.Equal(t, "90-100%", top.Label)
	assert.Equal(t, 95.0, top.Mid)
	assert.Equal(t, 1, top.Count)
	assert.InDelta(t, 85, top.MeanFinal.Float64, 1e-9)

	assert.Equal(t, 0, ai.Bins[0].Count)
	assert.False(t, ai.Bins[0].MeanFinal.Valid)

	total := 0
	for _, b := range ai.Bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
}

func TestAttendanceImpactCountsMissingFinals(t *testing.T) {
	table := tableOf(
		model.StudentRecord{Attendance: num(80), Final: num(70)},
		model.StudentRecord{Attendance: num(79)},
		model.StudentRecord{Final: num(50)},
	)
	ai, err := AttendanceImpact(table)
	require.NoError(t, err)

	bin, ok := Cut(80, ai.Edges)
	require.True(t, ok)
	assert.Equal(t, 2, ai.Bins[bin].Count)
	assert.InDelta(t, 70, ai.Bins[bin].MeanFinal.Float64, 1e-9)
	assert.Equal(t, 1, ai.Unbinned)
}
