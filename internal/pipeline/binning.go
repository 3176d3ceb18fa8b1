package pipeline

import (
	"fmt"
	"math"

	"student-insights/internal/model"
)

var (
	// LowAttendanceEdges is used when some student attended under half the
	// classes.
	LowAttendanceEdges = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	// HighAttendanceEdges concentrates on the 50-100% range.
	HighAttendanceEdges = []float64{50, 60, 70, 75, 80, 85, 90, 95, 100}
)

// AttendanceBinEdges picks the bin layout from the data: if the lowest
// non-zero attendance is under 50 the fine low-range layout is used,
// otherwise (including when there is no attendance at all) the high-range
// one.
func AttendanceBinEdges(t *model.Table) []float64 {
	low := math.Inf(1)
	for _, v := range t.Numbers(model.FieldAttendance) {
		if v != 0 && v < low {
			low = v
		}
	}
	if low < 50 {
		return append([]float64(nil), LowAttendanceEdges...)
	}
	return append([]float64(nil), HighAttendanceEdges...)
}

// Cut returns the index of the bin holding v. The first bin is closed on
// both ends, every later bin is (left, right]. Values outside every bin
// report false.
func Cut(v float64, edges []float64) (int, bool) {
	if len(edges) < 2 || math.IsNaN(v) {
		return 0, false
	}
	if v < edges[0] || v > edges[len(edges)-1] {
		return 0, false
	}
	if v <= edges[1] {
		return 0, true
	}
	for i := 1; i < len(edges)-1; i++ {
		if v > edges[i] && v <= edges[i+1] {
			return i, true
		}
	}
	return 0, false
}

// BinLabel renders an interval as "left-right%".
func BinLabel(left, right float64) string {
	return fmt.Sprintf("%d-%d%%", int(left), int(right))
}

// AttendanceImpact bins attendance and reports, for every bin, the number
// of students and their mean final score. Empty bins keep their slot with
// an invalid mean.
func AttendanceImpact(t *model.Table) (model.AttendanceImpact, error) {
	edges := AttendanceBinEdges(t)
	nbins := len(edges) - 1

	counts := make([]int, nbins)
	finals := make([][]float64, nbins)
	unbinned := 0
	for _, r := range t.Records() {
		if !r.Attendance.Valid {
			unbinned++
			continue
		}
		i, ok := Cut(r.Attendance.Float64, edges)
		if !ok {
			unbinned++
			continue
		}
		counts[i]++
		if r.Final.Valid {
			finals[i] = append(finals[i], r.Final.Float64)
		}
	}

	out := model.AttendanceImpact{Edges: edges, Unbinned: unbinned}
	for i := 0; i < nbins; i++ {
		left, right := edges[i], edges[i+1]
		out.Bins = append(out.Bins, model.Bin{
			Label:     BinLabel(left, right),
			Left:      left,
			Right:     right,
			Mid:       (left + right) / 2,
			Count:     counts[i],
			MeanFinal: mean(finals[i]),
		})
	}
	return out, nil
}
