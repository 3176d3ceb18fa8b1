package pipeline

import (
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
	"student-insights/pkg/utils"
)

// Improvement computes the midterm to final change of every student with
// both scores. The percentage is relative to the midterm and rounded to one
// decimal; it is invalid for a zero midterm. The summary averages the
// deltas and percentages and gives the share of students who improved.
func Improvement(t *model.Table) (model.Improvement, error) {
	var out model.Improvement
	var deltas, pcts []float64
	positive := 0
	for _, r := range t.Records() {
		if !r.Midterm.Valid || !r.Final.Valid {
			continue
		}
		delta := r.Final.Float64 - r.Midterm.Float64
		row := model.ImprovementRow{
			StudentID: r.StudentID.String,
			Midterm:   r.Midterm.Float64,
			Final:     r.Final.Float64,
			Delta:     delta,
		}
		if r.Midterm.Float64 != 0 {
			pct := delta / r.Midterm.Float64 * 100
			row.Percent = null.Float64From(utils.Round(pct, 1))
			pcts = append(pcts, pct)
		}
		if delta > 0 {
			positive++
		}
		deltas = append(deltas, delta)
		out.Rows = append(out.Rows, row)
	}

	out.Summary = model.ImprovementSummary{
		N:             len(deltas),
		MeanDelta:     mean(deltas),
		MeanPercent:   mean(pcts),
		PositiveShare: percent(positive, len(deltas)),
	}
	return out, nil
}
