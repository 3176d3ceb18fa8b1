package pipeline

import (
	"fmt"
	"math"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"student-insights/internal/model"
)

// LinearTrend fits y = intercept + slope*x by ordinary least squares over
// the rows where both values are present. The fitted line spans the
// observed x range.
func LinearTrend(t *model.Table, xField, yField model.Field) (model.Trend, error) {
	if err := requireNumeric(t, xField); err != nil {
		return model.Trend{}, err
	}
	if err := requireNumeric(t, yField); err != nil {
		return model.Trend{}, err
	}
	xs, ys := pairedValues(t.Records(), xField, yField)
	return fitTrend(xField, yField, xs, ys)
}

func fitTrend(xField, yField model.Field, xs, ys []float64) (model.Trend, error) {
	if len(xs) < 2 {
		return model.Trend{}, fmt.Errorf("%w: %d complete pairs of %s and %s", ErrInsufficientData, len(xs), xField, yField)
	}
	if constant(xs) {
		return model.Trend{}, fmt.Errorf("%w: %s has no variance", ErrInsufficientData, xField)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	lo, hi := floats.Min(xs), floats.Max(xs)

	tr := model.Trend{
		XField:    xField,
		YField:    yField,
		N:         len(xs),
		Slope:     slope,
		Intercept: intercept,
		Line: [2]model.Point{
			{X: lo, Y: intercept + slope*lo},
			{X: hi, Y: intercept + slope*hi},
		},
	}
	if r := coefficient(xs, ys, model.Pearson); !math.IsNaN(r) {
		tr.R = null.Float64From(r)
	}
	return tr, nil
}

// StudyHoursScatter returns the study hours vs total score points of the
// selected grades, sized by final score, with a fitted trend when one
// exists. A nil selection keeps every grade; an empty one is refused.
func StudyHoursScatter(t *model.Table, grades []string) (model.Scatter, error) {
	if grades != nil && len(grades) == 0 {
		return model.Scatter{}, fmt.Errorf("%w: select at least one grade", ErrNoSelection)
	}
	if grades == nil {
		grades = t.Distinct(model.FieldGrade)
	}
	selected := make(map[string]bool, len(grades))
	for _, g := range grades {
		selected[g] = true
	}

	out := model.Scatter{
		XField:    model.FieldStudyHours,
		YField:    model.FieldTotal,
		SizeField: model.FieldFinal,
		Grades:    model.OrderValues(model.FieldGrade, grades),
	}
	var xs, ys []float64
	for _, r := range t.Records() {
		if !r.Grade.Valid || !selected[r.Grade.String] {
			continue
		}
		if !r.StudyHours.Valid || !r.Total.Valid {
			continue
		}
		out.Points = append(out.Points, model.ScatterPoint{
			StudentID: r.StudentID.String,
			Grade:     r.Grade.String,
			X:         r.StudyHours.Float64,
			Y:         r.Total.Float64,
			Size:      r.Final,
		})
		xs = append(xs, r.StudyHours.Float64)
		ys = append(ys, r.Total.Float64)
	}

	if tr, err := fitTrend(out.XField, out.YField, xs, ys); err == nil {
		out.Trend = &tr
	}
	return out, nil
}
