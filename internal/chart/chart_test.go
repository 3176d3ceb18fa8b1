package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

type notDrawable struct{}

func (notDrawable) Tabulate() ([]string, [][]string) { return nil, nil }

func TestRenderProducesPNG(t *testing.T) {
	results := map[string]model.Tabular{
		"frequency": model.Frequencies{
			Field: model.FieldGrade,
			Items: []model.Frequency{{Value: "A", Count: 2}, {Value: "B", Count: 1}},
		},
		"grouped-mean": model.GroupMeans{
			GroupField: model.FieldDepartment,
			ValueField: model.FieldTotal,
			Items:      []model.GroupMean{{Group: "CS", Mean: null.Float64From(85)}, {Group: "Art"}},
		},
		"scatter": model.Scatter{
			XField: model.FieldStudyHours,
			YField: model.FieldTotal,
			Grades: []string{"A", "B"},
			Points: []model.ScatterPoint{{Grade: "A", X: 10, Y: 90}, {Grade: "B", X: 5, Y: 70}},
			Trend:  &model.Trend{Line: [2]model.Point{{X: 5, Y: 70}, {X: 10, Y: 90}}},
		},
		"components": model.ScoreComponents{Components: []model.ComponentSummary{
			{Component: model.FieldMidterm, Values: []float64{50, 60, 70, 80, 90}},
			{Component: model.FieldFinal},
		}},
		"correlation": model.CorrelationMatrix{
			Fields: []model.Field{model.FieldMidterm, model.FieldFinal},
			Values: [][]null.Float64{
				{null.Float64From(1), null.Float64From(0.4)},
				{null.Float64From(0.4), {}},
			},
		},
		"crosstab": model.CrossTab{
			RowField:  model.FieldStress,
			ColField:  model.FieldGrade,
			Rows:      []string{"3", "7"},
			Cols:      []string{"A", "B", "C"},
			Counts:    [][]int{{1, 2, 0}, {0, 1, 4}},
			RowTotals: []int{3, 5},
		},
		"gender-grades": model.GroupFrequencies{
			GroupField: model.FieldGender,
			ValueField: model.FieldGrade,
			Groups: []model.GroupFrequency{
				{Group: "Male", Items: []model.Frequency{{Value: "A", Percent: null.Float64From(100)}}},
				{Group: "Female", Items: []model.Frequency{{Value: "B", Percent: null.Float64From(100)}}},
			},
		},
		"improvement": model.Improvement{Rows: []model.ImprovementRow{{Delta: 5}, {Delta: 5}}},
		"trend": model.Trend{
			XField: model.FieldStudyHours,
			YField: model.FieldTotal,
			N:      4,
			Slope:  2.7,
			R:      null.Float64From(0.97),
			Line:   [2]model.Point{{X: 4, Y: 45}, {X: 20, Y: 88}},
		},
	}

	for name, data := range results {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, model.Result{Title: name, Data: data}))

			_, err := png.Decode(&buf)
			assert.NoError(t, err)
		})
	}
}

func TestRenderNoChart(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, model.Result{Data: notDrawable{}})
	assert.ErrorIs(t, err, ErrNoChart)

	err = Render(&buf, model.Result{Data: model.Scatter{}})
	assert.ErrorIs(t, err, ErrNoChart)

	err = Render(&buf, model.Result{Data: model.Frequencies{Field: model.FieldGrade}})
	assert.ErrorIs(t, err, ErrNoChart)
}
