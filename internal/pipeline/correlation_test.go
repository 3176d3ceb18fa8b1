package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-insights/internal/model"
)

func monotonicTable() *model.Table {
	var records []model.StudentRecord
	for i := 1; i <= 4; i++ {
		x := float64(i)
		records = append(records, model.StudentRecord{
			Midterm: num(x),
			Final:   num(2*x + 1),
			Total:   num(x * x),
			Stress:  num(5),
		})
	}
	return tableOf(records...)
}

func TestCorrelateRefusesSingleField(t *testing.T) {
	_, err := Correlate(monotonicTable(), []model.Field{model.FieldMidterm}, model.Pearson)
	assert.ErrorIs(t, err, ErrTooFewFields)
	assert.True(t, IsPrecondition(err))
}

func TestCorrelatePearsonAndSpearman(t *testing.T) {
	fields := []model.Field{model.FieldMidterm, model.FieldFinal, model.FieldTotal}

	pearson, err := Correlate(monotonicTable(), fields, "")
	require.NoError(t, err)
	assert.Equal(t, model.Pearson, pearson.Method)
	assert.InDelta(t, 1, pearson.Values[0][1].Float64, 1e-12)
	assert.InDelta(t, 1, pearson.Values[0][0].Float64, 1e-12)
	assert.Less(t, pearson.Values[0][2].Float64, 1.0)
	assert.Equal(t, pearson.Values[0][2], pearson.Values[2][0], "matrix is symmetric")

	spearman, err := Correlate(monotonicTable(), fields, model.Spearman)
	require.NoError(t, err)
	assert.InDelta(t, 1, spearman.Values[0][2].Float64, 1e-12)
}

func TestCorrelateConstantFieldIsUnavailable(t *testing.T) {
	m, err := Correlate(monotonicTable(), []model.Field{model.FieldMidterm, model.FieldStress}, model.Pearson)
	require.NoError(t, err)
	assert.False(t, m.Values[0][1].Valid)
	assert.False(t, m.Values[1][1].Valid)
	assert.True(t, m.Values[0][0].Valid)
}

func TestCorrelateUsesPairwiseCompleteRows(t *testing.T) {
	table := tableOf(
		model.StudentRecord{Midterm: num(1), Final: num(1)},
		model.StudentRecord{Midterm: num(2), Final: num(2)},
		model.StudentRecord{Midterm: num(3)},
		model.StudentRecord{Midterm: num(4), Final: num(4)},
	)
	m, err := Correlate(table, []model.Field{model.FieldMidterm, model.FieldFinal}, model.Pearson)
	require.NoError(t, err)
	assert.InDelta(t, 1, m.Values[0][1].Float64, 1e-12)
}

func TestCorrelateValidation(t *testing.T) {
	table := monotonicTable()

	_, err := Correlate(table, []model.Field{model.FieldMidterm, model.FieldGrade}, model.Pearson)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = Correlate(table, []model.Field{model.FieldMidterm, model.FieldFinal}, "kendall")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRankAveragesTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, rank([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, rank([]float64{9, 1, 5}))
}
