package pipeline

import (
	"math"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/stat/distuv"

	"student-insights/internal/model"
)

// MinExpectedCell is the smallest observed cell count the chi-square test
// accepts.
const MinExpectedCell = 5

// ChiSquare tests the independence of a cross-tabulation. The test needs
// at least two rows, two columns and every cell at or above
// MinExpectedCell; otherwise it is reported as inapplicable with a reason.
// Tables with one degree of freedom get Yates' continuity correction.
func ChiSquare(ct model.CrossTab) model.IndependenceTest {
	out := model.IndependenceTest{
		RowField: ct.RowField,
		ColField: ct.ColField,
		Table:    ct,
	}

	nr, nc := len(ct.Rows), len(ct.Cols)
	if nr < 2 || nc < 2 {
		out.Reason = "the test needs at least two rows and two columns"
		return out
	}
	for i := range ct.Counts {
		for _, n := range ct.Counts[i] {
			if n < MinExpectedCell {
				out.Reason = "every cell needs at least 5 observations"
				return out
			}
		}
	}

	colTotals := make([]float64, nc)
	total := 0.0
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			colTotals[j] += float64(ct.Counts[i][j])
			total += float64(ct.Counts[i][j])
		}
	}

	dof := (nr - 1) * (nc - 1)
	corrected := dof == 1
	stat := 0.0
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			expected := float64(ct.RowTotals[i]) * colTotals[j] / total
			observed := float64(ct.Counts[i][j])
			if corrected {
				diff := expected - observed
				observed += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			d := observed - expected
			stat += d * d / expected
		}
	}

	out.Applicable = true
	out.DoF = dof
	out.Corrected = corrected
	out.Statistic = null.Float64From(stat)
	out.PValue = null.Float64From(distuv.ChiSquared{K: float64(dof)}.Survival(stat))
	return out
}

// Independence cross-tabulates two fields and tests them.
func Independence(t *model.Table, rowField, colField model.Field) (model.IndependenceTest, error) {
	ct, err := CrossTabulate(t, rowField, colField)
	if err != nil {
		return model.IndependenceTest{}, err
	}
	return ChiSquare(ct), nil
}
