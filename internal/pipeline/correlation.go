package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"student-insights/internal/model"
)

// Correlate computes the correlation matrix of fields. Each pair uses the
// rows where both values are present; a pair with fewer than two such rows
// or without variance is invalid. At least two fields are required.
func Correlate(t *model.Table, fields []model.Field, method model.CorrelationMethod) (model.CorrelationMatrix, error) {
	if len(fields) < 2 {
		return model.CorrelationMatrix{}, fmt.Errorf("%w: got %d", ErrTooFewFields, len(fields))
	}
	if method == "" {
		method = model.Pearson
	}
	if method != model.Pearson && method != model.Spearman {
		return model.CorrelationMatrix{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	for _, f := range fields {
		if err := requireNumeric(t, f); err != nil {
			return model.CorrelationMatrix{}, err
		}
	}

	n := len(fields)
	sym := mat.NewSymDense(n, nil)
	records := t.Records()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := pairedValues(records, fields[i], fields[j])
			sym.SetSym(i, j, coefficient(x, y, method))
		}
	}

	out := model.CorrelationMatrix{
		Method: method,
		Fields: append([]model.Field(nil), fields...),
		Values: make([][]null.Float64, n),
	}
	for i := 0; i < n; i++ {
		out.Values[i] = make([]null.Float64, n)
		for j := 0; j < n; j++ {
			if v := sym.At(i, j); !math.IsNaN(v) {
				out.Values[i][j] = null.Float64From(v)
			}
		}
	}
	return out, nil
}

// pairedValues returns the values of x and y on rows where both are present.
func pairedValues(records []model.StudentRecord, xf, yf model.Field) ([]float64, []float64) {
	var xs, ys []float64
	for _, r := range records {
		x, y := r.Number(xf), r.Number(yf)
		if x.Valid && y.Valid {
			xs = append(xs, x.Float64)
			ys = append(ys, y.Float64)
		}
	}
	return xs, ys
}

// coefficient returns NaN when the correlation is undefined.
func coefficient(x, y []float64, method model.CorrelationMethod) float64 {
	if len(x) < 2 || constant(x) || constant(y) {
		return math.NaN()
	}
	if method == model.Spearman {
		x, y = rank(x), rank(y)
	}
	r := stat.Correlation(x, y, nil)
	// Guard against rounding just past the bounds.
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	return floats.Max(xs) == floats.Min(xs)
}

// rank assigns 1-based ranks, ties sharing the average of their positions.
func rank(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
