package pipeline

import (
	"github.com/aclements/go-moremath/stats"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

// ScoreComponentFields are the assessments compared by ScoreComponents.
var ScoreComponentFields = []model.Field{
	model.FieldMidterm,
	model.FieldFinal,
	model.FieldAssignments,
	model.FieldQuizzes,
	model.FieldProjects,
}

// ScoreComponents summarises the distribution of every assessment score
// the way a box plot draws it: quartiles, Tukey whiskers at 1.5 IQR and the
// number of points beyond them.
func ScoreComponents(t *model.Table) (model.ScoreComponents, error) {
	var out model.ScoreComponents
	for _, f := range ScoreComponentFields {
		out.Components = append(out.Components, summarise(f, t.Numbers(f)))
	}
	return out, nil
}

func summarise(f model.Field, xs []float64) model.ComponentSummary {
	c := model.ComponentSummary{Component: f, N: len(xs)}
	if len(xs) == 0 {
		return c
	}

	s := stats.Sample{Xs: append([]float64(nil), xs...)}
	s.Sort()
	lo, hi := s.Bounds()
	q1, median, q3 := s.Quantile(0.25), s.Quantile(0.5), s.Quantile(0.75)
	fence := 1.5 * (q3 - q1)

	c.Values = s.Xs
	c.Mean = null.Float64From(s.Mean())
	c.Min = null.Float64From(lo)
	c.Max = null.Float64From(hi)
	c.Q1 = null.Float64From(q1)
	c.Median = null.Float64From(median)
	c.Q3 = null.Float64From(q3)

	whiskerLow, whiskerHigh := hi, lo
	for _, x := range s.Xs {
		if x < q1-fence || x > q3+fence {
			c.Outliers++
			continue
		}
		if x < whiskerLow {
			whiskerLow = x
		}
		if x > whiskerHigh {
			whiskerHigh = x
		}
	}
	c.WhiskerLow = null.Float64From(whiskerLow)
	c.WhiskerHigh = null.Float64From(whiskerHigh)
	return c
}
