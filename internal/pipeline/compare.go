package pipeline

import (
	"errors"

	"github.com/aclements/go-moremath/stats"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

// InternetAccess gives the grade shares of students with and without
// internet at home, plus a two-sided Mann-Whitney U test of their total
// scores. The comparison is omitted unless both "Yes" and "No" groups have
// scores.
func InternetAccess(t *model.Table) (model.InternetAccess, error) {
	ct, err := CrossTabulate(t, model.FieldInternet, model.FieldGrade)
	if err != nil {
		return model.InternetAccess{}, err
	}
	out := model.InternetAccess{Shares: Normalize(ct)}

	groups := [2]string{"Yes", "No"}
	var samples [2][]float64
	for _, r := range t.Records() {
		if !r.InternetAccess.Valid || !r.Total.Valid {
			continue
		}
		for i, g := range groups {
			if r.InternetAccess.String == g {
				samples[i] = append(samples[i], r.Total.Float64)
			}
		}
	}
	if len(samples[0]) == 0 || len(samples[1]) == 0 {
		return out, nil
	}

	cmp := &model.AccessComparison{
		Groups:  groups,
		N:       [2]int{len(samples[0]), len(samples[1])},
		Medians: [2]float64{median(samples[0]), median(samples[1])},
	}
	res, err := stats.MannWhitneyUTest(samples[0], samples[1], stats.LocationDiffers)
	switch {
	case err == nil:
		cmp.U = res.U
		cmp.PValue = null.Float64From(res.P)
	case errors.Is(err, stats.ErrSamplesEqual):
		// Every score is identical; U is the all-ties value and p is undefined.
		cmp.U = float64(cmp.N[0]*cmp.N[1]) / 2
	default:
		return model.InternetAccess{}, err
	}
	out.Comparison = cmp
	return out, nil
}

func median(xs []float64) float64 {
	return stats.Sample{Xs: xs}.Quantile(0.5)
}
