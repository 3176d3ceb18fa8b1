package pipeline

import (
	"math"
	"sort"
	"strconv"

	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

// CrossTabulate counts rows by rowField and colField. Rows missing either
// value are not counted.
func CrossTabulate(t *model.Table, rowField, colField model.Field) (model.CrossTab, error) {
	if err := requireCategorical(t, rowField); err != nil {
		return model.CrossTab{}, err
	}
	if err := requireCategorical(t, colField); err != nil {
		return model.CrossTab{}, err
	}

	type pair struct{ row, col string }
	counts := make(map[pair]int)
	var rows, cols []string
	seenRow := make(map[string]bool)
	seenCol := make(map[string]bool)
	for _, r := range t.Records() {
		rv, cv := r.Category(rowField), r.Category(colField)
		if !rv.Valid || !cv.Valid {
			continue
		}
		if !seenRow[rv.String] {
			seenRow[rv.String] = true
			rows = append(rows, rv.String)
		}
		if !seenCol[cv.String] {
			seenCol[cv.String] = true
			cols = append(cols, cv.String)
		}
		counts[pair{rv.String, cv.String}]++
	}

	rows = model.OrderValues(rowField, rows)
	cols = model.OrderValues(colField, cols)
	return buildCrossTab(rowField, colField, rows, cols, func(r, c string) int {
		return counts[pair{r, c}]
	}), nil
}

func buildCrossTab(rowField, colField model.Field, rows, cols []string, count func(r, c string) int) model.CrossTab {
	ct := model.CrossTab{
		RowField:  rowField,
		ColField:  colField,
		Rows:      rows,
		Cols:      cols,
		Counts:    make([][]int, len(rows)),
		RowTotals: make([]int, len(rows)),
	}
	for i, r := range rows {
		ct.Counts[i] = make([]int, len(cols))
		for j, c := range cols {
			n := count(r, c)
			ct.Counts[i][j] = n
			ct.RowTotals[i] += n
		}
	}
	return ct
}

// Normalize returns a copy of ct with row percentages filled in. Every row
// with a non-zero total sums to 100; a row with no observations is
// invalid throughout.
func Normalize(ct model.CrossTab) model.CrossTab {
	out := ct
	out.Percent = make([][]null.Float64, len(ct.Rows))
	for i := range ct.Rows {
		out.Percent[i] = make([]null.Float64, len(ct.Cols))
		for j := range ct.Cols {
			out.Percent[i][j] = percent(ct.Counts[i][j], ct.RowTotals[i])
		}
	}
	return out
}

// StressGrade cross-tabulates integer stress level against grade. Stress is
// rounded half to even before grouping; levels are ordered numerically.
func StressGrade(t *model.Table) (model.CrossTab, error) {
	type pair struct {
		level int
		grade string
	}
	counts := make(map[pair]int)
	seenLevel := make(map[int]bool)
	seenGrade := make(map[string]bool)
	var levels []int
	var grades []string
	for _, r := range t.Records() {
		if !r.Stress.Valid || !r.Grade.Valid {
			continue
		}
		level := int(math.RoundToEven(r.Stress.Float64))
		if !seenLevel[level] {
			seenLevel[level] = true
			levels = append(levels, level)
		}
		if !seenGrade[r.Grade.String] {
			seenGrade[r.Grade.String] = true
			grades = append(grades, r.Grade.String)
		}
		counts[pair{level, r.Grade.String}]++
	}
	sort.Ints(levels)

	rows := make([]string, len(levels))
	byLabel := make(map[string]int, len(levels))
	for i, l := range levels {
		rows[i] = strconv.Itoa(l)
		byLabel[rows[i]] = l
	}
	grades = model.OrderValues(model.FieldGrade, grades)
	return buildCrossTab(model.FieldStress, model.FieldGrade, rows, grades, func(r, c string) int {
		return counts[pair{byLabel[r], c}]
	}), nil
}
