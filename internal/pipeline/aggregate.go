package pipeline

import (
	"fmt"
	"sort"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/stat"

	"student-insights/internal/model"
)

// Frequency counts every distinct non-missing value of field in display
// order. With normalize each count is also given as a percentage of the
// non-missing total.
func Frequency(t *model.Table, field model.Field, normalize bool) (model.Frequencies, error) {
	if err := requireCategorical(t, field); err != nil {
		return model.Frequencies{}, err
	}
	return frequencyOf(t.Records(), field, normalize), nil
}

func frequencyOf(records []model.StudentRecord, field model.Field, normalize bool) model.Frequencies {
	counts := make(map[string]int)
	var values []string
	total := 0
	for _, r := range records {
		v := r.Category(field)
		if !v.Valid {
			continue
		}
		if _, ok := counts[v.String]; !ok {
			values = append(values, v.String)
		}
		counts[v.String]++
		total++
	}

	out := model.Frequencies{Field: field, Total: total, Normalized: normalize}
	for _, v := range model.OrderValues(field, values) {
		item := model.Frequency{Value: v, Count: counts[v]}
		if normalize {
			item.Percent = percent(counts[v], total)
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// FrequencyBy computes a normalised frequency of valueField within each
// group of groupField. Rows whose group is missing are skipped.
func FrequencyBy(t *model.Table, groupField, valueField model.Field) (model.GroupFrequencies, error) {
	if err := requireCategorical(t, groupField); err != nil {
		return model.GroupFrequencies{}, err
	}
	if err := requireCategorical(t, valueField); err != nil {
		return model.GroupFrequencies{}, err
	}

	groups := make(map[string][]model.StudentRecord)
	for _, r := range t.Records() {
		g := r.Category(groupField)
		if !g.Valid {
			continue
		}
		groups[g.String] = append(groups[g.String], r)
	}

	out := model.GroupFrequencies{GroupField: groupField, ValueField: valueField}
	for _, g := range t.Distinct(groupField) {
		freq := frequencyOf(groups[g], valueField, true)
		out.Groups = append(out.Groups, model.GroupFrequency{Group: g, Total: freq.Total, Items: freq.Items})
	}
	return out, nil
}

// GroupedMean averages valueField within each group of groupField,
// ignoring missing values. A group without observations keeps its slot
// with an invalid mean. Rows with a missing group are dropped unless fill
// names a label to collect them under.
func GroupedMean(t *model.Table, groupField, valueField model.Field, fill string) (model.GroupMeans, error) {
	if err := requireCategorical(t, groupField); err != nil {
		return model.GroupMeans{}, err
	}
	if err := requireNumeric(t, valueField); err != nil {
		return model.GroupMeans{}, err
	}

	values := make(map[string][]float64)
	counts := make(map[string]int)
	var keys []string
	for _, r := range t.Records() {
		key := r.Category(groupField)
		if !key.Valid {
			if fill == "" {
				continue
			}
			key = null.StringFrom(fill)
		}
		if _, ok := counts[key.String]; !ok {
			keys = append(keys, key.String)
			counts[key.String] = 0
		}
		if v := r.Number(valueField); v.Valid {
			values[key.String] = append(values[key.String], v.Float64)
			counts[key.String]++
		}
	}

	out := model.GroupMeans{GroupField: groupField, ValueField: valueField}
	for _, k := range model.OrderValues(groupField, keys) {
		out.Items = append(out.Items, model.GroupMean{
			Group: k,
			Mean:  mean(values[k]),
			Count: counts[k],
		})
	}
	return out, nil
}

// SortGroupMeans orders items by mean. Invalid means go last either way.
func SortGroupMeans(items []model.GroupMean, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Mean, items[j].Mean
		if a.Valid != b.Valid {
			return a.Valid
		}
		if !a.Valid {
			return false
		}
		if ascending {
			return a.Float64 < b.Float64
		}
		return a.Float64 > b.Float64
	})
}

type countNode struct {
	count    int
	children map[string]*countNode
}

// Hierarchy counts rows along the path of fields, outermost first. Every
// inner node's value is the sum of its children. Rows missing any value on
// the path are left out entirely.
func Hierarchy(t *model.Table, fields ...model.Field) (model.Hierarchy, error) {
	if len(fields) == 0 {
		return model.Hierarchy{}, fmt.Errorf("%w: hierarchy needs at least one field", ErrNoSelection)
	}
	for _, f := range fields {
		if err := requireCategorical(t, f); err != nil {
			return model.Hierarchy{}, err
		}
	}

	root := &countNode{children: make(map[string]*countNode)}
	path := make([]string, len(fields))
rows:
	for _, r := range t.Records() {
		for i, f := range fields {
			v := r.Category(f)
			if !v.Valid {
				continue rows
			}
			path[i] = v.String
		}
		node := root
		node.count++
		for _, label := range path {
			child, ok := node.children[label]
			if !ok {
				child = &countNode{children: make(map[string]*countNode)}
				node.children[label] = child
			}
			child.count++
			node = child
		}
	}

	return model.Hierarchy{
		Fields: append([]model.Field(nil), fields...),
		Root:   buildHierarchy("All", root, fields),
	}, nil
}

func buildHierarchy(label string, n *countNode, fields []model.Field) model.HierarchyNode {
	out := model.HierarchyNode{Label: label, Value: n.count}
	if len(fields) == 0 {
		return out
	}
	labels := make([]string, 0, len(n.children))
	for l := range n.children {
		labels = append(labels, l)
	}
	for _, l := range model.OrderValues(fields[0], labels) {
		out.Children = append(out.Children, buildHierarchy(l, n.children[l], fields[1:]))
	}
	return out
}

// ParentEducation summarises students by parent education level. A missing
// level is reported as model.NotReported; the table itself is untouched.
// Levels are sorted by mean total score, highest first.
func ParentEducation(t *model.Table) (model.EducationPerformance, error) {
	working := t.Records()
	for i := range working {
		if !working[i].ParentEducation.Valid {
			working[i].ParentEducation = null.StringFrom(model.NotReported)
		}
	}

	type acc struct {
		rows   int
		top    int
		totals []float64
	}
	groups := make(map[string]*acc)
	var levels []string
	for _, r := range working {
		level := r.ParentEducation.String
		g, ok := groups[level]
		if !ok {
			g = &acc{}
			groups[level] = g
			levels = append(levels, level)
		}
		g.rows++
		if r.Grade.Valid && isTopGrade(r.Grade.String) {
			g.top++
		}
		if r.Total.Valid {
			g.totals = append(g.totals, r.Total.Float64)
		}
	}

	out := model.EducationPerformance{}
	for _, level := range model.OrderValues(model.FieldParentEducation, levels) {
		g := groups[level]
		out.Items = append(out.Items, model.EducationRow{
			Level:         level,
			Count:         g.rows,
			MeanTotal:     mean(g.totals),
			TopGradeShare: percent(g.top, g.rows),
		})
	}
	sort.SliceStable(out.Items, func(i, j int) bool {
		a, b := out.Items[i].MeanTotal, out.Items[j].MeanTotal
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Float64 > b.Float64
	})
	return out, nil
}

func isTopGrade(g string) bool {
	for _, top := range model.TopGrades {
		if g == top {
			return true
		}
	}
	return false
}

// mean returns the arithmetic mean, invalid for an empty sample.
func mean(xs []float64) null.Float64 {
	if len(xs) == 0 {
		return null.Float64{}
	}
	return null.Float64From(stat.Mean(xs, nil))
}

// percent returns part/whole*100, invalid when whole is zero.
func percent(part, whole int) null.Float64 {
	if whole == 0 {
		return null.Float64{}
	}
	return null.Float64From(float64(part) / float64(whole) * 100)
}
