package model

import (
	"sort"

	"github.com/volatiletech/null/v8"
)

// CategoryConfig declares a recognised categorical field and the order its
// values are displayed in. A nil Order means lexical order.
type CategoryConfig struct {
	Field Field
	Order []string
}

// CategoryInfo reports how a declared category shows up in a dataset.
type CategoryInfo struct {
	Field     Field    `json:"field"`
	Available bool     `json:"available"`
	Ordered   bool     `json:"ordered"`
	Values    []string `json:"values,omitempty"`
}

// GradeOrder is the closed grade scale. Other grades still pass through
// and sort after these.
var GradeOrder = []string{"A", "B", "C", "D", "F"}

// TopGrades count towards the A/B share.
var TopGrades = []string{"A", "B"}

// NotReported replaces a missing parent education level.
const NotReported = "Not Reported"

// SleepGroupLabels name the sleep buckets; see SleepGroup.
var SleepGroupLabels = []string{"<=5h", "5-6h", "6-7h", "7-8h", ">8h"}

var sleepGroupEdges = []float64{0, 5, 6, 7, 8}

// Categories is the static list of categorical fields the dashboard knows.
var Categories = []CategoryConfig{
	{Field: FieldGrade, Order: GradeOrder},
	{Field: FieldDepartment},
	{Field: FieldGender, Order: []string{"Male", "Female"}},
	{Field: FieldInternet, Order: []string{"Yes", "No"}},
	{Field: FieldExtracurricular, Order: []string{"Yes", "No"}},
	{Field: FieldParentEducation, Order: []string{"High School", "Bachelor's", "Master's", "PhD", NotReported}},
	{Field: FieldIncome, Order: []string{"Low", "Medium", "High"}},
	{Field: FieldSleepGroup, Order: SleepGroupLabels},
}

// ConfigFor returns the declaration for f, if any.
func ConfigFor(f Field) (CategoryConfig, bool) {
	for _, c := range Categories {
		if c.Field == f {
			return c, true
		}
	}
	return CategoryConfig{}, false
}

// OrderValues sorts observed values of f: declared values first in their
// declared order, then anything else lexically.
func OrderValues(f Field, observed []string) []string {
	rank := make(map[string]int)
	if c, ok := ConfigFor(f); ok {
		for i, v := range c.Order {
			rank[v] = i
		}
	}
	out := append([]string(nil), observed...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// SleepGroup buckets nightly sleep hours. The first bucket is closed on
// both ends, the others are (left, right]; the last is open-ended.
// Missing or negative hours have no group.
func SleepGroup(hours null.Float64) null.String {
	if !hours.Valid || hours.Float64 < sleepGroupEdges[0] {
		return null.String{}
	}
	h := hours.Float64
	for i := 1; i < len(sleepGroupEdges); i++ {
		if h <= sleepGroupEdges[i] {
			return null.StringFrom(SleepGroupLabels[i-1])
		}
	}
	return null.StringFrom(SleepGroupLabels[len(SleepGroupLabels)-1])
}
