package model

import "github.com/volatiletech/null/v8"

// Range is an inclusive numeric interval; an invalid bound is open.
type Range struct {
	Min null.Float64 `json:"min"`
	Max null.Float64 `json:"max"`
}

// IsZero reports whether the range has no bounds.
func (r Range) IsZero() bool {
	return !r.Min.Valid && !r.Max.Valid
}

// Contains reports whether v lies in the range. A missing v is never
// contained in a bounded range.
func (r Range) Contains(v null.Float64) bool {
	if r.IsZero() {
		return true
	}
	if !v.Valid {
		return false
	}
	if r.Min.Valid && v.Float64 < r.Min.Float64 {
		return false
	}
	if r.Max.Valid && v.Float64 > r.Max.Float64 {
		return false
	}
	return true
}

// Filter holds the sidebar selections. Members compose by AND; an empty
// member does not constrain.
type Filter struct {
	Departments   []string     `json:"departments,omitempty"`
	Genders       []string     `json:"genders,omitempty"`
	IncomeLevels  []string     `json:"income_levels,omitempty"`
	Grades        []string     `json:"grades,omitempty"`
	StudyHours    Range        `json:"study_hours"`
	MinAttendance null.Float64 `json:"min_attendance"`
	SleepHours    Range        `json:"sleep_hours"`
}

// IsZero reports whether no constraint is set.
func (f Filter) IsZero() bool {
	return len(f.Departments) == 0 &&
		len(f.Genders) == 0 &&
		len(f.IncomeLevels) == 0 &&
		len(f.Grades) == 0 &&
		f.StudyHours.IsZero() &&
		!f.MinAttendance.Valid &&
		f.SleepHours.IsZero()
}

// Matches reports whether r satisfies every constraint.
func (f Filter) Matches(r StudentRecord) bool {
	if !oneOf(r.Department, f.Departments) ||
		!oneOf(r.Gender, f.Genders) ||
		!oneOf(r.IncomeLevel, f.IncomeLevels) ||
		!oneOf(r.Grade, f.Grades) {
		return false
	}
	if !f.StudyHours.Contains(r.StudyHours) || !f.SleepHours.Contains(r.Sleep) {
		return false
	}
	if f.MinAttendance.Valid && (!r.Attendance.Valid || r.Attendance.Float64 < f.MinAttendance.Float64) {
		return false
	}
	return true
}

func oneOf(v null.String, set []string) bool {
	if len(set) == 0 {
		return true
	}
	if !v.Valid {
		return false
	}
	for _, s := range set {
		if s == v.String {
			return true
		}
	}
	return false
}

// CorrelationMethod selects the correlation coefficient.
type CorrelationMethod string

const (
	Pearson  CorrelationMethod = "pearson"
	Spearman CorrelationMethod = "spearman"
)

// Params carries everything an analysis may read besides the table.
type Params struct {
	Filter Filter `json:"filter"`

	// Field is the categorical field for the frequency analysis.
	Field Field `json:"field,omitempty"`
	// GroupField and ValueField drive the grouped mean.
	GroupField Field `json:"group_field,omitempty"`
	ValueField Field `json:"value_field,omitempty"`
	// Fill labels rows whose group is missing; empty drops them.
	Fill string `json:"fill,omitempty"`
	// Fields are the numeric fields for a correlation matrix.
	Fields []Field           `json:"fields,omitempty"`
	Method CorrelationMethod `json:"method,omitempty"`
	// Normalize turns counts into percentages.
	Normalize bool `json:"normalize,omitempty"`
	// RowField and ColField define a cross-tabulation.
	RowField Field `json:"row_field,omitempty"`
	ColField Field `json:"col_field,omitempty"`
	// XField and YField are the paired numeric fields of a linear trend.
	XField Field `json:"x_field,omitempty"`
	YField Field `json:"y_field,omitempty"`
	// Grades is the grade selector of the study-hours chart. nil keeps
	// every grade; a non-nil empty slice means nothing was selected.
	Grades []string `json:"grades,omitempty"`
}
