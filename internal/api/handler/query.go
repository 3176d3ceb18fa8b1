package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
	"student-insights/pkg/utils"
)

// AnalysisQuery is the parsed query string of an analysis request.
type AnalysisQuery struct {
	Departments   []string
	Genders       []string
	IncomeLevels  []string
	Grades        []string
	StudyMin      *float64 `validate:"omitempty,gte=0"`
	StudyMax      *float64 `validate:"omitempty,gte=0"`
	AttendanceMin *float64 `validate:"omitempty,gte=0,lte=100"`
	SleepMin      *float64 `validate:"omitempty,gte=0,lte=24"`
	SleepMax      *float64 `validate:"omitempty,gte=0,lte=24"`

	Field     string
	Group     string
	Value     string
	Fill      string `validate:"max=64"`
	Fields    []string
	Method    string
	Normalize bool
	Rows      string
	Cols      string
	X         string
	Y         string

	// Selected is nil when "grades" is absent and empty when it is blank.
	Selected []string

	Format string `validate:"omitempty,oneof=csv json xlsx"`
}

// queryNames maps struct fields back to query parameters for error details.
var queryNames = map[string]string{
	"StudyMin":      "study_min",
	"StudyMax":      "study_max",
	"AttendanceMin": "attendance_min",
	"SleepMin":      "sleep_min",
	"SleepMax":      "sleep_max",
	"Fill":          "fill",
	"Format":        "format",
	"Limit":         "limit",
}

func queryName(field string) string {
	if name, ok := queryNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}

// ParseAnalysisQuery reads and validates the analysis parameters in values.
func ParseAnalysisQuery(values url.Values, validate *validator.Validate) (AnalysisQuery, error) {
	q := AnalysisQuery{
		Departments:  utils.ParseList(values.Get("department")),
		Genders:      utils.ParseList(values.Get("gender")),
		IncomeLevels: utils.ParseList(values.Get("income")),
		Grades:       utils.ParseList(values.Get("grade")),
		Field:        values.Get("field"),
		Group:        values.Get("group"),
		Value:        values.Get("value"),
		Fill:         values.Get("fill"),
		Fields:       utils.ParseList(values.Get("fields")),
		Method:       strings.ToLower(strings.TrimSpace(values.Get("method"))),
		Rows:         values.Get("rows"),
		Cols:         values.Get("cols"),
		X:            values.Get("x"),
		Y:            values.Get("y"),
		Format:       strings.ToLower(strings.TrimSpace(values.Get("format"))),
	}

	numbers := []struct {
		name string
		dst  **float64
	}{
		{"study_min", &q.StudyMin},
		{"study_max", &q.StudyMax},
		{"attendance_min", &q.AttendanceMin},
		{"sleep_min", &q.SleepMin},
		{"sleep_max", &q.SleepMax},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(values.Get(n.name))
		if raw == "" {
			continue
		}
		v, ok := utils.ParseNumeric(raw)
		if !ok {
			return AnalysisQuery{}, invalidParameter(n.name, raw)
		}
		*n.dst = &v
	}

	if raw := strings.TrimSpace(values.Get("normalize")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return AnalysisQuery{}, invalidParameter("normalize", raw)
		}
		q.Normalize = b
	}

	if values.Has("grades") {
		q.Selected = utils.ParseList(values.Get("grades"))
		if q.Selected == nil {
			q.Selected = []string{}
		}
	}

	if err := validate.Struct(q); err != nil {
		return AnalysisQuery{}, validationFailed(err)
	}
	if q.StudyMin != nil && q.StudyMax != nil && *q.StudyMin > *q.StudyMax {
		return AnalysisQuery{}, invalidParameter("study_max", values.Get("study_max"))
	}
	if q.SleepMin != nil && q.SleepMax != nil && *q.SleepMin > *q.SleepMax {
		return AnalysisQuery{}, invalidParameter("sleep_max", values.Get("sleep_max"))
	}
	return q, nil
}

// Params converts the query into analysis parameters.
func (q AnalysisQuery) Params() model.Params {
	p := model.Params{
		Filter: model.Filter{
			Departments:   q.Departments,
			Genders:       q.Genders,
			IncomeLevels:  q.IncomeLevels,
			Grades:        q.Grades,
			StudyHours:    model.Range{Min: null.Float64FromPtr(q.StudyMin), Max: null.Float64FromPtr(q.StudyMax)},
			MinAttendance: null.Float64FromPtr(q.AttendanceMin),
			SleepHours:    model.Range{Min: null.Float64FromPtr(q.SleepMin), Max: null.Float64FromPtr(q.SleepMax)},
		},
		Field:      model.ResolveField(q.Field),
		GroupField: model.ResolveField(q.Group),
		ValueField: model.ResolveField(q.Value),
		Fill:       q.Fill,
		Method:     model.CorrelationMethod(q.Method),
		Normalize:  q.Normalize,
		RowField:   model.ResolveField(q.Rows),
		ColField:   model.ResolveField(q.Cols),
		XField:     model.ResolveField(q.X),
		YField:     model.ResolveField(q.Y),
		Grades:     q.Selected,
	}
	for _, name := range q.Fields {
		p.Fields = append(p.Fields, model.ResolveField(name))
	}
	return p
}
