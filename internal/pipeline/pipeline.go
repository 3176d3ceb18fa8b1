package pipeline

import (
	"context"
	"fmt"
	"time"

	"student-insights/internal/infrastructure"
	"student-insights/internal/model"
)

// Analysis is one entry of the menu.
type Analysis struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`

	run func(t *model.Table, p model.Params) (model.Tabular, error)
}

var catalog = []Analysis{
	{
		Name:        "grade-distribution",
		Title:       "Distribution of Final Grades",
		Description: "Number of students per grade.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Frequency(t, model.FieldGrade, p.Normalize)
		},
		Params: []string{"normalize"},
	},
	{
		Name:        "department-performance",
		Title:       "Average Performance by Department",
		Description: "Mean total score per department, lowest first.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			gm, err := GroupedMean(t, model.FieldDepartment, model.FieldTotal, "")
			if err != nil {
				return nil, err
			}
			SortGroupMeans(gm.Items, true)
			return gm, nil
		},
	},
	{
		Name:        "gender-grades",
		Title:       "Grade Distribution by Gender",
		Description: "Share of each grade within every gender.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return FrequencyBy(t, model.FieldGender, model.FieldGrade)
		},
	},
	{
		Name:        "grade-hierarchy",
		Title:       "Grade Distribution Hierarchy",
		Description: "Students by department, gender and grade.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Hierarchy(t, model.FieldDepartment, model.FieldGender, model.FieldGrade)
		},
	},
	{
		Name:        "study-hours",
		Title:       "Study Hours vs Total Score",
		Description: "Weekly study hours against total score for the selected grades, with a fitted trend.",
		Params:      []string{"grades"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return StudyHoursScatter(t, p.Grades)
		},
	},
	{
		Name:        "attendance-impact",
		Title:       "Attendance Impact on Final Score",
		Description: "Mean final score and student count per attendance bin.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return AttendanceImpact(t)
		},
	},
	{
		Name:        "score-components",
		Title:       "Distribution of Score Components",
		Description: "Quartiles and outliers of every assessment score.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return ScoreComponents(t)
		},
	},
	{
		Name:        "internet-access",
		Title:       "Internet Access Impact on Performance",
		Description: "Grade shares by internet access at home, with a Mann-Whitney U test of total scores.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return InternetAccess(t)
		},
	},
	{
		Name:        "stress-heatmap",
		Title:       "Stress Level vs Performance",
		Description: "Students per integer stress level and grade.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return StressGrade(t)
		},
	},
	{
		Name:        "parent-education",
		Title:       "Parent Education & Student Performance",
		Description: "Mean total score and A/B share per parent education level.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return ParentEducation(t)
		},
	},
	{
		Name:        "frequency",
		Title:       "Categorical Frequency",
		Description: "Counts of a chosen categorical field.",
		Params:      []string{"field", "normalize"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Frequency(t, p.Field, p.Normalize)
		},
	},
	{
		Name:        "grouped-mean",
		Title:       "Grouped Mean",
		Description: "Mean of a numeric field per group of a categorical field.",
		Params:      []string{"group", "value", "fill"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return GroupedMean(t, p.GroupField, p.ValueField, p.Fill)
		},
	},
	{
		Name:        "correlation",
		Title:       "Correlation Matrix",
		Description: "Pairwise Pearson or Spearman correlation of the chosen numeric fields.",
		Params:      []string{"fields", "method"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Correlate(t, p.Fields, p.Method)
		},
	},
	{
		Name:        "independence",
		Title:       "Chi-square Independence Test",
		Description: "Chi-square test of two categorical fields.",
		Params:      []string{"rows", "cols"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Independence(t, p.RowField, p.ColField)
		},
	},
	{
		Name:        "trend",
		Title:       "Linear Trend",
		Description: "Least squares line of one numeric field on another, with Pearson r.",
		Params:      []string{"x", "y"},
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return LinearTrend(t, p.XField, p.YField)
		},
	},
	{
		Name:        "improvement",
		Title:       "Midterm to Final Improvement",
		Description: "Change from midterm to final score per student.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return Improvement(t)
		},
	},
	{
		Name:        "sleep-performance",
		Title:       "Sleep & Performance",
		Description: "Mean total score per nightly sleep group.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return GroupedMean(t, model.FieldSleepGroup, model.FieldTotal, "")
		},
	},
	{
		Name:        "income-performance",
		Title:       "Family Income & Performance",
		Description: "Mean total score per family income level.",
		run: func(t *model.Table, p model.Params) (model.Tabular, error) {
			return GroupedMean(t, model.FieldIncome, model.FieldTotal, "")
		},
	},
}

// Analyses lists the catalog in menu order.
func Analyses() []Analysis {
	return append([]Analysis(nil), catalog...)
}

// Lookup finds an analysis by name.
func Lookup(name string) (Analysis, bool) {
	for _, a := range catalog {
		if a.Name == name {
			return a, true
		}
	}
	return Analysis{}, false
}

// Run computes one analysis over the cached table narrowed by the filter.
// The shared table is never modified; aggregations see a filtered copy.
func Run(ctx context.Context, ds *Dataset, name string, params model.Params) (model.Result, error) {
	a, ok := Lookup(name)
	if !ok {
		return model.Result{}, fmt.Errorf("%w: %q", ErrUnknownAnalysis, name)
	}

	table, err := ds.Table(ctx)
	if err != nil {
		return model.Result{}, err
	}
	return Compute(ctx, a, table, params)
}

// Compute runs a over t after applying the filter in params.
func Compute(ctx context.Context, a Analysis, t *model.Table, params model.Params) (model.Result, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	working := t.Filter(params.Filter)
	if err := requireRows(working); err != nil {
		return model.Result{}, err
	}

	data, err := a.run(working, params)
	if err != nil {
		return model.Result{}, fmt.Errorf("%s: %w", a.Name, err)
	}

	logger.DebugContext(ctx, "analysis computed",
		"analysis", a.Name,
		"rows", working.Len(),
		"result", model.Describe(data))

	return model.Result{
		Analysis:    a.Name,
		Title:       a.Title,
		Rows:        working.Len(),
		Data:        data,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
