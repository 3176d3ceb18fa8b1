package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Tabular is implemented by every aggregation result so that exporters and
// the CLI can print any of them.
type Tabular interface {
	Tabulate() (header []string, rows [][]string)
}

// Result is what one analysis run hands to the rendering layer.
type Result struct {
	RunID       string    `json:"run_id,omitempty"`
	Analysis    string    `json:"analysis"`
	Title       string    `json:"title"`
	Rows        int       `json:"rows"`
	Data        Tabular   `json:"data"`
	GeneratedAt time.Time `json:"generated_at"`
}

func formatFloat(v null.Float64, prec int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}

func formatPlain(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Frequency is the count of one category value.
type Frequency struct {
	Value   string       `json:"value"`
	Count   int          `json:"count"`
	Percent null.Float64 `json:"percent"`
}

// Frequencies is a categorical frequency table.
type Frequencies struct {
	Field      Field       `json:"field"`
	Total      int         `json:"total"`
	Normalized bool        `json:"normalized"`
	Items      []Frequency `json:"items"`
}

func (f Frequencies) Tabulate() ([]string, [][]string) {
	header := []string{string(f.Field), "Count"}
	if f.Normalized {
		header = append(header, "Percent")
	}
	rows := make([][]string, 0, len(f.Items))
	for _, it := range f.Items {
		row := []string{it.Value, strconv.Itoa(it.Count)}
		if f.Normalized {
			row = append(row, formatFloat(it.Percent, 1))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// GroupFrequency is a normalised frequency table within one group.
type GroupFrequency struct {
	Group string      `json:"group"`
	Total int         `json:"total"`
	Items []Frequency `json:"items"`
}

// GroupFrequencies splits a frequency table by a grouping field, like the
// per-gender grade pies.
type GroupFrequencies struct {
	GroupField Field            `json:"group_field"`
	ValueField Field            `json:"value_field"`
	Groups     []GroupFrequency `json:"groups"`
}

func (g GroupFrequencies) Tabulate() ([]string, [][]string) {
	header := []string{string(g.GroupField), string(g.ValueField), "Count", "Percent"}
	var rows [][]string
	for _, grp := range g.Groups {
		for _, it := range grp.Items {
			rows = append(rows, []string{grp.Group, it.Value, strconv.Itoa(it.Count), formatFloat(it.Percent, 1)})
		}
	}
	return header, rows
}

// GroupMean is the mean of a numeric field within one group. Mean is
// invalid when the group has no observations.
type GroupMean struct {
	Group string       `json:"group"`
	Mean  null.Float64 `json:"mean"`
	Count int          `json:"count"`
}

// GroupMeans is a grouped-mean table.
type GroupMeans struct {
	GroupField Field       `json:"group_field"`
	ValueField Field       `json:"value_field"`
	Items      []GroupMean `json:"items"`
}

func (g GroupMeans) Tabulate() ([]string, [][]string) {
	header := []string{string(g.GroupField), "Mean " + string(g.ValueField), "Count"}
	rows := make([][]string, 0, len(g.Items))
	for _, it := range g.Items {
		rows = append(rows, []string{it.Group, formatFloat(it.Mean, 2), strconv.Itoa(it.Count)})
	}
	return header, rows
}

// HierarchyNode is one segment of a sunburst. Value equals the sum of the
// children's values for every inner node.
type HierarchyNode struct {
	Label    string          `json:"label"`
	Value    int             `json:"value"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// Hierarchy is a nested count over Fields, outermost first.
type Hierarchy struct {
	Fields []Field       `json:"fields"`
	Root   HierarchyNode `json:"root"`
}

func (h Hierarchy) Tabulate() ([]string, [][]string) {
	header := make([]string, 0, len(h.Fields)+1)
	for _, f := range h.Fields {
		header = append(header, string(f))
	}
	header = append(header, "Count")

	var rows [][]string
	var walk func(n HierarchyNode, path []string)
	walk = func(n HierarchyNode, path []string) {
		for _, c := range n.Children {
			p := append(append([]string(nil), path...), c.Label)
			row := make([]string, len(h.Fields)+1)
			copy(row, p)
			row[len(h.Fields)] = strconv.Itoa(c.Value)
			rows = append(rows, row)
			walk(c, p)
		}
	}
	walk(h.Root, nil)
	return header, rows
}

// Bin is one attendance interval with the final scores that fell into it.
type Bin struct {
	Label     string       `json:"label"`
	Left      float64      `json:"left"`
	Right     float64      `json:"right"`
	Mid       float64      `json:"mid"`
	Count     int          `json:"count"`
	MeanFinal null.Float64 `json:"mean_final"`
}

// AttendanceImpact is the binned attendance chart.
type AttendanceImpact struct {
	Edges    []float64 `json:"edges"`
	Bins     []Bin     `json:"bins"`
	Unbinned int       `json:"unbinned"`
}

func (a AttendanceImpact) Tabulate() ([]string, [][]string) {
	header := []string{"Attendance", "Midpoint", "Students", "Mean Final_Score"}
	rows := make([][]string, 0, len(a.Bins))
	for _, b := range a.Bins {
		rows = append(rows, []string{b.Label, formatPlain(b.Mid, 1), strconv.Itoa(b.Count), formatFloat(b.MeanFinal, 2)})
	}
	return header, rows
}

// CrossTab counts rows by two categorical fields. Percent is filled only
// when the table has been normalised; each valid row of it sums to 100.
type CrossTab struct {
	RowField  Field            `json:"row_field"`
	ColField  Field            `json:"col_field"`
	Rows      []string         `json:"rows"`
	Cols      []string         `json:"cols"`
	Counts    [][]int          `json:"counts"`
	RowTotals []int            `json:"row_totals"`
	Percent   [][]null.Float64 `json:"percent,omitempty"`
}

func (c CrossTab) Tabulate() ([]string, [][]string) {
	header := append([]string{string(c.RowField)}, c.Cols...)
	rows := make([][]string, 0, len(c.Rows))
	for i, r := range c.Rows {
		row := []string{r}
		for j := range c.Cols {
			if c.Percent != nil {
				row = append(row, formatFloat(c.Percent[i][j], 1))
			} else {
				row = append(row, strconv.Itoa(c.Counts[i][j]))
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

// CorrelationMatrix holds pairwise coefficients; Values[i][j] is invalid
// when the pair had too few complete observations or no variance.
type CorrelationMatrix struct {
	Method CorrelationMethod `json:"method"`
	Fields []Field           `json:"fields"`
	Values [][]null.Float64  `json:"values"`
}

func (c CorrelationMatrix) Tabulate() ([]string, [][]string) {
	header := []string{""}
	for _, f := range c.Fields {
		header = append(header, string(f))
	}
	rows := make([][]string, 0, len(c.Fields))
	for i, f := range c.Fields {
		row := []string{string(f)}
		for j := range c.Fields {
			row = append(row, formatFloat(c.Values[i][j], 3))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// IndependenceTest is a chi-square test of a cross-tabulation. When
// Applicable is false the statistic is absent and Reason says why.
type IndependenceTest struct {
	RowField   Field        `json:"row_field"`
	ColField   Field        `json:"col_field"`
	Applicable bool         `json:"applicable"`
	Reason     string       `json:"reason,omitempty"`
	Statistic  null.Float64 `json:"statistic"`
	PValue     null.Float64 `json:"p_value"`
	DoF        int          `json:"dof"`
	Corrected  bool         `json:"corrected"`
	Table      CrossTab     `json:"table"`
}

func (t IndependenceTest) Tabulate() ([]string, [][]string) {
	header := []string{"Test", "Applicable", "Chi-square", "p-value", "DoF", "Note"}
	row := []string{
		fmt.Sprintf("%s x %s", t.RowField, t.ColField),
		strconv.FormatBool(t.Applicable),
		formatFloat(t.Statistic, 4),
		formatFloat(t.PValue, 4),
		strconv.Itoa(t.DoF),
		t.Reason,
	}
	return header, [][]string{row}
}

// Point is a point on a fitted line.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trend is an ordinary least squares fit of Y on X.
type Trend struct {
	XField    Field        `json:"x_field"`
	YField    Field        `json:"y_field"`
	N         int          `json:"n"`
	Slope     float64      `json:"slope"`
	Intercept float64      `json:"intercept"`
	R         null.Float64 `json:"r"`
	Line      [2]Point     `json:"line"`
}

func (t Trend) Tabulate() ([]string, [][]string) {
	return []string{"X", "Y", "N", "Slope", "Intercept", "Pearson r"}, [][]string{{
		string(t.XField), string(t.YField), strconv.Itoa(t.N),
		formatPlain(t.Slope, 4), formatPlain(t.Intercept, 4), formatFloat(t.R, 4),
	}}
}

// ScatterPoint is one student on the study-hours bubble chart.
type ScatterPoint struct {
	StudentID string       `json:"student_id"`
	Grade     string       `json:"grade"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Size      null.Float64 `json:"size"`
}

// Scatter is the study hours vs total score chart.
type Scatter struct {
	XField    Field          `json:"x_field"`
	YField    Field          `json:"y_field"`
	SizeField Field          `json:"size_field"`
	Grades    []string       `json:"grades"`
	Points    []ScatterPoint `json:"points"`
	Trend     *Trend         `json:"trend,omitempty"`
}

func (s Scatter) Tabulate() ([]string, [][]string) {
	header := []string{string(FieldStudentID), string(FieldGrade), string(s.XField), string(s.YField), string(s.SizeField)}
	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		rows = append(rows, []string{p.StudentID, p.Grade, formatPlain(p.X, 2), formatPlain(p.Y, 2), formatFloat(p.Size, 2)})
	}
	if tr := s.Trend; tr != nil {
		rows = append(rows, noteRow(len(header), fmt.Sprintf("Trend slope=%s intercept=%s r=%s (n=%d)",
			formatPlain(tr.Slope, 4), formatPlain(tr.Intercept, 4), formatFloat(tr.R, 4), tr.N)))
	}
	return header, rows
}

// ImprovementRow is the midterm to final change of one student.
type ImprovementRow struct {
	StudentID string       `json:"student_id"`
	Midterm   float64      `json:"midterm"`
	Final     float64      `json:"final"`
	Delta     float64      `json:"delta"`
	Percent   null.Float64 `json:"percent"`
}

// ImprovementSummary aggregates the deltas under the current filter.
type ImprovementSummary struct {
	N             int          `json:"n"`
	MeanDelta     null.Float64 `json:"mean_delta"`
	MeanPercent   null.Float64 `json:"mean_percent"`
	PositiveShare null.Float64 `json:"positive_share"`
}

// Improvement is the midterm to final improvement analysis.
type Improvement struct {
	Summary ImprovementSummary `json:"summary"`
	Rows    []ImprovementRow   `json:"rows"`
}

func (m Improvement) Tabulate() ([]string, [][]string) {
	header := []string{string(FieldStudentID), string(FieldMidterm), string(FieldFinal), "Delta", "Percent"}
	rows := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		rows = append(rows, []string{r.StudentID, formatPlain(r.Midterm, 2), formatPlain(r.Final, 2), formatPlain(r.Delta, 2), formatFloat(r.Percent, 1)})
	}
	if sum := m.Summary; sum.N > 0 {
		rows = append(rows, noteRow(len(header), fmt.Sprintf("Mean delta=%s improved=%s%% (n=%d)",
			formatFloat(sum.MeanDelta, 2), formatFloat(sum.PositiveShare, 1), sum.N)))
	}
	return header, rows
}

// ComponentSummary describes the distribution of one score component the
// way a box plot draws it.
type ComponentSummary struct {
	Component   Field        `json:"component"`
	N           int          `json:"n"`
	Mean        null.Float64 `json:"mean"`
	Min         null.Float64 `json:"min"`
	Q1          null.Float64 `json:"q1"`
	Median      null.Float64 `json:"median"`
	Q3          null.Float64 `json:"q3"`
	Max         null.Float64 `json:"max"`
	WhiskerLow  null.Float64 `json:"whisker_low"`
	WhiskerHigh null.Float64 `json:"whisker_high"`
	Outliers    int          `json:"outliers"`
	Values      []float64    `json:"-"`
}

// ScoreComponents compares the assessment score distributions.
type ScoreComponents struct {
	Components []ComponentSummary `json:"components"`
}

func (s ScoreComponents) Tabulate() ([]string, [][]string) {
	header := []string{"Assessment Type", "N", "Mean", "Min", "Q1", "Median", "Q3", "Max", "Outliers"}
	rows := make([][]string, 0, len(s.Components))
	for _, c := range s.Components {
		rows = append(rows, []string{
			string(c.Component), strconv.Itoa(c.N), formatFloat(c.Mean, 2),
			formatFloat(c.Min, 2), formatFloat(c.Q1, 2), formatFloat(c.Median, 2),
			formatFloat(c.Q3, 2), formatFloat(c.Max, 2), strconv.Itoa(c.Outliers),
		})
	}
	return header, rows
}

// EducationRow summarises students by parent education level.
type EducationRow struct {
	Level         string       `json:"level"`
	Count         int          `json:"count"`
	MeanTotal     null.Float64 `json:"mean_total"`
	TopGradeShare null.Float64 `json:"top_grade_share"`
}

// EducationPerformance is the parent education chart.
type EducationPerformance struct {
	Items []EducationRow `json:"items"`
}

func (e EducationPerformance) Tabulate() ([]string, [][]string) {
	header := []string{string(FieldParentEducation), "Students", "Mean Total_Score", "A/B %"}
	rows := make([][]string, 0, len(e.Items))
	for _, it := range e.Items {
		rows = append(rows, []string{it.Level, strconv.Itoa(it.Count), formatFloat(it.MeanTotal, 1), formatFloat(it.TopGradeShare, 1)})
	}
	return header, rows
}

// AccessComparison is a Mann-Whitney U test of total scores between the
// two internet access groups.
type AccessComparison struct {
	Groups  [2]string    `json:"groups"`
	N       [2]int       `json:"n"`
	Medians [2]float64   `json:"medians"`
	U       float64      `json:"u"`
	PValue  null.Float64 `json:"p_value"`
}

// InternetAccess is the stacked grade-share chart by internet access.
type InternetAccess struct {
	Shares     CrossTab          `json:"shares"`
	Comparison *AccessComparison `json:"comparison,omitempty"`
}

func (i InternetAccess) Tabulate() ([]string, [][]string) {
	header, rows := i.Shares.Tabulate()
	if c := i.Comparison; c != nil {
		rows = append(rows, noteRow(len(header), fmt.Sprintf("Mann-Whitney U=%s p=%s (%s vs %s)",
			formatPlain(c.U, 1), formatFloat(c.PValue, 4), c.Groups[0], c.Groups[1])))
	}
	return header, rows
}

// noteRow is a trailing summary line: the note in the first cell, the rest
// left blank.
func noteRow(width int, note string) []string {
	row := make([]string, width)
	row[0] = note
	return row
}

// Describe returns a one-line human summary of a result for logs and the
// CLI header.
func Describe(t Tabular) string {
	header, rows := t.Tabulate()
	return fmt.Sprintf("%d rows [%s]", len(rows), strings.Join(header, ", "))
}
