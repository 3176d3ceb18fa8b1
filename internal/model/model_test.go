package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"Total_Score", FieldTotal, true},
		{"total_score", FieldTotal, true},
		{"attendance", FieldAttendance, true},
		{"Attendance (%)", FieldAttendance, true},
		{"stress level", FieldStress, true},
		{"sleep_group", FieldSleepGroup, true},
		{"", "", false},
		{"shoe size", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseField(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolveField(t *testing.T) {
	assert.Equal(t, FieldGrade, ResolveField(" grade "))
	assert.Equal(t, Field("shoe_size"), ResolveField("shoe_size"))
	assert.Equal(t, Field(""), ResolveField(""))
}

func TestFieldKinds(t *testing.T) {
	assert.True(t, FieldTotal.IsNumeric())
	assert.False(t, FieldTotal.IsCategorical())
	assert.True(t, FieldGrade.IsCategorical())
	assert.True(t, FieldSleepGroup.IsCategorical())
	assert.False(t, FieldSleepGroup.IsNumeric())
	assert.Len(t, NumericFields, 11)
}

func TestSleepGroup(t *testing.T) {
	tests := []struct {
		hours null.Float64
		want  string
	}{
		{null.Float64From(4), "<=5h"},
		{null.Float64From(5), "<=5h"},
		{null.Float64From(5.5), "5-6h"},
		{null.Float64From(7), "6-7h"},
		{null.Float64From(8), "7-8h"},
		{null.Float64From(8.1), ">8h"},
		{null.Float64From(12), ">8h"},
	}
	for _, tt := range tests {
		got := SleepGroup(tt.hours)
		require.True(t, got.Valid, "%v", tt.hours.Float64)
		assert.Equal(t, tt.want, got.String, "%v", tt.hours.Float64)
	}

	assert.False(t, SleepGroup(null.Float64{}).Valid)
	assert.False(t, SleepGroup(null.Float64From(-1)).Valid)
}

func TestOrderValues(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "F", "E"}, OrderValues(FieldGrade, []string{"E", "F", "B", "A"}))
	assert.Equal(t, []string{"Art", "CS", "Math"}, OrderValues(FieldDepartment, []string{"Math", "CS", "Art"}))
	assert.Equal(t,
		[]string{"High School", "PhD", NotReported},
		OrderValues(FieldParentEducation, []string{NotReported, "PhD", "High School"}))
}

func TestFilterMatches(t *testing.T) {
	rec := StudentRecord{
		Department: null.StringFrom("CS"),
		Gender:     null.StringFrom("Female"),
		Grade:      null.StringFrom("B"),
		StudyHours: null.Float64From(12),
		Attendance: null.Float64From(75),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter", Filter{}, true},
		{"department hit", Filter{Departments: []string{"Math", "CS"}}, true},
		{"department miss", Filter{Departments: []string{"Math"}}, false},
		{"and composition", Filter{Departments: []string{"CS"}, Genders: []string{"Male"}}, false},
		{"study range", Filter{StudyHours: Range{Min: null.Float64From(10), Max: null.Float64From(12)}}, true},
		{"study range miss", Filter{StudyHours: Range{Min: null.Float64From(13)}}, false},
		{"attendance threshold", Filter{MinAttendance: null.Float64From(75)}, true},
		{"attendance too high", Filter{MinAttendance: null.Float64From(80)}, false},
		{"missing sleep excluded by range", Filter{SleepHours: Range{Max: null.Float64From(9)}}, false},
		{"missing income excluded by set", Filter{IncomeLevels: []string{"Low"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(rec))
		})
	}
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{MinAttendance: null.Float64From(1)}.IsZero())
}

func TestTableIsImmutable(t *testing.T) {
	records := []StudentRecord{
		{Department: null.StringFrom("CS"), Total: null.Float64From(90)},
		{Department: null.StringFrom("Eng"), Total: null.Float64From(60)},
	}
	table := NewTable([]string{string(FieldDepartment), string(FieldTotal)}, records)

	records[0].Department = null.StringFrom("Changed")
	assert.Equal(t, "CS", table.At(0).Department.String)

	copied := table.Records()
	copied[1].Total = null.Float64{}
	assert.True(t, table.At(1).Total.Valid)

	narrowed := table.Filter(Filter{Departments: []string{"Eng"}})
	assert.Equal(t, 1, narrowed.Len())
	assert.Equal(t, 2, table.Len())
	assert.True(t, narrowed.HasColumn(FieldTotal))

	assert.Equal(t, []float64{90, 60}, table.Numbers(FieldTotal))
	assert.Equal(t, []string{"CS", "Eng"}, table.Distinct(FieldDepartment))
	assert.False(t, table.HasColumn(FieldSleepGroup))

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestCategories(t *testing.T) {
	table := NewTable([]string{string(FieldGrade), string(FieldSleep)}, []StudentRecord{
		{Grade: null.StringFrom("C"), Sleep: null.Float64From(6)},
		{Grade: null.StringFrom("A"), Sleep: null.Float64From(9)},
	})

	infos := make(map[Field]CategoryInfo)
	for _, c := range table.Categories() {
		infos[c.Field] = c
	}
	assert.Len(t, infos, len(Categories))
	assert.Equal(t, []string{"A", "C"}, infos[FieldGrade].Values)
	assert.Equal(t, []string{"5-6h", ">8h"}, infos[FieldSleepGroup].Values)
	assert.False(t, infos[FieldDepartment].Available)
	assert.False(t, infos[FieldDepartment].Ordered)
}

func TestTabulate(t *testing.T) {
	ct := CrossTab{
		RowField:  FieldGender,
		Rows:      []string{"Male"},
		Cols:      []string{"A", "B"},
		Counts:    [][]int{{3, 1}},
		RowTotals: []int{4},
	}
	header, rows := ct.Tabulate()
	assert.Equal(t, []string{"Gender", "A", "B"}, header)
	assert.Equal(t, [][]string{{"Male", "3", "1"}}, rows)

	ct.Percent = [][]null.Float64{{null.Float64From(75), null.Float64From(25)}}
	_, rows = ct.Tabulate()
	assert.Equal(t, [][]string{{"Male", "75.0", "25.0"}}, rows)

	gm := GroupMeans{
		GroupField: FieldDepartment,
		ValueField: FieldTotal,
		Items:      []GroupMean{{Group: "CS", Mean: null.Float64From(85), Count: 2}, {Group: "Art"}},
	}
	header, rows = gm.Tabulate()
	assert.Equal(t, []string{"Department", "Mean Total_Score", "Count"}, header)
	assert.Equal(t, []string{"Art", "", "0"}, rows[1])

	assert.Equal(t, "2 rows [Department, Mean Total_Score, Count]", Describe(gm))
}
