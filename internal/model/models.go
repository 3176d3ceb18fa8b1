package model

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

// Field names a column of the grading dataset by its CSV header.
type Field string

const (
	FieldStudentID       Field = "Student_ID"
	FieldFirstName       Field = "First_Name"
	FieldLastName        Field = "Last_Name"
	FieldEmail           Field = "Email"
	FieldGender          Field = "Gender"
	FieldAge             Field = "Age"
	FieldDepartment      Field = "Department"
	FieldAttendance      Field = "Attendance (%)"
	FieldMidterm         Field = "Midterm_Score"
	FieldFinal           Field = "Final_Score"
	FieldAssignments     Field = "Assignments_Avg"
	FieldQuizzes         Field = "Quizzes_Avg"
	FieldParticipation   Field = "Participation_Score"
	FieldProjects        Field = "Projects_Score"
	FieldTotal           Field = "Total_Score"
	FieldGrade           Field = "Grade"
	FieldStudyHours      Field = "Study_Hours_per_Week"
	FieldExtracurricular Field = "Extracurricular_Activities"
	FieldInternet        Field = "Internet_Access_at_Home"
	FieldParentEducation Field = "Parent_Education_Level"
	FieldIncome          Field = "Family_Income_Level"
	FieldStress          Field = "Stress_Level (1-10)"
	FieldSleep           Field = "Sleep_Hours_per_Night"

	// FieldSleepGroup is derived from FieldSleep and never read from disk.
	FieldSleepGroup Field = "Sleep_Group"
)

// NumericFields are coerced to numbers on load, in this order.
var NumericFields = []Field{
	FieldAttendance,
	FieldMidterm,
	FieldFinal,
	FieldAssignments,
	FieldQuizzes,
	FieldParticipation,
	FieldProjects,
	FieldTotal,
	FieldStudyHours,
	FieldStress,
	FieldSleep,
}

// TextFields are kept as strings.
var TextFields = []Field{
	FieldStudentID,
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldGender,
	FieldAge,
	FieldDepartment,
	FieldGrade,
	FieldExtracurricular,
	FieldInternet,
	FieldParentEducation,
	FieldIncome,
}

// IsNumeric reports whether f is one of the coerced numeric columns.
func (f Field) IsNumeric() bool {
	for _, n := range NumericFields {
		if n == f {
			return true
		}
	}
	return false
}

// IsCategorical reports whether f can be used as a grouping key.
func (f Field) IsCategorical() bool {
	if f == FieldSleepGroup {
		return true
	}
	for _, c := range TextFields {
		if c == f {
			return true
		}
	}
	return false
}

// ParseField resolves a header name or a loose alias such as
// "total_score" or "attendance" to a Field.
func ParseField(name string) (Field, bool) {
	key := fieldKey(name)
	if key == "" {
		return "", false
	}
	for _, f := range allFields() {
		if string(f) == name || fieldKey(string(f)) == key {
			return f, true
		}
	}
	return "", false
}

// ResolveField is ParseField that keeps unrecognised names as they are, so
// the analysis receiving them can report the field as unknown.
func ResolveField(name string) Field {
	name = strings.TrimSpace(name)
	if f, ok := ParseField(name); ok {
		return f
	}
	return Field(name)
}

func allFields() []Field {
	fields := make([]Field, 0, len(TextFields)+len(NumericFields)+1)
	fields = append(fields, TextFields...)
	fields = append(fields, NumericFields...)
	return append(fields, FieldSleepGroup)
}

// fieldKey lowercases, drops a trailing "(...)" unit and strips separators.
func fieldKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.Index(name, "("); i > 0 {
		name = name[:i]
	}
	var b strings.Builder
	for _, r := range name {
		if r == '_' || r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StudentRecord is one row of the grading dataset. Invalid null values are
// missing cells; nothing else marks absence.
type StudentRecord struct {
	StudentID       null.String `json:"student_id"`
	FirstName       null.String `json:"first_name"`
	LastName        null.String `json:"last_name"`
	Email           null.String `json:"email"`
	Gender          null.String `json:"gender"`
	Age             null.String `json:"age"`
	Department      null.String `json:"department"`
	Grade           null.String `json:"grade"`
	Extracurricular null.String `json:"extracurricular_activities"`
	InternetAccess  null.String `json:"internet_access_at_home"`
	ParentEducation null.String `json:"parent_education_level"`
	IncomeLevel     null.String `json:"family_income_level"`

	Attendance    null.Float64 `json:"attendance"`
	Midterm       null.Float64 `json:"midterm_score"`
	Final         null.Float64 `json:"final_score"`
	Assignments   null.Float64 `json:"assignments_avg"`
	Quizzes       null.Float64 `json:"quizzes_avg"`
	Participation null.Float64 `json:"participation_score"`
	Projects      null.Float64 `json:"projects_score"`
	Total         null.Float64 `json:"total_score"`
	StudyHours    null.Float64 `json:"study_hours_per_week"`
	Stress        null.Float64 `json:"stress_level"`
	Sleep         null.Float64 `json:"sleep_hours_per_night"`
}

// Number returns the numeric value of f, invalid when missing or when f
// is not numeric.
func (r StudentRecord) Number(f Field) null.Float64 {
	switch f {
	case FieldAttendance:
		return r.Attendance
	case FieldMidterm:
		return r.Midterm
	case FieldFinal:
		return r.Final
	case FieldAssignments:
		return r.Assignments
	case FieldQuizzes:
		return r.Quizzes
	case FieldParticipation:
		return r.Participation
	case FieldProjects:
		return r.Projects
	case FieldTotal:
		return r.Total
	case FieldStudyHours:
		return r.StudyHours
	case FieldStress:
		return r.Stress
	case FieldSleep:
		return r.Sleep
	}
	return null.Float64{}
}

// Category returns the text value of f. Sleep_Group is derived from the
// sleep hours on every call.
func (r StudentRecord) Category(f Field) null.String {
	switch f {
	case FieldStudentID:
		return r.StudentID
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldEmail:
		return r.Email
	case FieldGender:
		return r.Gender
	case FieldAge:
		return r.Age
	case FieldDepartment:
		return r.Department
	case FieldGrade:
		return r.Grade
	case FieldExtracurricular:
		return r.Extracurricular
	case FieldInternet:
		return r.InternetAccess
	case FieldParentEducation:
		return r.ParentEducation
	case FieldIncome:
		return r.IncomeLevel
	case FieldSleepGroup:
		return SleepGroup(r.Sleep)
	}
	return null.String{}
}

// SetNumber assigns a numeric column. Unknown fields are ignored.
func (r *StudentRecord) SetNumber(f Field, v null.Float64) {
	switch f {
	case FieldAttendance:
		r.Attendance = v
	case FieldMidterm:
		r.Midterm = v
	case FieldFinal:
		r.Final = v
	case FieldAssignments:
		r.Assignments = v
	case FieldQuizzes:
		r.Quizzes = v
	case FieldParticipation:
		r.Participation = v
	case FieldProjects:
		r.Projects = v
	case FieldTotal:
		r.Total = v
	case FieldStudyHours:
		r.StudyHours = v
	case FieldStress:
		r.Stress = v
	case FieldSleep:
		r.Sleep = v
	}
}

// SetCategory assigns a text column. Unknown and derived fields are ignored.
func (r *StudentRecord) SetCategory(f Field, v null.String) {
	switch f {
	case FieldStudentID:
		r.StudentID = v
	case FieldFirstName:
		r.FirstName = v
	case FieldLastName:
		r.LastName = v
	case FieldEmail:
		r.Email = v
	case FieldGender:
		r.Gender = v
	case FieldAge:
		r.Age = v
	case FieldDepartment:
		r.Department = v
	case FieldGrade:
		r.Grade = v
	case FieldExtracurricular:
		r.Extracurricular = v
	case FieldInternet:
		r.InternetAccess = v
	case FieldParentEducation:
		r.ParentEducation = v
	case FieldIncome:
		r.IncomeLevel = v
	}
}
