package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"student-insights/internal/model"
)

func str(v string) null.String { return null.StringFrom(v) }
func num(v float64) null.Float64 { return null.Float64From(v) }

// fiveStudentsCSV is the small end-to-end fixture: grades A, A, B, C, F and
// departments CS, CS, CS, Eng, Eng.
const fiveStudentsCSV = `Student_ID,Gender,Department,Attendance (%),Midterm_Score,Final_Score,Assignments_Avg,Quizzes_Avg,Participation_Score,Projects_Score,Total_Score,Grade,Study_Hours_per_Week,Internet_Access_at_Home,Parent_Education_Level,Family_Income_Level,Stress_Level (1-10),Sleep_Hours_per_Night
S1,Male,CS,92,70,85,80,75,9,88,90,A,20,Yes,PhD,High,3,7.5
S2,Female,CS,88,80,78,85,82,8,90,80,A,18,Yes,Master's,Medium,4.5,6.5
S3,Male,CS,75,65,70,70,68,7,72,,B,12,No,,Low,5.5,5
S4,Female,Eng,61,55,60,65,60,6,58,62,C,8,No,High School,Low,8,4.5
S5,Male,Eng,45,40,35,50,45,5,40,41,F,4,Yes,Bachelor's,Medium,9.5,9
`

func fiveStudents(t *testing.T) *model.Table {
	t.Helper()
	table, _, err := ReadStudents(strings.NewReader(fiveStudentsCSV))
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())
	return table
}

func fiveStudentsDataset(t *testing.T) *Dataset {
	t.Helper()
	table := fiveStudents(t)
	return NewDatasetWithLoader("fixture", func(context.Context) (*model.Table, error) {
		return table, nil
	})
}

var allColumns = func() []string {
	var cols []string
	for _, f := range model.TextFields {
		cols = append(cols, string(f))
	}
	for _, f := range model.NumericFields {
		cols = append(cols, string(f))
	}
	return cols
}()

func tableOf(records ...model.StudentRecord) *model.Table {
	return model.NewTable(allColumns, records)
}
