package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"student-insights/internal/model"
	"student-insights/pkg/utils"
)

func gradeResult(t *testing.T) model.Result {
	t.Helper()
	res, err := Run(context.Background(), fiveStudentsDataset(t), "grade-distribution", model.Params{Normalize: true})
	require.NoError(t, err)
	res.RunID = "run-42"
	return res
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, gradeResult(t), "csv"))

	want := "Grade,Count,Percent\nA,2,40.0\nB,1,20.0\nC,1,20.0\nF,1,20.0\n"
	assert.Equal(t, want, buf.String())
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, gradeResult(t), "JSON"))

	var doc struct {
		ExportInfo struct {
			RunID       string `json:"run_id"`
			Analysis    string `json:"analysis"`
			RecordCount int    `json:"record_count"`
		} `json:"export_info"`
		Data struct {
			Field string `json:"field"`
			Items []struct {
				Value string `json:"value"`
				Count int    `json:"count"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-42", doc.ExportInfo.RunID)
	assert.Equal(t, "grade-distribution", doc.ExportInfo.Analysis)
	assert.Equal(t, 4, doc.ExportInfo.RecordCount)
	assert.Equal(t, "Grade", doc.Data.Field)
	assert.Len(t, doc.Data.Items, 4)
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, gradeResult(t), "xlsx"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Grade", "Count", "Percent"}, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Export(&buf, gradeResult(t), "pdf"))
}

func TestExportToFile(t *testing.T) {
	om := utils.NewOutputManager(t.TempDir())

	out, err := ExportToFile(om, gradeResult(t), "csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "run-42", "grade-distribution.csv"), out.Path)
	assert.Equal(t, 4, out.RecordCount)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Grade,Count,Percent")
}

func TestExportToFileRejectsFormatBeforeWriting(t *testing.T) {
	om := utils.NewOutputManager(t.TempDir())

	_, err := ExportToFile(om, gradeResult(t), "pdf")
	require.Error(t, err)

	entries, err := os.ReadDir(om.BaseOutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is created for a refused format")
}

func TestExportToFileWriteFailure(t *testing.T) {
	om := utils.NewOutputManager(t.TempDir())
	// A directory squatting on the target name makes the write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(om.BaseOutputDir, "run-42", "grade-distribution.json"), 0o755))

	_, err := ExportToFile(om, gradeResult(t), "JSON")
	assert.Error(t, err)
}

func TestExportCSVKeepsImprovementSummary(t *testing.T) {
	table := tableOf(
		model.StudentRecord{StudentID: str("S1"), Midterm: num(70), Final: num(85)},
		model.StudentRecord{StudentID: str("S2"), Midterm: num(80), Final: num(60)},
	)
	imp, err := Improvement(table)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, model.Result{Analysis: "improvement", Data: imp}, "csv"))

	want := "Student_ID,Midterm_Score,Final_Score,Delta,Percent\n" +
		"S1,70.00,85.00,15.00,21.4\n" +
		"S2,80.00,60.00,-20.00,-25.0\n" +
		"Mean delta=-2.50 improved=50.0% (n=2),,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestExportCSVKeepsScatterTrend(t *testing.T) {
	res, err := Run(context.Background(), fiveStudentsDataset(t), "study-hours", model.Params{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, res, "csv"))
	assert.Contains(t, buf.String(), "Trend slope=")
	assert.Contains(t, buf.String(), "(n=4)")
}
