package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"student-insights/internal/model"
	"student-insights/pkg/utils"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ExportFormats lists the formats Export accepts.
var ExportFormats = []string{FormatCSV, FormatJSON, FormatXLSX}

// ExportResult reports one export written to disk.
type ExportResult struct {
	Format      string    `json:"format"`
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Export writes result to w in the given format.
func Export(w io.Writer, result model.Result, format string) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return exportCSV(w, result)
	case FormatJSON:
		return exportJSON(w, result)
	case FormatXLSX:
		return exportXLSX(w, result)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportToFile writes result under the run's output directory. The file is
// only created once the export has been rendered in full.
func ExportToFile(om *utils.OutputManager, result model.Result, format string) (ExportResult, error) {
	runID := result.RunID
	if runID == "" {
		runID = "adhoc"
	}
	name := om.FileName(result.Analysis, format)
	fileType := om.GetFileType(name)
	if !slices.Contains(ExportFormats, fileType) {
		return ExportResult{}, fmt.Errorf("unsupported export format: %s", format)
	}

	var buf bytes.Buffer
	if err := Export(&buf, result, fileType); err != nil {
		return ExportResult{}, err
	}

	path, err := om.GetOutputFilePath(runID, name)
	if err != nil {
		return ExportResult{}, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	_, rows := result.Data.Tabulate()
	return ExportResult{
		Format:      fileType,
		Path:        path,
		RecordCount: len(rows),
		ExportedAt:  time.Now().UTC(),
	}, nil
}

func exportCSV(w io.Writer, result model.Result) error {
	header, rows := result.Data.Tabulate()
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func exportJSON(w io.Writer, result model.Result) error {
	_, rows := result.Data.Tabulate()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":       result.RunID,
			"analysis":     result.Analysis,
			"title":        result.Title,
			"rows":         result.Rows,
			"record_count": len(rows),
			"generated_at": result.GeneratedAt,
			"exported_at":  time.Now().UTC(),
		},
		"data": result.Data,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

const xlsxSheet = "Results"

func exportXLSX(w io.Writer, result model.Result) error {
	header, rows := result.Data.Tabulate()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(xlsxSheet, col, col, 18); err != nil {
			return err
		}
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(xlsxSheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			var v interface{} = value
			if n, ok := utils.ParseNumeric(value); ok {
				v = n
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
