package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/singleflight"

	"student-insights/internal/infrastructure"
	"student-insights/internal/model"
	"student-insights/pkg/utils"
)

// naTokens are read as missing in every column, on top of the empty string.
var naTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// LoadSummary describes one load for logging.
type LoadSummary struct {
	Rows    int
	Columns int
	Missing map[model.Field]int
}

// ReadStudents parses a grading CSV. Cells that hold an NA token become
// missing, and numeric columns that fail to parse become missing too. A
// numeric column absent from the header is missing on every row.
func ReadStudents(r io.Reader) (*model.Table, LoadSummary, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, LoadSummary{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, LoadSummary{}, fmt.Errorf("failed to read CSV header: empty input")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = utils.CleanHeader(h)
	}
	summary := LoadSummary{Columns: len(headers), Missing: make(map[model.Field]int)}

	if len(records) == 1 {
		return model.NewTable(headers, nil), summary, nil
	}

	rows := make([][]string, 0, len(records))
	rows = append(rows, headers)
	for _, rec := range records[1:] {
		rows = append(rows, fitRow(rec, len(headers)))
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naTokens),
	)
	if df.Err != nil {
		return nil, summary, fmt.Errorf("failed to load CSV: %w", df.Err)
	}

	students := make([]model.StudentRecord, df.Nrow())
	for _, name := range df.Names() {
		field := model.Field(name)
		col := df.Col(name)
		values := col.Records()
		missing := col.IsNaN()

		switch {
		case field.IsNumeric():
			for i, raw := range values {
				v := null.Float64{}
				if !missing[i] {
					if f, ok := utils.ParseNumeric(raw); ok {
						v = null.Float64From(f)
					}
				}
				if !v.Valid {
					summary.Missing[field]++
				}
				students[i].SetNumber(field, v)
			}
		case field.IsCategorical():
			for i, raw := range values {
				if missing[i] {
					continue
				}
				students[i].SetCategory(field, null.StringFrom(raw))
			}
		}
	}

	for _, f := range model.NumericFields {
		if _, ok := summary.Missing[f]; !ok && !containsHeader(headers, f) {
			summary.Missing[f] = len(students)
		}
	}

	summary.Rows = len(students)
	return model.NewTable(headers, students), summary, nil
}

// fitRow pads short rows and truncates long ones to the header width.
func fitRow(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

func containsHeader(headers []string, f model.Field) bool {
	for _, h := range headers {
		if h == string(f) {
			return true
		}
	}
	return false
}

// LoadStudents reads the grading CSV at path.
func LoadStudents(ctx context.Context, path string) (*model.Table, error) {
	logger := infrastructure.LoggerFromContext(ctx)
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	table, summary, err := ReadStudents(file)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	missing := make(map[string]int, len(summary.Missing))
	for f, n := range summary.Missing {
		missing[string(f)] = n
	}
	logger.InfoContext(ctx, "dataset loaded",
		"path", path,
		"rows", summary.Rows,
		"columns", summary.Columns,
		"missing_numeric", missing,
		"duration_ms", time.Since(start).Milliseconds())
	infrastructure.SetDatasetRows(summary.Rows)
	return table, nil
}

// Loader produces a table; LoadStudents bound to a path is the usual one.
type Loader func(ctx context.Context) (*model.Table, error)

// Dataset caches the loaded table for the life of the process.
type Dataset struct {
	path   string
	load   Loader
	group  singleflight.Group
	mu     sync.RWMutex
	table  *model.Table
	loaded time.Time
}

// NewDataset returns a cache over the CSV at path.
func NewDataset(path string) *Dataset {
	return &Dataset{
		path: path,
		load: func(ctx context.Context) (*model.Table, error) { return LoadStudents(ctx, path) },
	}
}

// NewDatasetWithLoader returns a cache over an arbitrary loader.
func NewDatasetWithLoader(name string, load Loader) *Dataset {
	return &Dataset{path: name, load: load}
}

// Path returns the source the dataset reads.
func (d *Dataset) Path() string {
	return d.path
}

// Table returns the cached table, loading it on first use. Concurrent first
// callers share a single load, which is not tied to any one caller's
// context: a caller that gives up gets its context error while the load
// carries on for the others.
func (d *Dataset) Table(ctx context.Context) (*model.Table, error) {
	d.mu.RLock()
	t := d.table
	d.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := d.group.DoChan("load", func() (interface{}, error) {
		d.mu.RLock()
		cached := d.table
		d.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := d.load(loadCtx)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.table = loaded
		d.loaded = time.Now()
		d.mu.Unlock()
		return loaded, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoadedAt returns when the cached table was loaded, zero if it was not.
func (d *Dataset) LoadedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Invalidate drops the cached table so the next call reloads it.
func (d *Dataset) Invalidate() {
	d.mu.Lock()
	d.table = nil
	d.loaded = time.Time{}
	d.mu.Unlock()
}

// Describe summarises the cached table.
func (d *Dataset) Describe(ctx context.Context) (model.DatasetInfo, error) {
	t, err := d.Table(ctx)
	if err != nil {
		return model.DatasetInfo{}, err
	}
	missing := make(map[model.Field]int)
	for _, f := range model.NumericFields {
		n := 0
		for i := 0; i < t.Len(); i++ {
			if !t.At(i).Number(f).Valid {
				n++
			}
		}
		missing[f] = n
	}
	return model.DatasetInfo{
		Path:       d.path,
		Rows:       t.Len(),
		Columns:    t.Columns(),
		Missing:    missing,
		Categories: t.Categories(),
		LoadedAt:   d.LoadedAt(),
	}, nil
}
