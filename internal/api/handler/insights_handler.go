package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"student-insights/internal/chart"
	"student-insights/internal/infrastructure"
	"student-insights/internal/model"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
	"student-insights/pkg/utils"
)

const (
	defaultRecordLimit = 100
	defaultRunLimit    = 50
	maxLimit           = 10000
)

// Handler serves the analysis API over one cached dataset.
type Handler struct {
	dataset  *pipeline.Dataset
	tracker  *pipeline.Tracker
	validate *validator.Validate
}

// New returns a handler computing analyses through tracker.
func New(dataset *pipeline.Dataset, tracker *pipeline.Tracker) *Handler {
	return &Handler{
		dataset:  dataset,
		tracker:  tracker,
		validate: validator.New(),
	}
}

// ListAnalyses godoc
// @Summary List analyses
// @Description Get the catalog of analyses in menu order
// @Tags analyses
// @Produce json
// @Success 200 {object} map[string]interface{} "Analysis catalog"
// @Router /analyses [get]
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses := pipeline.Analyses()
	render.JSON(w, r, map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
	})
}

// RunAnalysis godoc
// @Summary Run an analysis
// @Description Compute one analysis over the dataset narrowed by the filter parameters
// @Tags analyses
// @Produce json
// @Param name path string true "Analysis name"
// @Param department query string false "Comma separated departments"
// @Param gender query string false "Comma separated genders"
// @Param income query string false "Comma separated family income levels"
// @Param grade query string false "Comma separated grades"
// @Param study_min query number false "Minimum weekly study hours"
// @Param study_max query number false "Maximum weekly study hours"
// @Param attendance_min query number false "Minimum attendance percentage"
// @Param sleep_min query number false "Minimum nightly sleep hours"
// @Param sleep_max query number false "Maximum nightly sleep hours"
// @Param field query string false "Categorical field (frequency)"
// @Param group query string false "Group field (grouped-mean)"
// @Param value query string false "Value field (grouped-mean)"
// @Param fill query string false "Label for missing groups (grouped-mean)"
// @Param fields query string false "Comma separated numeric fields (correlation)"
// @Param method query string false "pearson or spearman (correlation)"
// @Param normalize query bool false "Percentages instead of counts"
// @Param rows query string false "Row field (independence)"
// @Param cols query string false "Column field (independence)"
// @Param x query string false "Explanatory numeric field (trend)"
// @Param y query string false "Response numeric field (trend)"
// @Param grades query string false "Grades to plot (study-hours)"
// @Success 200 {object} model.Result "Analysis result"
// @Failure 400 {object} APIError "Invalid parameters"
// @Failure 404 {object} APIError "Unknown analysis"
// @Failure 422 {object} APIError "Analysis not applicable to the selection"
// @Failure 500 {object} APIError "Internal server error"
// @Router /analyses/{name} [get]
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.run(r)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// ExportAnalysis godoc
// @Summary Export an analysis
// @Description Compute an analysis and download its table as CSV, JSON or XLSX
// @Tags analyses
// @Produce application/octet-stream
// @Param name path string true "Analysis name"
// @Param format query string false "csv, json or xlsx" default(csv)
// @Success 200 {file} file "Exported table"
// @Failure 400 {object} APIError "Invalid parameters"
// @Failure 404 {object} APIError "Unknown analysis"
// @Failure 422 {object} APIError "Analysis not applicable to the selection"
// @Router /analyses/{name}/export [get]
func (h *Handler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = pipeline.FormatCSV
	}

	result, err := h.run(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := pipeline.Export(&buf, result, format); err != nil {
		renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", utils.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Analysis+"."+format))
	w.Header().Set("X-Run-ID", result.RunID)
	_, _ = w.Write(buf.Bytes())
}

// ChartAnalysis godoc
// @Summary Chart an analysis
// @Description Compute an analysis and render it as a PNG chart
// @Tags analyses
// @Produce image/png
// @Param name path string true "Analysis name"
// @Success 200 {file} file "PNG chart"
// @Failure 404 {object} APIError "Unknown analysis"
// @Failure 422 {object} APIError "Analysis has no chart or is not applicable"
// @Router /analyses/{name}/chart.png [get]
func (h *Handler) ChartAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.run(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, result); err != nil {
		renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", utils.ContentType("png"))
	w.Header().Set("X-Run-ID", result.RunID)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) run(r *http.Request) (model.Result, error) {
	q, err := ParseAnalysisQuery(r.URL.Query(), h.validate)
	if err != nil {
		return model.Result{}, err
	}
	return h.tracker.Run(r.Context(), h.dataset, chi.URLParam(r, "name"), q.Params())
}

// GetDataset godoc
// @Summary Describe the dataset
// @Description Rows, columns, missing numeric cells and category values of the loaded table
// @Tags dataset
// @Produce json
// @Success 200 {object} model.DatasetInfo "Dataset description"
// @Failure 500 {object} APIError "Dataset could not be loaded"
// @Router /dataset [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.dataset.Describe(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// GetRecords godoc
// @Summary Raw records
// @Description Rows of the dataset narrowed by the filter parameters
// @Tags dataset
// @Produce json
// @Param limit query int false "Maximum rows returned" default(100)
// @Success 200 {object} map[string]interface{} "Records"
// @Failure 400 {object} APIError "Invalid parameters"
// @Router /dataset/records [get]
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r, defaultRecordLimit)
	if err != nil {
		renderError(w, r, err)
		return
	}
	q, err := ParseAnalysisQuery(r.URL.Query(), h.validate)
	if err != nil {
		renderError(w, r, err)
		return
	}

	table, err := h.dataset.Table(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	filtered := table.Filter(q.Params().Filter)
	records := filtered.Records()
	if len(records) > limit {
		records = records[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"total":   filtered.Len(),
		"count":   len(records),
		"columns": filtered.Columns(),
		"records": records,
	})
}

// ReloadDataset godoc
// @Summary Reload the dataset
// @Description Drop the cached table and read the CSV again
// @Tags dataset
// @Produce json
// @Success 200 {object} model.DatasetInfo "Reloaded dataset"
// @Failure 500 {object} APIError "Dataset could not be loaded"
// @Router /dataset/reload [post]
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	h.dataset.Invalidate()
	info, err := h.dataset.Describe(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	infrastructure.LoggerFromContext(r.Context()).InfoContext(r.Context(), "dataset reloaded",
		"path", info.Path,
		"rows", info.Rows)
	render.JSON(w, r, info)
}

// ListRuns godoc
// @Summary List runs
// @Description Recorded analysis runs, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum runs returned" default(50)
// @Success 200 {object} map[string]interface{} "Runs"
// @Failure 500 {object} APIError "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r, defaultRunLimit)
	if err != nil {
		renderError(w, r, err)
		return
	}
	runs, err := store.ListRuns(limit)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"runs":    runs,
		"count":   len(runs),
		"enabled": store.Enabled(),
	})
}

// GetRun godoc
// @Summary Get run
// @Description One recorded analysis run with its errors
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.Run "Run"
// @Failure 404 {object} APIError "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := store.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, run)
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service status"
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	loadedAt := h.dataset.LoadedAt()
	body := map[string]interface{}{
		"status":         "ok",
		"dataset":        h.dataset.Path(),
		"dataset_loaded": !loadedAt.IsZero(),
		"history":        store.Enabled(),
	}
	if !loadedAt.IsZero() {
		body["loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
	}
	render.JSON(w, r, body)
}

func (h *Handler) limit(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParameter("limit", raw)
	}
	if err := h.validate.Var(n, fmt.Sprintf("min=1,max=%d", maxLimit)); err != nil {
		return 0, invalidParameter("limit", raw)
	}
	return n, nil
}
