package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-insights/internal/chart"
	"student-insights/internal/model"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
)

func parse(t *testing.T, raw string) (AnalysisQuery, error) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return ParseAnalysisQuery(values, validator.New())
}

func TestParseAnalysisQuery(t *testing.T) {
	q, err := parse(t, "department=CS,%20Eng&gender=Male&study_min=5&study_max=20&attendance_min=60"+
		"&sleep_max=8&fields=midterm_score,final_score&method=Spearman&normalize=true&group=sleep_group&value=total_score"+
		"&x=study_hours_per_week&y=total_score")
	require.NoError(t, err)

	p := q.Params()
	assert.Equal(t, []string{"CS", "Eng"}, p.Filter.Departments)
	assert.Equal(t, []string{"Male"}, p.Filter.Genders)
	assert.Equal(t, 5.0, p.Filter.StudyHours.Min.Float64)
	assert.Equal(t, 20.0, p.Filter.StudyHours.Max.Float64)
	assert.Equal(t, 60.0, p.Filter.MinAttendance.Float64)
	assert.False(t, p.Filter.SleepHours.Min.Valid)
	assert.True(t, p.Filter.SleepHours.Max.Valid)
	assert.Equal(t, []model.Field{model.FieldMidterm, model.FieldFinal}, p.Fields)
	assert.Equal(t, model.Spearman, p.Method)
	assert.True(t, p.Normalize)
	assert.Equal(t, model.FieldSleepGroup, p.GroupField)
	assert.Equal(t, model.FieldTotal, p.ValueField)
	assert.Equal(t, model.FieldStudyHours, p.XField)
	assert.Equal(t, model.FieldTotal, p.YField)
	assert.Nil(t, p.Grades)
}

func TestParseAnalysisQueryGrades(t *testing.T) {
	q, err := parse(t, "grades=A,B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, q.Params().Grades)

	q, err = parse(t, "grades=")
	require.NoError(t, err)
	assert.NotNil(t, q.Params().Grades)
	assert.Empty(t, q.Params().Grades)
}

func TestParseAnalysisQueryUnknownFieldPassesThrough(t *testing.T) {
	q, err := parse(t, "field=shoe_size")
	require.NoError(t, err)
	assert.Equal(t, model.Field("shoe_size"), q.Params().Field)
}

func TestParseAnalysisQueryRejects(t *testing.T) {
	tests := []struct {
		query string
		code  string
		field string
	}{
		{"study_min=lots", "INVALID_PARAMETER", "study_min"},
		{"normalize=maybe", "INVALID_PARAMETER", "normalize"},
		{"attendance_min=120", "VALIDATION_FAILED", "attendance_min"},
		{"sleep_min=-1", "VALIDATION_FAILED", "sleep_min"},
		{"format=pdf", "VALIDATION_FAILED", "format"},
		{"study_min=10&study_max=5", "INVALID_PARAMETER", "study_max"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := parse(t, tt.query)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.ErrorCode)

			details, ok := apiErr.Details.([]FieldError)
			require.True(t, ok)
			require.NotEmpty(t, details)
			assert.Equal(t, tt.field, details[0].Field)
		})
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("frequency: %w", pipeline.ErrNoData), http.StatusUnprocessableEntity, "NO_DATA"},
		{fmt.Errorf("%w: got 1", pipeline.ErrTooFewFields), http.StatusUnprocessableEntity, "TOO_FEW_FIELDS"},
		{pipeline.ErrUnknownMethod, http.StatusUnprocessableEntity, "UNKNOWN_METHOD"},
		{fmt.Errorf("%w: %q", pipeline.ErrUnknownAnalysis, "x"), http.StatusNotFound, "UNKNOWN_ANALYSIS"},
		{store.ErrRunNotFound, http.StatusNotFound, "RUN_NOT_FOUND"},
		{chart.ErrNoChart, http.StatusUnprocessableEntity, "NO_CHART"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		apiErr := toAPIError(tt.err)
		assert.Equal(t, tt.status, apiErr.StatusCode, tt.err.Error())
		assert.Equal(t, tt.code, apiErr.ErrorCode, tt.err.Error())
	}

	internal := toAPIError(errors.New("secret path /etc"))
	assert.NotContains(t, internal.Message, "/etc")
}
