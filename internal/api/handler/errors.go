package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"student-insights/internal/chart"
	"student-insights/internal/infrastructure"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// FieldError names one query parameter that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message}
}

func invalidParameter(name, value string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "INVALID_PARAMETER",
		Message:    fmt.Sprintf("invalid value %q for %s", value, name),
		Details:    []FieldError{{Field: name, Message: "cannot be parsed"}},
	}
}

func validationFailed(err error) *APIError {
	apiErr := newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   queryName(fe.Field()),
				Message: fmt.Sprintf("failed on %s", fe.Tag()),
			})
		}
		apiErr.Details = details
	} else {
		apiErr.Message = err.Error()
	}
	return apiErr
}

// toAPIError maps domain errors onto HTTP statuses.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, pipeline.ErrUnknownAnalysis):
		return newAPIError(http.StatusNotFound, pipeline.ErrorCode(err), err.Error())
	case errors.Is(err, store.ErrRunNotFound):
		return newAPIError(http.StatusNotFound, "RUN_NOT_FOUND", err.Error())
	case errors.Is(err, chart.ErrNoChart):
		return newAPIError(http.StatusUnprocessableEntity, "NO_CHART", err.Error())
	case pipeline.IsPrecondition(err):
		return newAPIError(http.StatusUnprocessableEntity, pipeline.ErrorCode(err), err.Error())
	}
	return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		infrastructure.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err)
	}
	if rerr := render.Render(w, r, apiErr); rerr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}
