package pipeline

import (
	"errors"
	"fmt"

	"student-insights/internal/model"
)

// Precondition failures. They are user-correctable and reported as a
// message instead of a result.
var (
	ErrNoData           = errors.New("no data matches the current filters")
	ErrTooFewFields     = errors.New("select at least two numeric fields")
	ErrNoSelection      = errors.New("nothing selected")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownMethod    = errors.New("unknown correlation method")
	ErrInsufficientData = errors.New("not enough data")
)

// ErrUnknownAnalysis is returned for names missing from the catalog.
var ErrUnknownAnalysis = errors.New("unknown analysis")

// IsPrecondition reports whether err is a user-correctable failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrTooFewFields) ||
		errors.Is(err, ErrNoSelection) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrInsufficientData)
}

// ErrorCode returns the stable code clients match on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		return "NO_DATA"
	case errors.Is(err, ErrTooFewFields):
		return "TOO_FEW_FIELDS"
	case errors.Is(err, ErrNoSelection):
		return "NO_SELECTION"
	case errors.Is(err, ErrUnknownField):
		return "UNKNOWN_FIELD"
	case errors.Is(err, ErrUnknownMethod):
		return "UNKNOWN_METHOD"
	case errors.Is(err, ErrInsufficientData):
		return "INSUFFICIENT_DATA"
	case errors.Is(err, ErrUnknownAnalysis):
		return "UNKNOWN_ANALYSIS"
	}
	return "INTERNAL_ERROR"
}

func requireRows(t *model.Table) error {
	if t.Len() == 0 {
		return ErrNoData
	}
	return nil
}

func requireCategorical(t *model.Table, f model.Field) error {
	if f == "" {
		return fmt.Errorf("%w: a categorical field is required", ErrNoSelection)
	}
	if !f.IsCategorical() {
		return fmt.Errorf("%w: %q is not categorical", ErrUnknownField, f)
	}
	if !t.HasColumn(f) {
		return fmt.Errorf("%w: %q is not in the dataset", ErrUnknownField, f)
	}
	return nil
}

func requireNumeric(t *model.Table, f model.Field) error {
	if f == "" {
		return fmt.Errorf("%w: a numeric field is required", ErrNoSelection)
	}
	if !f.IsNumeric() {
		return fmt.Errorf("%w: %q is not numeric", ErrUnknownField, f)
	}
	if !t.HasColumn(f) {
		return fmt.Errorf("%w: %q is not in the dataset", ErrUnknownField, f)
	}
	return nil
}
