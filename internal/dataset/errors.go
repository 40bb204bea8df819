package dataset

import (
	"errors"
	"fmt"
)

// ValidationError reports a fact or dimension row that violates a load-time
// invariant. The load aborts on the first violation - there are no partial
// silent loads.
//
// Identifying fields (store, date, product, source line) are carried so the
// offending row can be located in the export.
type ValidationError struct {
	// Code identifies the violation category.
	Code ValidationErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based source line in the CSV, 0 if unknown.
	Line int

	// StoreID, SaleDate, ProductID identify the offending fact row where
	// applicable.
	StoreID   string
	SaleDate  string
	ProductID string
}

// ValidationErrorCode categorizes validation failures.
type ValidationErrorCode string

const (
	// ErrCodeNegativeField indicates a non-negativity invariant violation.
	ErrCodeNegativeField ValidationErrorCode = "NEGATIVE_FIELD"

	// ErrCodeDiscountRange indicates a discount outside [0, 100].
	ErrCodeDiscountRange ValidationErrorCode = "DISCOUNT_RANGE"

	// ErrCodeUnknownStore indicates a store_id absent from the store lookup.
	ErrCodeUnknownStore ValidationErrorCode = "UNKNOWN_STORE"

	// ErrCodeUnknownDate indicates a sale_date absent from the date lookup.
	ErrCodeUnknownDate ValidationErrorCode = "UNKNOWN_DATE"

	// ErrCodeUnknownWeather indicates a weather value outside the known set.
	ErrCodeUnknownWeather ValidationErrorCode = "UNKNOWN_WEATHER"

	// ErrCodeUnknownPromotion indicates a non-null promotion absent from the
	// promotion lookup.
	ErrCodeUnknownPromotion ValidationErrorCode = "UNKNOWN_PROMOTION"

	// ErrCodeDimensionConflict indicates a repeated dimension natural key
	// whose attributes disagree with the first-seen row.
	ErrCodeDimensionConflict ValidationErrorCode = "DIMENSION_CONFLICT"

	// ErrCodeMalformedField indicates a field that failed to parse.
	ErrCodeMalformedField ValidationErrorCode = "MALFORMED_FIELD"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	ident := ""
	if e.StoreID != "" || e.SaleDate != "" {
		ident = fmt.Sprintf(" (store=%s, date=%s, product=%s)", e.StoreID, e.SaleDate, e.ProductID)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s%s", e.Code, e.Line, e.Message, ident)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, ident)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
