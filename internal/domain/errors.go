package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for the failure scenarios the service distinguishes.
const (
	ErrUnknownCombination = "UNKNOWN_COMBINATION"
	ErrMalformedInput     = "MALFORMED_INPUT"
	ErrTemplateLoad       = "TEMPLATE_LOAD_FAILURE"
	ErrStore              = "STORE_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
)

// ReportError is the standardized error payload returned to API clients.
type ReportError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewReportError creates a new ReportError with timestamp.
func NewReportError(code, message, details string) *ReportError {
	return &ReportError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// ValidationError represents input validation errors.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// UnknownCombinationError reports a marker input that matched no genotype or
// diplotype key in the loaded tables. It is a structured no-match result, not
// a crash: callers surface it to the user for correction.
type UnknownCombinationError struct {
	Gene  Gene
	Input string
}

// Error implements the error interface.
func (e *UnknownCombinationError) Error() string {
	return fmt.Sprintf("%s: no known genotype/diplotype matches %q for %s",
		ErrUnknownCombination, e.Input, e.Gene)
}

// TemplateLoadError reports that the report template could not be read or
// parsed. This is a configuration error, distinct from any lookup outcome.
type TemplateLoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("%s: report template %s: %v", ErrTemplateLoad, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TemplateLoadError) Unwrap() error {
	return e.Err
}

// IsUnknownCombination reports whether err is an UnknownCombinationError.
func IsUnknownCombination(err error) bool {
	var uc *UnknownCombinationError
	return errors.As(err, &uc)
}

// IsTemplateLoad reports whether err is a TemplateLoadError.
func IsTemplateLoad(err error) bool {
	var tl *TemplateLoadError
	return errors.As(err, &tl)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
