package validation

import "fmt"

// ErrorCode constants for machine-readable error identification.
const (
	ErrCodeRequired    = "required"
	ErrCodeType        = "type"
	ErrCodeMinLength   = "min_length"
	ErrCodeMaxLength   = "max_length"
	ErrCodePattern     = "pattern"
	ErrCodeFormat      = "format"
	ErrCodeSchema      = "schema"
	ErrCodeInvalidJSON = "invalid_json"
)

// ErrorLocation constants.
const (
	LocationBody = "body"
	LocationPath = "path"
)

// FieldError represents a detailed validation error for a single field.
type FieldError struct {
	// Field is the name of the field that failed validation.
	Field string `json:"field"`

	// Location indicates where the field is: body or path.
	Location string `json:"location"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Expected describes what was expected.
	Expected string `json:"expected,omitempty"`

	// Hint provides a user-friendly suggestion for fixing the error.
	Hint string `json:"hint,omitempty"`
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Location, e.Field, e.Message)
	}
	return e.Message
}

// Result contains the outcome of validation.
type Result struct {
	// Valid is true if validation passed.
	Valid bool `json:"valid"`

	// Errors contains validation errors (when Valid is false).
	Errors []*FieldError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result.
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge combines another result into this one.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Detail summarizes the result for an error response body.
func (r *Result) Detail() string {
	switch len(r.Errors) {
	case 0:
		return ""
	case 1:
		return r.Errors[0].Error()
	default:
		return fmt.Sprintf("%d validation errors", len(r.Errors))
	}
}

// NewRequiredError creates an error for a missing required field.
func NewRequiredError(field, location string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeRequired,
		Message:  fmt.Sprintf("field '%s' is required", field),
		Expected: "non-null value",
		Hint:     fmt.Sprintf("Add the '%s' field to your request %s", field, location),
	}
}

// NewTypeError creates an error for a type mismatch.
func NewTypeError(field, location, expected string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeType,
		Message:  fmt.Sprintf("expected type '%s'", expected),
		Expected: expected,
		Hint:     fmt.Sprintf("Ensure '%s' is a valid %s", field, expected),
	}
}

// NewMinLengthError creates an error for a string that is too short.
func NewMinLengthError(field, location string, minLength int) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeMinLength,
		Message:  fmt.Sprintf("must be at least %d characters", minLength),
		Expected: fmt.Sprintf(">= %d characters", minLength),
		Hint:     fmt.Sprintf("Add more characters to '%s'", field),
	}
}

// NewMaxLengthError creates an error for a string that is too long.
func NewMaxLengthError(field, location string, maxLength int) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeMaxLength,
		Message:  fmt.Sprintf("must be at most %d characters", maxLength),
		Expected: fmt.Sprintf("<= %d characters", maxLength),
		Hint:     fmt.Sprintf("Reduce the length of '%s'", field),
	}
}

// NewPatternError creates an error for a regex pattern mismatch.
func NewPatternError(field, location, pattern string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodePattern,
		Message:  fmt.Sprintf("must match pattern '%s'", pattern),
		Expected: fmt.Sprintf("pattern: %s", pattern),
		Hint:     fmt.Sprintf("Ensure '%s' matches the required format", field),
	}
}

// NewFormatError creates an error for a format validation failure.
func NewFormatError(field, location, format string) *FieldError {
	hint := fmt.Sprintf("Ensure '%s' is a valid %s", field, format)
	if format == "email" {
		hint = "Example: user@example.com"
	}
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeFormat,
		Message:  fmt.Sprintf("must be a valid %s", format),
		Expected: fmt.Sprintf("format: %s", format),
		Hint:     hint,
	}
}
