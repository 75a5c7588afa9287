// Package validation provides boundary validation for userd requests.
// It is a generic field-constraint checker: per-field rules for JSON
// bodies, string format checks, and optional JSON Schema validation for
// operator-supplied constraints.
package validation

import (
	"regexp"
	"strings"
)

// FieldValidator defines validation rules for a single field.
type FieldValidator struct {
	// Type specifies the expected JSON type: string, number, integer, boolean.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Required indicates the field must be present.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Nullable allows null values even when type is specified.
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// MinLength and MaxLength bound string lengths.
	MinLength *int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Pattern is a regex the string value must match.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Format names a well-known string format, e.g. "email".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Message overrides the default error message.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidateField validates a value against a FieldValidator.
func ValidateField(field, location string, value any, validator *FieldValidator) *Result {
	result := &Result{Valid: true}

	if validator == nil {
		return result
	}

	if value == nil {
		if validator.Required {
			result.AddError(NewRequiredError(field, location))
		} else if !validator.Nullable && validator.Type != "" {
			// Null where a type is demanded is an error unless nullable.
			result.AddError(NewTypeError(field, location, validator.Type))
		}
		return result
	}

	if validator.Type != "" {
		if !typeMatches(value, validator.Type) {
			result.AddError(NewTypeError(field, location, validator.Type))
			return result // stop on type mismatch
		}
	}

	if s, ok := value.(string); ok {
		validateString(field, location, s, validator, result)
	}

	return result
}

// typeMatches checks a decoded JSON value against the expected type name.
func typeMatches(value any, expectedType string) bool {
	switch strings.ToLower(expectedType) {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		return isJSONNumber(value)
	case "integer":
		if n, ok := value.(float64); ok {
			return n == float64(int64(n))
		}
		switch value.(type) {
		case int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}

func isJSONNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

// validateString applies string-specific constraints.
func validateString(field, location, value string, validator *FieldValidator, result *Result) {
	if validator.MinLength != nil && len(value) < *validator.MinLength {
		result.AddError(NewMinLengthError(field, location, *validator.MinLength))
	}

	if validator.MaxLength != nil && len(value) > *validator.MaxLength {
		result.AddError(NewMaxLengthError(field, location, *validator.MaxLength))
	}

	if validator.Pattern != "" {
		matched, err := regexp.MatchString(validator.Pattern, value)
		if err != nil || !matched {
			fieldErr := NewPatternError(field, location, validator.Pattern)
			if validator.Message != "" {
				fieldErr.Message = validator.Message
			}
			result.AddError(fieldErr)
		}
	}

	if validator.Format != "" {
		if !ValidateFormat(validator.Format, value) {
			fieldErr := NewFormatError(field, location, validator.Format)
			if validator.Message != "" {
				fieldErr.Message = validator.Message
			}
			result.AddError(fieldErr)
		}
	}
}

// ValidateRequired checks that all required fields are present.
func ValidateRequired(location string, data map[string]any, required []string) *Result {
	result := &Result{Valid: true}

	for _, field := range required {
		if _, exists := data[field]; !exists {
			result.AddError(NewRequiredError(field, location))
		}
	}

	return result
}

// ValidateFields validates all fields in data against field validators.
// Absent fields fail only when marked required; present fields are always
// checked against their rules.
func ValidateFields(location string, data map[string]any, fields map[string]*FieldValidator) *Result {
	result := &Result{Valid: true}

	for fieldName, validator := range fields {
		value, exists := data[fieldName]
		if !exists {
			if validator.Required {
				result.AddError(NewRequiredError(fieldName, location))
			}
			continue
		}

		result.Merge(ValidateField(fieldName, location, value, validator))
	}

	return result
}
