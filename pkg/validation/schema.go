package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Rules bundles the validation applied to one request body: required
// fields, per-field constraints, and an optional JSON Schema supplied by
// the operator for extra constraints.
type Rules struct {
	// Required lists field names that must be present in the body.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`

	// Fields defines per-field validation rules.
	Fields map[string]*FieldValidator `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Schema is an inline JSON Schema applied to the whole body.
	Schema any `json:"schema,omitempty" yaml:"schema,omitempty"`

	// SchemaFile is a path to an external JSON Schema document.
	SchemaFile string `json:"schemaFile,omitempty" yaml:"schemaFile,omitempty"`
}

// IsEmpty returns true if no validation rules are configured.
func (r *Rules) IsEmpty() bool {
	if r == nil {
		return true
	}
	return len(r.Required) == 0 && len(r.Fields) == 0 && r.Schema == nil && r.SchemaFile == ""
}

// Validator validates request bodies against a Rules set.
// The JSON Schema, when configured, is compiled on first use and cached.
type Validator struct {
	rules     *Rules
	schema    *jsonschema.Schema
	schemaErr error
	once      sync.Once
}

// NewValidator creates a Validator from rules. A nil rules set validates
// everything as passing.
func NewValidator(rules *Rules) *Validator {
	return &Validator{rules: rules}
}

// ValidateBody validates a decoded JSON body. Field rules and the schema
// complement each other: both run, and their errors are combined.
func (v *Validator) ValidateBody(body map[string]any) *Result {
	result := &Result{Valid: true}
	if v == nil || v.rules.IsEmpty() {
		return result
	}

	if len(v.rules.Required) > 0 {
		result.Merge(ValidateRequired(LocationBody, body, v.rules.Required))
	}
	if len(v.rules.Fields) > 0 {
		result.Merge(ValidateFields(LocationBody, body, v.rules.Fields))
	}
	if v.rules.Schema != nil || v.rules.SchemaFile != "" {
		result.Merge(v.validateSchema(body))
	}

	return result
}

// validateSchema validates the body against the configured JSON Schema.
func (v *Validator) validateSchema(body map[string]any) *Result {
	result := &Result{Valid: true}

	v.once.Do(func() {
		v.schema, v.schemaErr = v.compileSchema()
	})

	if v.schemaErr != nil {
		result.AddError(&FieldError{
			Location: LocationBody,
			Code:     ErrCodeSchema,
			Message:  fmt.Sprintf("schema compilation error: %v", v.schemaErr),
		})
		return result
	}
	if v.schema == nil {
		return result
	}

	if err := v.schema.Validate(body); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			collectSchemaErrors(validationErr, result)
		} else {
			result.AddError(&FieldError{
				Location: LocationBody,
				Code:     ErrCodeSchema,
				Message:  err.Error(),
			})
		}
	}

	return result
}

// compileSchema compiles the configured JSON Schema source.
func (v *Validator) compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	var schemaData any
	if v.rules.SchemaFile != "" {
		data, err := os.ReadFile(filepath.Clean(v.rules.SchemaFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		if err := json.Unmarshal(data, &schemaData); err != nil {
			return nil, fmt.Errorf("failed to parse schema file: %w", err)
		}
	} else {
		schemaData = v.rules.Schema
	}

	// Round-trip through JSON so YAML-decoded schemas get consistent types.
	schemaBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := compiler.AddResource("schema.json", strings.NewReader(string(schemaBytes))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	return compiler.Compile("schema.json")
}

// collectSchemaErrors flattens nested schema validation errors into field
// errors.
func collectSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(&FieldError{
			Field:    fieldFromPointer(err.InstanceLocation),
			Location: LocationBody,
			Code:     ErrCodeSchema,
			Message:  err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// fieldFromPointer converts a JSON Pointer path to dot notation.
func fieldFromPointer(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
