package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestValidateField_Required(t *testing.T) {
	validator := &FieldValidator{Type: "string", Required: true}

	result := ValidateField("name", LocationBody, nil, validator)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCodeRequired, result.Errors[0].Code)
	assert.Equal(t, "name", result.Errors[0].Field)
}

func TestValidateField_Nullable(t *testing.T) {
	validator := &FieldValidator{Type: "string", Nullable: true}

	result := ValidateField("nickname", LocationBody, nil, validator)
	assert.True(t, result.Valid)
}

func TestValidateField_TypeMismatch(t *testing.T) {
	tests := []struct {
		name      string
		fieldType string
		value     any
		wantValid bool
	}{
		{"string ok", "string", "alice", true},
		{"string got number", "string", float64(3), false},
		{"number ok", "number", float64(3.5), true},
		{"number got string", "number", "3.5", false},
		{"integer ok", "integer", float64(7), true},
		{"integer got fraction", "integer", float64(7.5), false},
		{"boolean ok", "boolean", true, true},
		{"boolean got string", "boolean", "true", false},
		{"unknown type passes", "blob", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &FieldValidator{Type: tt.fieldType}
			result := ValidateField("f", LocationBody, tt.value, validator)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.Len(t, result.Errors, 1)
				assert.Equal(t, ErrCodeType, result.Errors[0].Code)
			}
		})
	}
}

func TestValidateField_StringConstraints(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		validator *FieldValidator
		wantValid bool
		wantCode  string
	}{
		{
			name:      "min length ok",
			value:     "ab",
			validator: &FieldValidator{Type: "string", MinLength: intPtr(2)},
			wantValid: true,
		},
		{
			name:      "min length violated",
			value:     "a",
			validator: &FieldValidator{Type: "string", MinLength: intPtr(2)},
			wantValid: false,
			wantCode:  ErrCodeMinLength,
		},
		{
			name:      "max length violated",
			value:     "abcdef",
			validator: &FieldValidator{Type: "string", MaxLength: intPtr(5)},
			wantValid: false,
			wantCode:  ErrCodeMaxLength,
		},
		{
			name:      "pattern ok",
			value:     "user-42",
			validator: &FieldValidator{Type: "string", Pattern: `^user-\d+$`},
			wantValid: true,
		},
		{
			name:      "pattern violated",
			value:     "42-user",
			validator: &FieldValidator{Type: "string", Pattern: `^user-\d+$`},
			wantValid: false,
			wantCode:  ErrCodePattern,
		},
		{
			name:      "email format ok",
			value:     "alice@example.com",
			validator: &FieldValidator{Type: "string", Format: "email"},
			wantValid: true,
		},
		{
			name:      "email format violated",
			value:     "not-an-email",
			validator: &FieldValidator{Type: "string", Format: "email"},
			wantValid: false,
			wantCode:  ErrCodeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateField("f", LocationBody, tt.value, tt.validator)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantCode, result.Errors[0].Code)
			}
		})
	}
}

func TestValidateField_CustomMessage(t *testing.T) {
	validator := &FieldValidator{
		Type:    "string",
		Pattern: `^[a-z]+$`,
		Message: "lowercase letters only",
	}

	result := ValidateField("handle", LocationBody, "Mixed42", validator)
	require.False(t, result.Valid)
	assert.Equal(t, "lowercase letters only", result.Errors[0].Message)
}

func TestValidateRequired(t *testing.T) {
	data := map[string]any{"name": "Alice"}

	result := ValidateRequired(LocationBody, data, []string{"name", "email"})
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Field)
	assert.Equal(t, ErrCodeRequired, result.Errors[0].Code)
}

func TestValidateFields(t *testing.T) {
	fields := map[string]*FieldValidator{
		"name":  {Type: "string", Required: true, MinLength: intPtr(1)},
		"email": {Type: "string", Format: "email"},
	}

	t.Run("all valid", func(t *testing.T) {
		data := map[string]any{"name": "Alice", "email": "alice@example.com"}
		result := ValidateFields(LocationBody, data, fields)
		assert.True(t, result.Valid)
	})

	t.Run("optional field absent", func(t *testing.T) {
		data := map[string]any{"name": "Alice"}
		result := ValidateFields(LocationBody, data, fields)
		assert.True(t, result.Valid)
	})

	t.Run("multiple failures reported together", func(t *testing.T) {
		data := map[string]any{"name": "", "email": "nope"}
		result := ValidateFields(LocationBody, data, fields)
		require.False(t, result.Valid)
		assert.Len(t, result.Errors, 2)
	})
}

func TestValidateFormat_Email(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"no-at-sign", false},
		{"missing@domain", false},
		{"Display Name <alice@example.com>", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateFormat("email", tt.email), "email %q", tt.email)
		})
	}
}

func TestValidateFormat_UnknownFormatPasses(t *testing.T) {
	assert.True(t, ValidateFormat("uuid", "anything"))
}

func TestResult_Detail(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		r := &Result{Valid: true}
		r.AddError(NewRequiredError("name", LocationBody))
		assert.Equal(t, "body.name: field 'name' is required", r.Detail())
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{Valid: true}
		r.AddError(NewRequiredError("name", LocationBody))
		r.AddError(NewRequiredError("email", LocationBody))
		assert.Equal(t, "2 validation errors", r.Detail())
	})
}
