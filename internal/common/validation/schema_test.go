package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageSchema = `{
	"type": "object",
	"properties": {
		"query":    {"type": "string", "minLength": 1, "maxLength": 4000},
		"username": {"type": "string"},
		"model":    {"type": "string", "enum": ["yandex", "giga", ""]}
	},
	"required": ["query"]
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustSchema(messageSchema)

	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		field     string
		errorCode string
	}{
		{
			name:  "valid",
			input: map[string]interface{}{"query": "какая погода в Москве", "username": "ivan"},
			valid: true,
		},
		{
			name:      "missing query",
			input:     map[string]interface{}{"username": "ivan"},
			field:     "query",
			errorCode: "REQUIRED_FIELD_MISSING",
		},
		{
			name:      "empty query",
			input:     map[string]interface{}{"query": ""},
			field:     "query",
			errorCode: "MIN_LENGTH_VIOLATION",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"query": 42},
			field:     "query",
			errorCode: "INVALID_TYPE",
		},
		{
			name:      "unknown model",
			input:     map[string]interface{}{"query": "hi", "model": "gpt"},
			field:     "model",
			errorCode: "INVALID_ENUM_VALUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.Validate(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Empty(t, result.Errors)
				return
			}
			require.True(t, result.HasErrors(tt.field), result.Error())
			assert.Equal(t, tt.errorCode, result.GetErrorsForField(tt.field)[0].Code)
		})
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustSchema(messageSchema)

	assert.True(t, schema.ValidateJSON(`{"query":"новости сегодня"}`).Valid)

	result := schema.ValidateJSON(`{not json`)
	assert.False(t, result.Valid)
	assert.Equal(t, "INVALID_DOCUMENT", result.Errors[0].Code)
}

func TestNewSchema_Invalid(t *testing.T) {
	_, err := NewSchema(`{"type": `)
	assert.Error(t, err)
}
