package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

func TestValidator_ArbitrarySchema(t *testing.T) {
	v, err := NewValidator([]byte(`{"type": "object", "properties": {"name": {"type": "string"}, "age": {"type": "integer"}}, "required": ["name"]}`))
	require.NoError(t, err)

	assert.True(t, v.Validate([]byte(`{"name": "Alice", "age": 30}`)).Valid)

	result := v.Validate([]byte(`{"age": 30}`))
	assert.False(t, result.Valid)
	assert.Error(t, result.Err())

	result = v.Validate([]byte(`{"name": "Alice", "age": "thirty"}`))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "/age")

	result = v.Validate([]byte(`not json`))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "invalid JSON")
}

func TestDocumentValidator(t *testing.T) {
	v, err := NewDocumentValidator()
	require.NoError(t, err)

	valid := `{
		"protocolVersion": "2.0",
		"fields": [{
			"displayName": "Username",
			"dataType": "STRING",
			"expectMultipleValues": false,
			"required": true,
			"constraints": [{"name": "len", "min": 3, "max": 20, "pattern": "[a-z]+"}],
			"valuesEndpoint": {"protocol": "INLINE", "values": [{"value": "bob", "label": "Bob"}]}
		}]
	}`
	result := v.Validate([]byte(valid))
	assert.True(t, result.Valid, result.Errors)

	badType := `{
		"protocolVersion": "2.0",
		"fields": [{
			"displayName": "X",
			"dataType": "TEXT",
			"expectMultipleValues": false,
			"required": false,
			"constraints": []
		}]
	}`
	result = v.Validate([]byte(badType))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "/fields/0/dataType")

	missing := `{"protocolVersion": "2.0", "fields": [{"dataType": "STRING"}]}`
	assert.False(t, v.Validate([]byte(missing)).Valid)
}

func TestFieldValidator(t *testing.T) {
	v, err := NewFieldValidator()
	require.NoError(t, err)

	result := v.Validate([]byte(`{
		"displayName": "Age",
		"dataType": "NUMBER",
		"expectMultipleValues": false,
		"required": false,
		"constraints": [{"name": "range", "min": 0, "max": "120"}]
	}`))
	assert.True(t, result.Valid, result.Errors)

	result = v.Validate([]byte(`{
		"displayName": "Age",
		"dataType": "NUMBER",
		"expectMultipleValues": false,
		"required": false,
		"constraints": [{"name": "range", "min": true}]
	}`))
	assert.False(t, result.Valid)
}

func TestValueSchema_String(t *testing.T) {
	field := &inputspec.FieldSpec{
		DisplayName: "Username",
		DataType:    inputspec.DataTypeString,
		Constraints: []inputspec.Constraint{
			{Name: "len", Min: float64(3), Max: 20},
			{Name: "chars", Pattern: "[a-z]+"},
		},
	}

	s := ValueSchema(field)
	assert.Equal(t, "string", s.Type)
	assert.Equal(t, "^(?:[a-z]+)$", s.Pattern)
	require.NotNil(t, s.MinLength)
	assert.Equal(t, uint64(3), *s.MinLength)
	assert.Equal(t, uint64(20), *s.MaxLength)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	v, err := NewValidator(data)
	require.NoError(t, err)
	assert.True(t, v.Validate([]byte(`"alice"`)).Valid)
	assert.False(t, v.Validate([]byte(`"al"`)).Valid)
	assert.False(t, v.Validate([]byte(`"Alice"`)).Valid)
}

func TestValueSchema_MultiNumberWithInlineDomain(t *testing.T) {
	field := &inputspec.FieldSpec{
		DisplayName:          "Sizes",
		DataType:             inputspec.DataTypeNumber,
		ExpectMultipleValues: true,
		Constraints:          []inputspec.Constraint{{Name: "count", Min: 1, Max: 2}},
		ValuesEndpoint: &inputspec.ValuesEndpoint{
			Protocol: inputspec.ProtocolInline,
			Values:   []inputspec.ValueAlias{{Value: float64(1), Label: "S"}, {Value: float64(2), Label: "M"}},
		},
	}

	s := ValueSchema(field)
	assert.Equal(t, "array", s.Type)
	assert.Equal(t, uint64(1), *s.MinItems)
	assert.Equal(t, uint64(2), *s.MaxItems)
	require.NotNil(t, s.Items)
	assert.Equal(t, "number", s.Items.Type)
	assert.Equal(t, []any{float64(1), float64(2)}, s.Items.Enum)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	v, err := NewValidator(data)
	require.NoError(t, err)
	assert.True(t, v.Validate([]byte(`[1, 2]`)).Valid)
	assert.False(t, v.Validate([]byte(`[]`)).Valid)
	assert.False(t, v.Validate([]byte(`[3]`)).Valid)
}

func TestValueSchema_NumberBounds(t *testing.T) {
	field := &inputspec.FieldSpec{
		DisplayName: "Score",
		DataType:    inputspec.DataTypeNumber,
		Constraints: []inputspec.Constraint{{Name: "range", Min: 0.5, Max: 10}},
	}

	s := ValueSchema(field)
	assert.Equal(t, "0.5", s.Minimum.String())
	assert.Equal(t, "10", s.Maximum.String())
}
