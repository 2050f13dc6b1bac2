package tools

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

func TestCheckOutputSchema_ToolOutputs(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[ListFieldsOutput]("inputspec_list_fields")
		CheckOutputSchema[GetFieldOutput]("inputspec_get_field")
		CheckOutputSchema[ValidateOutput]("inputspec_validate")
		CheckOutputSchema[ResolveValuesOutput]("inputspec_resolve_values")
		CheckOutputSchema[FieldSchemaOutput]("inputspec_field_schema")
	})
}

func TestCheckOutput_HandlerShapedOutputs(t *testing.T) {
	field, err := ToAny(&inputspec.FieldSpec{
		DisplayName: "Size",
		DataType:    inputspec.DataTypeString,
		ValuesEndpoint: &inputspec.ValuesEndpoint{
			Protocol: inputspec.ProtocolInline,
			Values:   []inputspec.ValueAlias{{Value: "s", Label: "Small"}},
		},
	})
	require.NoError(t, err)

	slugErr := validation.Error{
		ConstraintName: "slug",
		Message:        "Invalid format",
		Value:          "Bad Name",
		Index:          intPtr(1),
		Kind:           validation.KindConstraint,
	}

	tests := []struct {
		name  string
		check func() error
	}{
		{"empty listing", func() error { return checkOutput(ListFieldsOutput{}) }},
		{"listing with failures", func() error {
			return checkOutput(ListFieldsOutput{
				Fields:    []FieldSummary{{Key: "profile.size", DisplayName: "Size", DataType: "STRING", Source: "profile.json"}},
				Total:     3,
				Truncated: true,
				Failures:  []LoadFailure{{Source: "broken.yaml", Error: "unexpected EOF"}},
			})
		}},
		{"field with notes", func() error {
			return checkOutput(GetFieldOutput{
				Summary:      FieldSummary{Key: "profile.size", Constraints: []string{"length"}},
				Field:        field,
				UpgradeNotes: []string{"mode STRICT renamed to CLOSED"},
			})
		}},
		{"valid value has no errors", func() error { return checkOutput(ValidateOutput{IsValid: true}) }},
		{"invalid value", func() error {
			return checkOutput(ValidateOutput{
				Errors:       []validation.Error{slugErr},
				ByConstraint: map[string][]validation.Error{"slug": {slugErr}},
			})
		}},
		{"unresolved page", func() error { return checkOutput(ResolveValuesOutput{Mode: "CLOSED"}) }},
		{"resolved page", func() error {
			return checkOutput(&ResolveValuesOutput{
				Values:  []inputspec.ValueAlias{{Value: 1.0, Label: "One"}, {Value: true, Label: "true"}},
				Total:   intPtr(2),
				Page:    intPtr(1),
				Mode:    "SUGGESTIONS",
				Cleared: intPtr(-1),
			})
		}},
		{"value schema", func() error {
			return checkOutput(FieldSchemaOutput{Kind: "value", Schema: map[string]any{"type": "string"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.check())
		})
	}
}

func TestCheckOutput_NilPointer(t *testing.T) {
	assert.Error(t, checkOutput[*ResolveValuesOutput](nil))
}

func TestCheckOutputSchema_panicsOnNilValues(t *testing.T) {
	type pageOutput struct {
		Values []inputspec.ValueAlias `json:"values"`
		Mode   string                 `json:"mode"`
	}
	assert.Panics(t, func() {
		CheckOutputSchema[pageOutput]("values_without_omitzero")
	})
	assert.Error(t, checkOutput(pageOutput{Mode: "CLOSED"}))
	assert.NoError(t, checkOutput(pageOutput{Values: []inputspec.ValueAlias{}, Mode: "CLOSED"}))
}

func TestCheckOutputSchema_panicsOnRawField(t *testing.T) {
	type fieldOutput struct {
		Field json.RawMessage `json:"field,omitempty"`
	}
	assert.Panics(t, func() {
		CheckOutputSchema[fieldOutput]("raw_field")
	})
}

func TestCheckOutputSchema_panicsOnNestedRawErrors(t *testing.T) {
	type detail struct {
		Errors []json.RawMessage `json:"errors,omitzero"`
	}
	type validateOutput struct {
		Details map[string]detail `json:"details,omitempty"`
	}
	assert.Panics(t, func() {
		CheckOutputSchema[validateOutput]("raw_nested_errors")
	})
}

func TestCheckOutputSchema_untypedOutput(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[any]("untyped")
	})
	assert.NoError(t, checkOutput[any](map[string]any{"anything": []any{1, "two"}}))
}

func TestAddTool_RejectsBadOutputAtRegistration(t *testing.T) {
	type countOutput struct {
		Keys []string `json:"keys"`
	}
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	assert.Panics(t, func() {
		AddTool(srv, &sdkmcp.Tool{Name: "count_keys"}, func(ctx context.Context, req *sdkmcp.CallToolRequest, in struct{}) (*sdkmcp.CallToolResult, countOutput, error) {
			return nil, countOutput{}, nil
		})
	})
}
