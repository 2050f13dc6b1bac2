package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/internal/schema"
)

// FieldSchemaInput is the input for inputspec_field_schema.
type FieldSchemaInput struct {
	Key   string         `json:"key,omitempty" jsonschema:"Catalog field key; omit key and field for the document schema"`
	Field map[string]any `json:"field,omitempty" jsonschema:"Inline field definition"`
}

// FieldSchemaOutput is the output for inputspec_field_schema.
type FieldSchemaOutput struct {
	Kind   string `json:"kind"`
	Schema any    `json:"schema"`
}

// ToolFieldSchema returns a JSON Schema for the values of a field, or the
// schema of field documents themselves when no field is given.
func ToolFieldSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FieldSchemaInput) (*sdkmcp.CallToolResult, FieldSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FieldSchemaInput) (*sdkmcp.CallToolResult, FieldSchemaOutput, error) {
		if input.Key == "" && input.Field == nil {
			s, err := ToAny(schema.DocumentSchema())
			if err != nil {
				return nil, FieldSchemaOutput{}, err
			}
			return nil, FieldSchemaOutput{Kind: "document", Schema: s}, nil
		}

		field, _, err := fieldFromInput(d, input.Key, input.Field)
		if err != nil {
			return nil, FieldSchemaOutput{}, err
		}
		s, err := ToAny(schema.ValueSchema(field))
		if err != nil {
			return nil, FieldSchemaOutput{}, err
		}
		return nil, FieldSchemaOutput{Kind: "value", Schema: s}, nil
	}
}
