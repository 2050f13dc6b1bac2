package tools

import (
	"context"
	"sort"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListFieldsInput is the input for inputspec_list_fields.
type ListFieldsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive substring of the key or display name"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max fields to return (default: 50)"`
}

// ListFieldsOutput is the output for inputspec_list_fields.
type ListFieldsOutput struct {
	Fields    []FieldSummary `json:"fields,omitzero"`
	Total     int            `json:"total"`
	Truncated bool           `json:"truncated,omitempty"`
	Failures  []LoadFailure  `json:"failures,omitempty"`
}

// LoadFailure is a document the catalog could not load.
type LoadFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ToolListFields lists the fields of the catalog.
func ToolListFields(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListFieldsInput) (*sdkmcp.CallToolResult, ListFieldsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListFieldsInput) (*sdkmcp.CallToolResult, ListFieldsOutput, error) {
		if input.Limit < 0 {
			return nil, ListFieldsOutput{}, ErrInvalidInput("limit must not be negative")
		}
		limit := input.Limit
		if limit == 0 {
			limit = 50
		}

		entries := d.Catalog.List(input.Query)
		output := ListFieldsOutput{Total: len(entries)}
		if len(entries) > limit {
			entries = entries[:limit]
			output.Truncated = true
		}
		for _, e := range entries {
			output.Fields = append(output.Fields, Summarize(e))
		}

		for source, msg := range d.Catalog.Failures() {
			output.Failures = append(output.Failures, LoadFailure{Source: source, Error: msg})
		}
		sort.Slice(output.Failures, func(i, j int) bool {
			return output.Failures[i].Source < output.Failures[j].Source
		})

		return nil, output, nil
	}
}

// GetFieldInput is the input for inputspec_get_field.
type GetFieldInput struct {
	Key string `json:"key" jsonschema:"required,Field key from inputspec_list_fields"`
}

// GetFieldOutput is the output for inputspec_get_field.
type GetFieldOutput struct {
	Summary      FieldSummary `json:"summary"`
	Field        any          `json:"field"`
	UpgradeNotes []string     `json:"upgrade_notes,omitempty"`
}

// ToolGetField returns the full definition of one field.
func ToolGetField(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetFieldInput) (*sdkmcp.CallToolResult, GetFieldOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetFieldInput) (*sdkmcp.CallToolResult, GetFieldOutput, error) {
		entry, err := d.LookupField(input.Key)
		if err != nil {
			return nil, GetFieldOutput{}, err
		}

		field, err := ToAny(entry.Field)
		if err != nil {
			return nil, GetFieldOutput{}, err
		}

		return nil, GetFieldOutput{
			Summary:      Summarize(entry),
			Field:        field,
			UpgradeNotes: entry.UpgradeNotes,
		}, nil
	}
}
