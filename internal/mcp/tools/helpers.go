// Package tools contains MCP tool implementations for field specs.
package tools

import (
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/internal/catalog"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/legacy"
)

// MIME type constant.
const MimeJSON = "application/json"

// MakeJSONToolResult creates a CallToolResult with JSON text content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: string(b)},
		},
	}, nil
}

// ToAny re-encodes v as a generic JSON value. Tool outputs carry field specs
// this way so the inferred output schema stays unrestricted.
func ToAny(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return out, nil
}

// FieldSummary is the compact view of a catalog field.
type FieldSummary struct {
	Key                  string   `json:"key"`
	DisplayName          string   `json:"display_name"`
	Description          string   `json:"description,omitempty"`
	DataType             string   `json:"data_type"`
	ExpectMultipleValues bool     `json:"expect_multiple_values"`
	Required             bool     `json:"required"`
	Constraints          []string `json:"constraints,omitzero"`
	ValuesProtocol       string   `json:"values_protocol,omitempty"`
	ValuesMode           string   `json:"values_mode,omitempty"`
	Source               string   `json:"source"`
}

// Summarize builds the compact view of an entry.
func Summarize(e *catalog.Entry) FieldSummary {
	f := e.Field
	s := FieldSummary{
		Key:                  e.Key,
		DisplayName:          f.DisplayName,
		Description:          f.Description,
		DataType:             string(f.DataType),
		ExpectMultipleValues: f.ExpectMultipleValues,
		Required:             f.Required,
		Source:               e.Source,
	}
	for _, c := range f.Constraints {
		s.Constraints = append(s.Constraints, c.Name)
	}
	if f.ValuesEndpoint != nil {
		s.ValuesProtocol = string(f.ValuesEndpoint.Protocol)
		s.ValuesMode = string(f.ValuesEndpoint.EffectiveMode())
	}
	return s
}

// fieldFromInput resolves the field a tool operates on: a catalog key or an
// inline definition, which is upgraded from legacy shapes and checked.
func fieldFromInput(d *Deps, key string, inline map[string]any) (*inputspec.FieldSpec, []string, error) {
	switch {
	case key != "" && inline != nil:
		return nil, nil, ErrInvalidInput("provide either key or field, not both")
	case key != "":
		entry, err := d.LookupField(key)
		if err != nil {
			return nil, nil, err
		}
		return entry.Field, nil, nil
	case inline != nil:
		data, err := json.Marshal(inline)
		if err != nil {
			return nil, nil, ErrInvalidInput("field is not valid JSON: " + err.Error())
		}
		field, report, err := legacy.DecodeField(data)
		if err != nil {
			return nil, nil, ErrInvalidInput("invalid field: " + err.Error())
		}
		if err := field.Check(); err != nil {
			return nil, nil, ErrInvalidInput(err.Error())
		}
		return field, report.Notes, nil
	default:
		return nil, nil, ErrInvalidInput("either key or field is required")
	}
}
