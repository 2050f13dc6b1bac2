package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
)

// ResolveValuesInput is the input for inputspec_resolve_values.
type ResolveValuesInput struct {
	Key     string         `json:"key,omitempty" jsonschema:"Catalog field key (or pass field)"`
	Field   map[string]any `json:"field,omitempty" jsonschema:"Inline field definition with a valuesEndpoint"`
	Search  string         `json:"search,omitempty" jsonschema:"Search text; ignored below the endpoint's minSearchLength"`
	Page    int            `json:"page,omitempty" jsonschema:"Page number for PAGE_NUMBER endpoints (default: 1)"`
	Limit   int            `json:"limit,omitempty" jsonschema:"Page size (default: endpoint defaultLimit)"`
	Refresh bool           `json:"refresh,omitempty" jsonschema:"Drop cached pages of this endpoint before resolving"`
}

// ResolveValuesOutput is the output for inputspec_resolve_values.
type ResolveValuesOutput struct {
	Values  []inputspec.ValueAlias `json:"values,omitzero"`
	Total   *int                   `json:"total,omitempty"`
	HasNext bool                   `json:"has_next"`
	Page    *int                   `json:"page,omitempty"`
	Mode    string                 `json:"mode"`
	Cleared *int                   `json:"cleared,omitempty"`
}

// ToolResolveValues loads the allowed or suggested values of a field.
func ToolResolveValues(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ResolveValuesInput) (*sdkmcp.CallToolResult, ResolveValuesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ResolveValuesInput) (*sdkmcp.CallToolResult, ResolveValuesOutput, error) {
		if input.Page < 0 || input.Limit < 0 {
			return nil, ResolveValuesOutput{}, ErrInvalidInput("page and limit must not be negative")
		}

		field, _, err := fieldFromInput(d, input.Key, input.Field)
		if err != nil {
			return nil, ResolveValuesOutput{}, err
		}
		ep := field.ValuesEndpoint
		if ep == nil {
			return nil, ResolveValuesOutput{}, ErrInvalidInput("field " + field.DisplayName + " has no valuesEndpoint")
		}

		output := ResolveValuesOutput{Mode: string(ep.EffectiveMode())}
		if input.Refresh && d.Resolver != nil {
			n := d.Resolver.ClearEndpoint(ctx, ep)
			output.Cleared = &n
		}

		res, err := d.Values.ResolveValues(ctx, ep, resolver.Params{
			Search: input.Search,
			Page:   input.Page,
			Limit:  input.Limit,
		})
		if err != nil {
			return nil, ResolveValuesOutput{}, WrapResolverError(err)
		}

		output.Values = res.Values
		output.Total = res.Total
		output.HasNext = res.HasNext
		output.Page = res.Page
		return nil, output, nil
	}
}
