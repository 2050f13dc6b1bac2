package tools

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/pkg/validation"
)

// ValidateInput is the input for inputspec_validate.
type ValidateInput struct {
	Key        string         `json:"key,omitempty" jsonschema:"Catalog field key (or pass field)"`
	Field      map[string]any `json:"field,omitempty" jsonschema:"Inline field definition; legacy shapes are upgraded"`
	Value      any            `json:"value,omitempty" jsonschema:"Value to validate; omit or null for absent"`
	Constraint string         `json:"constraint,omitempty" jsonschema:"Evaluate only this named constraint"`
}

// ValidateOutput is the output for inputspec_validate.
type ValidateOutput struct {
	IsValid      bool                          `json:"is_valid"`
	Errors       []validation.Error            `json:"errors,omitzero"`
	ByConstraint map[string][]validation.Error `json:"by_constraint,omitempty"`
	UpgradeNotes []string                      `json:"upgrade_notes,omitempty"`
}

// ToolValidate validates a value against a field.
func ToolValidate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
		start := time.Now()

		field, notes, err := fieldFromInput(d, input.Key, input.Field)
		if err != nil {
			return nil, ValidateOutput{}, err
		}

		var result *validation.Result
		if input.Constraint != "" {
			result, err = d.Validator.ValidateConstraint(field, input.Value, input.Constraint)
		} else {
			result, err = d.Validator.Validate(field, input.Value)
		}
		if err != nil {
			return nil, ValidateOutput{}, WrapValidationError(err)
		}

		slog.Debug("validated value",
			slog.String("field", field.DisplayName),
			slog.Bool("valid", result.IsValid),
			slog.Int("errors", len(result.Errors)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)

		output := ValidateOutput{
			IsValid:      result.IsValid,
			Errors:       result.Errors,
			UpgradeNotes: notes,
		}
		if !result.IsValid {
			output.ByConstraint = result.ByConstraint()
		}
		return nil, output, nil
	}
}
