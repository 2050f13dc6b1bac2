package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleAuthorField guides the assistant through writing a field document.
func HandleAuthorField(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := map[string]string{}
		if req != nil && req.Params != nil && req.Params.Arguments != nil {
			args = req.Params.Arguments
		}

		var sb strings.Builder
		sb.WriteString("# Author a Field Document\n\n")
		if p := args["purpose"]; p != "" {
			fmt.Fprintf(&sb, "Goal: a field that collects **%s**.\n\n", p)
		}
		if dt := strings.ToUpper(args["data_type"]); dt != "" {
			fmt.Fprintf(&sb, "Data type: `%s`.\n\n", dt)
		}

		sb.WriteString("## Document Shape\n\n")
		sb.WriteString("```json\n")
		sb.WriteString(`{"protocolVersion": "2.0", "fields": [{"displayName": "...", "dataType": "STRING", "expectMultipleValues": false, "required": true, "constraints": []}]}`)
		sb.WriteString("\n```\n\n")

		sb.WriteString("## Constraint Keys\n\n")
		sb.WriteString("| Key | Meaning |\n")
		sb.WriteString("|-----|--------|\n")
		sb.WriteString("| `name` | Unique within the field; reported in errors |\n")
		sb.WriteString("| `min` / `max` | Length for STRING, value for NUMBER, ISO date for DATE, item count for multi-valued fields |\n")
		sb.WriteString("| `pattern` | Regular expression matched against the whole value |\n")
		sb.WriteString("| `format` | email, url, uuid, date, date-time, ipv4, ipv6, phone |\n")
		sb.WriteString("| `enumValues` | Allowed `{value, label}` pairs |\n")
		sb.WriteString("| `errorMessage` | Replaces the default message when the rule fails |\n")

		sb.WriteString("\n## Value Lists\n\n")
		sb.WriteString("- `valuesEndpoint.protocol: INLINE` embeds `values`; HTTP/HTTPS fetch from `uri`\n")
		sb.WriteString("- `mode: CLOSED` restricts input to the list, `SUGGESTIONS` only proposes\n")
		sb.WriteString("- `responseMapping.dataField` locates the array in remote responses (dot path)\n")
		sb.WriteString("- `cacheStrategy`: NONE, SESSION, SHORT_TERM (5m), LONG_TERM (1h)\n")

		sb.WriteString("\n## Check Your Work\n\n")
		sb.WriteString("1. `inputspec_field_schema()` for the full document schema\n")
		sb.WriteString("2. `inputspec_validate(field: {...}, value: ...)` with passing and failing samples\n")
		sb.WriteString("3. `inputspec_resolve_values(field: {...})` when a valuesEndpoint is set\n")
		if cfg != nil && cfg.CatalogDir != "" {
			fmt.Fprintf(&sb, "\nSave the document under `%s` as `.json` or `.yaml`; it is picked up on reload.\n", cfg.CatalogDir)
		}

		return &sdkmcp.GetPromptResult{
			Description: "Guide for writing a field document",
			Messages: []*sdkmcp.PromptMessage{
				{Role: "user", Content: &sdkmcp.TextContent{Text: sb.String()}},
			},
		}, nil
	}
}

// HandleCheckInput guides the assistant through validating form input.
func HandleCheckInput(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		query := ""
		if req != nil && req.Params != nil {
			query = req.Params.Arguments["query"]
		}

		var sb strings.Builder
		sb.WriteString("# Check Input\n\n")
		if query != "" {
			fmt.Fprintf(&sb, "1. `inputspec_list_fields(query: %q)` to find the fields\n", query)
		} else {
			sb.WriteString("1. `inputspec_list_fields()` to find the fields\n")
		}
		sb.WriteString("2. For CLOSED value lists, call `inputspec_resolve_values(key: ...)` first so membership can be checked\n")
		sb.WriteString("3. `inputspec_validate(key: ..., value: ...)` for each value\n")
		sb.WriteString("4. Explain each error by its `constraintName`; a `type` error means the value has the wrong shape and no other rule ran\n")

		return &sdkmcp.GetPromptResult{
			Description: "Workflow for validating input against catalog fields",
			Messages: []*sdkmcp.PromptMessage{
				{Role: "user", Content: &sdkmcp.TextContent{Text: sb.String()}},
			},
		}, nil
	}
}
