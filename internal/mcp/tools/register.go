package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: inputspec_list_fields
	AddTool(srv, &sdkmcp.Tool{
		Name:        "inputspec_list_fields",
		Description: "List the input fields loaded from the catalog directory. Returns {fields: [{key, display_name, data_type, expect_multiple_values, required, constraints, values_protocol, values_mode, source}], total, truncated, failures}. Filter with query (substring of key or display name). Pass a key to inputspec_get_field, inputspec_validate, inputspec_resolve_values or inputspec_field_schema.",
	}, ToolListFields(d))

	// Tool 2: inputspec_get_field
	AddTool(srv, &sdkmcp.Tool{
		Name:        "inputspec_get_field",
		Description: "Get the complete definition of one field: data type, constraints (pattern, min/max, format, enumValues, errorMessage) and valuesEndpoint. upgrade_notes lists rewrites applied to legacy documents.",
	}, ToolGetField(d))

	// Tool 3: inputspec_validate
	AddTool(srv, &sdkmcp.Tool{
		Name:        "inputspec_validate",
		Description: "Validate a value against a field (catalog key or inline field). Returns {is_valid, errors: [{constraintName, message, value, index, kind}], by_constraint}. Errors are reported in constraint declaration order; a type mismatch is the only error; absent optional values are valid. Set constraint to evaluate a single named constraint. CLOSED value lists are enforced once their domain has been resolved.",
	}, ToolValidate(d))

	// Tool 4: inputspec_resolve_values
	AddTool(srv, &sdkmcp.Tool{
		Name:        "inputspec_resolve_values",
		Description: "Load the values of a field's valuesEndpoint (INLINE, HTTP or HTTPS). Returns {values: [{value, label}], total, has_next, page, mode}. Searches shorter than minSearchLength return no values without a request. Results are cached per the endpoint's cacheStrategy; set refresh=true to drop cached pages first. Remote failures return RESOLVER_ERROR or TIMEOUT.",
	}, ToolResolveValues(d))

	// Tool 5: inputspec_field_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "inputspec_field_schema",
		Description: "Export a JSON Schema. With key or field: the schema of the field's values (type, array wrapping, length/range bounds, anchored pattern, CLOSED inline enum). Without: the schema of field documents, for authoring new fields.",
	}, ToolFieldSchema(d))
}
