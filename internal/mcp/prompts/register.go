package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	// Prompt 1: Author a field document
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "author_field",
		Description: "RECOMMENDED: Write a new field document. Explains the document shape, constraint keys and valuesEndpoint options, and the tools to check the result.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "purpose",
				Description: "What the field collects (e.g., 'shipping country', 'list of tags')",
				Required:    false,
			},
			{
				Name:        "data_type",
				Description: "STRING, NUMBER, BOOLEAN or DATE",
				Required:    false,
			},
		},
	}, HandleAuthorField(cfg))

	// Prompt 2: Check form input
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "check_input",
		Description: "Validate user input against catalog fields and explain the failures in plain words.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "query",
				Description: "Filter for the fields to check (key or display name substring)",
				Required:    false,
			},
		},
	}, HandleCheckInput(cfg))
}
