// Package prompts contains MCP prompt implementations for field specs.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	CatalogDir string
}
