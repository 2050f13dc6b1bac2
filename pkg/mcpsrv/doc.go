// Package mcpsrv provides an extensible MCP server for input field specs.
//
// The server loads field documents from a catalog directory and exposes
// tools to list fields, validate values against their constraints, resolve
// their value lists and export JSON Schemas. Users can extend the server with
// custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with configuration from the environment:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type CountInput struct {
//	    Query string `json:"query"`
//	}
//
//	type CountOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(
//	        &mcp.Tool{Name: "count_fields", Description: "Count matching fields"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                return nil, CountOutput{Count: len(d.Catalog.List(in.Query))}, nil
//	            }
//	        },
//	    ),
//	)
//
// # Configuration
//
// Environment variables are read by internal/config; options override them:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithCatalogDir("./fields"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/inputspec-mcp.log"),
//	)
package mcpsrv
