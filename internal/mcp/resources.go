package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/internal/mcp/tools"
	"github.com/usestring/inputspec-mcp/internal/schema"
)

// Resource URI scheme: inputspec://
// Supported URIs:
//   inputspec://field/{key}
//   inputspec://value-schema/{key}
//   inputspec://document-schema

const documentSchemaURI = "inputspec://document-schema"

// registerResources registers resources, resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "inputspec://field/{key}",
		Name:        "Field Definition",
		Description: "Complete field definition as loaded from the catalog. The inputspec_get_field tool returns the same data plus a summary.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceField)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "inputspec://value-schema/{key}",
		Name:        "Field Value Schema",
		Description: "JSON Schema of the values accepted by a field.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceValueSchema)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         documentSchemaURI,
		Name:        "Field Document Schema",
		Description: "JSON Schema of field documents. High context cost; fetch only when authoring documents.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceDocumentSchema)
}

// Resource handlers

func (s *Server) handleResourceField(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	entry, err := s.deps.Catalog.Get(params["key"])
	if err != nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return toResourceResult(req.Params.URI, entry)
}

func (s *Server) handleResourceValueSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	entry, err := s.deps.Catalog.Get(params["key"])
	if err != nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return toResourceResult(req.Params.URI, schema.ValueSchema(entry.Field))
}

func (s *Server) handleResourceDocumentSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return toResourceResult(req.Params.URI, schema.DocumentSchema())
}

// Helper functions

// parseResourceURI extracts parameters from an inputspec:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, "inputspec://") {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected inputspec://")
	}

	resourceType, rest, _ := strings.Cut(strings.TrimPrefix(uri, "inputspec://"), "/")
	if resourceType == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}

	params := make(map[string]string)
	switch resourceType {
	case "field", "value-schema":
		if rest == "" {
			return nil, tools.ErrInvalidInput(resourceType + " URI requires a field key")
		}
		params["key"] = rest
	case "document-schema":
	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
