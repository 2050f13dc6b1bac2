package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/inputspec-mcp/internal/catalog"
	"github.com/usestring/inputspec-mcp/internal/mcp/tools"
	"github.com/usestring/inputspec-mcp/pkg/cache"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

func newTestDeps(t *testing.T) *tools.Deps {
	t.Helper()

	cat, err := catalog.New("")
	require.NoError(t, err)
	_, err = cat.Add("order.yaml", &inputspec.InputSpec{
		ProtocolVersion: inputspec.CurrentProtocolVersion,
		Fields: []inputspec.FieldSpec{
			{
				DisplayName: "Quantity",
				DataType:    inputspec.DataTypeNumber,
				Required:    true,
				Constraints: []inputspec.Constraint{{Name: "range", Min: 1, Max: 10}},
			},
		},
	})
	require.NoError(t, err)

	mem, err := cache.NewMemory(8)
	require.NoError(t, err)
	res := resolver.New(nil, mem)

	return &tools.Deps{
		Catalog:   cat,
		Validator: validation.New(),
		Values:    res,
		Resolver:  res,
		Domains:   res.Domains(),
	}
}

func connect(t *testing.T, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func structured(t *testing.T, res *sdkmcp.CallToolResult, out any) {
	t.Helper()
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	require.Error(t, err)

	_, err = NewServer(&tools.Deps{})
	require.Error(t, err)
}

func TestServer_ToolsOverMCP(t *testing.T) {
	s, err := NewServer(newTestDeps(t), WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)
	cs := connect(t, s)
	ctx := context.Background()

	list, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"inputspec_list_fields",
		"inputspec_get_field",
		"inputspec_validate",
		"inputspec_resolve_values",
		"inputspec_field_schema",
	}, names)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "inputspec_validate",
		Arguments: map[string]any{"key": "order.quantity", "value": 42},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	var out tools.ValidateOutput
	structured(t, res, &out)
	assert.False(t, out.IsValid)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "range", out.Errors[0].ConstraintName)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "inputspec_get_field",
		Arguments: map[string]any{"key": "order.missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_Resources(t *testing.T) {
	s, err := NewServer(newTestDeps(t), WithBuiltinTools())
	require.NoError(t, err)
	cs := connect(t, s)
	ctx := context.Background()

	res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "inputspec://field/order.quantity"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"displayName": "Quantity"`)

	res, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "inputspec://value-schema/order.quantity"})
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"maximum": 10`)

	res, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: documentSchemaURI})
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "displayName")

	_, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "inputspec://field/order.unknown"})
	assert.Error(t, err)
}

func TestServer_Prompts(t *testing.T) {
	s, err := NewServer(newTestDeps(t), WithBuiltinPrompts())
	require.NoError(t, err)
	cs := connect(t, s)

	res, err := cs.GetPrompt(context.Background(), &sdkmcp.GetPromptParams{
		Name:      "author_field",
		Arguments: map[string]string{"purpose": "shipping country"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "shipping country")
}

func TestServer_CustomRegistration(t *testing.T) {
	called := false
	_, err := NewServer(newTestDeps(t), WithCustomRegistration(func(*sdkmcp.Server) { called = true }))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestParseResourceURI(t *testing.T) {
	params, err := parseResourceURI("inputspec://field/order.quantity")
	require.NoError(t, err)
	assert.Equal(t, "order.quantity", params["key"])

	_, err = parseResourceURI("inputspec://document-schema")
	require.NoError(t, err)

	for _, uri := range []string{"http://field/x", "inputspec://", "inputspec://field", "inputspec://other/x"} {
		_, err := parseResourceURI(uri)
		assert.Error(t, err, uri)
	}
}
