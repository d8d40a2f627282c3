package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importedHandlers(t *testing.T) *handlers {
	t.Helper()
	h := newTestHandlers(t)
	res, _, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Content: petsYAML})
	require.NoError(t, err)
	require.Nil(t, res)
	return h
}

func TestResolveTool_Found(t *testing.T) {
	h := importedHandlers(t)
	res, out, err := h.handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Pointer: "#/components/schemas/Pet"})
	require.NoError(t, err)
	assert.Nil(t, res)
	require.True(t, out.Found)
	node := out.Node.(map[string]any)
	assert.Equal(t, "object", node["type"])
	owner := node["properties"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Owner", owner["$ref"])
}

func TestResolveTool_EscapedSegment(t *testing.T) {
	h := importedHandlers(t)
	_, out, err := h.handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Pointer: "#/paths/~1pets/get/operationId"})
	require.NoError(t, err)
	require.True(t, out.Found)
	assert.Equal(t, "listPets", out.Node)
}

func TestResolveTool_DerefStopsAtCycle(t *testing.T) {
	h := importedHandlers(t)
	_, out, err := h.handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Pointer: "#/components/schemas/Pet", Deref: true})
	require.NoError(t, err)
	require.True(t, out.Found)
	owner := out.Node.(map[string]any)["properties"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, "object", owner["type"])
	items := owner["properties"].(map[string]any)["pets"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
	// Owner is already being expanded, so its second appearance stays a reference.
	inner := items["properties"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Owner", inner["$ref"])
}

func TestResolveTool_Missing(t *testing.T) {
	h := importedHandlers(t)
	res, out, err := h.handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Pointer: "#/components/schemas/Nope"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.False(t, out.Found)
	assert.Nil(t, out.Node)
}

func TestResolveTool_RejectsExternalPointer(t *testing.T) {
	h := importedHandlers(t)
	res, _, err := h.handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Pointer: "other.yaml#/x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
