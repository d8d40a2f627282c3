package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTool_Inline(t *testing.T) {
	h := importedHandlers(t)
	res, out, err := h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "pets", out.PackageName)
	require.Equal(t, 1, out.ToolCount)
	assert.Equal(t, generatedTool{Name: "listPets", Method: "GET", Path: "/pets", Description: "GET /pets"}, out.Tools[0])
	require.Len(t, out.Files, 5)
	for _, f := range out.Files {
		assert.NotEmpty(t, f.Content, f.Path)
		assert.Equal(t, len(f.Content), f.Size, f.Path)
	}
}

func TestGenerateTool_WritesToDisk(t *testing.T) {
	h := importedHandlers(t)
	dir := filepath.Join(t.TempDir(), "out")
	res, out, err := h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{OutputDir: dir, PackageName: "pets-mcp"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, dir, out.OutputDir)
	for _, f := range out.Files {
		assert.Empty(t, f.Content)
		_, statErr := os.Stat(filepath.Join(dir, filepath.FromSlash(f.Path)))
		assert.NoError(t, statErr, f.Path)
	}

	res, _, err = h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{OutputDir: dir})
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not empty")
}

func TestGenerateTool_Filters(t *testing.T) {
	h := importedHandlers(t)
	_, out, err := h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{Methods: []string{"POST"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ToolCount)

	_, out, err = h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{ExcludeTags: []string{"pets"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ToolCount)

	res, _, err := h.handleGenerate(context.Background(), &mcp.CallToolRequest{}, generateInput{Methods: []string{"fetch"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
