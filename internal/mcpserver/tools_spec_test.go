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

func TestImportTool_Content(t *testing.T) {
	h := newTestHandlers(t)
	res, out, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Content: petsYAML})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "Pets", out.Title)
	assert.Equal(t, 1, out.PathCount)
	assert.Equal(t, 1, out.OperationCount)
	assert.Equal(t, 2, out.SchemaCount)
	assert.Equal(t, []string{"https://api.pets.io"}, out.Servers)
	assert.Equal(t, []string{"pets"}, out.Tags)
}

func TestImportTool_Location(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petsYAML), 0o644))
	h := newTestHandlers(t)
	res, out, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Location: path})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"/pets"}, out.Paths)
}

func TestImportTool_RequiresExactlyOneSource(t *testing.T) {
	h := newTestHandlers(t)
	res, _, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Content: petsYAML, Location: "x.yaml"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestImportTool_InvalidKeepsDocument(t *testing.T) {
	h := newTestHandlers(t)
	res, _, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Content: "not: a spec"})
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "missing or unknown version")
	assert.Equal(t, "New API", h.session.Document().Info.Title)
}

func TestExportTool(t *testing.T) {
	h := newTestHandlers(t)
	_, _, err := h.handleImport(context.Background(), &mcp.CallToolRequest{}, importInput{Content: petsYAML})
	require.NoError(t, err)

	res, out, err := h.handleExport(context.Background(), &mcp.CallToolRequest{}, exportInput{Format: "json"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "json", out.Format)
	assert.Contains(t, out.Document, `"title": "Pets"`)
	// Empty optional sections are gone from the export.
	assert.NotContains(t, out.Document, `"externalDocs"`)

	_, out, err = h.handleExport(context.Background(), &mcp.CallToolRequest{}, exportInput{Format: "YML"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", out.Format)
	assert.Contains(t, out.Document, "title: Pets")
}

func TestExportTool_BadFormat(t *testing.T) {
	h := newTestHandlers(t)
	res, _, err := h.handleExport(context.Background(), &mcp.CallToolRequest{}, exportInput{Format: "xml"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
