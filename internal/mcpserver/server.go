// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes one document editing session as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/editor"
	"github.com/mark3labs/specforge/internal/store"
)

const serverInstructions = `specforge MCP server. Edits one OpenAPI document per session and scaffolds MCP tool servers from it.

Workflow: import_spec loads a document (OpenAPI 3.x or Swagger 2.0, JSON or YAML). dispatch_command applies edits such as ADD_PATH, ADD_PARAMETER or SAVE. export_spec returns the minimal document. resolve_ref follows a JSON pointer. validate_spec reports problems without blocking edits. generate_scaffold renders a TypeScript MCP server project.

Configuration via environment variables:
- SPECFORGE_PERSIST (default: true): keep saved snapshots on disk so UNDO survives restarts
- SPECFORGE_STATE_DIR: snapshot directory (default: <user config dir>/specforge)
- SPECFORGE_EXPORT_FORMAT (default: yaml): default export_spec format
- SPECFORGE_TOOL_DESCRIPTION_MAX (default: 1024): generated tool description limit in runes
- SPECFORGE_MAX_RESULT_BYTES (default: 1048576): resolve_ref output limit`

// Options configures Run.
type Options struct {
	Version string
	Logger  *slog.Logger
	// Session overrides the session built from the environment.
	Session *editor.Session
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	sess := opts.Session
	if sess == nil {
		var err error
		if sess, err = newSession(opts.Logger); err != nil {
			return err
		}
	}
	server := newServer(sess, opts.Version)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newSession(logger *slog.Logger) (*editor.Session, error) {
	var st store.Store = store.NewMemoryStore()
	if cfg.Persist {
		dir, err := store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("mcpserver: %w", err)
		}
		st = store.NewFileStore(dir)
	}
	return editor.New(st, editor.WithLogger(logger)), nil
}

func newServer(sess *editor.Session, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{Name: "specforge", Version: version},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, &handlers{session: sess})
	return server
}

// handlers binds the tool handlers to one session.
type handlers struct {
	session *editor.Session
}

func registerAllTools(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_spec",
		Description: "Replace the session document with an OpenAPI 3.x or Swagger 2.0 document given inline (content) or by path or URL (location). Swagger 2.0 input is converted. Returns a summary of the imported document. The previous document is kept when the input is invalid.",
	}, h.handleImport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_spec",
		Description: "Return the session document with empty optional sections removed, as JSON or YAML. Default format is configurable via SPECFORGE_EXPORT_FORMAT.",
	}, h.handleExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dispatch_command",
		Description: "Apply one or more editing commands to the session document. Each command is {type, payload}, e.g. {\"type\":\"ADD_PATH\",\"payload\":{\"path\":\"/pets\"}}. SAVE records a snapshot and UNDO restores it. Commands that name a missing target leave the document unchanged. Use list_only=true to get the supported command types.",
	}, h.handleDispatch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_ref",
		Description: "Follow a local JSON pointer such as #/components/schemas/Pet in the session document. Set deref=true to inline every nested $ref (cycles stay as $ref nodes) and shallow=true to stop after the top-level node's own references.",
	}, h.handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_spec",
		Description: "Validate the session document and list problems with JSON pointer locations. Validation never blocks editing.",
	}, h.handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_scaffold",
		Description: "Render a TypeScript MCP server project from the session document: one tool per operation with zod input schemas. Filter with include_tags, exclude_tags, methods or path_patterns. Without output_dir the files are returned inline; with it they are written to disk (force overwrites a non-empty directory).",
	}, h.handleGenerate)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
