package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/spec"
)

type importInput struct {
	Content  string `json:"content,omitempty"  jsonschema:"Inline document content (JSON or YAML)"`
	Location string `json:"location,omitempty" jsonschema:"Path or http(s) URL of the document"`
}

// documentSummary is the compact view returned after every change.
type documentSummary struct {
	OpenAPI        string   `json:"openapi"`
	Title          string   `json:"title"`
	Version        string   `json:"version"`
	PathCount      int      `json:"path_count"`
	OperationCount int      `json:"operation_count"`
	SchemaCount    int      `json:"schema_count"`
	Servers        []string `json:"servers,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Paths          []string `json:"paths,omitempty"`
}

func summarize(doc *spec.Document) documentSummary {
	if doc == nil {
		return documentSummary{}
	}
	out := documentSummary{OpenAPI: doc.OpenAPI, PathCount: len(doc.Paths)}
	if doc.Info != nil {
		out.Title = doc.Info.Title
		out.Version = doc.Info.Version
	}
	out.Paths = makeSlice[string](len(doc.Paths))
	for p, item := range doc.Paths {
		out.Paths = append(out.Paths, p)
		if item != nil {
			out.OperationCount += len(item.Operations())
		}
	}
	sort.Strings(out.Paths)
	if doc.Components != nil {
		out.SchemaCount = len(doc.Components.Schemas)
	}
	out.Servers = makeSlice[string](len(doc.Servers))
	for _, s := range doc.Servers {
		out.Servers = append(out.Servers, s.URL)
	}
	out.Tags = makeSlice[string](len(doc.Tags))
	for _, t := range doc.Tags {
		out.Tags = append(out.Tags, t.Name)
	}
	return out
}

func (h *handlers) handleImport(ctx context.Context, _ *mcp.CallToolRequest, input importInput) (*mcp.CallToolResult, documentSummary, error) {
	content := strings.TrimSpace(input.Content)
	location := strings.TrimSpace(input.Location)
	if (content == "") == (location == "") {
		return errResult(fmt.Errorf("exactly one of content or location must be set")), documentSummary{}, nil
	}
	var (
		doc *spec.Document
		err error
	)
	if content != "" {
		doc, err = h.session.Import(ctx, []byte(input.Content))
	} else {
		doc, err = h.session.Load(ctx, location)
	}
	if err != nil {
		return errResult(err), documentSummary{}, nil
	}
	return nil, summarize(doc), nil
}

type exportInput struct {
	Format string `json:"format,omitempty" jsonschema:"json or yaml (default from SPECFORGE_EXPORT_FORMAT)"`
}

type exportOutput struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

func (h *handlers) handleExport(_ context.Context, _ *mcp.CallToolRequest, input exportInput) (*mcp.CallToolResult, exportOutput, error) {
	format := cfg.ExportFormat
	if input.Format != "" {
		f, err := spec.ParseFormat(input.Format)
		if err != nil {
			return errResult(err), exportOutput{}, nil
		}
		format = f
	}
	data, err := h.session.Export(format)
	if err != nil {
		return errResult(err), exportOutput{}, nil
	}
	return nil, exportOutput{Format: string(format), Document: string(data)}, nil
}
