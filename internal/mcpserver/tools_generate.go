package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/scaffold"
	"github.com/mark3labs/specforge/internal/spec"
)

type generateInput struct {
	PackageName  string   `json:"package_name,omitempty"  jsonschema:"npm package name (default derived from the document title)"`
	BaseURL      string   `json:"base_url,omitempty"      jsonschema:"Override the API base URL taken from the first server"`
	IncludeTags  []string `json:"include_tags,omitempty"  jsonschema:"Only operations carrying one of these tags"`
	ExcludeTags  []string `json:"exclude_tags,omitempty"  jsonschema:"Skip operations carrying any of these tags"`
	Methods      []string `json:"methods,omitempty"       jsonschema:"Only these HTTP methods (get, post, ...)"`
	PathPatterns []string `json:"path_patterns,omitempty" jsonschema:"Only paths matching one of these regular expressions"`
	OutputDir    string   `json:"output_dir,omitempty"    jsonschema:"Write the project here instead of returning file contents"`
	Force        bool     `json:"force,omitempty"         jsonschema:"Overwrite a non-empty output_dir"`
}

type generatedTool struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type generatedFile struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Content string `json:"content,omitempty"`
}

type generateOutput struct {
	PackageName string          `json:"package_name"`
	OutputDir   string          `json:"output_dir,omitempty"`
	ToolCount   int             `json:"tool_count"`
	Tools       []generatedTool `json:"tools,omitempty"`
	Files       []generatedFile `json:"files"`
}

func (h *handlers) handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, generateOutput, error) {
	methods := make([]spec.HttpMethod, 0, len(input.Methods))
	for _, m := range input.Methods {
		hm, ok := spec.ParseMethod(strings.ToLower(strings.TrimSpace(m)))
		if !ok {
			return errResult(fmt.Errorf("unsupported method %q", m)), generateOutput{}, nil
		}
		methods = append(methods, hm)
	}

	doc := h.session.Document()
	meta := scaffold.MetaFor(doc, input.PackageName)
	files, tools, err := scaffold.Generate(doc, meta,
		scaffold.WithBaseURL(input.BaseURL),
		scaffold.WithIncludeTags(input.IncludeTags),
		scaffold.WithExcludeTags(input.ExcludeTags),
		scaffold.WithMethods(methods),
		scaffold.WithPathPatterns(input.PathPatterns),
		scaffold.WithDescriptionLimit(cfg.ToolDescriptionMax),
	)
	if err != nil {
		return errResult(err), generateOutput{}, nil
	}

	output := generateOutput{PackageName: meta.PackageName, ToolCount: len(tools)}
	output.Tools = makeSlice[generatedTool](len(tools))
	for _, t := range tools {
		output.Tools = append(output.Tools, generatedTool{
			Name:        t.Name,
			Method:      t.Binding.Method,
			Path:        t.Binding.Path,
			Description: t.Description,
		})
	}

	inline := strings.TrimSpace(input.OutputDir) == ""
	if !inline {
		res, err := scaffold.Emit(ctx, files, scaffold.Options{OutDir: input.OutputDir, Force: input.Force})
		if err != nil {
			return errResult(fmt.Errorf("failed to write generated files: %w", err)), generateOutput{}, nil
		}
		output.OutputDir = res.OutDir
	}
	for _, p := range files.Paths() {
		f := generatedFile{Path: p, Size: len(files[p])}
		if inline {
			f.Content = string(files[p])
		}
		output.Files = append(output.Files, f)
	}
	return nil, output, nil
}
