// Package scaffold compiles a document into a runnable TypeScript MCP server
// that exposes every operation as an input-validated tool.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/specforge/internal/spec"
)

//go:embed templates/*
var templatesFS embed.FS

// Generated file paths, relative to the project root.
const (
	FilePackageJSON = "package.json"
	FileEnvExample  = ".env.example"
	FileHTTP        = "src/http.ts"
	FileTools       = "src/tools.ts"
	FileIndex       = "src/index.ts"
)

var fileTemplates = map[string]string{
	FilePackageJSON: "package.json.tmpl",
	FileEnvExample:  "env.example.tmpl",
	FileHTTP:        "http.ts.tmpl",
	FileTools:       "tools.ts.tmpl",
	FileIndex:       "index.ts.tmpl",
}

// FileSet maps slash-separated relative paths to file contents.
type FileSet map[string][]byte

// Paths returns the file paths in lexical order.
func (fs FileSet) Paths() []string {
	out := make([]string, 0, len(fs))
	for p := range fs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Meta names the generated package.
type Meta struct {
	PackageName string
	DisplayName string
	Version     string
	Description string
}

// MetaFor derives package metadata from the document's info block. A
// non-empty packageName wins over the derived name.
func MetaFor(doc *spec.Document, packageName string) Meta {
	var title, version, desc string
	if doc != nil && doc.Info != nil {
		title, version, desc = doc.Info.Title, doc.Info.Version, doc.Info.Description
	}
	name := SanitizePackageName(packageName)
	if name == "" {
		name = SanitizePackageName(DeriveToolName(title))
	}
	if name == "" {
		name = "mcp-tool"
	}
	display := oneLine(title)
	if display == "" {
		display = cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
	}
	if strings.TrimSpace(desc) == "" {
		desc = display + " MCP server"
	}
	return Meta{PackageName: name, DisplayName: display, Version: npmVersion(version), Description: oneLine(desc)}
}

// Assemble renders the five project files for tools.
func Assemble(tools []Tool, meta Meta) (FileSet, error) {
	if meta.PackageName == "" {
		meta.PackageName = "mcp-tool"
	}
	// DisplayName lands in // comments.
	meta.DisplayName = oneLine(meta.DisplayName)
	if meta.DisplayName == "" {
		meta.DisplayName = meta.PackageName
	}
	meta.Description = oneLine(meta.Description)
	if meta.Version == "" {
		meta.Version = "0.1.0"
	}
	baseURL := ""
	if len(tools) > 0 {
		baseURL = tools[0].BaseURL
	}
	data := struct {
		Meta    Meta
		Tools   []Tool
		BaseURL string
	}{meta, tools, baseURL}

	files := FileSet{}
	for rel, name := range fileTemplates {
		t, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templatesFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("scaffold: parse %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("scaffold: render %s: %w", rel, err)
		}
		files[rel] = buf.Bytes()
	}
	return files, nil
}

// Generate extracts tools from doc and assembles the project in one step.
func Generate(doc *spec.Document, meta Meta, opts ...ExtractOption) (FileSet, []Tool, error) {
	tools := ExtractTools(doc, opts...)
	files, err := Assemble(tools, meta)
	if err != nil {
		return nil, nil, err
	}
	return files, tools, nil
}

// DeriveToolName turns a document title into a dash-separated name.
func DeriveToolName(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	t = strings.ToLower(t)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}

// SanitizePackageName keeps lowercase letters, digits, dash, underscore and dot.
func SanitizePackageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-.")
}

// npmVersion accepts x.y.z and falls back to 0.1.0 for anything npm rejects.
func npmVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return "0.1.0"
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return "0.1.0"
		}
	}
	return v
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
