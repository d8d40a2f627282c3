package scaffold

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/specforge/internal/resolver"
	"github.com/mark3labs/specforge/internal/spec"
	"github.com/mark3labs/specforge/internal/translate"
)

const (
	// MaxToolNameLength is the longest name an MCP client accepts.
	MaxToolNameLength = 64
	// MaxDescriptionLength bounds tool descriptions, in runes.
	MaxDescriptionLength = 1024
)

// Tool is one operation exposed as a callable unit of the generated server.
type Tool struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags,omitempty"`
	InputSchema string            `json:"inputSchema"`
	Binding     Binding           `json:"binding"`
	BaseURL     string            `json:"baseUrl,omitempty"`
	Fields      []translate.Field `json:"-"`
}

// Binding tells the HTTP module how to turn tool arguments into a request.
type Binding struct {
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Params      []ParamBinding `json:"params"`
	BodyField   string         `json:"bodyField,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
}

// ParamBinding maps one input field to a request location.
type ParamBinding struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	In    string `json:"in"`
}

// ExtractOption configures ExtractTools.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	baseURL     string
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[spec.HttpMethod]struct{}
	pathRes     []*regexp.Regexp
	descMax     int
}

// WithBaseURL overrides the base URL otherwise taken from the first server.
func WithBaseURL(u string) ExtractOption {
	return func(c *extractConfig) { c.baseURL = strings.TrimSpace(u) }
}

// WithDescriptionLimit caps descriptions at n runes instead of
// MaxDescriptionLength. Values below 4 are ignored.
func WithDescriptionLimit(n int) ExtractOption {
	return func(c *extractConfig) {
		if n >= 4 {
			c.descMax = n
		}
	}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				c.includeTags[t] = struct{}{}
			}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				c.excludeTags[t] = struct{}{}
			}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []spec.HttpMethod) ExtractOption {
	return func(c *extractConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[spec.HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) ExtractOption {
	return func(c *extractConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// ExtractTools builds one Tool per operation, in path order and then method
// order. Shared PathItem parameters are expected to have been merged already
// (see spec.PreProcess); any still present are merged here as a fallback.
func ExtractTools(doc *spec.Document, opts ...ExtractOption) []Tool {
	if doc == nil {
		return nil
	}
	cfg := &extractConfig{descMax: MaxDescriptionLength}
	for _, opt := range opts {
		opt(cfg)
	}
	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = serverBaseURL(doc.Servers)
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var tools []Tool
	names := map[string]struct{}{}
	for _, path := range paths {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for _, mo := range item.Operations() {
			if !cfg.allows(path, mo.Method, mo.Operation.Tags) {
				continue
			}
			tool := buildTool(doc, path, mo.Method, mo.Operation, item.Parameters)
			tool.Description = truncate(tool.Description, cfg.descMax)
			tool.Name = uniqueName(tool.Name, names)
			tool.BaseURL = baseURL
			tools = append(tools, tool)
		}
	}
	return tools
}

func (c *extractConfig) allows(path string, m spec.HttpMethod, tags []string) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[m]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func buildTool(doc *spec.Document, path string, m spec.HttpMethod, op *spec.Operation, shared []spec.Parameter) Tool {
	tool := Tool{
		Name:        toolName(op.OperationID, m, path),
		Description: description(op, m, path),
		Tags:        op.Tags,
		Binding: Binding{
			Method: strings.ToUpper(string(m)),
			Path:   path,
			Params: []ParamBinding{},
		},
	}

	used := map[string]struct{}{}
	seen := map[string]struct{}{}
	params := append(append([]spec.Parameter{}, op.Parameters...), shared...)
	for i := range params {
		p, ok := resolver.ResolveParameter(&params[i], doc)
		if !ok || p.Name == "" || p.In == "" {
			continue
		}
		id := p.In + ":" + p.Name
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		field := p.Name
		if _, taken := used[field]; taken {
			field = freeKey(used, p.In+"_"+p.Name)
		}
		used[field] = struct{}{}
		tool.Binding.Params = append(tool.Binding.Params, ParamBinding{Field: field, Name: p.Name, In: p.In})
		tool.Fields = append(tool.Fields, translate.Field{
			Name:        field,
			Schema:      resolver.Deref(parameterSchema(p), doc, false),
			Required:    p.Required || p.In == "path",
			Description: p.Description,
		})
	}

	if op.RequestBody != nil {
		if rb, ok := resolver.ResolveRequestBody(op.RequestBody, doc); ok {
			if ct, mt := bodyMediaType(rb.Content); ct != "" {
				field := "body"
				if _, taken := used[field]; taken {
					field = freeKey(used, "requestBody")
				}
				var schema *spec.Schema
				if mt != nil {
					schema = resolver.Deref(mt.Schema, doc, false)
				}
				tool.Binding.BodyField = field
				tool.Binding.ContentType = ct
				tool.Fields = append(tool.Fields, translate.Field{
					Name:        field,
					Schema:      schema,
					Required:    rb.Required,
					Description: rb.Description,
				})
			}
		}
	}
	tool.InputSchema = translate.Object(tool.Fields)
	return tool
}

func parameterSchema(p *spec.Parameter) *spec.Schema {
	if p.Schema != nil {
		return p.Schema
	}
	if _, mt := bodyMediaType(p.Content); mt != nil {
		return mt.Schema
	}
	return nil
}

// bodyMediaType picks application/json when declared and otherwise the first
// media type in lexical order.
func bodyMediaType(content map[string]*spec.MediaType) (string, *spec.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	if mt, ok := content["application/json"]; ok {
		return "application/json", mt
	}
	types := make([]string, 0, len(content))
	for ct := range content {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types[0], content[types[0]]
}

var (
	invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	nonAlnum         = regexp.MustCompile(`[^A-Za-z0-9]+`)
	serverVariable   = regexp.MustCompile(`\{([^{}]+)\}`)
)

// toolName sanitizes the operationId, falling back to method_path.
func toolName(operationID string, m spec.HttpMethod, path string) string {
	name := strings.Trim(invalidNameChars.ReplaceAllString(strings.TrimSpace(operationID), "_"), "_")
	if name == "" {
		name = string(m) + "_" + strings.Trim(nonAlnum.ReplaceAllString(path, "_"), "_")
		name = strings.Trim(name, "_")
	}
	if len(name) > MaxToolNameLength {
		name = name[:MaxToolNameLength]
	}
	return name
}

// uniqueName appends _2, _3 and so on until name is unused, keeping the
// result within MaxToolNameLength.
func uniqueName(name string, used map[string]struct{}) string {
	candidate := name
	for i := 2; ; i++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
		suffix := "_" + strconv.Itoa(i)
		base := name
		if len(base)+len(suffix) > MaxToolNameLength {
			base = base[:MaxToolNameLength-len(suffix)]
		}
		candidate = base + suffix
	}
}

func description(op *spec.Operation, m spec.HttpMethod, path string) string {
	d := strings.TrimSpace(op.Summary)
	if d == "" {
		d = strings.TrimSpace(op.Description)
	}
	if d == "" {
		d = strings.ToUpper(string(m)) + " " + path
	}
	return d
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}

// serverBaseURL returns the first server URL with {variables} replaced by
// their defaults, or "" without servers.
func serverBaseURL(servers []spec.Server) string {
	if len(servers) == 0 {
		return ""
	}
	s := servers[0]
	return serverVariable.ReplaceAllStringFunc(s.URL, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := s.Variables[name]; ok && v != nil {
			return v.Default
		}
		return m
	})
}

// freeKey returns key, or key with the smallest numeric suffix from 2 that
// is not in used.
func freeKey(used map[string]struct{}, key string) string {
	if _, taken := used[key]; !taken {
		return key
	}
	for n := 2; ; n++ {
		k := key + "_" + strconv.Itoa(n)
		if _, taken := used[k]; !taken {
			return k
		}
	}
}
