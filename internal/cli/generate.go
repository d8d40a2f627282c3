package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/specforge/internal/scaffold"
	"github.com/mark3labs/specforge/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input        string
	Out          string
	BaseURL      string
	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string
	ToolName     string
	PackageName  string
	ConfigPath   string
	DryRun       bool
	Force        bool
	Verbose      bool

	Stdout io.Writer
	Stderr io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a TypeScript MCP server project from an OpenAPI/Swagger document",
		Long: "Generate a TypeScript MCP server project with one tool per operation. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  specforge generate --input spec.yaml --out ./out
  specforge --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Stdout = cmd.OutOrStdout()
			cfg.Stderr = cmd.ErrOrStderr()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (derived from spec when omitted)")
	flags.String("base-url", "", "Override the API base URL taken from the first server")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("path-patterns", nil, "Only include paths matching these regular expressions")
	flags.String("tool-name", "", "Override the generated MCP server display name")
	flags.String("package-name", "", "Override the generated npm package name")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for name, dst := range map[string]*string{
		"input":        &cfg.Input,
		"out":          &cfg.Out,
		"base-url":     &cfg.BaseURL,
		"tool-name":    &cfg.ToolName,
		"package-name": &cfg.PackageName,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	for name, dst := range map[string]*[]string{
		"include-tags":  &cfg.IncludeTags,
		"exclude-tags":  &cfg.ExcludeTags,
		"methods":       &cfg.Methods,
		"path-patterns": &cfg.PathPatterns,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeTags(value)
	}
	for name, dst := range map[string]*bool{
		"dry-run": &cfg.DryRun,
		"force":   &cfg.Force,
		"verbose": &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.ToolName = strings.TrimSpace(c.ToolName)
	c.PackageName = strings.TrimSpace(c.PackageName)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.PathPatterns = sanitizeTags(c.PathPatterns)
	methods := make([]string, 0, len(c.Methods))
	for _, m := range sanitizeTags(c.Methods) {
		methods = append(methods, strings.ToLower(m))
	}
	c.Methods = sanitizeTags(methods)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	for _, m := range c.Methods {
		if _, ok := spec.ParseMethod(m); !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported method %q (allowed: get, put, post, delete, options, head, patch, trace)", m))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func (c *GenerateConfig) extractOptions() []scaffold.ExtractOption {
	methods := make([]spec.HttpMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		if hm, ok := spec.ParseMethod(m); ok {
			methods = append(methods, hm)
		}
	}
	return []scaffold.ExtractOption{
		scaffold.WithBaseURL(c.BaseURL),
		scaffold.WithIncludeTags(c.IncludeTags),
		scaffold.WithExcludeTags(c.ExcludeTags),
		scaffold.WithMethods(methods),
		scaffold.WithPathPatterns(c.PathPatterns),
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	out := stdout(cfg.Stdout)
	logger := newLogger(stdout(cfg.Stderr), cfg.Verbose)

	// 1) Load the document (file or http/https URL), converting legacy documents
	doc, err := loadDocument(ctx, cfg.Input, logger)
	if err != nil {
		return err
	}

	// 2) Derive sensible defaults for names and out dir when omitted
	meta := scaffold.MetaFor(doc, cfg.PackageName)
	if name := strings.Join(strings.Fields(cfg.ToolName), " "); name != "" {
		meta.DisplayName = name
	}
	outDir := strings.TrimSpace(cfg.Out)
	if outDir == "" {
		outDir = meta.PackageName
	}

	// Ensure outDir is absolute only for display; Emit handles actual creation/writes
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 3) Render the project
	files, tools, err := scaffold.Generate(doc, meta, cfg.extractOptions()...)
	if err != nil {
		return fmt.Errorf("render project: %w", err)
	}
	if len(tools) == 0 {
		logger.Warn("no operations matched the filters; the server will expose no tools", "input", cfg.Input)
	}

	// 4) Write it
	res, err := scaffold.Emit(ctx, files, scaffold.Options{
		OutDir: outDir,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	paths := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		paths = append(paths, p.RelPath)
	}
	if cfg.DryRun {
		printPlan(out, absOut, len(res.Planned), paths)
		return nil
	}
	fmt.Fprintf(out, "Wrote %d files to %s (%d tools)\n", len(paths), absOut, len(tools))
	return nil
}

func printPlan(w io.Writer, outDir string, count int, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	stringFields := map[string]*string{
		"input":       &cfg.Input,
		"out":         &cfg.Out,
		"baseurl":     &cfg.BaseURL,
		"toolname":    &cfg.ToolName,
		"packagename": &cfg.PackageName,
	}
	listFields := map[string]*[]string{
		"includetags":  &cfg.IncludeTags,
		"excludetags":  &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"pathpatterns": &cfg.PathPatterns,
	}
	boolFields := map[string]*bool{
		"dryrun":  &cfg.DryRun,
		"force":   &cfg.Force,
		"verbose": &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := stringFields[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := listFields[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = sanitizeTags(list)
			continue
		}
		if dst, ok := boolFields[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
