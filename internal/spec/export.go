package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (allowed: json, yaml)", s)
}

// Export post-processes doc and serializes the minimal copy. Both formats
// carry the same content.
func Export(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return MarshalJSON(doc)
	case FormatYAML:
		return MarshalYAML(doc)
	}
	return nil, fmt.Errorf("export: unsupported format %q", format)
}

// MarshalJSON renders the post-processed document with a two-space indent.
func MarshalJSON(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(PostProcess(doc)); err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders the post-processed document as YAML with a two-space
// indent. The encoder never wraps lines or emits anchors.
func MarshalYAML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(PostProcess(doc)); err != nil {
		return nil, fmt.Errorf("export yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("export yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// ToTree returns the generic JSON view of doc, the form pointer walks and
// dereferencing over untyped nodes operate on.
func ToTree(doc *Document) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
