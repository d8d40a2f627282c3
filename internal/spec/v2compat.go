package spec

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
)

// ConvertLegacy converts a decoded legacy (2.x) document into the current
// grammar and returns it in canonical form. host, basePath and schemes become
// server URLs, body and form parameters become request bodies, and
// definitions move under components.schemas. root is not modified.
func ConvertLegacy(root map[string]any, opts ...Option) (*Document, error) {
	if DetectVersion(root) != VersionLegacy {
		return nil, &SpecError{Code: ParseError, Message: "spec: not a swagger 2.x document"}
	}
	settings := resolveSettings(opts)
	doc, err := convertLegacy(CloneValue(root), settings.logger())
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
	}
	return PreProcess(doc), nil
}

// convertLegacy may rewrite root while preparing it for conversion.
func convertLegacy(root map[string]any, logger *slog.Logger) (*Document, error) {
	root["swagger"] = versionString(root["swagger"])
	if preprocessV2ForCompatibility(root) {
		logger.Debug("rewrote legacy operations for conversion")
	}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v3)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// preprocessV2ForCompatibility rewrites non-compliant Swagger v2 constructs so
// the converter accepts them. Specifically:
//   - A document without consumes gets application/json, otherwise request
//     bodies would be keyed by the */* wildcard.
//   - If an operation contains multiple body parameters, merge them into a
//     single body parameter whose schema is an object with one property per
//     original parameter.
//   - If an operation mixes body and formData parameters, convert all body
//     parameters to formData equivalents and ensure the operation consumes
//     multipart/form-data.
//
// It reports whether doc was modified.
func preprocessV2ForCompatibility(doc map[string]any) bool {
	modified := false
	if c, ok := doc["consumes"].([]any); !ok || len(c) == 0 {
		doc["consumes"] = []any{"application/json"}
		modified = true
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return modified
	}

	for _, pim := range paths {
		pi, ok := pim.(map[string]any)
		if !ok {
			continue
		}
		for method, opm := range pi {
			if _, ok := ParseMethod(strings.ToLower(method)); !ok {
				continue
			}
			op, ok := opm.(map[string]any)
			if !ok {
				continue
			}
			params, ok := op["parameters"].([]any)
			if !ok || len(params) == 0 {
				continue
			}

			bodyCount := 0
			hasFormData := false
			for _, p := range params {
				pm, _ := p.(map[string]any)
				if pm == nil {
					continue
				}
				if strings.EqualFold(asString(pm["in"]), "body") {
					bodyCount++
				} else if strings.EqualFold(asString(pm["in"]), "formData") {
					hasFormData = true
				}
			}
			if bodyCount == 0 {
				continue
			}

			if hasFormData {
				newParams := make([]any, 0, len(params))
				for _, p := range params {
					pm, _ := p.(map[string]any)
					if pm == nil {
						continue
					}
					if strings.EqualFold(asString(pm["in"]), "body") {
						newParams = append(newParams, formDataFromBodyParam(pm))
						modified = true
						continue
					}
					newParams = append(newParams, pm)
				}
				op["parameters"] = newParams
				consumes, _ := op["consumes"].([]any)
				if !containsString(consumes, "multipart/form-data") {
					op["consumes"] = append(consumes, "multipart/form-data")
				}
				continue
			}

			if bodyCount > 1 {
				props := map[string]any{}
				required := make([]any, 0)
				newParams := make([]any, 0, len(params))
				for _, p := range params {
					pm, _ := p.(map[string]any)
					if pm == nil {
						continue
					}
					if strings.EqualFold(asString(pm["in"]), "body") {
						name := asString(pm["name"])
						if name == "" {
							name = "field"
						}
						schema := extractSchemaFromParam(pm)
						if schema == nil {
							schema = map[string]any{"type": "string"}
						}
						props[name] = schema
						if rb, _ := pm["required"].(bool); rb {
							required = append(required, name)
						}
						modified = true
						continue
					}
					newParams = append(newParams, p)
				}
				bodySchema := map[string]any{"type": "object", "properties": props}
				if len(required) > 0 {
					bodySchema["required"] = required
				}
				merged := map[string]any{
					"in":     "body",
					"name":   "body",
					"schema": bodySchema,
				}
				op["parameters"] = append([]any{merged}, newParams...)
			}
		}
	}
	return modified
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func extractSchemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	// Synthesize schema from param type/items/format when present
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f, ok := pm["format"].(string); ok && f != "" {
		m["format"] = f
	}
	return m
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{
		"in":   "formData",
		"name": name,
	}
	if desc, ok := pm["description"].(string); ok && desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	// Derive a formData-compatible type; fallback to string.
	var typ, format string
	var items any
	if sch, ok := pm["schema"].(map[string]any); ok {
		typ, _ = sch["type"].(string)
		if it, ok := sch["items"].(map[string]any); ok {
			items = it
		}
		format, _ = sch["format"].(string)
		if typ == "" && sch["$ref"] != nil {
			// A referenced object has no formData representation.
			typ = "string"
		}
	}
	if typ == "" {
		typ, _ = pm["type"].(string)
		if it, ok := pm["items"].(map[string]any); ok {
			items = it
		}
		format, _ = pm["format"].(string)
	}
	if typ == "" {
		typ = "string"
	}
	out["type"] = typ
	if items != nil {
		out["items"] = items
	}
	if format != "" {
		out["format"] = format
	}
	return out
}
