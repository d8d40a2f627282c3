// Package translate turns schema nodes into zod validation expressions for
// the generated TypeScript scaffold.
//
// Translation never fails. A node that cannot be expressed, including a
// $ref the caller did not dereference, becomes z.any().
package translate

import (
	"encoding/json"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/specforge/internal/spec"
)

// Any is the permissive expression used for unknown shapes.
const Any = "z.any()"

// Field is one named member of an object expression.
type Field struct {
	Name        string
	Schema      *spec.Schema
	Required    bool
	Description string
}

// Translate returns the zod expression for s. A field that is not required
// is marked optional.
func Translate(s *spec.Schema, required bool) string {
	expr := expression(s)
	if !required {
		expr += ".optional()"
	}
	return expr
}

// Object renders a z.object over fields in the given order. Each field keeps
// its description as .describe metadata.
func Object(fields []Field) string {
	if len(fields) == 0 {
		return "z.object({})"
	}
	var b strings.Builder
	b.WriteString("z.object({ ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(PropertyKey(f.Name))
		b.WriteString(": ")
		expr := expression(f.Schema)
		desc := f.Description
		if desc == "" && f.Schema != nil {
			desc = f.Schema.Description
		}
		if desc != "" {
			expr += ".describe(" + literal(desc) + ")"
		}
		if !f.Required {
			expr += ".optional()"
		}
		b.WriteString(expr)
	}
	b.WriteString(" })")
	return b.String()
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// PropertyKey returns name unchanged when it is a bare identifier and as a
// quoted string literal otherwise.
func PropertyKey(name string) string {
	if identPattern.MatchString(name) {
		return name
	}
	return literal(name)
}

func expression(s *spec.Schema) string {
	if s == nil || s.Ref != "" {
		return Any
	}
	expr, nullable := base(s)
	if (s.Nullable || nullable) && expr != "z.null()" && expr != Any {
		expr += ".nullable()"
	}
	return expr
}

// base translates s without its nullability. The second result reports a
// null member of the type list or enum.
func base(s *spec.Schema) (string, bool) {
	if len(s.Enum) > 0 {
		return enum(s.Enum)
	}
	if branches := slices.Concat(s.AnyOf, s.OneOf); len(branches) > 0 {
		return union(branches), false
	}
	if len(s.AllOf) > 0 {
		expr := expression(s.AllOf[0])
		for _, part := range s.AllOf[1:] {
			expr += ".and(" + expression(part) + ")"
		}
		return expr, false
	}

	types := make([]string, 0, len(s.Type))
	nullable := false
	for _, t := range s.Type {
		if t == "null" {
			nullable = true
			continue
		}
		types = append(types, t)
	}
	switch {
	case len(types) == 0 && nullable:
		return "z.null()", false
	case len(types) == 0:
		if len(s.Properties) > 0 || s.AdditionalProperties != nil {
			return object(s), false
		}
		if s.Items != nil {
			return array(s), false
		}
		return Any, false
	case len(types) > 1:
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, typed(s, t))
		}
		return "z.union([" + strings.Join(parts, ", ") + "])", nullable
	}
	return typed(s, types[0]), nullable
}

func typed(s *spec.Schema, t string) string {
	switch t {
	case "string":
		return str(s)
	case "integer":
		return number(s, "z.number().int()")
	case "number":
		return number(s, "z.number()")
	case "boolean":
		return "z.boolean()"
	case "array":
		return array(s)
	case "object":
		return object(s)
	}
	return Any
}

func str(s *spec.Schema) string {
	expr := "z.string()"
	switch s.Format {
	case "date":
		expr += ".date()"
	case "date-time":
		expr += ".datetime()"
	case "email":
		expr += ".email()"
	case "uri", "url":
		expr += ".url()"
	case "uuid":
		expr += ".uuid()"
	}
	if s.MinLength != nil {
		expr += ".min(" + strconv.Itoa(*s.MinLength) + ")"
	}
	if s.MaxLength != nil {
		expr += ".max(" + strconv.Itoa(*s.MaxLength) + ")"
	}
	if s.Pattern != "" {
		expr += ".regex(new RegExp(" + literal(s.Pattern) + "))"
	}
	return expr
}

func number(s *spec.Schema, expr string) string {
	if s.Minimum != nil {
		if exclusive(s.ExclusiveMinimum) {
			expr += ".gt(" + num(*s.Minimum) + ")"
		} else {
			expr += ".min(" + num(*s.Minimum) + ")"
		}
	} else if v, ok := s.ExclusiveMinimum.(float64); ok {
		expr += ".gt(" + num(v) + ")"
	}
	if s.Maximum != nil {
		if exclusive(s.ExclusiveMaximum) {
			expr += ".lt(" + num(*s.Maximum) + ")"
		} else {
			expr += ".max(" + num(*s.Maximum) + ")"
		}
	} else if v, ok := s.ExclusiveMaximum.(float64); ok {
		expr += ".lt(" + num(v) + ")"
	}
	return expr
}

// exclusive reads the boolean form of exclusiveMinimum/exclusiveMaximum.
func exclusive(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func array(s *spec.Schema) string {
	expr := "z.array(" + Translate(s.Items, true) + ")"
	if s.Items == nil {
		expr = "z.array(" + Any + ")"
	}
	if s.MinItems != nil {
		expr += ".min(" + strconv.Itoa(*s.MinItems) + ")"
	}
	if s.MaxItems != nil {
		expr += ".max(" + strconv.Itoa(*s.MaxItems) + ")"
	}
	return expr
}

func object(s *spec.Schema) string {
	ap := s.AdditionalProperties
	if len(s.Properties) == 0 {
		switch {
		case ap != nil && ap.Schema != nil:
			return "z.record(z.string(), " + expression(ap.Schema) + ")"
		case ap != nil && !ap.Permits():
			return "z.object({}).strict()"
		}
		return "z.record(z.string(), " + Any + ")"
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Schema: s.Properties[name], Required: s.IsRequired(name)})
	}
	expr := Object(fields)
	if ap != nil && ap.Schema != nil {
		expr += ".catchall(" + expression(ap.Schema) + ")"
	}
	return expr
}

func union(branches []*spec.Schema) string {
	if len(branches) == 1 {
		return expression(branches[0])
	}
	parts := make([]string, 0, len(branches))
	for _, b := range branches {
		parts = append(parts, expression(b))
	}
	return "z.union([" + strings.Join(parts, ", ") + "])"
}

func enum(values []any) (string, bool) {
	nullable := false
	strs := make([]string, 0, len(values))
	lits := make([]string, 0, len(values))
	allStrings := true
	for _, v := range values {
		if v == nil {
			nullable = true
			continue
		}
		if s, ok := v.(string); ok {
			strs = append(strs, literal(s))
		} else {
			allStrings = false
		}
		lits = append(lits, "z.literal("+literal(v)+")")
	}
	switch {
	case len(lits) == 0:
		return "z.null()", false
	case allStrings:
		return "z.enum([" + strings.Join(strs, ", ") + "])", nullable
	case len(lits) == 1:
		return lits[0], nullable
	}
	return "z.union([" + strings.Join(lits, ", ") + "])", nullable
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// literal renders v as a JSON literal, which is also valid TypeScript.
func literal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
