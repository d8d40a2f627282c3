package resolver

import (
	"reflect"

	"github.com/mark3labs/specforge/internal/spec"
)

// Deref returns a copy of node with every $ref replaced by a copy of its
// target. Unless shallow is set, targets are dereferenced before they are
// spliced in. Fields written beside a $ref override the resolved fields.
//
// A pointer already being expanded further up the current chain is left as
// a $ref node, which is where self-referential and mutually recursive
// schemas are cut. Unresolvable pointers pass through untouched.
func Deref(node *spec.Schema, doc *spec.Document, shallow bool) *spec.Schema {
	d := schemaDeref{doc: doc, shallow: shallow, visited: map[string]bool{}}
	return d.walk(node.Clone())
}

type schemaDeref struct {
	doc     *spec.Document
	shallow bool
	visited map[string]bool
}

func (d *schemaDeref) walk(s *spec.Schema) *spec.Schema {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		return d.expand(s)
	}
	s.Items = d.walk(s.Items)
	s.Not = d.walk(s.Not)
	for k, p := range s.Properties {
		s.Properties[k] = d.walk(p)
	}
	if s.AdditionalProperties != nil {
		s.AdditionalProperties.Schema = d.walk(s.AdditionalProperties.Schema)
	}
	for i := range s.AllOf {
		s.AllOf[i] = d.walk(s.AllOf[i])
	}
	for i := range s.AnyOf {
		s.AnyOf[i] = d.walk(s.AnyOf[i])
	}
	for i := range s.OneOf {
		s.OneOf[i] = d.walk(s.OneOf[i])
	}
	return s
}

func (d *schemaDeref) expand(s *spec.Schema) *spec.Schema {
	ptr := s.Ref
	if d.visited[ptr] {
		return s
	}
	target, ok := ResolveSchema(ptr, d.doc)
	if !ok {
		return s
	}
	resolved := target.Clone()
	if !d.shallow {
		d.visited[ptr] = true
		resolved = d.walk(resolved)
		delete(d.visited, ptr)
	}
	siblings := *s
	siblings.Ref = ""
	overlaySchema(resolved, d.walk(&siblings))
	return resolved
}

// overlaySchema copies every set field of src except $ref onto dst.
func overlaySchema(dst, src *spec.Schema) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()
	for i := 0; i < sv.NumField(); i++ {
		if sv.Type().Field(i).Name == "Ref" {
			continue
		}
		if f := sv.Field(i); !f.IsZero() {
			dv.Field(i).Set(f)
		}
	}
}

// DerefTree applies the Deref algorithm to a generic JSON tree, as produced
// by spec.ToTree, resolving pointers against root.
func DerefTree(node any, root any, shallow bool) any {
	d := treeDeref{root: root, shallow: shallow, visited: map[string]bool{}}
	return d.walk(spec.CloneValue(node))
}

type treeDeref struct {
	root    any
	shallow bool
	visited map[string]bool
}

func (d *treeDeref) walk(n any) any {
	switch t := n.(type) {
	case map[string]any:
		if ptr, ok := t["$ref"].(string); ok {
			return d.expand(ptr, t)
		}
		for k, v := range t {
			t[k] = d.walk(v)
		}
		return t
	case []any:
		for i, v := range t {
			t[i] = d.walk(v)
		}
		return t
	}
	return n
}

func (d *treeDeref) expand(ptr string, node map[string]any) any {
	if d.visited[ptr] {
		return node
	}
	target, ok := ResolveRef(ptr, d.root)
	if !ok {
		return node
	}
	resolved := spec.CloneValue(target)
	if !d.shallow {
		d.visited[ptr] = true
		resolved = d.walk(resolved)
		delete(d.visited, ptr)
	}
	m, ok := resolved.(map[string]any)
	if !ok {
		return resolved
	}
	for k, v := range node {
		if k != "$ref" {
			m[k] = d.walk(v)
		}
	}
	return m
}
