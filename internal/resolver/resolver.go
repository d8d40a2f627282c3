// Package resolver follows internal "#/..." pointers inside a document and
// dereferences pointer chains with cycle protection.
//
// Unresolvable pointers are never errors: lookups report (nil, false) and
// dereferencing leaves the unresolved node in place.
package resolver

import (
	"reflect"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/mark3labs/specforge/internal/spec"
)

// ResolveRef walks root along pointer, a "#"-rooted JSON pointer. Segments
// are unescaped (~1 to "/", ~0 to "~") before lookup. root may be a typed
// *spec.Document or a generic JSON tree.
func ResolveRef(pointer string, root any) (any, bool) {
	if !strings.HasPrefix(pointer, "#") || root == nil {
		return nil, false
	}
	path := strings.TrimPrefix(pointer, "#")
	if path == "" {
		return root, true
	}
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, false
	}
	v, _, err := p.Get(root)
	if err != nil || isNil(v) {
		return nil, false
	}
	return v, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ResolveSchema looks up a schema pointer in doc.
func ResolveSchema(pointer string, doc *spec.Document) (*spec.Schema, bool) {
	v, ok := ResolveRef(pointer, doc)
	if !ok {
		return nil, false
	}
	s, ok := v.(*spec.Schema)
	return s, ok
}

// follow walks a chain of $ref nodes until it reaches an inline node. A chain
// that revisits a pointer or leaves the document reports false.
func follow[T any](node *T, refOf func(*T) string, doc *spec.Document) (*T, bool) {
	seen := map[string]bool{}
	for node != nil {
		r := refOf(node)
		if r == "" {
			return node, true
		}
		if seen[r] {
			return nil, false
		}
		seen[r] = true
		v, ok := ResolveRef(r, doc)
		if !ok {
			return nil, false
		}
		next, ok := v.(*T)
		if !ok {
			return nil, false
		}
		node = next
	}
	return nil, false
}

// ResolveParameter returns the inline parameter p stands for.
func ResolveParameter(p *spec.Parameter, doc *spec.Document) (*spec.Parameter, bool) {
	return follow(p, func(n *spec.Parameter) string { return n.Ref }, doc)
}

// ResolveRequestBody returns the inline request body rb stands for.
func ResolveRequestBody(rb *spec.RequestBody, doc *spec.Document) (*spec.RequestBody, bool) {
	return follow(rb, func(n *spec.RequestBody) string { return n.Ref }, doc)
}

// ResolveResponse returns the inline response r stands for.
func ResolveResponse(r *spec.Response, doc *spec.Document) (*spec.Response, bool) {
	return follow(r, func(n *spec.Response) string { return n.Ref }, doc)
}
