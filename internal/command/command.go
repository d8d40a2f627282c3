// Package command is the mutation engine for documents. Every edit is a
// Command value; Apply folds one command into a State and returns the next
// State without touching anything reachable from the previous one. Parts of
// the document a command does not edit are shared between the two states.
//
// Commands that name a missing key (an unknown path, an out-of-range index)
// leave the document unchanged.
package command

import (
	"maps"
	"strings"

	"github.com/mark3labs/specforge/internal/spec"
)

// Kind is the wire tag of a command.
type Kind string

// Command is one discrete edit.
type Command interface {
	Kind() Kind
}

// documentCommand edits the live document only.
type documentCommand interface {
	Command
	applyDoc(doc *spec.Document) *spec.Document
}

// stateCommand reads or replaces the snapshot as well.
type stateCommand interface {
	Command
	applyState(s State) State
}

// State is the live document plus the last explicitly saved snapshot.
type State struct {
	Document *spec.Document
	Snapshot *spec.Document
}

// NewState starts from the built-in default document with no snapshot.
func NewState() State {
	return State{Document: spec.NewDefaultDocument()}
}

// Apply runs cmd against s. Unknown commands are ignored.
func Apply(s State, cmd Command) State {
	if s.Document == nil {
		s.Document = spec.NewDefaultDocument()
	}
	switch c := cmd.(type) {
	case stateCommand:
		return c.applyState(s)
	case documentCommand:
		s.Document = c.applyDoc(s.Document)
	}
	return s
}

// ApplyAll folds cmds into s in order.
func ApplyAll(s State, cmds ...Command) State {
	for _, c := range cmds {
		s = Apply(s, c)
	}
	return s
}

func shallow(d *spec.Document) *spec.Document {
	c := *d
	return &c
}

// withPathItem runs fn on a copy of the PathItem stored under path. fn
// reports whether it changed anything; if not, d is returned as is.
func withPathItem(d *spec.Document, path string, fn func(pi *spec.PathItem) bool) *spec.Document {
	cur, ok := d.Paths[path]
	if !ok || cur == nil {
		return d
	}
	pi := *cur
	if !fn(&pi) {
		return d
	}
	out := shallow(d)
	out.Paths = maps.Clone(d.Paths)
	out.Paths[path] = &pi
	return out
}

// withOperation runs fn on a copy of the operation at path and method.
func withOperation(d *spec.Document, path, method string, fn func(op *spec.Operation) bool) *spec.Document {
	m, ok := spec.ParseMethod(strings.ToLower(method))
	if !ok {
		return d
	}
	return withPathItem(d, path, func(pi *spec.PathItem) bool {
		cur := pi.Operation(m)
		if cur == nil {
			return false
		}
		op := *cur
		if !fn(&op) {
			return false
		}
		pi.SetOperation(m, &op)
		return true
	})
}

// withComponents runs fn on a copy of the components object, creating it
// when absent.
func withComponents(d *spec.Document, fn func(c *spec.Components) bool) *spec.Document {
	var c spec.Components
	if d.Components != nil {
		c = *d.Components
	}
	if !fn(&c) {
		return d
	}
	out := shallow(d)
	out.Components = &c
	return out
}

// mapOperations offers a copy of every operation under paths to fn and keeps
// the copies fn reports as changed.
func mapOperations(d *spec.Document, fn func(op *spec.Operation) bool) *spec.Document {
	var paths map[string]*spec.PathItem
	for key, cur := range d.Paths {
		if cur == nil {
			continue
		}
		var pi *spec.PathItem
		for _, mo := range cur.Operations() {
			op := *mo.Operation
			if !fn(&op) {
				continue
			}
			if pi == nil {
				c := *cur
				pi = &c
			}
			pi.SetOperation(mo.Method, &op)
		}
		if pi != nil {
			if paths == nil {
				paths = maps.Clone(d.Paths)
			}
			paths[key] = pi
		}
	}
	if paths == nil {
		return d
	}
	out := shallow(d)
	out.Paths = paths
	return out
}

func newOperation() *spec.Operation {
	return &spec.Operation{
		Tags:         []string{},
		ExternalDocs: &spec.ExternalDocs{},
		Parameters:   []spec.Parameter{},
		Responses: map[string]*spec.Response{
			"200": {Description: "Successful response"},
		},
	}
}

func objectSchema() *spec.Schema {
	return &spec.Schema{Type: spec.TypeSet{"object"}, Properties: map[string]*spec.Schema{}}
}

func inRange[T any](s []T, i int) bool { return i >= 0 && i < len(s) }
