package command

import (
	"slices"
	"strings"

	"github.com/mark3labs/specforge/internal/spec"
)

const (
	KindAddPath                Kind = "ADD_PATH"
	KindRenamePath             Kind = "RENAME_PATH"
	KindRemovePath             Kind = "REMOVE_PATH"
	KindUpdatePathItem         Kind = "UPDATE_PATH_ITEM"
	KindAddOperation           Kind = "ADD_OPERATION"
	KindRemoveOperation        Kind = "REMOVE_OPERATION"
	KindChangeOperationMethod  Kind = "CHANGE_OPERATION_METHOD"
	KindUpdateOperation        Kind = "UPDATE_OPERATION"
	KindSetOperationTags       Kind = "SET_OPERATION_TAGS"
	KindSetOperationDeprecated Kind = "SET_OPERATION_DEPRECATED"
	KindSetOperationSecurity   Kind = "SET_OPERATION_SECURITY"
	KindAddParameter           Kind = "ADD_PARAMETER"
	KindUpdateParameter        Kind = "UPDATE_PARAMETER"
	KindRemoveParameter        Kind = "REMOVE_PARAMETER"
)

// DefaultPath is the key AddPath uses when no path is given.
const DefaultPath = "/newPath"

// AddPath creates a path with a default GET operation.
type AddPath struct {
	Path string `json:"path"`
}

func (AddPath) Kind() Kind { return KindAddPath }

func (c AddPath) applyDoc(d *spec.Document) *spec.Document {
	explicit := c.Path
	if explicit != "" && !strings.HasPrefix(explicit, "/") {
		explicit = "/" + explicit
	}
	name, ok := freshName(explicit, DefaultPath, has(d.Paths))
	if !ok {
		return d
	}
	out := shallow(d)
	out.Paths = withKey(d.Paths, name, &spec.PathItem{Get: newOperation()})
	return out
}

type RenamePath struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (RenamePath) Kind() Kind { return KindRenamePath }

func (c RenamePath) applyDoc(d *spec.Document) *spec.Document {
	paths, ok := moveKey(d.Paths, c.From, c.To)
	if !ok {
		return d
	}
	out := shallow(d)
	out.Paths = paths
	return out
}

type RemovePath struct {
	Path string `json:"path"`
}

func (RemovePath) Kind() Kind { return KindRemovePath }

func (c RemovePath) applyDoc(d *spec.Document) *spec.Document {
	paths, ok := withoutKey(d.Paths, c.Path)
	if !ok {
		return d
	}
	out := shallow(d)
	out.Paths = paths
	return out
}

type UpdatePathItem struct {
	Path        string `json:"path"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

func (UpdatePathItem) Kind() Kind { return KindUpdatePathItem }

func (c UpdatePathItem) applyDoc(d *spec.Document) *spec.Document {
	return withPathItem(d, c.Path, func(pi *spec.PathItem) bool {
		pi.Summary = c.Summary
		pi.Description = c.Description
		return true
	})
}

// AddOperation fills an empty method slot with a default operation.
type AddOperation struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func (AddOperation) Kind() Kind { return KindAddOperation }

func (c AddOperation) applyDoc(d *spec.Document) *spec.Document {
	m, ok := spec.ParseMethod(strings.ToLower(c.Method))
	if !ok {
		return d
	}
	return withPathItem(d, c.Path, func(pi *spec.PathItem) bool {
		if pi.Operation(m) != nil {
			return false
		}
		pi.SetOperation(m, newOperation())
		return true
	})
}

type RemoveOperation struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func (RemoveOperation) Kind() Kind { return KindRemoveOperation }

func (c RemoveOperation) applyDoc(d *spec.Document) *spec.Document {
	m, ok := spec.ParseMethod(strings.ToLower(c.Method))
	if !ok {
		return d
	}
	return withPathItem(d, c.Path, func(pi *spec.PathItem) bool {
		if pi.Operation(m) == nil {
			return false
		}
		pi.SetOperation(m, nil)
		return true
	})
}

// ChangeOperationMethod moves an operation to another method slot. When the
// target slot is occupied the two operations trade places.
type ChangeOperationMethod struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (ChangeOperationMethod) Kind() Kind { return KindChangeOperationMethod }

func (c ChangeOperationMethod) applyDoc(d *spec.Document) *spec.Document {
	from, ok1 := spec.ParseMethod(strings.ToLower(c.From))
	to, ok2 := spec.ParseMethod(strings.ToLower(c.To))
	if !ok1 || !ok2 || from == to {
		return d
	}
	return withPathItem(d, c.Path, func(pi *spec.PathItem) bool {
		moving := pi.Operation(from)
		if moving == nil {
			return false
		}
		pi.SetOperation(from, pi.Operation(to))
		pi.SetOperation(to, moving)
		return true
	})
}

// UpdateOperation sets summary, description or operationId.
type UpdateOperation struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Field  string `json:"field"`
	Value  string `json:"value"`
}

func (UpdateOperation) Kind() Kind { return KindUpdateOperation }

func (c UpdateOperation) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		switch c.Field {
		case "summary":
			op.Summary = c.Value
		case "description":
			op.Description = c.Value
		case "operationId":
			op.OperationID = c.Value
		default:
			return false
		}
		return true
	})
}

type SetOperationTags struct {
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Tags   []string `json:"tags"`
}

func (SetOperationTags) Kind() Kind { return KindSetOperationTags }

func (c SetOperationTags) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			if t != "" && !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
		op.Tags = tags
		return true
	})
}

type SetOperationDeprecated struct {
	Path       string `json:"path"`
	Method     string `json:"method"`
	Deprecated bool   `json:"deprecated"`
}

func (SetOperationDeprecated) Kind() Kind { return KindSetOperationDeprecated }

func (c SetOperationDeprecated) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		op.Deprecated = c.Deprecated
		return true
	})
}

// SetOperationSecurity overrides the global requirements for one operation.
// A nil list restores inheritance.
type SetOperationSecurity struct {
	Path     string                     `json:"path"`
	Method   string                     `json:"method"`
	Security []spec.SecurityRequirement `json:"security"`
}

func (SetOperationSecurity) Kind() Kind { return KindSetOperationSecurity }

func (c SetOperationSecurity) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		op.Security = spec.CloneValue(c.Security)
		return true
	})
}

// AddParameter appends a parameter. A parameter whose (name, in) identity is
// already declared is ignored. Path parameters are always required.
type AddParameter struct {
	Path      string         `json:"path"`
	Method    string         `json:"method"`
	Parameter spec.Parameter `json:"parameter"`
}

func (AddParameter) Kind() Kind { return KindAddParameter }

func (c AddParameter) applyDoc(d *spec.Document) *spec.Document {
	p := normalizeParameter(spec.CloneValue(c.Parameter))
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if parameterIndex(op.Parameters, p) >= 0 {
			return false
		}
		op.Parameters = append(slices.Clone(op.Parameters), p)
		return true
	})
}

type UpdateParameter struct {
	Path      string         `json:"path"`
	Method    string         `json:"method"`
	Index     int            `json:"index"`
	Parameter spec.Parameter `json:"parameter"`
}

func (UpdateParameter) Kind() Kind { return KindUpdateParameter }

func (c UpdateParameter) applyDoc(d *spec.Document) *spec.Document {
	p := normalizeParameter(spec.CloneValue(c.Parameter))
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if !inRange(op.Parameters, c.Index) {
			return false
		}
		if i := parameterIndex(op.Parameters, p); i >= 0 && i != c.Index {
			return false
		}
		op.Parameters = slices.Clone(op.Parameters)
		op.Parameters[c.Index] = p
		return true
	})
}

type RemoveParameter struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Index  int    `json:"index"`
}

func (RemoveParameter) Kind() Kind { return KindRemoveParameter }

func (c RemoveParameter) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if !inRange(op.Parameters, c.Index) {
			return false
		}
		op.Parameters = slices.Delete(slices.Clone(op.Parameters), c.Index, c.Index+1)
		return true
	})
}

func normalizeParameter(p spec.Parameter) spec.Parameter {
	if p.Ref != "" {
		return p
	}
	if p.Name == "" {
		p.Name = "param"
	}
	if p.In == "" {
		p.In = "query"
	}
	if p.In == "path" {
		p.Required = true
	}
	if p.Schema == nil && len(p.Content) == 0 {
		p.Schema = &spec.Schema{Type: spec.TypeSet{"string"}}
	}
	return p
}

func parameterIndex(params []spec.Parameter, p spec.Parameter) int {
	return slices.IndexFunc(params, func(q spec.Parameter) bool {
		if p.Ref != "" || q.Ref != "" {
			return p.Ref == q.Ref
		}
		return q.Name == p.Name && q.In == p.In
	})
}
