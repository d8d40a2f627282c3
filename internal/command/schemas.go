package command

import "github.com/mark3labs/specforge/internal/spec"

const (
	KindAddSchema    Kind = "ADD_SCHEMA"
	KindUpdateSchema Kind = "UPDATE_SCHEMA"
	KindRenameSchema Kind = "RENAME_SCHEMA"
	KindRemoveSchema Kind = "REMOVE_SCHEMA"
)

const DefaultSchema = "NewSchema"

// AddSchema registers a reusable schema, an empty object unless one is given.
type AddSchema struct {
	Name   string       `json:"name"`
	Schema *spec.Schema `json:"schema"`
}

func (AddSchema) Kind() Kind { return KindAddSchema }

func (c AddSchema) applyDoc(d *spec.Document) *spec.Document {
	return withComponents(d, func(comp *spec.Components) bool {
		name, ok := freshName(c.Name, DefaultSchema, has(comp.Schemas))
		if !ok {
			return false
		}
		s := objectSchema()
		if c.Schema != nil {
			s = c.Schema.Clone()
		}
		comp.Schemas = withKey(comp.Schemas, name, s)
		return true
	})
}

type UpdateSchema struct {
	Name   string       `json:"name"`
	Schema *spec.Schema `json:"schema"`
}

func (UpdateSchema) Kind() Kind { return KindUpdateSchema }

func (c UpdateSchema) applyDoc(d *spec.Document) *spec.Document {
	if c.Schema == nil {
		return d
	}
	return withComponents(d, func(comp *spec.Components) bool {
		if !has(comp.Schemas)(c.Name) {
			return false
		}
		comp.Schemas = withKey(comp.Schemas, c.Name, c.Schema.Clone())
		return true
	})
}

// RenameSchema moves a schema to a new key. References to the old name
// elsewhere in the document are left as they are.
type RenameSchema struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (RenameSchema) Kind() Kind { return KindRenameSchema }

func (c RenameSchema) applyDoc(d *spec.Document) *spec.Document {
	return withComponents(d, func(comp *spec.Components) bool {
		schemas, ok := moveKey(comp.Schemas, c.From, c.To)
		comp.Schemas = schemas
		return ok
	})
}

type RemoveSchema struct {
	Name string `json:"name"`
}

func (RemoveSchema) Kind() Kind { return KindRemoveSchema }

func (c RemoveSchema) applyDoc(d *spec.Document) *spec.Document {
	return withComponents(d, func(comp *spec.Components) bool {
		schemas, ok := withoutKey(comp.Schemas, c.Name)
		comp.Schemas = schemas
		return ok
	})
}
