package command

import (
	"slices"
	"strings"

	"github.com/mark3labs/specforge/internal/spec"
)

const (
	KindSetInfoField         Kind = "SET_INFO_FIELD"
	KindSetExternalDocs      Kind = "SET_EXTERNAL_DOCS"
	KindAddServer            Kind = "ADD_SERVER"
	KindUpdateServer         Kind = "UPDATE_SERVER"
	KindRemoveServer         Kind = "REMOVE_SERVER"
	KindAddServerVariable    Kind = "ADD_SERVER_VARIABLE"
	KindUpdateServerVariable Kind = "UPDATE_SERVER_VARIABLE"
	KindRenameServerVariable Kind = "RENAME_SERVER_VARIABLE"
	KindRemoveServerVariable Kind = "REMOVE_SERVER_VARIABLE"
	KindAddTag               Kind = "ADD_TAG"
	KindUpdateTag            Kind = "UPDATE_TAG"
	KindRemoveTag            Kind = "REMOVE_TAG"
)

// SetInfoField sets one info field. Field is one of title, version,
// description, termsOfService, contact.name, contact.url, contact.email,
// license.name or license.url.
type SetInfoField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (SetInfoField) Kind() Kind { return KindSetInfoField }

func (c SetInfoField) applyDoc(d *spec.Document) *spec.Document {
	var info spec.Info
	if d.Info != nil {
		info = *d.Info
	}
	contact := func() *spec.Contact {
		var ct spec.Contact
		if info.Contact != nil {
			ct = *info.Contact
		}
		info.Contact = &ct
		return &ct
	}
	license := func() *spec.License {
		var l spec.License
		if info.License != nil {
			l = *info.License
		}
		info.License = &l
		return &l
	}
	switch c.Field {
	case "title":
		info.Title = c.Value
	case "version":
		info.Version = c.Value
	case "description":
		info.Description = c.Value
	case "termsOfService":
		info.TermsOfService = c.Value
	case "contact.name":
		contact().Name = c.Value
	case "contact.url":
		contact().URL = c.Value
	case "contact.email":
		contact().Email = c.Value
	case "license.name":
		license().Name = c.Value
	case "license.url":
		license().URL = c.Value
	default:
		return d
	}
	out := shallow(d)
	out.Info = &info
	return out
}

type SetExternalDocs struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (SetExternalDocs) Kind() Kind { return KindSetExternalDocs }

func (c SetExternalDocs) applyDoc(d *spec.Document) *spec.Document {
	out := shallow(d)
	out.ExternalDocs = &spec.ExternalDocs{Description: c.Description, URL: c.URL}
	return out
}

// AddServer appends a server. An empty URL gets a placeholder.
type AddServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (AddServer) Kind() Kind { return KindAddServer }

func (c AddServer) applyDoc(d *spec.Document) *spec.Document {
	url := c.URL
	if url == "" {
		url = "https://api.example.com"
	}
	out := shallow(d)
	out.Servers = append(slices.Clone(d.Servers), spec.Server{URL: url, Description: c.Description})
	return out
}

type UpdateServer struct {
	Index       int    `json:"index"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (UpdateServer) Kind() Kind { return KindUpdateServer }

func (c UpdateServer) applyDoc(d *spec.Document) *spec.Document {
	return withServer(d, c.Index, func(s *spec.Server) bool {
		s.URL = c.URL
		s.Description = c.Description
		return true
	})
}

type RemoveServer struct {
	Index int `json:"index"`
}

func (RemoveServer) Kind() Kind { return KindRemoveServer }

func (c RemoveServer) applyDoc(d *spec.Document) *spec.Document {
	if !inRange(d.Servers, c.Index) {
		return d
	}
	out := shallow(d)
	out.Servers = slices.Delete(slices.Clone(d.Servers), c.Index, c.Index+1)
	return out
}

func withServer(d *spec.Document, index int, fn func(s *spec.Server) bool) *spec.Document {
	if !inRange(d.Servers, index) {
		return d
	}
	s := d.Servers[index]
	if !fn(&s) {
		return d
	}
	out := shallow(d)
	out.Servers = slices.Clone(d.Servers)
	out.Servers[index] = s
	return out
}

// AddServerVariable declares a {name} variable on the server at Index.
type AddServerVariable struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Default     string   `json:"default"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

func (AddServerVariable) Kind() Kind { return KindAddServerVariable }

func (c AddServerVariable) applyDoc(d *spec.Document) *spec.Document {
	return withServer(d, c.Index, func(s *spec.Server) bool {
		name, ok := freshName(c.Name, "variable", has(s.Variables))
		if !ok {
			return false
		}
		s.Variables = withKey(s.Variables, name, &spec.ServerVariable{
			Default:     c.Default,
			Description: c.Description,
			Enum:        slices.Clone(c.Enum),
		})
		return true
	})
}

type UpdateServerVariable struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Default     string   `json:"default"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

func (UpdateServerVariable) Kind() Kind { return KindUpdateServerVariable }

func (c UpdateServerVariable) applyDoc(d *spec.Document) *spec.Document {
	return withServer(d, c.Index, func(s *spec.Server) bool {
		if _, ok := s.Variables[c.Name]; !ok {
			return false
		}
		s.Variables = withKey(s.Variables, c.Name, &spec.ServerVariable{
			Default:     c.Default,
			Description: c.Description,
			Enum:        slices.Clone(c.Enum),
		})
		return true
	})
}

// RenameServerVariable also rewrites the {from} placeholder in the URL.
type RenameServerVariable struct {
	Index int    `json:"index"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (RenameServerVariable) Kind() Kind { return KindRenameServerVariable }

func (c RenameServerVariable) applyDoc(d *spec.Document) *spec.Document {
	return withServer(d, c.Index, func(s *spec.Server) bool {
		vars, ok := moveKey(s.Variables, c.From, c.To)
		if !ok {
			return false
		}
		s.Variables = vars
		s.URL = strings.ReplaceAll(s.URL, "{"+c.From+"}", "{"+c.To+"}")
		return true
	})
}

type RemoveServerVariable struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

func (RemoveServerVariable) Kind() Kind { return KindRemoveServerVariable }

func (c RemoveServerVariable) applyDoc(d *spec.Document) *spec.Document {
	return withServer(d, c.Index, func(s *spec.Server) bool {
		vars, ok := withoutKey(s.Variables, c.Name)
		s.Variables = vars
		return ok
	})
}

// AddTag declares a tag. The default name is newTag.
type AddTag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (AddTag) Kind() Kind { return KindAddTag }

func (c AddTag) applyDoc(d *spec.Document) *spec.Document {
	name, ok := freshName(c.Name, "newTag", func(n string) bool { return tagIndex(d.Tags, n) >= 0 })
	if !ok {
		return d
	}
	out := shallow(d)
	out.Tags = append(slices.Clone(d.Tags), spec.Tag{Name: name, Description: c.Description})
	return out
}

// UpdateTag rewrites the tag at Index. A changed name is carried into every
// operation that lists the old one; a name already used by another tag
// leaves the document unchanged.
type UpdateTag struct {
	Index        int                `json:"index"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	ExternalDocs *spec.ExternalDocs `json:"externalDocs,omitempty"`
}

func (UpdateTag) Kind() Kind { return KindUpdateTag }

func (c UpdateTag) applyDoc(d *spec.Document) *spec.Document {
	if !inRange(d.Tags, c.Index) || c.Name == "" {
		return d
	}
	old := d.Tags[c.Index].Name
	if i := tagIndex(d.Tags, c.Name); i >= 0 && i != c.Index {
		return d
	}
	out := shallow(d)
	out.Tags = slices.Clone(d.Tags)
	out.Tags[c.Index] = spec.Tag{Name: c.Name, Description: c.Description, ExternalDocs: spec.CloneValue(c.ExternalDocs)}
	if old == c.Name {
		return out
	}
	return mapOperations(out, func(op *spec.Operation) bool {
		i := slices.Index(op.Tags, old)
		if i < 0 {
			return false
		}
		op.Tags = slices.Clone(op.Tags)
		if slices.Contains(op.Tags, c.Name) {
			op.Tags = slices.Delete(op.Tags, i, i+1)
		} else {
			op.Tags[i] = c.Name
		}
		return true
	})
}

// RemoveTag deletes the tag at Index and drops it from every operation.
type RemoveTag struct {
	Index int `json:"index"`
}

func (RemoveTag) Kind() Kind { return KindRemoveTag }

func (c RemoveTag) applyDoc(d *spec.Document) *spec.Document {
	if !inRange(d.Tags, c.Index) {
		return d
	}
	name := d.Tags[c.Index].Name
	out := shallow(d)
	out.Tags = slices.Delete(slices.Clone(d.Tags), c.Index, c.Index+1)
	return mapOperations(out, func(op *spec.Operation) bool {
		if !slices.Contains(op.Tags, name) {
			return false
		}
		op.Tags = slices.DeleteFunc(slices.Clone(op.Tags), func(t string) bool { return t == name })
		return true
	})
}

func tagIndex(tags []spec.Tag, name string) int {
	return slices.IndexFunc(tags, func(t spec.Tag) bool { return t.Name == name })
}
