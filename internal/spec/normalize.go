package spec

// PreProcess brings doc into canonical form: every optional substructure the
// editing commands rely on is materialised and PathItem-level parameters are
// merged into each operation. It mutates doc in place and returns it; clone
// first when the original must survive. Running it twice is the same as
// running it once.
func PreProcess(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	if doc.Info == nil {
		doc.Info = &Info{}
	}
	if doc.Info.Contact == nil {
		doc.Info.Contact = &Contact{}
	}
	if doc.Info.License == nil {
		doc.Info.License = &License{}
	}
	if doc.ExternalDocs == nil {
		doc.ExternalDocs = &ExternalDocs{}
	}
	if doc.Security == nil {
		doc.Security = []SecurityRequirement{}
	}
	if doc.Servers == nil {
		doc.Servers = []Server{}
	}
	if doc.Tags == nil {
		doc.Tags = []Tag{}
	}
	if doc.Paths == nil {
		doc.Paths = map[string]*PathItem{}
	}
	if doc.Components == nil {
		doc.Components = &Components{}
	}
	fillComponents(doc.Components)

	for _, pi := range doc.Paths {
		preprocessPathItem(pi)
	}
	for _, cb := range doc.Components.Callbacks {
		for _, pi := range cb {
			preprocessPathItem(pi)
		}
	}
	return doc
}

func fillComponents(c *Components) {
	if c.Schemas == nil {
		c.Schemas = map[string]*Schema{}
	}
	if c.Responses == nil {
		c.Responses = map[string]*Response{}
	}
	if c.Parameters == nil {
		c.Parameters = map[string]*Parameter{}
	}
	if c.Examples == nil {
		c.Examples = map[string]*Example{}
	}
	if c.RequestBodies == nil {
		c.RequestBodies = map[string]*RequestBody{}
	}
	if c.Headers == nil {
		c.Headers = map[string]*Header{}
	}
	if c.SecuritySchemes == nil {
		c.SecuritySchemes = map[string]*SecurityScheme{}
	}
	if c.Links == nil {
		c.Links = map[string]*Link{}
	}
	if c.Callbacks == nil {
		c.Callbacks = map[string]Callback{}
	}
	for _, ss := range c.SecuritySchemes {
		if ss == nil || ss.Flows == nil {
			continue
		}
		for _, kind := range FlowKinds {
			if f := ss.Flows.Flow(kind); f != nil && f.Scopes == nil {
				f.Scopes = map[string]string{}
			}
		}
	}
}

func preprocessPathItem(pi *PathItem) {
	if pi == nil {
		return
	}
	shared := pi.Parameters
	for _, mo := range pi.Operations() {
		op := mo.Operation
		if op.Tags == nil {
			op.Tags = []string{}
		}
		if op.Parameters == nil {
			op.Parameters = []Parameter{}
		}
		if op.ExternalDocs == nil {
			op.ExternalDocs = &ExternalDocs{}
		}
		if op.Responses == nil {
			op.Responses = map[string]*Response{}
		}
		op.Parameters = mergeParameters(op.Parameters, shared)
		for _, cb := range op.Callbacks {
			for _, nested := range cb {
				preprocessPathItem(nested)
			}
		}
	}
	pi.Parameters = nil
}

// mergeParameters appends every shared parameter whose (name, in) identity is
// not already declared by the operation. Operation entries win.
func mergeParameters(own, shared []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	seen := make(map[string]struct{}, len(own))
	for _, p := range own {
		seen[p.key()] = struct{}{}
	}
	for _, p := range shared {
		k := p.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		own = append(own, CloneValue(p))
	}
	return own
}

func paramKey(in, name string) string { return in + ":" + name }

func (p Parameter) key() string {
	if p.Ref != "" {
		return "$ref:" + p.Ref
	}
	return paramKey(p.In, p.Name)
}

// PostProcess returns a minimal copy of doc with semantically empty optional
// substructures removed. doc itself is never modified. Anything carrying a
// meaningful field is kept intact.
func PostProcess(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	if out.ExternalDocs != nil && out.ExternalDocs.URL == "" {
		out.ExternalDocs = nil
	}
	if out.Info != nil {
		if out.Info.License != nil && out.Info.License.Name == "" {
			out.Info.License = nil
		}
		if out.Info.Contact.IsEmpty() {
			out.Info.Contact = nil
		}
	}
	if len(out.Security) == 0 {
		out.Security = nil
	}
	if len(out.Servers) == 0 {
		out.Servers = nil
	}
	for i := range out.Servers {
		stripServer(&out.Servers[i])
	}
	if len(out.Tags) == 0 {
		out.Tags = nil
	}
	for i := range out.Tags {
		if out.Tags[i].ExternalDocs != nil && out.Tags[i].ExternalDocs.URL == "" {
			out.Tags[i].ExternalDocs = nil
		}
	}
	if out.Paths == nil {
		out.Paths = map[string]*PathItem{}
	}
	for _, pi := range out.Paths {
		stripPathItem(pi)
	}
	if out.Components != nil {
		stripComponents(out.Components)
		if out.Components.IsEmpty() {
			out.Components = nil
		}
	}
	return out
}

func stripServer(s *Server) {
	if len(s.Variables) == 0 {
		s.Variables = nil
	}
}

func stripComponents(c *Components) {
	if len(c.Schemas) == 0 {
		c.Schemas = nil
	}
	if len(c.Responses) == 0 {
		c.Responses = nil
	}
	if len(c.Parameters) == 0 {
		c.Parameters = nil
	}
	if len(c.Examples) == 0 {
		c.Examples = nil
	}
	if len(c.RequestBodies) == 0 {
		c.RequestBodies = nil
	}
	if len(c.Headers) == 0 {
		c.Headers = nil
	}
	if len(c.SecuritySchemes) == 0 {
		c.SecuritySchemes = nil
	}
	if len(c.Links) == 0 {
		c.Links = nil
	}
	if len(c.Callbacks) == 0 {
		c.Callbacks = nil
	}
	for _, cb := range c.Callbacks {
		for _, pi := range cb {
			stripPathItem(pi)
		}
	}
}

func stripPathItem(pi *PathItem) {
	if pi == nil {
		return
	}
	if len(pi.Parameters) == 0 {
		pi.Parameters = nil
	}
	if len(pi.Servers) == 0 {
		pi.Servers = nil
	}
	for _, mo := range pi.Operations() {
		op := mo.Operation
		if len(op.Tags) == 0 {
			op.Tags = nil
		}
		if len(op.Parameters) == 0 {
			op.Parameters = nil
		}
		if op.ExternalDocs != nil && op.ExternalDocs.URL == "" {
			op.ExternalDocs = nil
		}
		if op.Responses == nil {
			op.Responses = map[string]*Response{}
		}
		if len(op.Callbacks) == 0 {
			op.Callbacks = nil
		}
		if len(op.Servers) == 0 {
			op.Servers = nil
		}
		for _, cb := range op.Callbacks {
			for _, nested := range cb {
				stripPathItem(nested)
			}
		}
	}
}
