package command

import (
	"slices"
	"sort"

	"github.com/mark3labs/specforge/internal/spec"
)

const (
	KindAddSecurityScheme    Kind = "ADD_SECURITY_SCHEME"
	KindUpdateSecurityScheme Kind = "UPDATE_SECURITY_SCHEME"
	KindRenameSecurityScheme Kind = "RENAME_SECURITY_SCHEME"
	KindRemoveSecurityScheme Kind = "REMOVE_SECURITY_SCHEME"
	KindAddOAuthFlow         Kind = "ADD_OAUTH_FLOW"
	KindUpdateOAuthFlow      Kind = "UPDATE_OAUTH_FLOW"
	KindRemoveOAuthFlow      Kind = "REMOVE_OAUTH_FLOW"
	KindAddScope             Kind = "ADD_SCOPE"
	KindRenameScope          Kind = "RENAME_SCOPE"
	KindRemoveScope          Kind = "REMOVE_SCOPE"
	KindToggleGlobalSecurity Kind = "TOGGLE_GLOBAL_SECURITY"
)

const DefaultSecurityScheme = "newSecurityScheme"

func defaultSecurityScheme() *spec.SecurityScheme {
	return &spec.SecurityScheme{Type: spec.SchemeAPIKey, Name: "X-API-Key", In: "header"}
}

// withSecurityScheme runs fn on a copy of the named scheme.
func withSecurityScheme(d *spec.Document, name string, fn func(ss *spec.SecurityScheme) bool) *spec.Document {
	return withComponents(d, func(c *spec.Components) bool {
		cur, ok := c.SecuritySchemes[name]
		if !ok || cur == nil {
			return false
		}
		ss := *cur
		if !fn(&ss) {
			return false
		}
		c.SecuritySchemes = withKey(c.SecuritySchemes, name, &ss)
		return true
	})
}

// withFlow runs fn on a copy of one OAuth flow of the named scheme.
func withFlow(d *spec.Document, name, kind string, fn func(f *spec.OAuthFlow) bool) *spec.Document {
	return withSecurityScheme(d, name, func(ss *spec.SecurityScheme) bool {
		cur := ss.Flows.Flow(kind)
		if cur == nil {
			return false
		}
		f := *cur
		if !fn(&f) {
			return false
		}
		flows := *ss.Flows
		flows.SetFlow(kind, &f)
		ss.Flows = &flows
		return true
	})
}

// rewriteRequirements applies fn to every requirement in list and drops the
// ones fn leaves empty. It reports whether anything changed.
func rewriteRequirements(list []spec.SecurityRequirement, fn func(r spec.SecurityRequirement) (spec.SecurityRequirement, bool)) ([]spec.SecurityRequirement, bool) {
	changed := false
	out := make([]spec.SecurityRequirement, 0, len(list))
	for _, r := range list {
		next, ok := fn(r)
		if !ok {
			out = append(out, r)
			continue
		}
		changed = true
		if len(next) > 0 {
			out = append(out, next)
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

func renameRequirement(from, to string) func(spec.SecurityRequirement) (spec.SecurityRequirement, bool) {
	return func(r spec.SecurityRequirement) (spec.SecurityRequirement, bool) {
		scopes, ok := r[from]
		if !ok {
			return r, false
		}
		next := spec.SecurityRequirement{}
		for k, v := range r {
			if k != from {
				next[k] = v
			}
		}
		next[to] = scopes
		return next, true
	}
}

func dropRequirement(name string) func(spec.SecurityRequirement) (spec.SecurityRequirement, bool) {
	return func(r spec.SecurityRequirement) (spec.SecurityRequirement, bool) {
		if _, ok := r[name]; !ok {
			return r, false
		}
		next := spec.SecurityRequirement{}
		for k, v := range r {
			if k != name {
				next[k] = v
			}
		}
		return next, true
	}
}

// cascadeRequirements rewrites the global requirement list and the
// per-operation overrides of every path operation.
func cascadeRequirements(d *spec.Document, fn func(spec.SecurityRequirement) (spec.SecurityRequirement, bool)) *spec.Document {
	if global, ok := rewriteRequirements(d.Security, fn); ok {
		d = shallow(d)
		d.Security = global
	}
	return mapOperations(d, func(op *spec.Operation) bool {
		list, ok := rewriteRequirements(op.Security, fn)
		op.Security = list
		return ok
	})
}

type AddSecurityScheme struct {
	Name   string               `json:"name"`
	Scheme *spec.SecurityScheme `json:"scheme"`
}

func (AddSecurityScheme) Kind() Kind { return KindAddSecurityScheme }

func (c AddSecurityScheme) applyDoc(d *spec.Document) *spec.Document {
	return withComponents(d, func(comp *spec.Components) bool {
		name, ok := freshName(c.Name, DefaultSecurityScheme, has(comp.SecuritySchemes))
		if !ok {
			return false
		}
		ss := defaultSecurityScheme()
		if c.Scheme != nil {
			ss = spec.CloneValue(c.Scheme)
		}
		fillFlowScopes(ss)
		comp.SecuritySchemes = withKey(comp.SecuritySchemes, name, ss)
		return true
	})
}

// UpdateSecurityScheme replaces a scheme's definition wholesale.
type UpdateSecurityScheme struct {
	Name   string               `json:"name"`
	Scheme *spec.SecurityScheme `json:"scheme"`
}

func (UpdateSecurityScheme) Kind() Kind { return KindUpdateSecurityScheme }

func (c UpdateSecurityScheme) applyDoc(d *spec.Document) *spec.Document {
	if c.Scheme == nil {
		return d
	}
	return withSecurityScheme(d, c.Name, func(ss *spec.SecurityScheme) bool {
		*ss = *spec.CloneValue(c.Scheme)
		fillFlowScopes(ss)
		return true
	})
}

func fillFlowScopes(ss *spec.SecurityScheme) {
	if ss.Flows == nil {
		return
	}
	for _, kind := range spec.FlowKinds {
		if f := ss.Flows.Flow(kind); f != nil && f.Scopes == nil {
			f.Scopes = map[string]string{}
		}
	}
}

// RenameSecurityScheme moves a scheme and rewrites every requirement that
// names it.
type RenameSecurityScheme struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (RenameSecurityScheme) Kind() Kind { return KindRenameSecurityScheme }

func (c RenameSecurityScheme) applyDoc(d *spec.Document) *spec.Document {
	if d.Components == nil {
		return d
	}
	schemes, ok := moveKey(d.Components.SecuritySchemes, c.From, c.To)
	if !ok {
		return d
	}
	out := withComponents(d, func(comp *spec.Components) bool {
		comp.SecuritySchemes = schemes
		return true
	})
	return cascadeRequirements(out, renameRequirement(c.From, c.To))
}

// RemoveSecurityScheme deletes a scheme and strips it from every
// requirement. Requirements left with no schemes are dropped.
type RemoveSecurityScheme struct {
	Name string `json:"name"`
}

func (RemoveSecurityScheme) Kind() Kind { return KindRemoveSecurityScheme }

func (c RemoveSecurityScheme) applyDoc(d *spec.Document) *spec.Document {
	if d.Components == nil {
		return d
	}
	schemes, ok := withoutKey(d.Components.SecuritySchemes, c.Name)
	if !ok {
		return d
	}
	out := withComponents(d, func(comp *spec.Components) bool {
		comp.SecuritySchemes = schemes
		return true
	})
	return cascadeRequirements(out, dropRequirement(c.Name))
}

// AddOAuthFlow adds an empty flow of the given kind to an oauth2 scheme.
type AddOAuthFlow struct {
	Name string         `json:"name"`
	Flow string         `json:"flow"`
	Spec spec.OAuthFlow `json:"spec"`
}

func (AddOAuthFlow) Kind() Kind { return KindAddOAuthFlow }

func (c AddOAuthFlow) applyDoc(d *spec.Document) *spec.Document {
	return withSecurityScheme(d, c.Name, func(ss *spec.SecurityScheme) bool {
		if ss.Type != spec.SchemeOAuth2 || ss.Flows.Flow(c.Flow) != nil {
			return false
		}
		var flows spec.OAuthFlows
		if ss.Flows != nil {
			flows = *ss.Flows
		}
		f := spec.CloneValue(c.Spec)
		if f.Scopes == nil {
			f.Scopes = map[string]string{}
		}
		if !flows.SetFlow(c.Flow, &f) {
			return false
		}
		ss.Flows = &flows
		return true
	})
}

// UpdateOAuthFlow sets the URLs of a flow. Scopes are edited with the scope
// commands.
type UpdateOAuthFlow struct {
	Name             string `json:"name"`
	Flow             string `json:"flow"`
	AuthorizationURL string `json:"authorizationUrl"`
	TokenURL         string `json:"tokenUrl"`
	RefreshURL       string `json:"refreshUrl"`
}

func (UpdateOAuthFlow) Kind() Kind { return KindUpdateOAuthFlow }

func (c UpdateOAuthFlow) applyDoc(d *spec.Document) *spec.Document {
	return withFlow(d, c.Name, c.Flow, func(f *spec.OAuthFlow) bool {
		f.AuthorizationURL = c.AuthorizationURL
		f.TokenURL = c.TokenURL
		f.RefreshURL = c.RefreshURL
		return true
	})
}

type RemoveOAuthFlow struct {
	Name string `json:"name"`
	Flow string `json:"flow"`
}

func (RemoveOAuthFlow) Kind() Kind { return KindRemoveOAuthFlow }

func (c RemoveOAuthFlow) applyDoc(d *spec.Document) *spec.Document {
	return withSecurityScheme(d, c.Name, func(ss *spec.SecurityScheme) bool {
		if ss.Flows.Flow(c.Flow) == nil {
			return false
		}
		flows := *ss.Flows
		flows.SetFlow(c.Flow, nil)
		ss.Flows = &flows
		return true
	})
}

type AddScope struct {
	Name        string `json:"name"`
	Flow        string `json:"flow"`
	Scope       string `json:"scope"`
	Description string `json:"description"`
}

func (AddScope) Kind() Kind { return KindAddScope }

func (c AddScope) applyDoc(d *spec.Document) *spec.Document {
	return withFlow(d, c.Name, c.Flow, func(f *spec.OAuthFlow) bool {
		if c.Scope == "" || has(f.Scopes)(c.Scope) {
			return false
		}
		f.Scopes = withKey(f.Scopes, c.Scope, c.Description)
		return true
	})
}

type RenameScope struct {
	Name string `json:"name"`
	Flow string `json:"flow"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (RenameScope) Kind() Kind { return KindRenameScope }

func (c RenameScope) applyDoc(d *spec.Document) *spec.Document {
	return withFlow(d, c.Name, c.Flow, func(f *spec.OAuthFlow) bool {
		scopes, ok := moveKey(f.Scopes, c.From, c.To)
		f.Scopes = scopes
		return ok
	})
}

type RemoveScope struct {
	Name  string `json:"name"`
	Flow  string `json:"flow"`
	Scope string `json:"scope"`
}

func (RemoveScope) Kind() Kind { return KindRemoveScope }

func (c RemoveScope) applyDoc(d *spec.Document) *spec.Document {
	return withFlow(d, c.Name, c.Flow, func(f *spec.OAuthFlow) bool {
		scopes, ok := withoutKey(f.Scopes, c.Scope)
		f.Scopes = scopes
		return ok
	})
}

// ToggleGlobalSecurity adds or removes the global requirement for one scheme.
// Enabling an oauth2 scheme requests the union of all its flows' scopes.
type ToggleGlobalSecurity struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func (ToggleGlobalSecurity) Kind() Kind { return KindToggleGlobalSecurity }

func (c ToggleGlobalSecurity) applyDoc(d *spec.Document) *spec.Document {
	present := slices.ContainsFunc(d.Security, func(r spec.SecurityRequirement) bool {
		_, ok := r[c.Name]
		return ok
	})
	if !c.Enabled {
		global, ok := rewriteRequirements(d.Security, dropRequirement(c.Name))
		if !ok {
			return d
		}
		out := shallow(d)
		out.Security = global
		return out
	}
	if present || d.Components == nil {
		return d
	}
	ss, ok := d.Components.SecuritySchemes[c.Name]
	if !ok || ss == nil {
		return d
	}
	out := shallow(d)
	out.Security = append(slices.Clone(d.Security), spec.SecurityRequirement{c.Name: schemeScopes(ss)})
	return out
}

func schemeScopes(ss *spec.SecurityScheme) []string {
	scopes := []string{}
	if ss.Type != spec.SchemeOAuth2 {
		return scopes
	}
	seen := map[string]struct{}{}
	for _, kind := range spec.FlowKinds {
		f := ss.Flows.Flow(kind)
		if f == nil {
			continue
		}
		for s := range f.Scopes {
			if _, dup := seen[s]; !dup {
				seen[s] = struct{}{}
				scopes = append(scopes, s)
			}
		}
	}
	sort.Strings(scopes)
	return scopes
}
