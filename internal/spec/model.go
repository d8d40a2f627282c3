package spec

import (
	"encoding/json"
	"fmt"
)

// Document model for OpenAPI 3.x descriptions. Field order on each struct is
// the emission order of the exported text. Vendor extensions are not modelled.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// Methods lists every HTTP method a PathItem can hold, in emission order.
var Methods = []HttpMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

// ParseMethod reports whether s names a PathItem method slot.
func ParseMethod(s string) (HttpMethod, bool) {
	for _, m := range Methods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

type Document struct {
	OpenAPI      string                `json:"openapi" yaml:"openapi"`
	Info         *Info                 `json:"info,omitempty" yaml:"info,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	Servers      []Server              `json:"servers,omitempty" yaml:"servers,omitempty"`
	Security     []SecurityRequirement `json:"security,omitempty" yaml:"security,omitempty"`
	Tags         []Tag                 `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paths        map[string]*PathItem  `json:"paths" yaml:"paths"`
	Components   *Components           `json:"components,omitempty" yaml:"components,omitempty"`
}

type Info struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
	Version        string   `json:"version" yaml:"version"`
}

type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

func (c *Contact) IsEmpty() bool {
	return c == nil || (c.Name == "" && c.URL == "" && c.Email == "")
}

type License struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

type ExternalDocs struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

type Server struct {
	URL         string                     `json:"url" yaml:"url"`
	Description string                     `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   map[string]*ServerVariable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

type ServerVariable struct {
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     string   `json:"default" yaml:"default"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

type Tag struct {
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
}

// SecurityRequirement maps a security scheme name to the scopes it requires.
type SecurityRequirement map[string][]string

type PathItem struct {
	Ref         string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Summary     string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Get         *Operation  `json:"get,omitempty" yaml:"get,omitempty"`
	Put         *Operation  `json:"put,omitempty" yaml:"put,omitempty"`
	Post        *Operation  `json:"post,omitempty" yaml:"post,omitempty"`
	Delete      *Operation  `json:"delete,omitempty" yaml:"delete,omitempty"`
	Options     *Operation  `json:"options,omitempty" yaml:"options,omitempty"`
	Head        *Operation  `json:"head,omitempty" yaml:"head,omitempty"`
	Patch       *Operation  `json:"patch,omitempty" yaml:"patch,omitempty"`
	Trace       *Operation  `json:"trace,omitempty" yaml:"trace,omitempty"`
	Servers     []Server    `json:"servers,omitempty" yaml:"servers,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Operation returns the operation stored under m, or nil.
func (p *PathItem) Operation(m HttpMethod) *Operation {
	if p == nil {
		return nil
	}
	switch m {
	case GET:
		return p.Get
	case PUT:
		return p.Put
	case POST:
		return p.Post
	case DELETE:
		return p.Delete
	case OPTIONS:
		return p.Options
	case HEAD:
		return p.Head
	case PATCH:
		return p.Patch
	case TRACE:
		return p.Trace
	}
	return nil
}

// SetOperation stores op under m. A nil op clears the slot.
func (p *PathItem) SetOperation(m HttpMethod, op *Operation) {
	switch m {
	case GET:
		p.Get = op
	case PUT:
		p.Put = op
	case POST:
		p.Post = op
	case DELETE:
		p.Delete = op
	case OPTIONS:
		p.Options = op
	case HEAD:
		p.Head = op
	case PATCH:
		p.Patch = op
	case TRACE:
		p.Trace = op
	}
}

// MethodOperation pairs an operation with the method slot it lives in.
type MethodOperation struct {
	Method    HttpMethod
	Operation *Operation
}

// Operations returns the populated method slots in Methods order.
func (p *PathItem) Operations() []MethodOperation {
	if p == nil {
		return nil
	}
	var out []MethodOperation
	for _, m := range Methods {
		if op := p.Operation(m); op != nil {
			out = append(out, MethodOperation{Method: m, Operation: op})
		}
	}
	return out
}

type Operation struct {
	Tags         []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary      string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description  string                `json:"description,omitempty" yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	OperationID  string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters   []Parameter           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody  *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses    map[string]*Response  `json:"responses" yaml:"responses"`
	Callbacks    map[string]Callback   `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
	Deprecated   bool                  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Security     []SecurityRequirement `json:"security,omitempty" yaml:"security,omitempty"`
	Servers      []Server              `json:"servers,omitempty" yaml:"servers,omitempty"`
}

// Callback maps runtime expressions to the PathItem invoked for them.
type Callback map[string]*PathItem

type Parameter struct {
	Ref             string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Name            string                `json:"name,omitempty" yaml:"name,omitempty"`
	In              string                `json:"in,omitempty" yaml:"in,omitempty"`
	Description     string                `json:"description,omitempty" yaml:"description,omitempty"`
	Required        bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	Deprecated      bool                  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	AllowEmptyValue bool                  `json:"allowEmptyValue,omitempty" yaml:"allowEmptyValue,omitempty"`
	Style           string                `json:"style,omitempty" yaml:"style,omitempty"`
	Explode         *bool                 `json:"explode,omitempty" yaml:"explode,omitempty"`
	Schema          *Schema               `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example         any                   `json:"example,omitempty" yaml:"example,omitempty"`
	Examples        map[string]*Example   `json:"examples,omitempty" yaml:"examples,omitempty"`
	Content         map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type RequestBody struct {
	Ref         string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	Required    bool                  `json:"required,omitempty" yaml:"required,omitempty"`
}

type Response struct {
	Ref         string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Headers     map[string]*Header    `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	Links       map[string]*Link      `json:"links,omitempty" yaml:"links,omitempty"`
}

type MediaType struct {
	Schema   *Schema             `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example  any                 `json:"example,omitempty" yaml:"example,omitempty"`
	Examples map[string]*Example `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type Header struct {
	Ref         string  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type Example struct {
	Ref           string `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Summary       string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Value         any    `json:"value,omitempty" yaml:"value,omitempty"`
	ExternalValue string `json:"externalValue,omitempty" yaml:"externalValue,omitempty"`
}

type Link struct {
	Ref          string         `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	OperationRef string         `json:"operationRef,omitempty" yaml:"operationRef,omitempty"`
	OperationID  string         `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody  any            `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Server       *Server        `json:"server,omitempty" yaml:"server,omitempty"`
}

// Security scheme kinds.
const (
	SchemeAPIKey        = "apiKey"
	SchemeHTTP          = "http"
	SchemeOAuth2        = "oauth2"
	SchemeOpenIDConnect = "openIdConnect"
)

type SecurityScheme struct {
	Ref              string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type             string      `json:"type,omitempty" yaml:"type,omitempty"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	Name             string      `json:"name,omitempty" yaml:"name,omitempty"`
	In               string      `json:"in,omitempty" yaml:"in,omitempty"`
	Scheme           string      `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat     string      `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	Flows            *OAuthFlows `json:"flows,omitempty" yaml:"flows,omitempty"`
	OpenIDConnectURL string      `json:"openIdConnectUrl,omitempty" yaml:"openIdConnectUrl,omitempty"`
}

// OAuth flow kinds, in emission order.
const (
	FlowImplicit          = "implicit"
	FlowPassword          = "password"
	FlowClientCredentials = "clientCredentials"
	FlowAuthorizationCode = "authorizationCode"
)

var FlowKinds = []string{FlowImplicit, FlowPassword, FlowClientCredentials, FlowAuthorizationCode}

type OAuthFlows struct {
	Implicit          *OAuthFlow `json:"implicit,omitempty" yaml:"implicit,omitempty"`
	Password          *OAuthFlow `json:"password,omitempty" yaml:"password,omitempty"`
	ClientCredentials *OAuthFlow `json:"clientCredentials,omitempty" yaml:"clientCredentials,omitempty"`
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitempty" yaml:"authorizationCode,omitempty"`
}

// Flow returns the flow stored under kind, or nil.
func (f *OAuthFlows) Flow(kind string) *OAuthFlow {
	if f == nil {
		return nil
	}
	switch kind {
	case FlowImplicit:
		return f.Implicit
	case FlowPassword:
		return f.Password
	case FlowClientCredentials:
		return f.ClientCredentials
	case FlowAuthorizationCode:
		return f.AuthorizationCode
	}
	return nil
}

// SetFlow stores flow under kind and reports whether kind is known.
func (f *OAuthFlows) SetFlow(kind string, flow *OAuthFlow) bool {
	switch kind {
	case FlowImplicit:
		f.Implicit = flow
	case FlowPassword:
		f.Password = flow
	case FlowClientCredentials:
		f.ClientCredentials = flow
	case FlowAuthorizationCode:
		f.AuthorizationCode = flow
	default:
		return false
	}
	return true
}

type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	RefreshURL       string            `json:"refreshUrl,omitempty" yaml:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes" yaml:"scopes"`
}

type Components struct {
	Schemas         map[string]*Schema         `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	Responses       map[string]*Response       `json:"responses,omitempty" yaml:"responses,omitempty"`
	Parameters      map[string]*Parameter      `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Examples        map[string]*Example        `json:"examples,omitempty" yaml:"examples,omitempty"`
	RequestBodies   map[string]*RequestBody    `json:"requestBodies,omitempty" yaml:"requestBodies,omitempty"`
	Headers         map[string]*Header         `json:"headers,omitempty" yaml:"headers,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
	Links           map[string]*Link           `json:"links,omitempty" yaml:"links,omitempty"`
	Callbacks       map[string]Callback        `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
}

func (c *Components) IsEmpty() bool {
	return c == nil || (len(c.Schemas) == 0 && len(c.Responses) == 0 && len(c.Parameters) == 0 &&
		len(c.Examples) == 0 && len(c.RequestBodies) == 0 && len(c.Headers) == 0 &&
		len(c.SecuritySchemes) == 0 && len(c.Links) == 0 && len(c.Callbacks) == 0)
}

// Schema is one node of a constraint tree. A node with Ref set stands in
// for the node the pointer names; sibling fields overlay the resolved node.
type Schema struct {
	Ref                  string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Title                string                `json:"title,omitempty" yaml:"title,omitempty"`
	Description          string                `json:"description,omitempty" yaml:"description,omitempty"`
	Type                 TypeSet               `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string                `json:"format,omitempty" yaml:"format,omitempty"`
	Enum                 []any                 `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default              any                   `json:"default,omitempty" yaml:"default,omitempty"`
	Example              any                   `json:"example,omitempty" yaml:"example,omitempty"`
	Nullable             bool                  `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	ReadOnly             bool                  `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	WriteOnly            bool                  `json:"writeOnly,omitempty" yaml:"writeOnly,omitempty"`
	Deprecated           bool                  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Items                *Schema               `json:"items,omitempty" yaml:"items,omitempty"`
	Properties           map[string]*Schema    `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string              `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	AllOf                []*Schema             `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	AnyOf                []*Schema             `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	OneOf                []*Schema             `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	Not                  *Schema               `json:"not,omitempty" yaml:"not,omitempty"`
	Minimum              *float64              `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum              *float64              `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum     any                   `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum     any                   `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf           *float64              `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`
	MinLength            *int                  `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength            *int                  `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern              string                `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinItems             *int                  `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems             *int                  `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems          bool                  `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
	MinProperties        *int                  `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
	MaxProperties        *int                  `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`
}

// IsRequired reports whether name appears in the schema's required list.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// TypeSet holds the schema "type" keyword. A single type is written as a
// plain string; several types (3.1 style) as a list.
type TypeSet []string

// Is reports whether t contains typ.
func (t TypeSet) Is(typ string) bool {
	for _, v := range t {
		if v == typ {
			return true
		}
	}
	return false
}

func (t TypeSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *TypeSet) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = TypeSet{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("schema type: %w", err)
	}
	*t = TypeSet(many)
	return nil
}

func (t TypeSet) MarshalYAML() (any, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}

// AdditionalProperties is either a boolean or a schema.
type AdditionalProperties struct {
	Allowed *bool
	Schema  *Schema
}

// Permits reports whether extra keys are accepted.
func (a *AdditionalProperties) Permits() bool {
	if a == nil {
		return false
	}
	if a.Schema != nil || a.Allowed == nil {
		return true
	}
	return *a.Allowed
}

func (a AdditionalProperties) MarshalJSON() ([]byte, error) {
	if a.Schema != nil {
		return json.Marshal(a.Schema)
	}
	if a.Allowed != nil {
		return json.Marshal(*a.Allowed)
	}
	return []byte("true"), nil
}

func (a *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		a.Allowed = &b
		a.Schema = nil
		return nil
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("additionalProperties: %w", err)
	}
	a.Allowed = nil
	a.Schema = &s
	return nil
}

func (a AdditionalProperties) MarshalYAML() (any, error) {
	if a.Schema != nil {
		return a.Schema, nil
	}
	if a.Allowed != nil {
		return *a.Allowed, nil
	}
	return true, nil
}
