package command

import "github.com/mark3labs/specforge/internal/spec"

const (
	KindAddRequestBody             Kind = "ADD_REQUEST_BODY"
	KindRemoveRequestBody          Kind = "REMOVE_REQUEST_BODY"
	KindUpdateRequestBody          Kind = "UPDATE_REQUEST_BODY"
	KindAddRequestBodyMediaType    Kind = "ADD_REQUEST_BODY_MEDIA_TYPE"
	KindRemoveRequestBodyMediaType Kind = "REMOVE_REQUEST_BODY_MEDIA_TYPE"
	KindSetRequestBodySchema       Kind = "SET_REQUEST_BODY_SCHEMA"
	KindAddResponse                Kind = "ADD_RESPONSE"
	KindRenameResponse             Kind = "RENAME_RESPONSE"
	KindUpdateResponse             Kind = "UPDATE_RESPONSE"
	KindRemoveResponse             Kind = "REMOVE_RESPONSE"
	KindAddResponseMediaType       Kind = "ADD_RESPONSE_MEDIA_TYPE"
	KindRemoveResponseMediaType    Kind = "REMOVE_RESPONSE_MEDIA_TYPE"
	KindSetResponseSchema          Kind = "SET_RESPONSE_SCHEMA"
	KindAddCallback                Kind = "ADD_CALLBACK"
	KindRenameCallback             Kind = "RENAME_CALLBACK"
	KindRemoveCallback             Kind = "REMOVE_CALLBACK"
)

const (
	// DefaultMediaType backfills a request body whose last media type was removed.
	DefaultMediaType = "application/json"
	// DefaultResponseCode backfills an operation whose last response was removed.
	DefaultResponseCode = "default"
	DefaultCallback     = "newCallback"
	// DefaultCallbackExpression is the runtime expression of a new callback.
	DefaultCallbackExpression = "{$request.body#/callbackUrl}"
)

func defaultContent() map[string]*spec.MediaType {
	return map[string]*spec.MediaType{DefaultMediaType: {Schema: objectSchema()}}
}

// withRequestBody runs fn on a copy of the operation's request body.
func withRequestBody(d *spec.Document, path, method string, fn func(rb *spec.RequestBody) bool) *spec.Document {
	return withOperation(d, path, method, func(op *spec.Operation) bool {
		if op.RequestBody == nil {
			return false
		}
		rb := *op.RequestBody
		if !fn(&rb) {
			return false
		}
		op.RequestBody = &rb
		return true
	})
}

// withResponse runs fn on a copy of the response stored under code.
func withResponse(d *spec.Document, path, method, code string, fn func(r *spec.Response) bool) *spec.Document {
	return withOperation(d, path, method, func(op *spec.Operation) bool {
		cur, ok := op.Responses[code]
		if !ok || cur == nil {
			return false
		}
		r := *cur
		if !fn(&r) {
			return false
		}
		op.Responses = withKey(op.Responses, code, &r)
		return true
	})
}

// AddRequestBody attaches a JSON object body to an operation that has none.
type AddRequestBody struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func (AddRequestBody) Kind() Kind { return KindAddRequestBody }

func (c AddRequestBody) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if op.RequestBody != nil {
			return false
		}
		op.RequestBody = &spec.RequestBody{Content: defaultContent()}
		return true
	})
}

type RemoveRequestBody struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func (RemoveRequestBody) Kind() Kind { return KindRemoveRequestBody }

func (c RemoveRequestBody) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if op.RequestBody == nil {
			return false
		}
		op.RequestBody = nil
		return true
	})
}

type UpdateRequestBody struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

func (UpdateRequestBody) Kind() Kind { return KindUpdateRequestBody }

func (c UpdateRequestBody) applyDoc(d *spec.Document) *spec.Document {
	return withRequestBody(d, c.Path, c.Method, func(rb *spec.RequestBody) bool {
		rb.Description = c.Description
		rb.Required = c.Required
		return true
	})
}

type AddRequestBodyMediaType struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	MediaType string `json:"mediaType"`
}

func (AddRequestBodyMediaType) Kind() Kind { return KindAddRequestBodyMediaType }

func (c AddRequestBodyMediaType) applyDoc(d *spec.Document) *spec.Document {
	return withRequestBody(d, c.Path, c.Method, func(rb *spec.RequestBody) bool {
		if c.MediaType == "" || has(rb.Content)(c.MediaType) {
			return false
		}
		rb.Content = withKey(rb.Content, c.MediaType, &spec.MediaType{Schema: objectSchema()})
		return true
	})
}

// RemoveRequestBodyMediaType deletes one media type. A body is never left
// without content: removing the last entry reinstates application/json.
type RemoveRequestBodyMediaType struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	MediaType string `json:"mediaType"`
}

func (RemoveRequestBodyMediaType) Kind() Kind { return KindRemoveRequestBodyMediaType }

func (c RemoveRequestBodyMediaType) applyDoc(d *spec.Document) *spec.Document {
	return withRequestBody(d, c.Path, c.Method, func(rb *spec.RequestBody) bool {
		content, ok := withoutKey(rb.Content, c.MediaType)
		if !ok {
			return false
		}
		if len(content) == 0 {
			content = defaultContent()
		}
		rb.Content = content
		return true
	})
}

type SetRequestBodySchema struct {
	Path      string       `json:"path"`
	Method    string       `json:"method"`
	MediaType string       `json:"mediaType"`
	Schema    *spec.Schema `json:"schema"`
}

func (SetRequestBodySchema) Kind() Kind { return KindSetRequestBodySchema }

func (c SetRequestBodySchema) applyDoc(d *spec.Document) *spec.Document {
	return withRequestBody(d, c.Path, c.Method, func(rb *spec.RequestBody) bool {
		cur, ok := rb.Content[c.MediaType]
		if !ok {
			return false
		}
		mt := spec.MediaType{}
		if cur != nil {
			mt = *cur
		}
		mt.Schema = c.Schema.Clone()
		rb.Content = withKey(rb.Content, c.MediaType, &mt)
		return true
	})
}

// AddResponse documents a new status code. An existing code is left alone.
type AddResponse struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (AddResponse) Kind() Kind { return KindAddResponse }

func (c AddResponse) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		if c.Code == "" || has(op.Responses)(c.Code) {
			return false
		}
		desc := c.Description
		if desc == "" {
			desc = "Response " + c.Code
		}
		op.Responses = withKey(op.Responses, c.Code, &spec.Response{Description: desc})
		return true
	})
}

type RenameResponse struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (RenameResponse) Kind() Kind { return KindRenameResponse }

func (c RenameResponse) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		responses, ok := moveKey(op.Responses, c.From, c.To)
		op.Responses = responses
		return ok
	})
}

type UpdateResponse struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (UpdateResponse) Kind() Kind { return KindUpdateResponse }

func (c UpdateResponse) applyDoc(d *spec.Document) *spec.Document {
	return withResponse(d, c.Path, c.Method, c.Code, func(r *spec.Response) bool {
		r.Description = c.Description
		return true
	})
}

// RemoveResponse deletes one status code. Removing the last response installs
// a synthetic default response.
type RemoveResponse struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Code   string `json:"code"`
}

func (RemoveResponse) Kind() Kind { return KindRemoveResponse }

func (c RemoveResponse) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		responses, ok := withoutKey(op.Responses, c.Code)
		if !ok {
			return false
		}
		if len(responses) == 0 {
			responses = map[string]*spec.Response{
				DefaultResponseCode: {Description: "Default response"},
			}
		}
		op.Responses = responses
		return true
	})
}

type AddResponseMediaType struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	Code      string `json:"code"`
	MediaType string `json:"mediaType"`
}

func (AddResponseMediaType) Kind() Kind { return KindAddResponseMediaType }

func (c AddResponseMediaType) applyDoc(d *spec.Document) *spec.Document {
	return withResponse(d, c.Path, c.Method, c.Code, func(r *spec.Response) bool {
		if c.MediaType == "" || has(r.Content)(c.MediaType) {
			return false
		}
		r.Content = withKey(r.Content, c.MediaType, &spec.MediaType{Schema: objectSchema()})
		return true
	})
}

// RemoveResponseMediaType deletes one media type. Responses may carry no
// content at all, so nothing is backfilled.
type RemoveResponseMediaType struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	Code      string `json:"code"`
	MediaType string `json:"mediaType"`
}

func (RemoveResponseMediaType) Kind() Kind { return KindRemoveResponseMediaType }

func (c RemoveResponseMediaType) applyDoc(d *spec.Document) *spec.Document {
	return withResponse(d, c.Path, c.Method, c.Code, func(r *spec.Response) bool {
		content, ok := withoutKey(r.Content, c.MediaType)
		if !ok {
			return false
		}
		if len(content) == 0 {
			content = nil
		}
		r.Content = content
		return true
	})
}

type SetResponseSchema struct {
	Path      string       `json:"path"`
	Method    string       `json:"method"`
	Code      string       `json:"code"`
	MediaType string       `json:"mediaType"`
	Schema    *spec.Schema `json:"schema"`
}

func (SetResponseSchema) Kind() Kind { return KindSetResponseSchema }

func (c SetResponseSchema) applyDoc(d *spec.Document) *spec.Document {
	return withResponse(d, c.Path, c.Method, c.Code, func(r *spec.Response) bool {
		cur, ok := r.Content[c.MediaType]
		if !ok {
			return false
		}
		mt := spec.MediaType{}
		if cur != nil {
			mt = *cur
		}
		mt.Schema = c.Schema.Clone()
		r.Content = withKey(r.Content, c.MediaType, &mt)
		return true
	})
}

// AddCallback registers a callback whose single expression receives a POST.
type AddCallback struct {
	Path       string `json:"path"`
	Method     string `json:"method"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

func (AddCallback) Kind() Kind { return KindAddCallback }

func (c AddCallback) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		name, ok := freshName(c.Name, DefaultCallback, has(op.Callbacks))
		if !ok {
			return false
		}
		expr := c.Expression
		if expr == "" {
			expr = DefaultCallbackExpression
		}
		op.Callbacks = withKey(op.Callbacks, name, spec.Callback{
			expr: {Post: newOperation()},
		})
		return true
	})
}

type RenameCallback struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (RenameCallback) Kind() Kind { return KindRenameCallback }

func (c RenameCallback) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		callbacks, ok := moveKey(op.Callbacks, c.From, c.To)
		op.Callbacks = callbacks
		return ok
	})
}

type RemoveCallback struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Name   string `json:"name"`
}

func (RemoveCallback) Kind() Kind { return KindRemoveCallback }

func (c RemoveCallback) applyDoc(d *spec.Document) *spec.Document {
	return withOperation(d, c.Path, c.Method, func(op *spec.Operation) bool {
		callbacks, ok := withoutKey(op.Callbacks, c.Name)
		if !ok {
			return false
		}
		op.Callbacks = callbacks
		return true
	})
}
