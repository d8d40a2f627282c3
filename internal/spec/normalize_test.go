package spec

import (
	"reflect"
	"testing"
)

const sampleSpec = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
  description: Demo
paths:
  /pets/{id}:
    parameters:
      - in: path
        name: id
        required: true
        schema:
          type: string
      - in: header
        name: X-Trace
        schema:
          type: string
    get:
      summary: Get pet
      parameters:
        - in: path
          name: id
          required: false
          schema:
            type: integer
      responses:
        "200":
          description: ok
      callbacks:
        onEvent:
          "{$request.body#/url}":
            parameters:
              - in: query
                name: token
                schema: { type: string }
            post:
              responses:
                "204":
                  description: ack
    delete:
      responses:
        "204":
          description: gone
`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestPreProcess_MergePrecedence(t *testing.T) {
	t.Parallel()
	doc := PreProcess(mustParse(t, sampleSpec))
	pi := doc.Paths["/pets/{id}"]
	if pi.Parameters != nil {
		t.Fatalf("expected shared parameters to be removed, got %v", pi.Parameters)
	}
	get := pi.Get
	if len(get.Parameters) != 2 {
		t.Fatalf("expected 2 parameters on GET, got %d", len(get.Parameters))
	}
	id := get.Parameters[0]
	if id.Name != "id" || id.Required {
		t.Fatalf("expected operation-level id (required=false) to win, got %+v", id)
	}
	if !id.Schema.Type.Is("integer") {
		t.Fatalf("expected operation-level schema to win, got %v", id.Schema.Type)
	}
	if get.Parameters[1].Name != "X-Trace" {
		t.Fatalf("expected shared header to be merged, got %+v", get.Parameters[1])
	}
	del := pi.Delete
	if len(del.Parameters) != 2 || !del.Parameters[0].Required {
		t.Fatalf("expected DELETE to inherit shared parameters, got %+v", del.Parameters)
	}
}

func TestPreProcess_RecursesIntoCallbacks(t *testing.T) {
	t.Parallel()
	doc := PreProcess(mustParse(t, sampleSpec))
	nested := doc.Paths["/pets/{id}"].Get.Callbacks["onEvent"]["{$request.body#/url}"]
	if nested.Parameters != nil {
		t.Fatalf("expected nested shared parameters to be merged away")
	}
	if len(nested.Post.Parameters) != 1 || nested.Post.Parameters[0].Name != "token" {
		t.Fatalf("expected nested POST to carry token, got %+v", nested.Post.Parameters)
	}
	if nested.Post.Tags == nil || nested.Post.ExternalDocs == nil {
		t.Fatalf("expected nested operation to be filled")
	}
}

func TestPreProcess_FillsOptionalStructures(t *testing.T) {
	t.Parallel()
	doc := PreProcess(&Document{OpenAPI: "3.0.3"})
	if doc.Info == nil || doc.Info.Contact == nil || doc.Info.License == nil {
		t.Fatalf("info not filled: %+v", doc.Info)
	}
	if doc.Security == nil || doc.Servers == nil || doc.Tags == nil || doc.Paths == nil {
		t.Fatalf("top-level collections not filled")
	}
	c := doc.Components
	if c == nil || c.Schemas == nil || c.SecuritySchemes == nil || c.Links == nil || c.Callbacks == nil {
		t.Fatalf("components not filled: %+v", c)
	}
}

func TestPreProcess_Idempotent(t *testing.T) {
	t.Parallel()
	once := PreProcess(mustParse(t, sampleSpec))
	twice := PreProcess(once.Clone())
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("pre-process is not idempotent")
	}
}

func TestPostProcess_StripsEmptyAndDoesNotMutate(t *testing.T) {
	t.Parallel()
	canonical := PreProcess(mustParse(t, sampleSpec))
	before := canonical.Clone()
	min := PostProcess(canonical)
	if !reflect.DeepEqual(before, canonical) {
		t.Fatalf("post-process mutated its input")
	}
	if min.Info.Contact != nil || min.Info.License != nil || min.ExternalDocs != nil {
		t.Fatalf("expected empty info substructures stripped: %+v", min.Info)
	}
	if min.Security != nil || min.Servers != nil || min.Tags != nil || min.Components != nil {
		t.Fatalf("expected empty collections stripped")
	}
	get := min.Paths["/pets/{id}"].Get
	if get.ExternalDocs != nil || get.Tags != nil {
		t.Fatalf("expected empty operation structures stripped: %+v", get)
	}
	nested := get.Callbacks["onEvent"]["{$request.body#/url}"].Post
	if nested.ExternalDocs != nil || nested.Tags != nil {
		t.Fatalf("expected nested callback operation stripped: %+v", nested)
	}
}

func TestPostProcess_KeepsMeaningfulStructures(t *testing.T) {
	t.Parallel()
	doc := PreProcess(&Document{OpenAPI: "3.0.3"})
	doc.Info.Contact.Email = "team@example.com"
	doc.Info.License.Name = "MIT"
	doc.ExternalDocs.URL = "https://docs.example.com"
	doc.Components.Schemas["Pet"] = &Schema{Type: TypeSet{"object"}}

	min := PostProcess(doc)
	if min.Info.Contact == nil || min.Info.Contact.Email != "team@example.com" {
		t.Fatalf("contact with email should survive")
	}
	if min.Info.License == nil || min.ExternalDocs == nil {
		t.Fatalf("license with name and docs with url should survive")
	}
	if min.Components == nil || min.Components.Schemas["Pet"] == nil {
		t.Fatalf("non-empty components should survive")
	}
	if min.Components.SecuritySchemes != nil {
		t.Fatalf("empty component maps should be stripped")
	}
}

func TestPostProcess_LicenseWithoutNameStripped(t *testing.T) {
	t.Parallel()
	doc := PreProcess(&Document{OpenAPI: "3.0.3"})
	doc.Info.License.URL = "https://opensource.org/licenses/MIT"
	if min := PostProcess(doc); min.Info.License != nil {
		t.Fatalf("license without a name should be stripped, got %+v", min.Info.License)
	}
}
