package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/specforge/internal/spec"
)

func ptr[T any](v T) *T { return &v }

func TestTranslateRequiredAndOptionalProperties(t *testing.T) {
	s := &spec.Schema{
		Type: spec.TypeSet{"object"},
		Properties: map[string]*spec.Schema{
			"a": {Type: spec.TypeSet{"string"}},
			"b": {Type: spec.TypeSet{"integer"}},
		},
		Required: []string{"a"},
	}
	assert.Equal(t, "z.object({ a: z.string(), b: z.number().int().optional() })", Translate(s, true))
}

func TestTranslatePrimitives(t *testing.T) {
	cases := []struct {
		name   string
		schema *spec.Schema
		want   string
	}{
		{"nil", nil, "z.any()"},
		{"ref", &spec.Schema{Ref: "#/components/schemas/Pet"}, "z.any()"},
		{"unknown type", &spec.Schema{Type: spec.TypeSet{"file"}}, "z.any()"},
		{"empty", &spec.Schema{}, "z.any()"},
		{"string", &spec.Schema{Type: spec.TypeSet{"string"}}, "z.string()"},
		{"date", &spec.Schema{Type: spec.TypeSet{"string"}, Format: "date"}, "z.string().date()"},
		{"date-time", &spec.Schema{Type: spec.TypeSet{"string"}, Format: "date-time"}, "z.string().datetime()"},
		{"email", &spec.Schema{Type: spec.TypeSet{"string"}, Format: "email"}, "z.string().email()"},
		{"uri", &spec.Schema{Type: spec.TypeSet{"string"}, Format: "uri"}, "z.string().url()"},
		{"uuid", &spec.Schema{Type: spec.TypeSet{"string"}, Format: "uuid"}, "z.string().uuid()"},
		{"length", &spec.Schema{Type: spec.TypeSet{"string"}, MinLength: ptr(1), MaxLength: ptr(8)}, "z.string().min(1).max(8)"},
		{"pattern", &spec.Schema{Type: spec.TypeSet{"string"}, Pattern: `^\d+$`}, `z.string().regex(new RegExp("^\\d+$"))`},
		{"integer", &spec.Schema{Type: spec.TypeSet{"integer"}, Minimum: ptr(0.0), Maximum: ptr(10.5)}, "z.number().int().min(0).max(10.5)"},
		{"exclusive bool", &spec.Schema{Type: spec.TypeSet{"number"}, Minimum: ptr(1.0), ExclusiveMinimum: true}, "z.number().gt(1)"},
		{"exclusive number", &spec.Schema{Type: spec.TypeSet{"number"}, ExclusiveMaximum: 5.0}, "z.number().lt(5)"},
		{"boolean", &spec.Schema{Type: spec.TypeSet{"boolean"}}, "z.boolean()"},
		{"null", &spec.Schema{Type: spec.TypeSet{"null"}}, "z.null()"},
		{"nullable", &spec.Schema{Type: spec.TypeSet{"string"}, Nullable: true}, "z.string().nullable()"},
		{"type list with null", &spec.Schema{Type: spec.TypeSet{"string", "null"}}, "z.string().nullable()"},
		{"type list", &spec.Schema{Type: spec.TypeSet{"string", "integer"}}, "z.union([z.string(), z.number().int()])"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Translate(tc.schema, true))
		})
	}
}

func TestTranslateEnums(t *testing.T) {
	assert.Equal(t, `z.enum(["a", "b"])`, Translate(&spec.Schema{Type: spec.TypeSet{"string"}, Enum: []any{"a", "b"}}, true))
	assert.Equal(t, `z.enum(["a"]).nullable()`, Translate(&spec.Schema{Enum: []any{"a", nil}}, true))
	assert.Equal(t, "z.literal(1)", Translate(&spec.Schema{Enum: []any{1.0}}, true))
	assert.Equal(t, `z.union([z.literal(1), z.literal("x")])`, Translate(&spec.Schema{Enum: []any{1, "x"}}, true))
}

func TestTranslateArrays(t *testing.T) {
	s := &spec.Schema{Type: spec.TypeSet{"array"}, Items: &spec.Schema{Type: spec.TypeSet{"string"}}, MinItems: ptr(1)}
	assert.Equal(t, "z.array(z.string()).min(1)", Translate(s, true))
	assert.Equal(t, "z.array(z.any())", Translate(&spec.Schema{Type: spec.TypeSet{"array"}}, true))
	assert.Equal(t, "z.array(z.string()).min(1).optional()", Translate(s, false))
}

func TestTranslateObjects(t *testing.T) {
	open := &spec.Schema{Type: spec.TypeSet{"object"}, AdditionalProperties: &spec.AdditionalProperties{Schema: &spec.Schema{Type: spec.TypeSet{"integer"}}}}
	assert.Equal(t, "z.record(z.string(), z.number().int())", Translate(open, true))

	closed := &spec.Schema{Type: spec.TypeSet{"object"}, AdditionalProperties: &spec.AdditionalProperties{Allowed: ptr(false)}}
	assert.Equal(t, "z.object({}).strict()", Translate(closed, true))

	assert.Equal(t, "z.record(z.string(), z.any())", Translate(&spec.Schema{Type: spec.TypeSet{"object"}}, true))

	withExtra := &spec.Schema{
		Type:                 spec.TypeSet{"object"},
		Properties:           map[string]*spec.Schema{"id": {Type: spec.TypeSet{"string"}}},
		Required:             []string{"id"},
		AdditionalProperties: &spec.AdditionalProperties{Schema: &spec.Schema{Type: spec.TypeSet{"boolean"}}},
	}
	assert.Equal(t, "z.object({ id: z.string() }).catchall(z.boolean())", Translate(withExtra, true))
}

func TestTranslateQuotesNonIdentifierKeysAndKeepsDescriptions(t *testing.T) {
	s := &spec.Schema{
		Properties: map[string]*spec.Schema{
			"content-type": {Type: spec.TypeSet{"string"}, Description: `the "type"`},
			"2fa":          {Type: spec.TypeSet{"boolean"}},
			"$id":          {Type: spec.TypeSet{"string"}},
		},
		Required: []string{"$id"},
	}
	want := `z.object({ $id: z.string(), "2fa": z.boolean().optional(), "content-type": z.string().describe("the \"type\"").optional() })`
	assert.Equal(t, want, Translate(s, true))
}

func TestTranslateCompositions(t *testing.T) {
	s := &spec.Schema{OneOf: []*spec.Schema{{Type: spec.TypeSet{"string"}}, {Type: spec.TypeSet{"integer"}}}}
	assert.Equal(t, "z.union([z.string(), z.number().int()])", Translate(s, true))

	single := &spec.Schema{AnyOf: []*spec.Schema{{Type: spec.TypeSet{"boolean"}}}}
	assert.Equal(t, "z.boolean()", Translate(single, true))

	all := &spec.Schema{AllOf: []*spec.Schema{
		{Type: spec.TypeSet{"object"}, Properties: map[string]*spec.Schema{"a": {Type: spec.TypeSet{"string"}}}},
		{Ref: "#/components/schemas/B"},
	}}
	assert.Equal(t, "z.object({ a: z.string().optional() }).and(z.any())", Translate(all, true))
}

func TestObjectKeepsFieldOrder(t *testing.T) {
	got := Object([]Field{
		{Name: "petId", Schema: &spec.Schema{Type: spec.TypeSet{"integer"}}, Required: true, Description: "Pet id"},
		{Name: "body", Schema: &spec.Schema{Type: spec.TypeSet{"object"}}},
	})
	assert.Equal(t, `z.object({ petId: z.number().int().describe("Pet id"), body: z.record(z.string(), z.any()).optional() })`, got)
	assert.Equal(t, "z.object({})", Object(nil))
}

func TestPropertyKey(t *testing.T) {
	assert.Equal(t, "name", PropertyKey("name"))
	assert.Equal(t, "_x$", PropertyKey("_x$"))
	assert.Equal(t, `"x-rate"`, PropertyKey("x-rate"))
	assert.Equal(t, `""`, PropertyKey(""))
}
