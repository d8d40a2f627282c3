package resolver

import (
	"testing"

	"github.com/mark3labs/specforge/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name string) *spec.Schema {
	return &spec.Schema{Ref: "#/components/schemas/" + name}
}

func TestDeref_MutualCycleTerminates(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{
		"A": ref("B"),
		"B": ref("A"),
	})
	out := Deref(ref("A"), doc, false)
	require.NotNil(t, out)
	assert.Equal(t, "#/components/schemas/A", out.Ref, "cut point keeps its pointer")
}

func TestDeref_SelfReferentialTree(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{
		"Tree": {
			Type: spec.TypeSet{"object"},
			Properties: map[string]*spec.Schema{
				"value":    {Type: spec.TypeSet{"string"}},
				"children": {Type: spec.TypeSet{"array"}, Items: ref("Tree")},
			},
		},
	})
	out := Deref(ref("Tree"), doc, false)
	require.NotNil(t, out)
	assert.Empty(t, out.Ref)
	assert.True(t, out.Type.Is("object"))
	items := out.Properties["children"].Items
	assert.Equal(t, "#/components/schemas/Tree", items.Ref, "recursion stops at the first repeat")
	assert.Equal(t, "#/components/schemas/Tree", doc.Components.Schemas["Tree"].Properties["children"].Items.Ref)
}

func TestDeref_SiblingsOverride(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{
		"Pet": {Type: spec.TypeSet{"object"}, Description: "a pet", Properties: map[string]*spec.Schema{"name": {Type: spec.TypeSet{"string"}}}},
	})
	in := &spec.Schema{Ref: "#/components/schemas/Pet", Description: "the pet to create", Nullable: true}
	out := Deref(in, doc, false)
	assert.Empty(t, out.Ref)
	assert.Equal(t, "the pet to create", out.Description)
	assert.True(t, out.Nullable)
	assert.Contains(t, out.Properties, "name")
	assert.Equal(t, "a pet", doc.Components.Schemas["Pet"].Description, "target untouched")
	assert.Equal(t, "#/components/schemas/Pet", in.Ref, "input untouched")
}

func TestDeref_ShallowStopsAfterOneHop(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{
		"Owner": {Type: spec.TypeSet{"object"}, Properties: map[string]*spec.Schema{"pet": ref("Pet")}},
		"Pet":   {Type: spec.TypeSet{"string"}},
	})
	deep := Deref(ref("Owner"), doc, false)
	assert.True(t, deep.Properties["pet"].Type.Is("string"))

	shallow := Deref(ref("Owner"), doc, true)
	assert.Equal(t, "#/components/schemas/Pet", shallow.Properties["pet"].Ref)
}

func TestDeref_UnresolvedPassesThrough(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{})
	out := Deref(&spec.Schema{Type: spec.TypeSet{"array"}, Items: ref("Ghost")}, doc, false)
	assert.Equal(t, "#/components/schemas/Ghost", out.Items.Ref)
	assert.Nil(t, Deref(nil, doc, false))
}

func TestDerefTree_CycleAndOverlay(t *testing.T) {
	doc := schemaDoc(map[string]*spec.Schema{
		"A":   ref("B"),
		"B":   ref("A"),
		"Pet": {Type: spec.TypeSet{"object"}, Description: "pet"},
	})
	root, err := spec.ToTree(doc)
	require.NoError(t, err)

	out := DerefTree(map[string]any{"$ref": "#/components/schemas/A"}, root, false)
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/A"}, out)

	node := map[string]any{
		"type":  "array",
		"items": map[string]any{"$ref": "#/components/schemas/Pet", "description": "override"},
	}
	out = DerefTree(node, root, false)
	items := out.(map[string]any)["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
	assert.Equal(t, "override", items["description"])
	assert.NotContains(t, items, "$ref")
	assert.Contains(t, node["items"], "$ref", "input untouched")
}
