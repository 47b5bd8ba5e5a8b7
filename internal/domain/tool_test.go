package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogNamesAndOrder(t *testing.T) {
	want := []string{
		"bubble_get_schema",
		"bubble_list",
		"bubble_get",
		"bubble_create",
		"bubble_update",
		"bubble_delete",
		"bubble_workflow",
	}

	tools := Catalog()
	require.Len(t, tools, len(want))
	for i, tool := range tools {
		assert.Equal(t, want[i], tool.Name)
		assert.Equal(t, want[i], tool.Kind.String())
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
}

func TestCatalogNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, tool := range Catalog() {
		assert.False(t, seen[tool.Name], "duplicate tool name %q", tool.Name)
		seen[tool.Name] = true
	}
}

func TestLookup(t *testing.T) {
	tool, ok := Lookup("bubble_get")
	require.True(t, ok)
	assert.Equal(t, KindGet, tool.Kind)

	_, ok = Lookup("bubble_frobnicate")
	assert.False(t, ok)
}

func TestKindMutating(t *testing.T) {
	mutating := map[Kind]bool{
		KindGetSchema: false,
		KindList:      false,
		KindGet:       false,
		KindCreate:    true,
		KindUpdate:    true,
		KindDelete:    true,
		KindWorkflow:  true,
	}
	for kind, want := range mutating {
		assert.Equal(t, want, kind.Mutating(), "kind %s", kind)
	}
}

func TestKindRequiredArgs(t *testing.T) {
	tests := []struct {
		kind Kind
		want []string
	}{
		{KindGetSchema, nil},
		{KindList, []string{"dataType"}},
		{KindGet, []string{"dataType", "id"}},
		{KindCreate, []string{"dataType", "data"}},
		{KindUpdate, []string{"dataType", "id", "data"}},
		{KindDelete, []string{"dataType", "id"}},
		{KindWorkflow, []string{"workflowName"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.RequiredArgs(), "kind %s", tt.kind)
	}
}

// Every argument the schema marks required must match the dispatcher's own
// required list, and be declared as a property.
func TestInputSchemaMatchesRequiredArgs(t *testing.T) {
	for _, tool := range Catalog() {
		want := tool.Kind.RequiredArgs()
		if len(want) == 0 {
			assert.Empty(t, tool.InputSchema.Required, "tool %s", tool.Name)
			continue
		}
		assert.Equal(t, want, tool.InputSchema.Required, "tool %s", tool.Name)
		for _, name := range want {
			assert.Contains(t, tool.InputSchema.Properties, name, "tool %s", tool.Name)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	mutated := Catalog()
	mutated[0].Name = "changed"

	assert.Equal(t, "bubble_get_schema", Catalog()[0].Name)
}
