package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, doc string) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &obj))
	return obj
}

func TestNormalize_SingleItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		doc             string
		wantName        string
		wantDescription string
	}{
		{
			name:            "item with name and description",
			doc:             `{"name":"button","type":"registry:ui","description":"A button","homepage":"https://ignored.dev"}`,
			wantName:        "button",
			wantDescription: "A button",
		},
		{
			name:     "item without name",
			doc:      `{"type":"registry:block"}`,
			wantName: DefaultName,
		},
		{
			name:     "bare prefix",
			doc:      `{"type":"registry:","name":"x","description":42}`,
			wantName: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := mustObject(t, tt.doc)
			reg := Normalize(raw)

			require.Len(t, reg.Items, 1)
			assert.Equal(t, raw, reg.Items[0].Source)
			assert.Equal(t, tt.wantName, reg.Name)
			assert.Equal(t, tt.wantDescription, reg.Description)
			assert.Empty(t, reg.Homepage)
			assert.Nil(t, reg.Extra)
		})
	}
}

func TestNormalize_FullRegistry(t *testing.T) {
	t.Parallel()

	raw := mustObject(t, `{
		"name": "acme",
		"description": "Acme components",
		"homepage": "https://acme.dev",
		"type": "collection",
		"version": 3,
		"items": [
			{
				"name": "card",
				"title": "Card",
				"type": "registry:ui",
				"author": "wile",
				"dependencies": ["clsx", 7],
				"registryDependencies": ["button"],
				"files": [{"path": "ui/card.tsx", "type": "registry:ui", "target": "components/card.tsx"}, "lib/utils.ts"]
			},
			"not an object"
		]
	}`)

	reg := Normalize(raw)

	assert.Equal(t, "acme", reg.Name)
	assert.Equal(t, "Acme components", reg.Description)
	assert.Equal(t, "https://acme.dev", reg.Homepage)
	require.Len(t, reg.Items, 2)

	card := reg.Items[0]
	assert.Equal(t, "card", card.Name)
	assert.Equal(t, "Card", card.Title)
	assert.Equal(t, "wile", card.Author)
	assert.Equal(t, []string{"clsx"}, card.Dependencies)
	assert.Equal(t, []string{"button"}, card.RegistryDependencies)
	assert.Equal(t, []File{
		{Path: "ui/card.tsx", Type: "registry:ui", Target: "components/card.tsx"},
		{Path: "lib/utils.ts"},
	}, card.Files)

	assert.Equal(t, Item{}, reg.Items[1])

	assert.Equal(t, map[string]any{"type": "collection", "version": float64(3)}, reg.Extra)
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "nil object", raw: nil},
		{name: "empty object", raw: map[string]any{}},
		{name: "wrong types", raw: map[string]any{
			"name": 12, "description": []any{"x"}, "homepage": false, "items": "nope",
		}},
		{name: "null fields", raw: map[string]any{
			"name": nil, "description": nil, "homepage": nil, "items": nil,
		}},
		{name: "non-string type", raw: map[string]any{"type": 1}},
		{name: "type without prefix", raw: map[string]any{"type": "component:ui"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var reg Registry
			require.NotPanics(t, func() { reg = Normalize(tt.raw) })

			assert.Equal(t, DefaultName, reg.Name)
			assert.Empty(t, reg.Description)
			assert.Empty(t, reg.Homepage)
			assert.NotNil(t, reg.Items)
			assert.Empty(t, reg.Items)
		})
	}
}

func TestNormalize_ExtrasNeverOverrideCanonicalFields(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"name":  "canonical",
		"Name":  "shadow",
		"extra": map[string]any{"name": "nested"},
	}

	for range 20 {
		reg := Normalize(raw)
		assert.Equal(t, "canonical", reg.Name)
		assert.Equal(t, map[string]any{
			"Name":  "shadow",
			"extra": map[string]any{"name": "nested"},
		}, reg.Extra)
		assert.NotContains(t, reg.Extra, "name")
	}
}

func TestNormalize_ItemsObjectUsesKeysInOrder(t *testing.T) {
	t.Parallel()

	raw := mustObject(t, `{"items": {
		"tabs": {"description": "Tabs", "dependencies": {"react": "^19", "@radix-ui/react-tabs": "1.0.0"}},
		"accordion": {"name": "Accordion", "files": {"ui/accordion.tsx": "..."}}
	}}`)

	reg := Normalize(raw)
	require.Len(t, reg.Items, 2)

	assert.Equal(t, "Accordion", reg.Items[0].Name)
	assert.Equal(t, []File{{Path: "ui/accordion.tsx"}}, reg.Items[0].Files)

	assert.Equal(t, "accordion", reg.Items[0].Key)
	assert.Equal(t, "tabs", reg.Items[1].Name)
	assert.Equal(t, "tabs", reg.Items[1].Key)
	assert.Equal(t, []string{"@radix-ui/react-tabs", "react"}, reg.Items[1].Dependencies)
}

func TestComponents(t *testing.T) {
	t.Parallel()

	withComponents := mustObject(t, `{
		"items": [{"name": "ignored"}],
		"components": {"b": {"name": "Beta"}, "a": {"name": "Alpha"}}
	}`)
	names := func(items []Item) []string {
		out := make([]string, 0, len(items))
		for _, i := range items {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Alpha", "Beta"}, names(Components(withComponents)))
	assert.Equal(t, []string{"one", "two"}, names(Components(mustObject(t, `{"items":[{"name":"one"},{"name":"two"}]}`))))
	assert.Empty(t, Components(map[string]any{}))

	keyed := Components(mustObject(t, `{"components":{"btn":{"name":"Button"}}}`))
	assert.Equal(t, []string{"Button"}, names(FilterItems(keyed, "btn")))
	assert.Empty(t, Components(mustObject(t, `{"components":[{"name":"Button"}]}`))[0].Key)
}

func TestComponentCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want int
	}{
		{name: "components object", doc: `{"components":{"a":{},"b":{},"c":{}},"items":[{}]}`, want: 3},
		{name: "components array", doc: `{"components":[{},{}]}`, want: 2},
		{name: "items fallback", doc: `{"items":[{},{},{},{}]}`, want: 4},
		{name: "empty components wins", doc: `{"components":{},"items":[{}]}`, want: 0},
		{name: "scalar components", doc: `{"components":"many"}`, want: 0},
		{name: "neither", doc: `{"name":"x"}`, want: 0},
		{name: "not json", doc: `<html>`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComponentCount([]byte(tt.doc)))
		})
	}
}

func TestMaintainers(t *testing.T) {
	t.Parallel()

	raw := mustObject(t, `{"maintainers": [
		{"name": "Ada", "github": "ada", "twitter": "ada_l"},
		{"url": "https://nameless.dev"},
		"Grace",
		{"name": "Linus", "url": "https://kernel.org"}
	]}`)

	assert.Equal(t, []Maintainer{
		{Name: "Ada", GitHub: "ada", Twitter: "ada_l"},
		{Name: "Linus", URL: "https://kernel.org"},
	}, Maintainers(raw))

	assert.Nil(t, Maintainers(map[string]any{"maintainers": "Ada"}))
	assert.Nil(t, Maintainers(nil))
}

func TestFilterItems(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Name: "button", Description: "Clickable"},
		{Name: "card", Title: "Fancy Card"},
		{Name: "dialog", Description: "Modal BUTTON host"},
		{Key: "btn-group", Name: "Group"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank returns all", query: "  ", want: []string{"button", "card", "dialog", "Group"}},
		{name: "mapping key only", query: "BTN", want: []string{"Group"}},
		{name: "name and description, any case", query: "Button", want: []string{"button", "dialog"}},
		{name: "title", query: "fancy", want: []string{"card"}},
		{name: "no match", query: "table", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := make([]string, 0)
			for _, i := range FilterItems(items, tt.query) {
				got = append(got, i.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
