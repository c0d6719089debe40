package registry

import (
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// Canonical top-level fields of a registry document
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldHomepage    = "homepage"
	fieldItems       = "items"
	fieldComponents  = "components"
	fieldMaintainers = "maintainers"
	fieldType        = "type"
)

// Normalize converts a registry document into a Registry.
//
// A document whose "type" starts with "registry:" is a single item and becomes
// the only entry of a synthesized registry. Anything else is read as a full
// registry in a fixed order: defaults, then the canonical fields, then every
// remaining key into Extra. Extras never replace canonical fields.
//
// Normalize accepts any object, including nil, and never fails.
func Normalize(raw map[string]any) Registry {
	if t, ok := raw[fieldType].(string); ok && strings.HasPrefix(t, ItemTypePrefix) {
		item := decodeItem(raw, "")
		name := item.Name
		if name == "" {
			name = DefaultName
		}
		return Registry{
			Name:        name,
			Description: item.Description,
			Items:       []Item{item},
		}
	}

	reg := Registry{
		Name:  DefaultName,
		Items: []Item{},
	}
	if s := stringField(raw, fieldName); s != "" {
		reg.Name = s
	}
	reg.Description = stringField(raw, fieldDescription)
	reg.Homepage = stringField(raw, fieldHomepage)
	if items, ok := raw[fieldItems]; ok {
		reg.Items = decodeItems(items)
	}

	for key, value := range raw {
		switch key {
		case fieldName, fieldDescription, fieldHomepage, fieldItems:
			continue
		}
		if reg.Extra == nil {
			reg.Extra = make(map[string]any, len(raw))
		}
		reg.Extra[key] = value
	}
	return reg
}

// Components returns the items a detail page lists: the "components" entry
// when present, otherwise the normalized items.
func Components(raw map[string]any) []Item {
	if components, ok := raw[fieldComponents]; ok {
		return decodeItems(components)
	}
	return Normalize(raw).Items
}

// ComponentCount counts the entries of "components" (object or array) in a raw
// document, falling back to "items".
func ComponentCount(doc []byte) int {
	for _, path := range []string{fieldComponents, fieldItems} {
		res := gjson.GetBytes(doc, path)
		if !res.Exists() {
			continue
		}
		switch {
		case res.IsArray():
			return len(res.Array())
		case res.IsObject():
			n := 0
			res.ForEach(func(_, _ gjson.Result) bool {
				n++
				return true
			})
			return n
		}
		return 0
	}
	return 0
}

// Maintainers decodes the "maintainers" array. Entries that are not objects
// or carry no name are skipped.
func Maintainers(raw map[string]any) []Maintainer {
	list, ok := raw[fieldMaintainers].([]any)
	if !ok {
		return nil
	}

	out := make([]Maintainer, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		m := Maintainer{
			Name:    stringField(obj, "name"),
			URL:     stringField(obj, "url"),
			GitHub:  stringField(obj, "github"),
			Twitter: stringField(obj, "twitter"),
		}
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterItems keeps items whose key, name, title or description contains
// query, ignoring case. A blank query returns items unchanged.
func FilterItems(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if containsFold(query, item.Key, item.Name, item.Title, item.Description) {
			out = append(out, item)
		}
	}
	return out
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

// decodeItems reads an array of items, or an object keyed by item name in
// key order. Anything else yields no items.
func decodeItems(v any) []Item {
	switch t := v.(type) {
	case []any:
		items := make([]Item, 0, len(t))
		for _, entry := range t {
			obj, _ := entry.(map[string]any)
			items = append(items, decodeItem(obj, ""))
		}
		return items
	case map[string]any:
		keys := sortedKeys(t)
		items := make([]Item, 0, len(keys))
		for _, key := range keys {
			obj, _ := t[key].(map[string]any)
			items = append(items, decodeItem(obj, key))
		}
		return items
	default:
		return []Item{}
	}
}

// decodeItem reads an item leniently. key also stands in for the name when
// the object has none.
func decodeItem(obj map[string]any, key string) Item {
	item := Item{
		Key:                  key,
		Name:                 stringField(obj, "name"),
		Title:                stringField(obj, "title"),
		Description:          stringField(obj, "description"),
		Type:                 stringField(obj, "type"),
		Author:               stringField(obj, "author"),
		Dependencies:         stringList(obj["dependencies"]),
		RegistryDependencies: stringList(obj["registryDependencies"]),
		Files:                decodeFiles(obj["files"]),
		Source:               obj,
	}
	if item.Name == "" {
		item.Name = key
	}
	return item
}

func decodeFiles(v any) []File {
	switch t := v.(type) {
	case []any:
		files := make([]File, 0, len(t))
		for _, entry := range t {
			switch f := entry.(type) {
			case string:
				files = append(files, File{Path: f})
			case map[string]any:
				files = append(files, File{
					Path:   stringField(f, "path"),
					Type:   stringField(f, "type"),
					Target: stringField(f, "target"),
				})
			}
		}
		return files
	case map[string]any:
		// path -> content form
		files := make([]File, 0, len(t))
		for _, path := range sortedKeys(t) {
			files = append(files, File{Path: path})
		}
		return files
	}
	return nil
}

// stringList reads an array of strings, or the keys of an object such as a
// package.json style dependency map.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, entry := range t {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		return sortedKeys(t)
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
