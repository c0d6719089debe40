// Package registry fetches third-party component registry documents and
// normalizes them into a canonical shape.
//
// A registry document is a JSON object that is either a full registry
// (name, description, homepage, items) or a single item whose type carries
// the "registry:" prefix. Fetching never fails loudly: callers receive a nil
// *Document and a warning is logged.
package registry

import "encoding/json"

// ItemTypePrefix marks a document as a single registry item
const ItemTypePrefix = "registry:"

// DefaultName is used when a registry or item carries no name
const DefaultName = "Unknown"

// Registry is the canonical form of a fetched registry document.
type Registry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	Items       []Item `json:"items"`

	// Extra holds every top-level field other than the four above.
	// It never overrides them.
	Extra map[string]any `json:"extra,omitempty"`
}

// Item is one component of a registry.
type Item struct {
	// Key is the mapping key the item was listed under, empty for arrays
	Key                  string   `json:"key,omitempty"`
	Name                 string   `json:"name"`
	Title                string   `json:"title,omitempty"`
	Description          string   `json:"description"`
	Type                 string   `json:"type,omitempty"`
	Author               string   `json:"author,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"`
	RegistryDependencies []string `json:"registryDependencies,omitempty"`
	Files                []File   `json:"files,omitempty"`

	// Source is the object the item was decoded from, untouched
	Source map[string]any `json:"-"`
}

// File is a file shipped by an item
type File struct {
	Path   string `json:"path"`
	Type   string `json:"type,omitempty"`
	Target string `json:"target,omitempty"`
}

// Maintainer is a person credited by a registry
type Maintainer struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	GitHub  string `json:"github,omitempty"`
	Twitter string `json:"twitter,omitempty"`
}

// Document is a successfully fetched registry payload.
type Document struct {
	URL string
	// Raw is the response body as received
	Raw json.RawMessage
	// Value is the parsed body; numbers are json.Number
	Value any
}

// Object returns the document as a JSON object, or false when the payload is
// an array or scalar.
func (d *Document) Object() (map[string]any, bool) {
	if d == nil {
		return nil, false
	}
	obj, ok := d.Value.(map[string]any)
	return obj, ok
}
