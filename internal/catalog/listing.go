// Package catalog loads registry listings, augments them with fetched registry
// metadata and filters them for the listing and detail pages.
package catalog

import (
	"strings"
)

// FailedToLoad is the error marker set on a listing whose registry could not be fetched.
const FailedToLoad = "Failed to load registry data"

// Listing is a catalog entry pointing at a registry document. The display
// fields are filled in by Controller.Refresh.
type Listing struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Featured bool   `json:"featured"`
	AddedAt  string `json:"addedAt,omitempty"`

	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	Author         string `json:"author,omitempty"`
	ComponentCount int    `json:"componentCount"`
	Error          string `json:"error,omitempty"`
}

// Failed reports whether the last refresh could not load the registry.
func (l *Listing) Failed() bool {
	return l.Error != ""
}

// Filter returns the listings whose id, name, description or author contains
// query, ignoring case. A blank query returns listings unchanged. Order is kept.
func Filter(listings []Listing, query string) []Listing {
	if strings.TrimSpace(query) == "" {
		return listings
	}

	q := strings.ToLower(query)
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if matches(q, l.ID, l.Name, l.Description, l.Author) {
			out = append(out, l)
		}
	}
	return out
}

func matches(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

// Partition splits listings into featured and the rest, both in input order.
func Partition(listings []Listing) (featured, rest []Listing) {
	featured = make([]Listing, 0, len(listings))
	rest = make([]Listing, 0, len(listings))
	for _, l := range listings {
		if l.Featured {
			featured = append(featured, l)
		} else {
			rest = append(rest, l)
		}
	}
	return featured, rest
}
