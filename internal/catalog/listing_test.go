package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chadcn/registry-catalog/internal/catalog"
)

func sampleListings() []catalog.Listing {
	return []catalog.Listing{
		{ID: "acme", Name: "Acme UI", Description: "Buttons and forms", Author: "Jane Roe", Featured: true},
		{ID: "magic", Name: "Magic", Description: "Animated components", Author: "Bob"},
		{ID: "plain", Error: catalog.FailedToLoad},
		{ID: "shades", Name: "Shades", Description: "", Author: "JANE DOE", Featured: true},
	}
}

func ids(listings []catalog.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps all in order", query: "", want: []string{"acme", "magic", "plain", "shades"}},
		{name: "whitespace query keeps all", query: "   \t", want: []string{"acme", "magic", "plain", "shades"}},
		{name: "author only, case-insensitive", query: "jane", want: []string{"acme", "shades"}},
		{name: "id match on failed listing", query: "PLA", want: []string{"plain"}},
		{name: "description match", query: "animated", want: []string{"magic"}},
		{name: "name match", query: "acme ui", want: []string{"acme"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(catalog.Filter(sampleListings(), tt.query)))
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := sampleListings()
	_ = catalog.Filter(in, "bob")
	assert.Equal(t, sampleListings(), in)
}

func TestPartition(t *testing.T) {
	t.Parallel()

	featured, rest := catalog.Partition(sampleListings())
	assert.Equal(t, []string{"acme", "shades"}, ids(featured))
	assert.Equal(t, []string{"magic", "plain"}, ids(rest))

	featured, rest = catalog.Partition(nil)
	assert.Empty(t, featured)
	assert.Empty(t, rest)
}
