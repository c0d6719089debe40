package web_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/chadcn/registry-catalog/internal/api/web"
	"github.com/chadcn/registry-catalog/internal/catalog"
	catalogmocks "github.com/chadcn/registry-catalog/internal/catalog/mocks"
	"github.com/chadcn/registry-catalog/internal/registry"
	registrymocks "github.com/chadcn/registry-catalog/internal/registry/mocks"
	"github.com/chadcn/registry-catalog/internal/theme"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func document(t *testing.T, u, body string) *registry.Document {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return &registry.Document{URL: u, Raw: json.RawMessage(body), Value: v}
}

type fixture struct {
	source  *catalogmocks.MockSource
	fetcher *registrymocks.MockFetcher
	handler http.Handler
}

func newFixture(t *testing.T, opts ...web.Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		source:  catalogmocks.NewMockSource(ctrl),
		fetcher: registrymocks.NewMockFetcher(ctrl),
	}
	opts = append([]web.Option{web.WithClock(func() time.Time { return fixedNow })}, opts...)
	pages, err := web.New(catalog.NewController(f.fetcher, f.source), opts...)
	require.NoError(t, err)
	f.handler = pages.Router()
	return f
}

func (f *fixture) get(t *testing.T, path string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func withThemeCookie(value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: theme.StorageKey, Value: url.QueryEscape(value)})
	}
}

func withColorScheme(value string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set(theme.ClientHintHeader, value)
	}
}

func TestIndex_ThemeClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []web.Option
		mutate    []func(*http.Request)
		wantClass string
	}{
		{name: "no preference, no hint", wantClass: `class="light"`},
		{name: "no preference, dark hint", mutate: []func(*http.Request){withColorScheme("dark")}, wantClass: `class="dark"`},
		{name: "stored dark", mutate: []func(*http.Request){withThemeCookie(`"dark"`)}, wantClass: `class="dark"`},
		{
			name:      "stored light beats dark hint",
			mutate:    []func(*http.Request){withThemeCookie(`"light"`), withColorScheme("dark")},
			wantClass: `class="light"`,
		},
		{name: "invalid cookie falls back", mutate: []func(*http.Request){withThemeCookie(`"sepia"`)}, wantClass: `class="light"`},
		{name: "configured default", opts: []web.Option{web.WithDefaultTheme(theme.Dark)}, wantClass: `class="dark"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.opts...)
			rr := f.get(t, "/", tt.mutate...)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Header().Get("Accept-CH"), theme.ClientHintHeader)
			assert.Contains(t, rr.Body.String(), `<html lang="en" `+tt.wantClass+`>`)
			assert.Contains(t, rr.Body.String(), "2025 chadcn")
		})
	}
}

func registryFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.source.EXPECT().List(gomock.Any()).Return([]catalog.Listing{
		{ID: "acme", URL: "https://acme.dev/r.json", Featured: true, AddedAt: "2025-05-01T12:00:00Z"},
		{ID: "bare", URL: "https://bare.dev/r.json"},
		{ID: "down", URL: "https://down.dev/r.json"},
	}, nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), "https://acme.dev/r.json").Return(document(t, "https://acme.dev/r.json",
		`{"name": "Acme UI", "description": "Forms", "maintainers": [{"name": "Jane"}], "components": {"a": {}, "b": {}}}`))
	f.fetcher.EXPECT().Fetch(gomock.Any(), "https://bare.dev/r.json").Return(document(t, "https://bare.dev/r.json",
		`{"items": [{"name": "x"}]}`))
	f.fetcher.EXPECT().Fetch(gomock.Any(), "https://down.dev/r.json").Return(nil)
	return f
}

func section(t *testing.T, body, id string) string {
	t.Helper()
	start := strings.Index(body, `<section id="`+id+`">`)
	require.GreaterOrEqual(t, start, 0, "section %s missing", id)
	end := strings.Index(body[start:], "</section>")
	require.Greater(t, end, 0)
	return body[start : start+end]
}

func TestRegistries(t *testing.T) {
	t.Parallel()

	f := registryFixture(t)
	rr := f.get(t, "/registry")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	featured := section(t, body, "featured")
	assert.Contains(t, featured, "Acme UI")
	assert.Contains(t, featured, "2 components")
	assert.Contains(t, featured, "Jane")
	assert.Contains(t, featured, "1 month ago")
	assert.NotContains(t, featured, `data-id="bare"`)

	all := section(t, body, "all")
	assert.Contains(t, all, `data-id="bare"`)
	assert.Contains(t, all, "1 component")
	assert.Contains(t, all, "No description available")
	assert.Contains(t, all, "Unknown")
	assert.Contains(t, all, `data-id="down"`)
	assert.Contains(t, all, "Failed to load registry data")
	assert.Less(t, strings.Index(all, `data-id="bare"`), strings.Index(all, `data-id="down"`))
}

func TestRegistries_Search(t *testing.T) {
	t.Parallel()

	f := registryFixture(t)
	rr := f.get(t, "/registry?q=jane")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, `value="jane"`)
	assert.Contains(t, section(t, body, "featured"), `data-id="acme"`)
	assert.NotContains(t, section(t, body, "all"), "data-id=")
	assert.Contains(t, body, `href="/registry">Clear</a>`)
}

func TestRegistries_SourceFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.source.EXPECT().List(gomock.Any()).Return(nil, errors.New("file not found: r.json"))

	rr := f.get(t, "/registry")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to load registries")
}

func TestDetail(t *testing.T) {
	t.Parallel()

	listings := []catalog.Listing{{ID: "acme", URL: "https://acme.dev/r.json"}}
	doc := `{
		"name": "Acme UI",
		"homepage": "https://acme.dev",
		"maintainers": [{"name": "Jane", "github": "jane"}],
		"items": [
			{"name": "button", "type": "registry:ui", "description": "Clickable", "dependencies": ["clsx"]},
			{"name": "card", "title": "Card", "description": "A surface"}
		]
	}`

	tests := []struct {
		name       string
		path       string
		doc        string
		fetch      bool
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name:       "renders registry",
			path:       "/registry/acme",
			doc:        doc,
			fetch:      true,
			wantStatus: http.StatusOK,
			want:       []string{"<title>Acme UI</title>", "https://acme.dev", "@jane", "2 components", "Clickable", "clsx", "registry:ui", "Card"},
		},
		{
			name:       "component search",
			path:       "/registry/acme?q=SURFACE",
			doc:        doc,
			fetch:      true,
			wantStatus: http.StatusOK,
			want:       []string{"1 component", `data-name="card"`},
			notWant:    []string{`data-name="button"`},
		},
		{
			name:       "search without matches",
			path:       "/registry/acme?q=zzz",
			doc:        doc,
			fetch:      true,
			wantStatus: http.StatusOK,
			want:       []string{"0 components", "No components found"},
		},
		{
			name:       "unknown id",
			path:       "/registry/missing",
			wantStatus: http.StatusNotFound,
			want:       []string{"Registry not found"},
		},
		{
			name:       "fetch failure",
			path:       "/registry/acme",
			fetch:      true,
			wantStatus: http.StatusBadGateway,
			want:       []string{"Failed to load registry data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.source.EXPECT().List(gomock.Any()).Return(listings, nil)
			if tt.fetch {
				var d *registry.Document
				if tt.doc != "" {
					d = document(t, "https://acme.dev/r.json", tt.doc)
				}
				f.fetcher.EXPECT().Fetch(gomock.Any(), "https://acme.dev/r.json").Return(d)
			}

			rr := f.get(t, tt.path)
			assert.Equal(t, tt.wantStatus, rr.Code)
			for _, s := range tt.want {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestNotFoundRoute(t *testing.T) {
	t.Parallel()

	rr := newFixture(t).get(t, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Registry not found")
}

func TestSetTheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		form         url.Values
		wantStatus   int
		wantLocation string
		wantCookie   string
	}{
		{
			name:         "dark with redirect",
			form:         url.Values{"theme": {"dark"}, "redirect": {"/registry?q=acme"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/registry?q=acme",
			wantCookie:   url.QueryEscape(`"dark"`),
		},
		{
			name:         "system without redirect",
			form:         url.Values{"theme": {"system"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
			wantCookie:   url.QueryEscape(`"system"`),
		},
		{
			name:         "external redirect ignored",
			form:         url.Values{"theme": {"light"}, "redirect": {"https://evil.example/"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
			wantCookie:   url.QueryEscape(`"light"`),
		},
		{
			name:       "invalid theme",
			form:       url.Values{"theme": {"sepia"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rr := httptest.NewRecorder()
			f.handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusSeeOther {
				assert.Empty(t, rr.Result().Cookies())
				return
			}
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
			cookies := rr.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, theme.StorageKey, cookies[0].Name)
			assert.Equal(t, tt.wantCookie, cookies[0].Value)
		})
	}
}

func TestNew_NilCatalogStillRendersIndex(t *testing.T) {
	t.Parallel()

	pages, err := web.New(nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	pages.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
