// Package web renders the HTML pages of the catalog.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/chadcn/registry-catalog/internal/api/common"
	"github.com/chadcn/registry-catalog/internal/catalog"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/registry"
	"github.com/chadcn/registry-catalog/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	noDescription = "No description available"
	unknownAuthor = "Unknown"
)

// page names, each a templates/<name>.html file rendered inside layout.html
const (
	pageIndex      = "index"
	pageRegistries = "registries"
	pageDetail     = "detail"
	pageNotFound   = "notfound"
	pageError      = "error"
)

// Catalog is what the pages read listings and details from.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Listing, error)
	Detail(ctx context.Context, id string) (*catalog.Detail, error)
}

// Option configures the pages
type Option func(*Pages)

// WithDefaultTheme sets the theme used when the visitor has no preference
func WithDefaultTheme(t theme.Theme) Option {
	return func(p *Pages) {
		p.defaultTheme = t
	}
}

// WithClock replaces time.Now for relative dates
func WithClock(now func() time.Time) Option {
	return func(p *Pages) {
		p.now = now
	}
}

// Pages renders the landing, listing and detail pages.
type Pages struct {
	catalog      Catalog
	defaultTheme theme.Theme
	now          func() time.Time
	templates    map[string]*template.Template
}

// New parses the embedded templates.
func New(c Catalog, opts ...Option) (*Pages, error) {
	p := &Pages{
		catalog:      c,
		defaultTheme: theme.System,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	funcs := template.FuncMap{
		"orDefault": orDefault,
		"describe":  func(s string) string { return orDefault(s, noDescription) },
		"author":    func(s string) string { return orDefault(s, unknownAuthor) },
		"title":     displayName,
		"added":     p.added,
		"plural":    plural,
		"comma":     func(n int) string { return humanize.Comma(int64(n)) },
	}
	p.templates = make(map[string]*template.Template)
	for _, name := range []string{pageIndex, pageRegistries, pageDetail, pageNotFound, pageError} {
		tmpl, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Router serves the pages and the theme form.
func (p *Pages) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", p.index)
	r.Get("/registry", p.registries)
	r.Get("/registry/{id}", p.detail)
	r.Post("/theme", p.setTheme)
	r.NotFound(p.notFound)
	return r
}

type pageData struct {
	Title      string
	Theme      theme.Theme
	ThemeClass string
	Themes     []theme.Theme
	Path       string
	Query      string
	Year       int

	Featured []catalog.Listing
	All      []catalog.Listing
	Total    int

	Detail     *catalog.Detail
	Components []registry.Item

	Message string
}

func (p *Pages) newPageData(w http.ResponseWriter, r *http.Request, title string) *pageData {
	svc := theme.NewService(theme.NewCookieStore(nil, r), theme.WithDefault(p.defaultTheme))
	if _, err := svc.Init(r.Context()); err != nil {
		logger.Debugf("Ignoring theme cookie: %v", err)
	}
	classes := theme.NewClasses()
	svc.Apply(classes, theme.HeaderScheme(r.Header))
	theme.AdvertiseClientHints(w.Header())

	return &pageData{
		Title:      title,
		Theme:      svc.Get(),
		ThemeClass: classes.String(),
		Themes:     []theme.Theme{theme.Light, theme.Dark, theme.System},
		Path:       r.URL.RequestURI(),
		Query:      common.SearchQuery(r),
		Year:       p.now().Year(),
	}
}

func (p *Pages) render(w http.ResponseWriter, name string, status int, data *pageData) {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logger.Errorf("Failed to render %s page: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, pageIndex, http.StatusOK, p.newPageData(w, r, "chadcn"))
}

func (p *Pages) registries(w http.ResponseWriter, r *http.Request) {
	data := p.newPageData(w, r, "chadcn Registry")

	listings, err := p.catalog.Load(r.Context())
	if err != nil {
		logger.Errorf("Failed to load listings: %v", err)
		data.Message = "Failed to load registries"
		p.render(w, pageError, http.StatusInternalServerError, data)
		return
	}

	filtered := catalog.Filter(listings, data.Query)
	data.Featured, data.All = catalog.Partition(filtered)
	data.Total = len(filtered)
	p.render(w, pageRegistries, http.StatusOK, data)
}

func (p *Pages) detail(w http.ResponseWriter, r *http.Request) {
	id, err := common.URLParam(r, "id")
	if err != nil {
		p.notFound(w, r)
		return
	}

	d, err := p.catalog.Detail(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrListingNotFound):
		p.notFound(w, r)
		return
	case errors.Is(err, catalog.ErrRegistryUnavailable):
		data := p.newPageData(w, r, "Registry unavailable")
		data.Message = catalog.FailedToLoad
		p.render(w, pageError, http.StatusBadGateway, data)
		return
	case err != nil:
		logger.Errorf("Failed to load registry %s: %v", id, err)
		data := p.newPageData(w, r, "Error")
		data.Message = catalog.FailedToLoad
		p.render(w, pageError, http.StatusInternalServerError, data)
		return
	}

	data := p.newPageData(w, r, d.Registry.Name)
	data.Detail = d
	data.Components = registry.FilterItems(d.Components, data.Query)
	p.render(w, pageDetail, http.StatusOK, data)
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request) {
	data := p.newPageData(w, r, "Not found")
	data.Message = "Registry not found"
	p.render(w, pageNotFound, http.StatusNotFound, data)
}

// setTheme stores the submitted preference in the ui-theme cookie and sends
// the visitor back to the page the form was on.
func (*Pages) setTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	t, err := theme.Parse(r.PostForm.Get("theme"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	svc := theme.NewService(theme.NewCookieStore(w, r))
	if err := svc.Set(r.Context(), t); err != nil {
		logger.Errorf("Failed to store theme: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, common.SafeRedirect(r.PostForm.Get("redirect"), "/"), http.StatusSeeOther)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func displayName(l catalog.Listing) string {
	return orDefault(l.Name, l.ID)
}

// added formats an RFC 3339 timestamp relative to now, or "" when unset.
func (p *Pages) added(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, p.now(), "ago", "from now")
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}
