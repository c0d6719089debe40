// Package v1 provides the JSON API over the registry catalog.
package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chadcn/registry-catalog/internal/api/common"
	"github.com/chadcn/registry-catalog/internal/catalog"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/registry"
	"github.com/chadcn/registry-catalog/internal/versions"
)

//go:generate mockgen -destination=mocks/mock_catalog.go -package=mocks -source=routes.go Catalog

// Catalog is what the API reads listings and details from.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Listing, error)
	Detail(ctx context.Context, id string) (*catalog.Detail, error)
	Ready(ctx context.Context) error
}

// ListResponse is returned by GET /registries
type ListResponse struct {
	Query    string            `json:"query,omitempty"`
	Total    int               `json:"total"`
	Featured []catalog.Listing `json:"featured"`
	All      []catalog.Listing `json:"all"`
}

// DetailResponse is returned by GET /registries/{id}
type DetailResponse struct {
	Listing     catalog.Listing       `json:"listing"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Homepage    string                `json:"homepage"`
	Maintainers []registry.Maintainer `json:"maintainers"`
	Components  []registry.Item       `json:"components"`
	Extra       map[string]any        `json:"extra,omitempty"`
}

// Routes handles the JSON API
type Routes struct {
	catalog Catalog
}

// NewRoutes creates a new Routes instance with the given catalog.
func NewRoutes(c Catalog) *Routes {
	return &Routes{catalog: c}
}

// Router serves the listing and detail endpoints
func Router(c Catalog) http.Handler {
	routes := NewRoutes(c)

	r := chi.NewRouter()
	r.Get("/registries", routes.listRegistries)
	r.Get("/registries/{id}", routes.getRegistry)
	return r
}

// listRegistries handles GET /api/v1/registries?q=
func (routes *Routes) listRegistries(w http.ResponseWriter, r *http.Request) {
	listings, err := routes.catalog.Load(r.Context())
	if err != nil {
		logger.Errorf("Failed to load listings: %v", err)
		common.WriteErrorResponse(w, "Failed to load registries", http.StatusInternalServerError)
		return
	}

	query := common.SearchQuery(r)
	filtered := catalog.Filter(listings, query)
	featured, rest := catalog.Partition(filtered)
	common.WriteJSONResponse(w, ListResponse{
		Query:    query,
		Total:    len(filtered),
		Featured: featured,
		All:      rest,
	}, http.StatusOK)
}

// getRegistry handles GET /api/v1/registries/{id}?q=
func (routes *Routes) getRegistry(w http.ResponseWriter, r *http.Request) {
	id, err := common.URLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := routes.catalog.Detail(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrListingNotFound):
		common.WriteErrorResponse(w, "Registry not found", http.StatusNotFound)
		return
	case errors.Is(err, catalog.ErrRegistryUnavailable):
		common.WriteErrorResponse(w, catalog.FailedToLoad, http.StatusBadGateway)
		return
	case err != nil:
		logger.Errorf("Failed to load registry %s: %v", id, err)
		common.WriteErrorResponse(w, "Failed to load registry", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, DetailResponse{
		Listing:     detail.Listing,
		Name:        detail.Registry.Name,
		Description: detail.Registry.Description,
		Homepage:    detail.Registry.Homepage,
		Maintainers: nonNil(detail.Maintainers),
		Components:  registry.FilterItems(detail.Components, common.SearchQuery(r)),
		Extra:       detail.Registry.Extra,
	}, http.StatusOK)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(c Catalog) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(c))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Ready(r.Context()); err != nil {
			common.WriteErrorResponse(w, "Catalog not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
