package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/chadcn/registry-catalog/internal/db/sqlc"
	"github.com/chadcn/registry-catalog/internal/logger"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=source.go Source

// Source provides the listings shown on the catalog pages.
type Source interface {
	// List returns every listing in catalog order.
	List(ctx context.Context) ([]Listing, error)
}

// ErrInvalidListing wraps every listing validation failure.
var ErrInvalidListing = errors.New("invalid listing")

// FileSource reads listings from a JSON array file.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource returns a source reading path on every List call.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List implements Source.
func (s *FileSource) List(_ context.Context) ([]Listing, error) {
	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", s.path)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", s.path, err)
	}
	return ParseListings(data)
}

// fileEntry mirrors the on-disk record so unknown display fields are ignored.
type fileEntry struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Featured *bool  `json:"featured"`
	AddedAt  string `json:"addedAt"`
}

// ParseListings decodes and validates a JSON array of listing records. Every
// invalid record is reported.
func ParseListings(data []byte) ([]Listing, error) {
	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse listings: %w", err)
	}

	var errs []error
	seen := make(map[string]int, len(entries))
	listings := make([]Listing, 0, len(entries))
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			errs = append(errs, fmt.Errorf("listing %d: %w", i, err))
			continue
		}
		if prev, dup := seen[e.ID]; dup {
			errs = append(errs, fmt.Errorf("listing %d: %w: id %q already used by listing %d", i, ErrInvalidListing, e.ID, prev))
			continue
		}
		seen[e.ID] = i
		listings = append(listings, Listing{
			ID:       e.ID,
			URL:      e.URL,
			Featured: e.Featured != nil && *e.Featured,
			AddedAt:  e.AddedAt,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return listings, nil
}

func validateEntry(e fileEntry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidListing)
	}
	if err := ValidateURL(e.URL); err != nil {
		return err
	}
	if e.AddedAt != "" {
		if _, err := time.Parse(time.RFC3339, e.AddedAt); err != nil {
			return fmt.Errorf("%w: addedAt %q is not an RFC 3339 timestamp", ErrInvalidListing, e.AddedAt)
		}
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidListing)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: url %q must be an absolute http(s) URL", ErrInvalidListing, raw)
	}
	return nil
}

// RegistryStore is the subset of the generated queries DatabaseSource uses.
type RegistryStore interface {
	ListRegistries(ctx context.Context) ([]sqlc.Registry, error)
	InsertRegistry(ctx context.Context, url string) (sqlc.Registry, error)
}

// DatabaseSource lists the rows of the registry table. Rows carry no featured
// flag so every listing lands in the non-featured section.
type DatabaseSource struct {
	store RegistryStore
}

var _ Source = (*DatabaseSource)(nil)

// NewDatabaseSource returns a source over store.
func NewDatabaseSource(store RegistryStore) *DatabaseSource {
	return &DatabaseSource{store: store}
}

// List implements Source. Rows with an unusable URL are skipped with a warning.
func (s *DatabaseSource) List(ctx context.Context) ([]Listing, error) {
	rows, err := s.store.ListRegistries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registries: %w", err)
	}

	listings := make([]Listing, 0, len(rows))
	for _, row := range rows {
		if err := ValidateURL(row.Url); err != nil {
			logger.Warnf("Skipping registry row %d: %v", row.ID, err)
			continue
		}
		listings = append(listings, rowToListing(row))
	}
	return listings, nil
}

// Add stores url and returns its listing. Adding a known url returns the
// existing row.
func (s *DatabaseSource) Add(ctx context.Context, rawURL string) (Listing, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Listing{}, err
	}
	row, err := s.store.InsertRegistry(ctx, rawURL)
	if err != nil {
		return Listing{}, fmt.Errorf("failed to insert registry: %w", err)
	}
	return rowToListing(row), nil
}

func rowToListing(row sqlc.Registry) Listing {
	return Listing{
		ID:      strconv.FormatInt(row.ID, 10),
		URL:     row.Url,
		AddedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}
}
