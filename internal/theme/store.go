package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// ErrNoPreference is returned by Store.Load when nothing has been saved
var ErrNoPreference = errors.New("no theme preference stored")

// Store persists the preference. Values are stored JSON encoded under StorageKey.
type Store interface {
	// Load returns ErrNoPreference when nothing is stored
	Load(ctx context.Context) (Theme, error)
	Save(ctx context.Context, t Theme) error
}

// decodeValue parses a stored JSON string such as `"dark"`
func decodeValue(raw []byte) (Theme, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: stored value is not a JSON string: %w", ErrInvalidTheme, err)
	}
	return Parse(s)
}

// MemoryStore keeps the preference in memory
type MemoryStore struct {
	mu    sync.Mutex
	value []byte
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store
func (m *MemoryStore) Load(_ context.Context) (Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return "", ErrNoPreference
	}
	return decodeValue(m.value)
}

// Save implements Store
func (m *MemoryStore) Save(_ context.Context, t Theme) error {
	data, err := json.Marshal(string(t))
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = data
	return nil
}

// FileStore keeps preferences in a JSON object file shared with other keys,
// e.g. {"ui-theme": "dark"}. Unrelated keys survive a Save.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the file at path.
// The file and its directory are created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

// Load implements Store
func (f *FileStore) Load(_ context.Context) (Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	raw, ok := values[StorageKey]
	if !ok {
		return "", ErrNoPreference
	}
	return decodeValue(raw)
}

// Save implements Store. The file is replaced atomically.
func (f *FileStore) Save(_ context.Context, t Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(string(t))
	if err != nil {
		return err
	}
	values[StorageKey] = encoded

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary preferences file: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename preferences file: %w", err)
	}
	return nil
}

// read returns the stored key-value pairs; a missing file is empty
func (f *FileStore) read() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)

	// #nosec G304 -- path is chosen by the operator
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file %s: %w", f.path, err)
	}
	return values, nil
}

// CookieMaxAge is how long the preference cookie lives
const CookieMaxAge = 365 * 24 * time.Hour

// CookieStore keeps the preference in the ui-theme cookie of one HTTP exchange.
// The cookie value is the URL-escaped JSON encoding, so it stays readable by
// browser scripts using the same storage key.
type CookieStore struct {
	w http.ResponseWriter
	r *http.Request
}

// NewCookieStore reads from r and writes Set-Cookie headers to w. Either may
// be nil when only loading or only saving.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r}
}

// Load implements Store
func (c *CookieStore) Load(_ context.Context) (Theme, error) {
	if c.r == nil {
		return "", ErrNoPreference
	}
	cookie, err := c.r.Cookie(StorageKey)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNoPreference
	}
	if err != nil {
		return "", err
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTheme, err)
	}
	return decodeValue([]byte(raw))
}

// Save implements Store
func (c *CookieStore) Save(_ context.Context, t Theme) error {
	if c.w == nil {
		return errors.New("cookie store has no response to write to")
	}
	encoded, err := json.Marshal(string(t))
	if err != nil {
		return err
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     StorageKey,
		Value:    url.QueryEscape(string(encoded)),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
