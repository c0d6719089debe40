// Package config loads the YAML configuration of the catalog server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chadcn/registry-catalog/internal/telemetry"
	"github.com/chadcn/registry-catalog/internal/theme"
)

const (
	// SourceTypeFile reads listings from a local JSON file
	SourceTypeFile = "file"

	// SourceTypeDatabase reads listings from the registry table
	SourceTypeDatabase = "database"
)

const (
	defaultAddress          = ":8080"
	defaultRequestTimeout   = 30 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultFetchTimeout     = 5 * time.Second
	defaultFetchConcurrency = 8
	defaultSSLMode          = "require"

	// EnvPrefix prefixes every environment variable the CLI reads
	EnvPrefix = "CHADCN"

	// PasswordEnvVar is consulted when no password file is configured
	PasswordEnvVar = "CHADCN_DATABASE_PASSWORD"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// EvalSymlinks also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server    *ServerConfig     `yaml:"server,omitempty"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Fetch     *FetchConfig      `yaml:"fetch,omitempty"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Theme     *ThemeConfig      `yaml:"theme,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080"
	Address string `yaml:"address,omitempty"`

	// RequestTimeout bounds every request, including its registry fetches
	RequestTimeout string `yaml:"requestTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
}

// CatalogConfig selects where listings come from
type CatalogConfig struct {
	// Source is "file" or "database". Inferred from File when empty.
	Source string      `yaml:"source,omitempty"`
	File   *FileConfig `yaml:"file,omitempty"`
}

// FileConfig points at a JSON listing file
type FileConfig struct {
	// Path may be absolute or relative to the working directory
	Path string `yaml:"path"`
}

// FetchConfig tunes outbound registry fetches
type FetchConfig struct {
	// Timeout is the per-registry deadline, default 5s
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency caps simultaneous fetches during a refresh, default 8
	Concurrency int `yaml:"concurrency,omitempty"`

	// ValidateSchema rejects documents that do not match the registry schema
	ValidateSchema bool `yaml:"validateSchema,omitempty"`
}

// ThemeConfig holds the server-side theme default
type ThemeConfig struct {
	// Default applies when a visitor has no stored preference
	Default string `yaml:"default,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`

	// PasswordFile holds the password, trailing whitespace ignored.
	// CHADCN_DATABASE_PASSWORD is used when unset.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	Database string `yaml:"database"`

	// SSLMode is disable, require, verify-ca or verify-full
	SSLMode string `yaml:"sslMode,omitempty"`

	MaxConns int32 `yaml:"maxConns,omitempty"`
	MinConns int32 `yaml:"minConns,omitempty"`

	// ConnMaxLifetime is a duration such as "1h"
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// LoadConfig loads and validates configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	if err := c.validateCatalog(); err != nil {
		errs = append(errs, err)
	}
	if c.Server != nil {
		errs = append(errs,
			validateDuration("server.requestTimeout", c.Server.RequestTimeout),
			validateDuration("server.shutdownTimeout", c.Server.ShutdownTimeout),
		)
	}
	if c.Fetch != nil {
		errs = append(errs, validateDuration("fetch.timeout", c.Fetch.Timeout))
		if c.Fetch.Concurrency < 0 {
			errs = append(errs, fmt.Errorf("fetch.concurrency must not be negative, got %d", c.Fetch.Concurrency))
		}
	}
	if c.Theme != nil && c.Theme.Default != "" {
		if _, err := theme.Parse(c.Theme.Default); err != nil {
			errs = append(errs, fmt.Errorf("theme.default: %w", err))
		}
	}
	if c.Database != nil {
		errs = append(errs, validateDuration("database.connMaxLifetime", c.Database.ConnMaxLifetime))
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) validateCatalog() error {
	switch c.GetSourceType() {
	case SourceTypeFile:
		if c.Catalog.File == nil || c.Catalog.File.Path == "" {
			return fmt.Errorf("catalog.file.path is required for the file source")
		}
	case SourceTypeDatabase:
		if c.Database == nil {
			return fmt.Errorf("database configuration is required for the database source")
		}
	case "":
		return fmt.Errorf("catalog: one of file or database source must be configured")
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceTypeFile, SourceTypeDatabase, c.Catalog.Source)
	}
	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g. '5s', '1m'): %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return nil
}

// GetSourceType returns the configured listing source, inferring "file" when
// a file path is set and "database" when only a database is configured.
func (c *Config) GetSourceType() string {
	if c.Catalog.Source != "" {
		return c.Catalog.Source
	}
	if c.Catalog.File != nil {
		return SourceTypeFile
	}
	if c.Database != nil {
		return SourceTypeDatabase
	}
	return ""
}

// GetAddress returns the listen address, defaulting to ":8080"
func (c *Config) GetAddress() string {
	if c.Server == nil || c.Server.Address == "" {
		return defaultAddress
	}
	return c.Server.Address
}

// GetRequestTimeout returns the per-request timeout, defaulting to 30s
func (c *Config) GetRequestTimeout() time.Duration {
	if c.Server == nil {
		return defaultRequestTimeout
	}
	return durationOr(c.Server.RequestTimeout, defaultRequestTimeout)
}

// GetShutdownTimeout returns the graceful shutdown timeout, defaulting to 10s
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.Server == nil {
		return defaultShutdownTimeout
	}
	return durationOr(c.Server.ShutdownTimeout, defaultShutdownTimeout)
}

// GetFetchTimeout returns the per-registry deadline, defaulting to 5s
func (c *Config) GetFetchTimeout() time.Duration {
	if c.Fetch == nil {
		return defaultFetchTimeout
	}
	return durationOr(c.Fetch.Timeout, defaultFetchTimeout)
}

// GetFetchConcurrency returns the refresh fan-out limit, defaulting to 8
func (c *Config) GetFetchConcurrency() int {
	if c.Fetch == nil || c.Fetch.Concurrency == 0 {
		return defaultFetchConcurrency
	}
	return c.Fetch.Concurrency
}

// GetValidateSchema reports whether fetched documents are schema checked
func (c *Config) GetValidateSchema() bool {
	return c.Fetch != nil && c.Fetch.ValidateSchema
}

// GetDefaultTheme returns the theme used for visitors without a preference
func (c *Config) GetDefaultTheme() theme.Theme {
	if c.Theme == nil || c.Theme.Default == "" {
		return theme.System
	}
	t, err := theme.Parse(c.Theme.Default)
	if err != nil {
		return theme.System
	}
	return t
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetPassword returns the database password, read from PasswordFile when set
// and from CHADCN_DATABASE_PASSWORD otherwise.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		data, err := os.ReadFile(filepath.Clean(d.PasswordFile))
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf("no database password configured: set passwordFile or %s", PasswordEnvVar)
}

// GetSSLMode returns the SSL mode, defaulting to "require"
func (d *DatabaseConfig) GetSSLMode() string {
	if d.SSLMode == "" {
		return defaultSSLMode
	}
	return d.SSLMode
}

// GetConnectionString builds a postgres:// URL with the password escaped
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": []string{d.GetSSLMode()}}.Encode(),
	}
	return u.String(), nil
}
