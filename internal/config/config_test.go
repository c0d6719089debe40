package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadcn/registry-catalog/internal/telemetry"
	"github.com/chadcn/registry-catalog/internal/theme"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yamlContent string
		wantConfig  *Config
		wantErr     string
	}{
		{
			name: "file catalog with everything set",
			yamlContent: `server:
  address: ":9090"
  requestTimeout: 15s
catalog:
  file:
    path: data/registries.json
fetch:
  timeout: 3s
  concurrency: 4
  validateSchema: true
theme:
  default: dark
telemetry:
  enabled: true
  metrics:
    enabled: true
    exporter: prometheus`,
			wantConfig: &Config{
				Server:  &ServerConfig{Address: ":9090", RequestTimeout: "15s"},
				Catalog: CatalogConfig{File: &FileConfig{Path: "data/registries.json"}},
				Fetch:   &FetchConfig{Timeout: "3s", Concurrency: 4, ValidateSchema: true},
				Theme:   &ThemeConfig{Default: "dark"},
				Telemetry: &telemetry.Config{
					Enabled: true,
					Metrics: &telemetry.MetricsConfig{Enabled: true, Exporter: "prometheus"},
				},
			},
		},
		{
			name: "database catalog",
			yamlContent: `catalog:
  source: database
database:
  host: localhost
  port: 5432
  user: chadcn
  database: catalog
  sslMode: disable`,
			wantConfig: &Config{
				Catalog: CatalogConfig{Source: SourceTypeDatabase},
				Database: &DatabaseConfig{
					Host: "localhost", Port: 5432, User: "chadcn", Database: "catalog", SSLMode: "disable",
				},
			},
		},
		{
			name:        "no source",
			yamlContent: `fetch: {timeout: 1s}`,
			wantErr:     "one of file or database source must be configured",
		},
		{
			name:        "database source without database",
			yamlContent: `catalog: {source: database}`,
			wantErr:     "database configuration is required",
		},
		{
			name:        "unknown source",
			yamlContent: `catalog: {source: git}`,
			wantErr:     `catalog.source must be "file" or "database", got "git"`,
		},
		{
			name:        "file source without path",
			yamlContent: `catalog: {source: file}`,
			wantErr:     "catalog.file.path is required",
		},
		{
			name: "bad durations and concurrency",
			yamlContent: `catalog: {file: {path: r.json}}
fetch: {timeout: soon, concurrency: -1}
server: {shutdownTimeout: 0s}`,
			wantErr: "fetch.timeout must be a valid duration",
		},
		{
			name: "bad theme",
			yamlContent: `catalog: {file: {path: r.json}}
theme: {default: sepia}`,
			wantErr: "theme.default",
		},
		{
			name: "bad telemetry",
			yamlContent: `catalog: {file: {path: r.json}}
telemetry: {enabled: true, metrics: {enabled: true, exporter: statsd}}`,
			wantErr: "telemetry: metrics: unknown exporter",
		},
		{
			name:        "invalid yaml",
			yamlContent: "catalog: [",
			wantErr:     "failed to parse YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadConfig(WithConfigPath(writeConfig(t, tt.yamlContent)))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, cfg)
		})
	}
}

func TestLoadConfig_JoinsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(WithConfigPath(writeConfig(t, `catalog: {file: {path: r.json}}
fetch: {concurrency: -2}
server: {requestTimeout: -1s}`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.concurrency must not be negative")
	assert.Contains(t, err.Error(), "server.requestTimeout must be positive")
}

func TestLoadConfig_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig()
	require.EqualError(t, err, "path is required")

	_, err = LoadConfig(WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	require.ErrorContains(t, err, "failed to evaluate symlinks")
}

func TestWithConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "configs", "app.yaml"), nil, 0600))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "configs", "app.yaml"), filepath.Join(tmpDir, "link.yaml")))
	t.Chdir(tmpDir)

	tests := []struct {
		name     string
		path     string
		wantPath string
		wantErr  bool
	}{
		{name: "empty path", path: "", wantErr: true},
		{name: "traversal at start", path: "../etc/passwd", wantErr: true},
		{name: "traversal in middle", path: "configs/../../etc/passwd", wantErr: true},
		{name: "relative path", path: "config.yaml", wantPath: "config.yaml"},
		{name: "relative path with subdir", path: "configs/app.yaml", wantPath: "configs/app.yaml"},
		{name: "symlink resolved", path: "link.yaml", wantPath: filepath.Join(tmpDir, "configs", "app.yaml")},
		{name: "missing file", path: "nope.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &loaderConfig{}
			err := WithConfigPath(tt.path)(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, cfg.path)
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, ":8080", cfg.GetAddress())
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetFetchTimeout())
	assert.Equal(t, 8, cfg.GetFetchConcurrency())
	assert.False(t, cfg.GetValidateSchema())
	assert.Equal(t, theme.System, cfg.GetDefaultTheme())
	assert.Empty(t, cfg.GetSourceType())

	cfg = &Config{
		Server:   &ServerConfig{RequestTimeout: "2s"},
		Fetch:    &FetchConfig{Timeout: "750ms", Concurrency: 2, ValidateSchema: true},
		Theme:    &ThemeConfig{Default: "light"},
		Database: &DatabaseConfig{},
	}
	assert.Equal(t, 2*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 750*time.Millisecond, cfg.GetFetchTimeout())
	assert.Equal(t, 2, cfg.GetFetchConcurrency())
	assert.True(t, cfg.GetValidateSchema())
	assert.Equal(t, theme.Light, cfg.GetDefaultTheme())
	assert.Equal(t, SourceTypeDatabase, cfg.GetSourceType())
}

func TestDatabaseConfigGetPassword(t *testing.T) {
	passwordFile := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("  s3cret\n"), 0600))

	t.Run("file wins over env", func(t *testing.T) {
		t.Setenv(PasswordEnvVar, "from-env")
		got, err := (&DatabaseConfig{PasswordFile: passwordFile}).GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(PasswordEnvVar, "from-env")
		got, err := (&DatabaseConfig{}).GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-env", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := (&DatabaseConfig{PasswordFile: passwordFile + ".missing"}).GetPassword()
		require.ErrorContains(t, err, "failed to read password from file")
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(PasswordEnvVar, "")
		_, err := (&DatabaseConfig{}).GetPassword()
		require.ErrorContains(t, err, PasswordEnvVar)
	})
}

func TestDatabaseConfigGetConnectionString(t *testing.T) {
	t.Setenv(PasswordEnvVar, "p@ss:w/rd")

	got, err := (&DatabaseConfig{Host: "db", Port: 5432, User: "chadcn", Database: "catalog"}).GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://chadcn:p%40ss%3Aw%2Frd@db:5432/catalog?sslmode=require", got)

	got, err = (&DatabaseConfig{Host: "db", Port: 5433, User: "u", Database: "d", SSLMode: "disable"}).GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@db:5433/d?sslmode=disable", got)
}
