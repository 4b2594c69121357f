package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"url source", func(c *Config) { c.Source.URL = "http://localhost:8080/reviews" }, ""},
		{"file source", func(c *Config) { c.Source.File = "reviews.json" }, ""},
		{"both sources", func(c *Config) { c.Source.URL = "http://a/b"; c.Source.File = "x.json" }, "source"},
		{"bad url scheme", func(c *Config) { c.Source.URL = "ftp://a/b" }, "source.url"},
		{"url without host", func(c *Config) { c.Source.URL = "http:///reviews" }, "source.url"},
		{"zero page size", func(c *Config) { c.Source.PageSize = 0 }, "source.page_size"},
		{"negative image timeout", func(c *Config) { c.Images.Timeout = -1 }, "images.timeout"},
		{"zero concurrency", func(c *Config) { c.Images.Concurrency = 0 }, "images.concurrency"},
		{"zero cache bytes", func(c *Config) { c.Images.CacheBytes = 0 }, "images.cache_bytes"},
		{"s3 without keys", func(c *Config) { c.Images.S3.Endpoint = "localhost:9000" }, "images.s3"},
		{"zero width", func(c *Config) { c.Layout.Width = 0 }, "layout.width"},
		{"zero screens", func(c *Config) { c.Prefetch.Screens = 0 }, "prefetch.screens"},
		{"gruvbox theme", func(c *Config) { c.TUI.Theme = "gruvbox" }, ""},
		{"unknown theme", func(c *Config) { c.TUI.Theme = "solarized" }, "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.PageSize = 0
	cfg.Images.CacheCount = -1
	cfg.Layout.Advance = 0

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Len(t, fieldErrs, 3)
}

func TestValidateDeep_SourceFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	cfg := DefaultConfig()
	cfg.Source.File = file
	assert.NoError(t, cfg.ValidateDeep())

	cfg.Source.File = filepath.Join(dir, "missing.json")
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.ValidateDeep(), &fieldErrs)
	assert.Equal(t, "source.file", fieldErrs[0].Field)

	cfg.Source.File = dir
	assert.ErrorContains(t, cfg.ValidateDeep(), "is a directory")
}

func TestRequireSource(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireSource())

	cfg.Source.File = "reviews.json"
	assert.NoError(t, cfg.RequireSource())
}
