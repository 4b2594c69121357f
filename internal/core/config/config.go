// Package config handles configuration loading and validation for reviewfeed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/core/imagecache"
	"github.com/hay-kot/reviewfeed/internal/core/imageload"
	"github.com/hay-kot/reviewfeed/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Images   ImagesConfig   `yaml:"images"`
	Layout   LayoutConfig   `yaml:"layout"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
	TUI      TUIConfig      `yaml:"tui"`
}

// SourceConfig selects where review pages come from. Exactly one of URL and
// File must be set.
type SourceConfig struct {
	URL      string        `yaml:"url"`       // reviews endpoint, queried with offset/limit
	File     string        `yaml:"file"`      // local JSON file with a full page payload
	PageSize int           `yaml:"page_size"` // reviews per page
	Timeout  time.Duration `yaml:"timeout"`   // page request timeout
}

// ImagesConfig tunes image loading.
type ImagesConfig struct {
	Timeout     time.Duration `yaml:"timeout"`     // per-image request timeout
	Concurrency int           `yaml:"concurrency"` // reviews resolving images at once
	CacheCount  int           `yaml:"cache_count"` // max cached images
	CacheBytes  int64         `yaml:"cache_bytes"` // max total encoded bytes cached
	S3          S3Config      `yaml:"s3"`
}

// S3Config enables s3://bucket/key image references when Endpoint is set.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether an S3 endpoint is configured.
func (s S3Config) Enabled() bool {
	return s.Endpoint != ""
}

// LayoutConfig maps layout units onto the terminal grid.
type LayoutConfig struct {
	Width      float64 `yaml:"width"`       // row width in layout units
	Advance    float64 `yaml:"advance"`     // layout units per terminal column
	LineHeight float64 `yaml:"line_height"` // layout units per text line
}

// PrefetchConfig controls when the next page is requested while scrolling.
type PrefetchConfig struct {
	Screens float64 `yaml:"screens"`
}

// TUIConfig controls the terminal presenter.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			PageSize: feed.DefaultLimit,
			Timeout:  10 * time.Second,
		},
		Images: ImagesConfig{
			Timeout:     imageload.DefaultTimeout,
			Concurrency: imageload.DefaultConcurrency,
			CacheCount:  imagecache.DefaultMaxCount,
			CacheBytes:  imagecache.DefaultMaxBytes,
			S3:          S3Config{UseSSL: true},
		},
		Layout: LayoutConfig{
			Width:      375,
			Advance:    8,
			LineHeight: 20,
		},
		Prefetch: PrefetchConfig{
			Screens: feed.PrefetchScreens,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Source.PageSize == 0 {
		c.Source.PageSize = defaults.Source.PageSize
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = defaults.Source.Timeout
	}
	if c.Images.Timeout == 0 {
		c.Images.Timeout = defaults.Images.Timeout
	}
	if c.Images.Concurrency == 0 {
		c.Images.Concurrency = defaults.Images.Concurrency
	}
	if c.Images.CacheCount == 0 {
		c.Images.CacheCount = defaults.Images.CacheCount
	}
	if c.Images.CacheBytes == 0 {
		c.Images.CacheBytes = defaults.Images.CacheBytes
	}
	if c.Layout.Width == 0 {
		c.Layout.Width = defaults.Layout.Width
	}
	if c.Layout.Advance == 0 {
		c.Layout.Advance = defaults.Layout.Advance
	}
	if c.Layout.LineHeight == 0 {
		c.Layout.LineHeight = defaults.Layout.LineHeight
	}
	if c.Prefetch.Screens == 0 {
		c.Prefetch.Screens = defaults.Prefetch.Screens
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}
