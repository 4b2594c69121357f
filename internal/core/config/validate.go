package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/reviewfeed/internal/core/styles"
)

// Validate checks that the configuration is structurally valid. It does not
// touch the network or the file system.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateSource(),
		c.validateImages(),
		c.validateLayout(),
		criterio.Run("prefetch.screens", c.Prefetch.Screens, positive[float64]),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
	)
}

// ValidateDeep runs Validate and then checks that referenced files exist.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Source.File == "" {
		return nil
	}
	return criterio.Run("source.file", c.Source.File, fileExists)
}

// RequireSource returns an error when no review source is configured.
func (c *Config) RequireSource() error {
	if c.Source.URL == "" && c.Source.File == "" {
		return criterio.NewFieldErrors("source", fmt.Errorf("set source.url or source.file"))
	}
	return nil
}

func (c *Config) validateSource() error {
	var errs criterio.FieldErrorsBuilder

	if c.Source.URL != "" && c.Source.File != "" {
		errs = errs.Append("source", fmt.Errorf("url and file are mutually exclusive"))
	}
	if c.Source.URL != "" {
		if err := httpURL(c.Source.URL); err != nil {
			errs = errs.Append("source.url", err)
		}
	}
	if err := positive(c.Source.PageSize); err != nil {
		errs = errs.Append("source.page_size", err)
	}
	if c.Source.Timeout < 0 {
		errs = errs.Append("source.timeout", fmt.Errorf("must not be negative"))
	}

	return errs.ToError()
}

func (c *Config) validateImages() error {
	var errs criterio.FieldErrorsBuilder

	if c.Images.Timeout < 0 {
		errs = errs.Append("images.timeout", fmt.Errorf("must not be negative"))
	}
	if err := positive(c.Images.Concurrency); err != nil {
		errs = errs.Append("images.concurrency", err)
	}
	if err := positive(c.Images.CacheCount); err != nil {
		errs = errs.Append("images.cache_count", err)
	}
	if err := positive(c.Images.CacheBytes); err != nil {
		errs = errs.Append("images.cache_bytes", err)
	}
	if c.Images.S3.Enabled() && (c.Images.S3.AccessKey == "" || c.Images.S3.SecretKey == "") {
		errs = errs.Append("images.s3", fmt.Errorf("access_key and secret_key are required with an endpoint"))
	}

	return errs.ToError()
}

func (c *Config) validateLayout() error {
	var errs criterio.FieldErrorsBuilder

	if err := positive(c.Layout.Width); err != nil {
		errs = errs.Append("layout.width", err)
	}
	if err := positive(c.Layout.Advance); err != nil {
		errs = errs.Append("layout.advance", err)
	}
	if err := positive(c.Layout.LineHeight); err != nil {
		errs = errs.Append("layout.line_height", err)
	}

	return errs.ToError()
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func positive[T int | int64 | float64](v T) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func httpURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
