// Package reviewfeed assembles the review feed from configuration.
package reviewfeed

import (
	"context"
	"fmt"

	"github.com/hay-kot/reviewfeed/internal/core/config"
	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/core/imagecache"
	"github.com/hay-kot/reviewfeed/internal/core/imageload"
	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/logging"
	"github.com/hay-kot/reviewfeed/internal/core/source"
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
)

// App is the central entry point for feed operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	Store  *feed.Store
	Images *imageload.Aggregator
	Cache  *imagecache.Cache
	Layout layout.Engine
	Text   textmetrics.Monospace
}

// NewApp wires a store, image pipeline and layout engine for cfg.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}

	transport, err := NewTransport(cfg.Images)
	if err != nil {
		return nil, err
	}

	src := NewSource(cfg.Source)
	return New(cfg, src, transport), nil
}

// New wires an App around an explicit source and image transport.
func New(cfg *config.Config, src feed.Source, transport imageload.Transport) *App {
	cache := imagecache.New(cfg.Images.CacheCount, cfg.Images.CacheBytes)
	fetcher := imageload.NewFetcher(transport, cache, cfg.Images.Timeout, logging.Component("fetcher"))
	images := imageload.NewAggregator(fetcher, cfg.Images.Concurrency, logging.Component("images"))
	text := textmetrics.NewMonospace(cfg.Layout.Advance, cfg.Layout.LineHeight)

	return &App{
		Config: cfg,
		Store:  feed.New(src, images, cfg.Source.PageSize, logging.Component("feed")),
		Images: images,
		Cache:  cache,
		Layout: layout.New(text),
		Text:   text,
	}
}

// NewSource returns the page source selected by cfg.
func NewSource(cfg config.SourceConfig) feed.Source {
	if cfg.File != "" {
		return source.NewFile(cfg.File)
	}
	return source.NewHTTP(cfg.URL, cfg.Timeout, logging.Component("source"))
}

// NewTransport returns an image transport for http(s) references, plus
// s3:// references when an S3 endpoint is configured.
func NewTransport(cfg config.ImagesConfig) (imageload.Transport, error) {
	mux := imageload.NewMuxTransport()
	mux.Handle(imageload.NewHTTPTransport(cfg.Timeout), "http", "https")

	if cfg.S3.Enabled() {
		s3, err := imageload.NewS3Transport(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("create s3 transport: %w", err)
		}
		mux.Handle(s3, "s3")
	}

	return mux, nil
}

// LoadPages loads pages until the list is complete, a page fails, maxPages
// pages have been requested, or ctx is done. maxPages <= 0 means no limit.
// It returns the final state and the error of a failed page.
func (a *App) LoadPages(ctx context.Context, maxPages int) (feed.State, error) {
	for n := 0; maxPages <= 0 || n < maxPages; n++ {
		if err := ctx.Err(); err != nil {
			return a.Store.Snapshot(), err
		}

		if !a.Store.Snapshot().ShouldLoad {
			break
		}

		a.Store.LoadNextPage(ctx)
		a.Store.Wait()

		if st := a.Store.Snapshot(); st.LastError != nil {
			return st, st.LastError
		}
	}

	return a.Store.Snapshot(), nil
}
