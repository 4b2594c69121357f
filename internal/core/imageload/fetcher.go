// Package imageload fetches, decodes and caches review images, and joins the
// images of a review into a single result.
package imageload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/singleflight"

	"github.com/hay-kot/reviewfeed/internal/core/imagecache"
	"github.com/hay-kot/reviewfeed/internal/core/review"
)

// DefaultTimeout bounds a single image request.
const DefaultTimeout = 10 * time.Second

// Fetcher loads images through a Transport and keeps decoded results in a
// cache. Concurrent fetches of the same reference share one request.
type Fetcher struct {
	transport Transport
	cache     *imagecache.Cache
	timeout   time.Duration
	group     singleflight.Group
	log       zerolog.Logger
}

// NewFetcher creates a fetcher. A non-positive timeout uses DefaultTimeout.
func NewFetcher(t Transport, cache *imagecache.Cache, timeout time.Duration, log zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		transport: t,
		cache:     cache,
		timeout:   timeout,
		log:       log,
	}
}

// Fetch returns the decoded image for ref. Errors are review.ErrNoData,
// an error wrapping review.ErrDecode, or a *review.NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if img, ok := f.cache.Get(ref); ok {
		f.log.Debug().Ctx(ctx).Str("url", ref).Msg("image cache hit")
		return img, nil
	}

	v, err, shared := f.group.Do(ref, func() (any, error) {
		return f.load(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.log.Debug().Ctx(ctx).Str("url", ref).Msg("image request shared")
	}
	return v.(image.Image), nil
}

func (f *Fetcher) load(ctx context.Context, ref string) (image.Image, error) {
	// Another request may have filled the cache while this one waited.
	if img, ok := f.cache.Get(ref); ok {
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	data, err := f.transport.Get(ctx, ref)
	if err != nil {
		return nil, &review.NetworkError{URL: ref, Err: err}
	}
	if len(data) == 0 {
		return nil, review.ErrNoData
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", review.ErrDecode, ref, err)
	}

	f.cache.Put(ref, img, int64(len(data)))
	f.log.Debug().
		Ctx(ctx).
		Str("url", ref).
		Str("format", format).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("image loaded")

	return img, nil
}

// Kind classifies a fetch error for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, review.ErrNoData):
		return "no_data"
	case errors.Is(err, review.ErrDecode):
		return "decode"
	case review.IsNetworkError(err):
		return "network"
	default:
		return "unknown"
	}
}
