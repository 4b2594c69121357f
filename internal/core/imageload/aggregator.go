package imageload

import (
	"context"
	"image"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/reviewfeed/internal/core/layout"
)

// ImageFetcher loads a single image.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// Request lists the images of one review.
type Request struct {
	AvatarURL string // empty when the review has no avatar
	PhotoURLs []string
}

// Failure records an image that could not be loaded.
type Failure struct {
	URL string
	Err error
}

// Images is the joined outcome of a Request. Avatar is never nil. Photos
// holds the successfully loaded photos in request order; failed photos are
// dropped, and Photos is nil when none loaded.
type Images struct {
	Avatar   image.Image
	Photos   []image.Image
	Failures []Failure
}

// DefaultConcurrency bounds how many reviews load their images at once.
const DefaultConcurrency = 8

// Aggregator fans out the image fetches of reviews and joins them.
type Aggregator struct {
	fetcher     ImageFetcher
	placeholder image.Image
	concurrency int
	log         zerolog.Logger
}

// NewAggregator creates an aggregator. A non-positive concurrency uses
// DefaultConcurrency.
func NewAggregator(f ImageFetcher, concurrency int, log zerolog.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{
		fetcher:     f,
		placeholder: Placeholder(int(layout.AvatarSize), int(layout.AvatarSize)),
		concurrency: concurrency,
		log:         log,
	}
}

// AvatarPlaceholder returns the image used for missing or failed avatars.
func (a *Aggregator) AvatarPlaceholder() image.Image {
	return a.placeholder
}

// Load fetches every image of req concurrently and returns once all of them
// have resolved. It never fails; failures are reported in Images.Failures.
func (a *Aggregator) Load(ctx context.Context, req Request) Images {
	type slot struct {
		img image.Image
		err error
	}

	var (
		g      errgroup.Group
		avatar slot
		photos = make([]slot, len(req.PhotoURLs))
	)

	if req.AvatarURL != "" {
		g.Go(func() error {
			avatar.img, avatar.err = a.fetcher.Fetch(ctx, req.AvatarURL)
			return nil
		})
	}
	for i, ref := range req.PhotoURLs {
		g.Go(func() error {
			photos[i].img, photos[i].err = a.fetcher.Fetch(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	out := Images{Avatar: a.placeholder}

	switch {
	case req.AvatarURL == "":
	case avatar.err != nil:
		out.Failures = append(out.Failures, Failure{URL: req.AvatarURL, Err: avatar.err})
	case avatar.img != nil:
		out.Avatar = avatar.img
	}

	for i, s := range photos {
		if s.err != nil {
			out.Failures = append(out.Failures, Failure{URL: req.PhotoURLs[i], Err: s.err})
			continue
		}
		if s.img != nil {
			out.Photos = append(out.Photos, s.img)
		}
	}

	for _, f := range out.Failures {
		a.log.Debug().Ctx(ctx).Err(f.Err).Str("url", f.URL).Str("kind", Kind(f.Err)).Msg("image load failed")
	}

	return out
}

// LoadAll loads the images of several reviews with bounded cross-review
// concurrency. Result i always belongs to reqs[i].
func (a *Aggregator) LoadAll(ctx context.Context, reqs []Request) []Images {
	out := make([]Images, len(reqs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			out[i] = a.Load(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
