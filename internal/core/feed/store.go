// Package feed owns the paginated review list: it loads pages, resolves
// their images, and publishes snapshots of the list to subscribers.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewfeed/internal/core/imageload"
	"github.com/hay-kot/reviewfeed/internal/core/logging"
	"github.com/hay-kot/reviewfeed/internal/core/review"
)

// ErrNotFound is returned by Expand for an unknown row id.
var ErrNotFound = errors.New("review row not found")

// Source provides raw review pages.
type Source interface {
	GetReviews(ctx context.Context, offset, limit int) ([]byte, error)
}

// ImageLoader resolves the images of a page of reviews. Result i must belong
// to request i.
type ImageLoader interface {
	LoadAll(ctx context.Context, reqs []imageload.Request) []imageload.Images
}

// Store is the review list state machine. All state changes happen under
// one mutex, and snapshots reach subscribers in the order the changes were
// made.
type Store struct {
	source Source
	images ImageLoader
	log    zerolog.Logger

	mu         sync.Mutex
	state      State
	index      map[uuid.UUID]int // row id -> position in state.Items
	generation uint64            // bumped by Refresh; stale loads are discarded

	inflight sync.WaitGroup
	events   dispatcher
}

// New creates a store that loads limit reviews per page.
func New(source Source, images ImageLoader, limit int, log zerolog.Logger) *Store {
	return &Store{
		source: source,
		images: images,
		log:    log,
		state:  NewState(limit),
		index:  make(map[uuid.UUID]int),
	}
}

// Subscribe registers fn for every future snapshot.
func (s *Store) Subscribe(fn Subscriber) {
	s.events.subscribe(fn)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Wait blocks until no page load is in flight.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// LoadNextPage starts loading the next page. It does nothing while a page is
// loading or after the last page has been loaded. The page is fetched and its
// images resolved in the background; subscribers see a loading snapshot
// immediately and a final snapshot when the page is applied or fails.
func (s *Store) LoadNextPage(ctx context.Context) {
	s.mu.Lock()
	if !s.state.ShouldLoad || s.state.IsLoading {
		s.mu.Unlock()
		return
	}

	s.state.ShouldLoad = false
	s.state.IsLoading = true
	gen, offset, limit := s.generation, s.state.Offset, s.state.Limit
	s.inflight.Add(1)
	s.emitLocked()
	s.mu.Unlock()

	s.events.drain()

	ctx = logging.WithPageOffset(ctx, offset)
	s.log.Debug().Ctx(ctx).Int("limit", limit).Msg("loading page")
	go s.load(ctx, gen, offset, limit)
}

// Refresh clears the list and loads the first page again. A load that is in
// flight when Refresh is called is discarded when it completes.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.state.Items = nil
	s.state.Offset = 0
	s.state.ShouldLoad = true
	s.state.IsLoading = false
	s.state.LastError = nil
	s.index = make(map[uuid.UUID]int)
	s.mu.Unlock()

	s.log.Debug().Msg("refresh")
	s.LoadNextPage(ctx)
}

// Expand lifts the line limit of the row with the given id. Expanding an
// already expanded row still publishes a snapshot. Unknown ids return
// ErrNotFound and leave the state untouched.
func (s *Store) Expand(id uuid.UUID) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}

	row := s.state.Items[i].(ReviewRow)
	row.MaxLines = 0
	s.state.Items[i] = row
	s.emitLocked()
	s.mu.Unlock()

	s.events.drain()
	return nil
}

type pageResult struct {
	page review.Page
	rows []ReviewRow
	err  error
}

func (s *Store) load(ctx context.Context, gen uint64, offset, limit int) {
	defer s.inflight.Done()
	s.apply(gen, limit, s.fetch(ctx, offset, limit))
}

func (s *Store) fetch(ctx context.Context, offset, limit int) pageResult {
	data, err := s.source.GetReviews(ctx, offset, limit)
	if err != nil {
		return pageResult{err: err}
	}

	page, err := review.Decode(data)
	if err != nil {
		return pageResult{err: err}
	}

	reqs := make([]imageload.Request, len(page.Items))
	for i, r := range page.Items {
		avatar, _ := r.AvatarURL()
		reqs[i] = imageload.Request{AvatarURL: avatar, PhotoURLs: r.PhotoURLs()}
	}
	imgs := s.images.LoadAll(ctx, reqs)

	rows := make([]ReviewRow, len(page.Items))
	for i, r := range page.Items {
		rows[i] = newReviewRow(r, imgs[i])
	}

	return pageResult{page: page, rows: rows}
}

func (s *Store) apply(gen uint64, limit int, res pageResult) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug().Uint64("generation", gen).Msg("discarding stale page")
		return
	}

	if res.err != nil {
		s.state.ShouldLoad = true
		s.state.IsLoading = false
		s.state.LastError = res.err
		offset := s.state.Offset
		s.emitLocked()
		s.mu.Unlock()

		s.log.Warn().Err(res.err).Int("offset", offset).Msg("page load failed")
		s.events.drain()
		return
	}

	items := s.state.Items
	if n := len(items); n > 0 && items[n-1].Kind() == KindCount {
		items = items[:n-1]
	}
	for _, row := range res.rows {
		s.index[row.ID] = len(items)
		items = append(items, row)
	}
	items = append(items, CountRow{ReviewCount: len(s.index)})

	s.state.Items = items
	s.state.Offset += limit
	s.state.ShouldLoad = s.state.Offset < res.page.Count
	s.state.IsLoading = false
	s.state.IsInitialLoad = false
	s.state.LastError = nil
	offset, more := s.state.Offset, s.state.ShouldLoad
	s.emitLocked()
	s.mu.Unlock()

	s.log.Debug().
		Int("rows", len(res.rows)).
		Int("offset", offset).
		Int("total", res.page.Count).
		Bool("more", more).
		Msg("page applied")
	s.events.drain()
}

// emitLocked queues a snapshot of the current state. Callers hold s.mu and
// must call s.events.drain after releasing it.
func (s *Store) emitLocked() {
	s.state.Version++
	s.events.enqueue(s.state.clone())
}
