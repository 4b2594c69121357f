// Package source provides the review page sources the feed store reads from.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewfeed/internal/core/review"
)

// HTTP requests pages from a reviews endpoint as GET <url>?offset=N&limit=M.
type HTTP struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

// NewHTTP creates an HTTP source whose requests time out after timeout.
func NewHTTP(endpoint string, timeout time.Duration, log zerolog.Logger) *HTTP {
	return &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

func (h *HTTP) GetReviews(ctx context.Context, offset, limit int) ([]byte, error) {
	u, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &review.NetworkError{URL: u.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &review.NetworkError{URL: u.String(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &review.NetworkError{URL: u.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) == 0 {
		return nil, review.ErrNoData
	}

	h.log.Debug().
		Ctx(ctx).
		Int("limit", limit).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched page")

	return data, nil
}

// File serves pages cut from a JSON file holding a complete page payload.
// The file is read once, on first use.
type File struct {
	path string

	once sync.Once
	page review.Page
	err  error
}

// NewFile creates a file source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) GetReviews(ctx context.Context, offset, limit int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.load()
	if err != nil {
		return nil, err
	}
	return Slice(page, offset, limit)
}

func (f *File) load() (review.Page, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.err = fmt.Errorf("read reviews file: %w", err)
			return
		}
		f.page, f.err = review.Decode(data)
	})
	return f.page, f.err
}

// Slice encodes the [offset, offset+limit) window of page, keeping the
// page's total count.
func Slice(page review.Page, offset, limit int) ([]byte, error) {
	offset = max(0, offset)
	start := min(offset, len(page.Items))
	end := len(page.Items)
	if limit > 0 {
		end = min(offset+limit, len(page.Items))
	}

	return review.Encode(review.Page{
		Items: page.Items[start:end],
		Count: page.Count,
	})
}
