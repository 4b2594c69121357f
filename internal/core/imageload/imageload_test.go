package imageload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewfeed/internal/core/imagecache"
	"github.com/hay-kot/reviewfeed/internal/core/review"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeTransport serves canned responses and counts requests per reference.
type fakeTransport struct {
	mu      sync.Mutex
	data    map[string][]byte
	errs    map[string]error
	calls   map[string]int
	gate    chan struct{} // when set, Get blocks until closed
	started chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		data:  map[string][]byte{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeTransport) Get(ctx context.Context, ref string) ([]byte, error) {
	f.mu.Lock()
	f.calls[ref]++
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[ref]; ok {
		return nil, err
	}
	return f.data[ref], nil
}

func (f *fakeTransport) count(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ref]
}

func TestFetcher_Fetch(t *testing.T) {
	tr := newFakeTransport()
	tr.data["ok"] = pngBytes(t, color.White)
	tr.data["empty"] = nil
	tr.data["garbage"] = []byte("not an image")
	tr.errs["down"] = errors.New("connection refused")

	f := NewFetcher(tr, imagecache.New(10, 1<<20), time.Second, zerolog.Nop())
	ctx := context.Background()

	img, err := f.Fetch(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, err = f.Fetch(ctx, "empty")
	assert.ErrorIs(t, err, review.ErrNoData)
	assert.Equal(t, "no_data", Kind(err))

	_, err = f.Fetch(ctx, "garbage")
	assert.ErrorIs(t, err, review.ErrDecode)
	assert.Equal(t, "decode", Kind(err))

	_, err = f.Fetch(ctx, "down")
	var netErr *review.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "down", netErr.URL)
	assert.Equal(t, "network", Kind(err))
}

func TestFetcher_UsesCache(t *testing.T) {
	tr := newFakeTransport()
	tr.data["ok"] = pngBytes(t, color.Black)
	cache := imagecache.New(10, 1<<20)
	f := NewFetcher(tr, cache, time.Second, zerolog.Nop())

	first, err := f.Fetch(context.Background(), "ok")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "ok")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, tr.count("ok"))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int64(len(tr.data["ok"])), cache.Bytes())
}

func TestFetcher_FailuresNotCached(t *testing.T) {
	tr := newFakeTransport()
	tr.errs["down"] = errors.New("boom")
	cache := imagecache.New(10, 1<<20)
	f := NewFetcher(tr, cache, time.Second, zerolog.Nop())

	_, err := f.Fetch(context.Background(), "down")
	require.Error(t, err)
	_, err = f.Fetch(context.Background(), "down")
	require.Error(t, err)

	assert.Equal(t, 2, tr.count("down"), "failed fetches are not retried automatically but are not cached either")
	assert.Zero(t, cache.Len())
}

func TestFetcher_ConcurrentSameURLLeavesOneEntry(t *testing.T) {
	tr := newFakeTransport()
	tr.data["ok"] = pngBytes(t, color.White)
	tr.gate = make(chan struct{})
	tr.started = make(chan struct{}, 1)
	cache := imagecache.New(10, 1<<20)
	f := NewFetcher(tr, cache, time.Second, zerolog.Nop())

	var (
		wg      sync.WaitGroup
		results [2]image.Image
	)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := f.Fetch(context.Background(), "ok")
			assert.NoError(t, err)
			results[i] = img
		}()
	}

	<-tr.started
	time.Sleep(20 * time.Millisecond) // let the second caller join the in-flight request
	close(tr.gate)
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
	assert.NotNil(t, results[0])
	assert.NotNil(t, results[1])
}

func TestFetcher_Timeout(t *testing.T) {
	tr := newFakeTransport()
	tr.gate = make(chan struct{}) // never closed
	f := NewFetcher(tr, imagecache.New(10, 1<<20), 10*time.Millisecond, zerolog.Nop())

	_, err := f.Fetch(context.Background(), "slow")

	assert.True(t, review.IsNetworkError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// fakeFetcher resolves references from a map and records how often each
// reference was requested.
type fakeFetcher struct {
	images map[string]image.Image
	delay  map[string]time.Duration
	calls  atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string) (image.Image, error) {
	f.calls.Add(1)
	if d := f.delay[ref]; d > 0 {
		time.Sleep(d)
	}
	if img, ok := f.images[ref]; ok {
		return img, nil
	}
	return nil, &review.NetworkError{URL: ref, Err: errors.New("not found")}
}

func TestAggregator_AvatarFailsOnePhotoFails(t *testing.T) {
	good := image.NewRGBA(image.Rect(0, 0, 2, 2))
	f := &fakeFetcher{images: map[string]image.Image{"p1": good}}
	a := NewAggregator(f, 2, zerolog.Nop())

	for range 5 {
		got := a.Load(context.Background(), Request{AvatarURL: "avatar", PhotoURLs: []string{"p1", "p2"}})

		assert.Same(t, a.AvatarPlaceholder(), got.Avatar)
		require.Len(t, got.Photos, 1, "failed photos are dropped")
		assert.Same(t, good, got.Photos[0])
		require.Len(t, got.Failures, 2)
		assert.Equal(t, "avatar", got.Failures[0].URL)
		assert.Equal(t, "p2", got.Failures[1].URL)
	}
	assert.Equal(t, int32(15), f.calls.Load())
}

func TestAggregator_NoAvatarNoPhotos(t *testing.T) {
	f := &fakeFetcher{}
	a := NewAggregator(f, 0, zerolog.Nop())

	got := a.Load(context.Background(), Request{})

	assert.Same(t, a.AvatarPlaceholder(), got.Avatar)
	assert.Nil(t, got.Photos)
	assert.Empty(t, got.Failures)
	assert.Zero(t, f.calls.Load())
	assert.Equal(t, image.Rect(0, 0, 36, 36), got.Avatar.Bounds())
}

func TestAggregator_PhotosKeepRequestOrder(t *testing.T) {
	p1 := image.NewRGBA(image.Rect(0, 0, 1, 1))
	p2 := image.NewRGBA(image.Rect(0, 0, 2, 2))
	p3 := image.NewRGBA(image.Rect(0, 0, 3, 3))
	f := &fakeFetcher{
		images: map[string]image.Image{"a": p1, "b": p2, "c": p3, "avatar": p1},
		delay:  map[string]time.Duration{"a": 30 * time.Millisecond, "b": 10 * time.Millisecond},
	}
	a := NewAggregator(f, 4, zerolog.Nop())

	got := a.Load(context.Background(), Request{AvatarURL: "avatar", PhotoURLs: []string{"a", "b", "c"}})

	assert.Same(t, p1, got.Avatar)
	require.Len(t, got.Photos, 3)
	assert.Same(t, p1, got.Photos[0])
	assert.Same(t, p2, got.Photos[1])
	assert.Same(t, p3, got.Photos[2])
}

func TestAggregator_LoadAllKeepsReviewOrder(t *testing.T) {
	slow := image.NewRGBA(image.Rect(0, 0, 1, 1))
	fast := image.NewRGBA(image.Rect(0, 0, 2, 2))
	f := &fakeFetcher{
		images: map[string]image.Image{"slow": slow, "fast": fast},
		delay:  map[string]time.Duration{"slow": 40 * time.Millisecond},
	}
	a := NewAggregator(f, 4, zerolog.Nop())

	got := a.LoadAll(context.Background(), []Request{
		{AvatarURL: "slow"},
		{AvatarURL: "fast"},
		{},
	})

	require.Len(t, got, 3)
	assert.Same(t, slow, got[0].Avatar)
	assert.Same(t, fast, got[1].Avatar)
	assert.Same(t, a.AvatarPlaceholder(), got[2].Avatar)
}

func TestHTTPTransport(t *testing.T) {
	body := pngBytes(t, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tr := NewHTTPTransport(time.Second)

	data, err := tr.Get(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, body, data)

	_, err = tr.Get(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

func TestMuxTransport(t *testing.T) {
	tr := newFakeTransport()
	tr.data["s3://bucket/a.png"] = []byte("s3")
	mux := NewMuxTransport()
	mux.Handle(tr, "s3")

	data, err := mux.Get(context.Background(), "s3://bucket/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3"), data)

	_, err = mux.Get(context.Background(), "ftp://host/a.png")
	assert.ErrorContains(t, err, "no transport")
}

func TestParseS3Ref(t *testing.T) {
	tests := []struct {
		ref     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://photos/reviews/1.jpg", "photos", "reviews/1.jpg", false},
		{"s3://photos/", "", "", true},
		{"https://photos/1.jpg", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, err := ParseS3Ref(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
