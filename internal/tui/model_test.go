package tui

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
	"github.com/hay-kot/reviewfeed/pkg/tuitest"
)

type fakeStore struct {
	mu        sync.Mutex
	state     feed.State
	subs      []feed.Subscriber
	loads     int
	refreshes int
	expanded  []uuid.UUID
	expandErr error
}

func (f *fakeStore) Subscribe(fn feed.Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *fakeStore) Snapshot() feed.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStore) LoadNextPage(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
}

func (f *fakeStore) Refresh(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeStore) Expand(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expanded = append(f.expanded, id)
	return f.expandErr
}

func newTestModel(store *fakeStore) Model {
	text := textmetrics.NewMonospace(8, 20)
	return New(context.Background(), store, Options{
		Layout: layout.New(text),
		Text:   text,
		Log:    zerolog.Nop(),
	})
}

func rows(n int) []feed.Item {
	items := make([]feed.Item, 0, n+1)
	for i := range n {
		items = append(items, feed.ReviewRow{
			ID:       uuid.New(),
			Text:     strings.Repeat("lorem ipsum ", 30),
			Created:  "1 Jan 2025",
			Username: "User " + string(rune('A'+i)),
			Rating:   4,
			MaxLines: layout.DefaultMaxLines,
		})
	}
	return append(items, feed.CountRow{ReviewCount: n})
}

func loaded(n int, version uint64) feed.State {
	return feed.State{
		Items:      rows(n),
		Offset:     n,
		Limit:      20,
		ShouldLoad: false,
		Version:    version,
	}
}

func TestModel_SubscribesOnNew(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	_ = newTestModel(store)

	assert.Len(t, store.subs, 1)
}

func TestModel_InitialLoadShowsSpinner(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	st := feed.NewState(20)
	st.IsLoading = true
	st.ShouldLoad = false
	st.Version = 1

	m = tuitest.Update(m, tuitest.WindowSize(60, 20), stateMsg(st))

	assert.Contains(t, tuitest.StripANSI(m.View()), "Loading reviews")
}

func TestModel_RendersRows(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	m = tuitest.Update(m, tuitest.WindowSize(60, 60), stateMsg(loaded(2, 1)))
	view := tuitest.StripANSI(m.View())

	assert.Contains(t, view, "User A")
	assert.Contains(t, view, "★★★★☆")
	assert.Contains(t, view, layout.ShowMoreText)
	assert.Contains(t, view, "1 Jan 2025")
	assert.Contains(t, view, "2 reviews")
}

func TestModel_IgnoresStaleSnapshots(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	m = tuitest.Update(m, tuitest.WindowSize(60, 40), stateMsg(loaded(3, 5)), stateMsg(loaded(1, 2)))

	assert.Equal(t, uint64(5), m.State().Version)
	assert.Len(t, m.State().Reviews(), 3)
}

func TestModel_Navigation(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)
	m = tuitest.Update(m, tuitest.WindowSize(60, 30), stateMsg(loaded(3, 1)))

	m = tuitest.Update(m, tuitest.KeyDown(), tuitest.KeyDown())
	assert.Equal(t, 2, m.Selected())

	m = tuitest.Update(m, tuitest.KeyPress('G'))
	assert.Equal(t, 3, m.Selected(), "count row is selectable")

	m = tuitest.Update(m, tuitest.KeyDown())
	assert.Equal(t, 3, m.Selected(), "selection stops at the last item")

	m = tuitest.Update(m, tuitest.KeyPress('g'), tuitest.KeyUp())
	assert.Equal(t, 0, m.Selected())
}

func TestModel_ExpandSelected(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	st := loaded(2, 1)
	m = tuitest.Update(m, tuitest.WindowSize(60, 30), stateMsg(st), tuitest.KeyDown(), tuitest.KeyPress('e'))

	require.Len(t, store.expanded, 1)
	assert.Equal(t, st.Items[1].(feed.ReviewRow).ID, store.expanded[0])

	// The count row cannot be expanded.
	m = tuitest.Update(m, tuitest.KeyDown(), tuitest.KeyEnter())
	assert.Len(t, store.expanded, 1)
}

func TestModel_ExpandUnknownShowsStatus(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20), expandErr: feed.ErrNotFound}
	m := newTestModel(store)

	m = tuitest.Update(m, tuitest.WindowSize(80, 30), stateMsg(loaded(1, 1)), tuitest.KeyPress('e'))

	assert.Contains(t, tuitest.StripANSI(m.View()), "review no longer in the list")
}

func TestModel_Refresh(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)
	m = tuitest.Update(m, tuitest.WindowSize(60, 30), stateMsg(loaded(3, 1)), tuitest.KeyDown())

	next, cmd := m.Update(tuitest.KeyPress('r'))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, 0, next.(Model).Selected())
	assert.Equal(t, 1, store.refreshes)
}

func TestModel_Prefetch(t *testing.T) {
	tests := []struct {
		name  string
		state feed.State
		want  bool
	}{
		{"short list with more pages", func() feed.State { s := loaded(1, 1); s.ShouldLoad = true; return s }(), true},
		{"all pages loaded", loaded(1, 1), false},
		{"page in flight", func() feed.State { s := loaded(1, 1); s.ShouldLoad = true; s.IsLoading = true; return s }(), false},
		{"long list far from the end", func() feed.State { s := loaded(40, 1); s.ShouldLoad = true; return s }(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{state: feed.NewState(20)}
			m := newTestModel(store)
			m = tuitest.Update(m, tuitest.WindowSize(60, 22), stateMsg(tt.state))

			cmd := m.prefetch()
			if !tt.want {
				assert.Nil(t, cmd)
				return
			}

			require.NotNil(t, cmd)
			cmd()
			assert.Equal(t, 1, store.loads)
		})
	}
}

func TestModel_FailedFirstPage(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	st := feed.NewState(20)
	st.LastError = errors.New("connection refused")
	st.Version = 2

	m = tuitest.Update(m, tuitest.WindowSize(80, 20), stateMsg(st))

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, "press r to try again")
}

func TestModel_FailedLaterPageKeepsRows(t *testing.T) {
	store := &fakeStore{state: feed.NewState(20)}
	m := newTestModel(store)

	st := loaded(1, 3)
	st.ShouldLoad = true
	st.LastError = errors.New("timeout")

	m = tuitest.Update(m, tuitest.WindowSize(80, 20), stateMsg(st))

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "User A")
	assert.Contains(t, view, "page failed, scroll to retry")
}

func TestStateSub_KeepsNewest(t *testing.T) {
	sub := newStateSub()
	for v := range uint64(3) {
		sub.push(feed.State{Version: v + 1})
	}

	msg := sub.wait(context.Background())()
	assert.Equal(t, uint64(3), feed.State(msg.(stateMsg)).Version)
}

func TestStateSub_WaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, newStateSub().wait(ctx)())
}

func TestRenderer_PhotosAndAvatar(t *testing.T) {
	text := textmetrics.NewMonospace(8, 20)
	r := newRenderer(layout.New(text), text)

	photo := image.NewRGBA(image.Rect(0, 0, 4, 4))
	row := feed.ReviewRow{
		ID:       uuid.New(),
		Text:     "short",
		Created:  "today",
		Username: "Ana",
		Rating:   5,
		MaxLines: layout.DefaultMaxLines,
		Photos:   []image.Image{photo, photo},
	}

	lines := r.item(row, 60, true)
	out := tuitest.StripANSI(strings.Join(lines, "\n"))

	assert.True(t, strings.HasPrefix(out, "▌"), "selected rows carry the cursor bar")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "★★★★★")
	assert.Contains(t, out, "███████ ███████", "two thumbnails")
	assert.NotContains(t, out, layout.ShowMoreText)
}

func TestRenderer_CountRow(t *testing.T) {
	text := textmetrics.NewMonospace(8, 20)
	r := newRenderer(layout.New(text), text)

	lines := r.item(feed.CountRow{ReviewCount: 1}, 40, false)
	require.Len(t, lines, 2)
	assert.Contains(t, tuitest.StripANSI(strings.Join(lines, "\n")), "1 review")
}
