// Package tui implements the Bubble Tea review list screen.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/styles"
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
)

// Store is the part of feed.Store the screen drives.
type Store interface {
	Subscribe(fn feed.Subscriber)
	Snapshot() feed.State
	LoadNextPage(ctx context.Context)
	Refresh(ctx context.Context)
	Expand(id uuid.UUID) error
}

// Options configures the screen.
type Options struct {
	Title  string
	Layout layout.Engine
	Text   textmetrics.Monospace
	// PrefetchScreens overrides feed.PrefetchScreens when positive.
	PrefetchScreens float64
	Log             zerolog.Logger
}

// chromeLines is the number of lines taken by the title and footer.
const chromeLines = 2

// Model is the review list screen.
type Model struct {
	ctx   context.Context
	store Store
	sub   *stateSub
	opts  Options
	rend  renderer

	state    feed.State
	selected int
	// starts[i] is the first content line of item i; starts[len] is the total.
	starts []int

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	width, height int
	ready         bool
	status        string
}

// New creates the screen and subscribes it to store. The context bounds
// page loads started from the screen.
func New(ctx context.Context, store Store, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Reviews"
	}
	if opts.PrefetchScreens <= 0 {
		opts.PrefetchScreens = feed.PrefetchScreens
	}

	sub := newStateSub()
	store.Subscribe(sub.push)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ShowMoreStyle

	return Model{
		ctx:     ctx,
		store:   store,
		sub:     sub,
		opts:    opts,
		rend:    newRenderer(opts.Layout, opts.Text),
		state:   store.Snapshot(),
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
}

// State returns the snapshot the screen currently shows.
func (m Model) State() feed.State {
	return m.state
}

// Selected returns the index of the selected item.
func (m Model) Selected() int {
	return m.selected
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.sub.wait(m.ctx),
		m.loadNextPage(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-chromeLines))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-chromeLines)
		}
		m = m.render()
		return m, m.prefetch()

	case stateMsg:
		st := feed.State(msg)
		cmds := []tea.Cmd{m.sub.wait(m.ctx)}
		if st.Version < m.state.Version {
			return m, tea.Batch(cmds...)
		}
		m.state = st
		m.selected = min(m.selected, max(0, len(st.Items)-1))
		m = m.render()
		// A failed page is retried on the next scroll, not automatically.
		if st.LastError != nil {
			return m, tea.Batch(cmds...)
		}
		return m, tea.Batch(append(cmds, m.prefetch())...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.prefetch())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m = m.selectItem(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		m = m.selectItem(m.selected + 1)
	case key.Matches(msg, m.keys.Top):
		m = m.selectItem(0)
	case key.Matches(msg, m.keys.Bottom):
		m = m.selectItem(len(m.state.Items) - 1)
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
		m = m.selectItem(m.itemAt(m.viewport.YOffset))
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		m = m.selectItem(m.itemAt(m.viewport.YOffset))
	case key.Matches(msg, m.keys.Expand):
		return m.expandSelected()
	case key.Matches(msg, m.keys.Refresh):
		m.selected = 0
		m.viewport.GotoTop()
		return m, m.refresh()
	default:
		return m, nil
	}

	return m, m.prefetch()
}

func (m Model) expandSelected() (tea.Model, tea.Cmd) {
	if m.selected >= len(m.state.Items) {
		return m, nil
	}
	row, ok := m.state.Items[m.selected].(feed.ReviewRow)
	if !ok {
		return m, nil
	}

	if err := m.store.Expand(row.ID); err != nil {
		if !errors.Is(err, feed.ErrNotFound) {
			m.opts.Log.Error().Err(err).Msg("expand review")
		}
		m.status = "review no longer in the list"
	}
	return m, nil
}

func (m Model) selectItem(i int) Model {
	if len(m.state.Items) == 0 {
		m.selected = 0
		return m
	}
	i = min(max(i, 0), len(m.state.Items)-1)
	if i == m.selected {
		return m
	}
	m.selected = i
	m = m.render()
	if i+1 >= len(m.starts) {
		return m
	}

	// Keep the selected item in view.
	top, bottom := m.starts[i], m.starts[i+1]
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(max(top, bottom-m.viewport.Height))
	}
	return m
}

// itemAt returns the index of the item covering content line y.
func (m Model) itemAt(y int) int {
	for i := len(m.starts) - 2; i >= 0; i-- {
		if m.starts[i] <= y {
			return i
		}
	}
	return 0
}

// render rebuilds the viewport content from the current state.
func (m Model) render() Model {
	if !m.ready {
		return m
	}

	var lines []string
	starts := make([]int, 0, len(m.state.Items)+1)
	for i, it := range m.state.Items {
		starts = append(starts, len(lines))
		lines = append(lines, m.rend.item(it, m.width, i == m.selected)...)
	}
	starts = append(starts, len(lines))

	m.starts = starts
	m.viewport.SetContent(strings.Join(lines, "\n"))
	return m
}

// prefetch requests the next page when the remaining content below the
// viewport is short enough.
func (m Model) prefetch() tea.Cmd {
	if !m.ready || !m.state.ShouldLoad || m.state.IsLoading {
		return nil
	}

	content := float64(m.viewport.TotalLineCount())
	if !feed.ShouldPrefetchWithin(float64(m.viewport.Height), content, float64(m.viewport.YOffset), m.opts.PrefetchScreens) {
		return nil
	}
	return m.loadNextPage()
}

func (m Model) loadNextPage() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		store.LoadNextPage(ctx)
		return nil
	}
}

func (m Model) refresh() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		store.Refresh(ctx)
		return nil
	}
}
