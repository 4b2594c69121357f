package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
)

// stateMsg carries a store snapshot into the update loop.
type stateMsg feed.State

// stateSub hands snapshots from the store to the program. Only the newest
// undelivered snapshot is kept; older ones are dropped.
type stateSub struct {
	ch chan feed.State
}

func newStateSub() *stateSub {
	return &stateSub{ch: make(chan feed.State, 1)}
}

// push never blocks. It is called by the store's dispatcher, which delivers
// one snapshot at a time.
func (s *stateSub) push(st feed.State) {
	for {
		select {
		case s.ch <- st:
			return
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}
}

// wait returns a command that delivers the next snapshot.
func (s *stateSub) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-s.ch:
			return stateMsg(st)
		case <-ctx.Done():
			return nil
		}
	}
}
