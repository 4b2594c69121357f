package feed

import "slices"

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 20

// State is a snapshot of the review list.
type State struct {
	Items  []Item
	Offset int
	Limit  int

	ShouldLoad    bool
	IsLoading     bool
	IsInitialLoad bool

	// LastError is the failure of the most recent page load, or nil when
	// the last load succeeded.
	LastError error
	// Version increases with every emitted snapshot.
	Version uint64
}

// NewState returns the initial state for the given page size.
func NewState(limit int) State {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return State{
		Limit:         limit,
		ShouldLoad:    true,
		IsInitialLoad: true,
	}
}

// Phase names the loading state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseDone    Phase = "done"
)

// Phase reports the loading state of the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.LastError != nil:
		return PhaseError
	case !s.ShouldLoad:
		return PhaseDone
	default:
		return PhaseIdle
	}
}

// Reviews returns the review rows in display order.
func (s State) Reviews() []ReviewRow {
	rows := make([]ReviewRow, 0, len(s.Items))
	for _, it := range s.Items {
		if r, ok := it.(ReviewRow); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Count returns the trailing count row, if present.
func (s State) Count() (CountRow, bool) {
	if len(s.Items) == 0 {
		return CountRow{}, false
	}
	c, ok := s.Items[len(s.Items)-1].(CountRow)
	return c, ok
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}
