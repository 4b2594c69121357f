package feed

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/hay-kot/reviewfeed/internal/core/imageload"
	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/review"
)

// Kind discriminates the variants of Item.
type Kind int

const (
	KindReview Kind = iota + 1
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindReview:
		return "review"
	case KindCount:
		return "count"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Item is a row of the review list. The set of variants is closed:
// ReviewRow and CountRow are the only implementations.
type Item interface {
	Kind() Kind
	item()
}

// ReviewRow is a single review with its resolved images.
type ReviewRow struct {
	ID       uuid.UUID
	Text     string
	Created  string
	Username string
	Rating   int
	// MaxLines caps the visible text lines; 0 means unlimited.
	MaxLines int
	Avatar   image.Image
	Photos   []image.Image
}

func (ReviewRow) Kind() Kind { return KindReview }
func (ReviewRow) item()      {}

// Expanded reports whether the row shows its full text.
func (r ReviewRow) Expanded() bool { return r.MaxLines == 0 }

// Cell returns the layout input for the row.
func (r ReviewRow) Cell() layout.Cell {
	return layout.Cell{
		Username:   r.Username,
		Text:       r.Text,
		Created:    r.Created,
		Rating:     r.Rating,
		PhotoCount: len(r.Photos),
		MaxLines:   r.MaxLines,
	}
}

// CountRow trails the list and reports how many reviews it holds.
type CountRow struct {
	ReviewCount int
}

func (CountRow) Kind() Kind { return KindCount }
func (CountRow) item()      {}

// Label renders the count for display.
func (c CountRow) Label() string {
	if c.ReviewCount == 1 {
		return "1 review"
	}
	return fmt.Sprintf("%d reviews", c.ReviewCount)
}

func newReviewRow(r review.Review, imgs imageload.Images) ReviewRow {
	return ReviewRow{
		ID:       uuid.New(),
		Text:     r.Text,
		Created:  r.Created,
		Username: r.Username(),
		Rating:   r.Rating,
		MaxLines: layout.DefaultMaxLines,
		Avatar:   imgs.Avatar,
		Photos:   imgs.Photos,
	}
}

// Height returns the row height for the given width.
func Height(e layout.Engine, it Item, width float64) float64 {
	switch v := it.(type) {
	case ReviewRow:
		return e.Review(v.Cell(), width).Height
	case CountRow:
		return layout.CountRowHeight
	default:
		return 0
	}
}
