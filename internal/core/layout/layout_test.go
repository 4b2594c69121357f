package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
)

const rowWidth = 375.0

func newEngine() Engine {
	return New(textmetrics.NewMonospace(8, 20))
}

func longText() string {
	return strings.Repeat("The fabric is soft and the fit is true to size. ", 12)
}

func TestReview_ShowMoreWhenTextOverflows(t *testing.T) {
	e := newEngine()
	cell := Cell{Username: "Ada Lovelace", Text: longText(), Created: "13 May", Rating: 5, MaxLines: DefaultMaxLines}

	res := e.Review(cell, rowWidth)

	assert.True(t, res.ShowMoreVisible)
	assert.Equal(t, 20.0*DefaultMaxLines, res.Text.H)
	assert.False(t, res.ShowMore.Empty())
	assert.Equal(t, res.Text.MaxY()+TextToCreatedSpacing, res.ShowMore.Y)
	assert.Equal(t, res.ShowMore.MaxY()+ShowMoreToCreatedSpacing, res.Created.Y)
	assert.Equal(t, res.Created.MaxY()+InsetBottom, res.Height)
}

func TestReview_ExpandedTextHasNoShowMore(t *testing.T) {
	e := newEngine()
	cell := Cell{Username: "Ada Lovelace", Text: longText(), Created: "13 May", Rating: 5, MaxLines: DefaultMaxLines}
	collapsed := e.Review(cell, rowWidth)

	cell.MaxLines = 0
	expanded := e.Review(cell, rowWidth)

	full := e.Measurer().Measure(cell.Text, expanded.Text.W)
	assert.False(t, expanded.ShowMoreVisible)
	assert.True(t, expanded.ShowMore.Empty())
	assert.Equal(t, full.Height, expanded.Text.H)
	assert.Greater(t, expanded.Height, collapsed.Height)
	assert.Equal(t, expanded.Text.MaxY()+TextToCreatedSpacing, expanded.Created.Y)
}

func TestReview_ShortTextFitsWithoutShowMore(t *testing.T) {
	e := newEngine()
	res := e.Review(Cell{Username: "A B", Text: "Nice.", Created: "1 May", MaxLines: DefaultMaxLines}, rowWidth)

	assert.False(t, res.ShowMoreVisible)
	assert.Equal(t, 20.0, res.Text.H)
	assert.Equal(t, 1, e.VisibleLines(res))
}

func TestReview_ExactlyMaxLinesHasNoShowMore(t *testing.T) {
	e := newEngine()
	// column width: 375 - 12 - 36 - 10 - 12 = 305 -> 38 columns
	text := strings.Repeat("x", 38*3)

	res := e.Review(Cell{Text: text, MaxLines: 3}, rowWidth)

	assert.False(t, res.ShowMoreVisible)
	assert.Equal(t, 60.0, res.Text.H)
}

func TestReview_FixedFrames(t *testing.T) {
	e := newEngine()
	res := e.Review(Cell{Username: "Ada", Text: "ok", Created: "now", MaxLines: 3}, rowWidth)

	assert.Equal(t, Rect{X: InsetLeft, Y: InsetTop, W: AvatarSize, H: AvatarSize}, res.Avatar)

	columnX := InsetLeft + AvatarSize + AvatarToColumnSpacing
	assert.Equal(t, columnX, res.Username.X)
	assert.Equal(t, InsetTop, res.Username.Y)
	assert.Equal(t, columnX, res.Rating.X)
	assert.Equal(t, res.Username.MaxY()+UsernameToRatingSpacing, res.Rating.Y)
	assert.Equal(t, RatingWidth, res.Rating.W)
	assert.Equal(t, columnX, res.Text.X)
	assert.Equal(t, rowWidth-columnX-InsetRight, res.Text.W)
	assert.Equal(t, columnX, res.Created.X)
}

func TestReview_Photos(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name    string
		count   int
		width   float64
		wantW   float64
		visible int
	}{
		{"none", 0, rowWidth, 0, 0},
		{"one", 1, rowWidth, PhotoWidth, 1},
		{"three", 3, rowWidth, 3*PhotoWidth + 2*PhotoSpacing, 3},
		{"clipped to column", 10, rowWidth, rowWidth - InsetLeft - AvatarSize - AvatarToColumnSpacing - InsetRight, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Review(Cell{Text: "ok", Created: "now", PhotoCount: tt.count, MaxLines: 3}, tt.width)

			assert.Equal(t, tt.wantW, res.Photos.W)
			assert.Equal(t, tt.visible, VisiblePhotos(res))
			if tt.count == 0 {
				assert.True(t, res.Photos.Empty())
				return
			}
			assert.Equal(t, PhotoHeight, res.Photos.H)
			assert.Equal(t, res.Photos.MaxY()+PhotosToTextSpacing, res.Text.Y)
		})
	}
}

func TestReview_PhotosAddHeight(t *testing.T) {
	e := newEngine()
	base := Cell{Text: "ok", Created: "now", MaxLines: 3}
	withPhotos := base
	withPhotos.PhotoCount = 2

	a := e.Review(base, rowWidth)
	b := e.Review(withPhotos, rowWidth)

	assert.Equal(t, PhotoHeight+PhotosToTextSpacing, b.Height-a.Height)
}

func TestReview_EmptyText(t *testing.T) {
	e := newEngine()
	res := e.Review(Cell{Username: "A", Created: "now", MaxLines: 3}, rowWidth)

	assert.True(t, res.Text.Empty())
	assert.False(t, res.ShowMoreVisible)
	assert.Equal(t, max(res.Avatar.MaxY(), res.Rating.MaxY())+RatingToTextSpacing, res.Created.Y)
}

func TestReview_Deterministic(t *testing.T) {
	e := newEngine()
	cell := Cell{Username: "Ada Lovelace", Text: longText(), Created: "13 May", PhotoCount: 2, MaxLines: 3}

	first := e.Review(cell, rowWidth)
	for range 10 {
		require.Equal(t, first, e.Review(cell, rowWidth))
	}
}
