package tui

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/hay-kot/reviewfeed/internal/core/feed"
	"github.com/hay-kot/reviewfeed/internal/core/layout"
	"github.com/hay-kot/reviewfeed/internal/core/styles"
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
)

// renderer maps layout frames onto terminal cells. One column is Advance
// layout units wide and one line is LineHeight units tall.
type renderer struct {
	engine layout.Engine
	text   textmetrics.Monospace
}

func newRenderer(engine layout.Engine, text textmetrics.Monospace) renderer {
	return renderer{engine: engine, text: text}
}

// unitsWide returns the layout width of cols terminal columns.
func (r renderer) unitsWide(cols int) float64 {
	return float64(cols) * r.text.Advance
}

func (r renderer) cols(units float64) int {
	return max(0, int(math.Round(units/r.text.Advance)))
}

func (r renderer) lines(units float64) int {
	return max(1, int(math.Round(units/r.text.LineHeightUnits)))
}

func (r renderer) lineOf(y float64) int {
	return int(math.Floor(y / r.text.LineHeightUnits))
}

// item renders one list item at cols terminal columns.
func (r renderer) item(it feed.Item, cols int, selected bool) []string {
	switch v := it.(type) {
	case feed.ReviewRow:
		return r.review(v, cols, selected)
	case feed.CountRow:
		return r.count(v, cols)
	default:
		return nil
	}
}

func (r renderer) count(c feed.CountRow, cols int) []string {
	n := r.lines(layout.CountRowHeight)
	out := make([]string, n)
	out[n/2] = lipgloss.PlaceHorizontal(cols, lipgloss.Center, styles.CountStyle.Render(c.Label()))
	return out
}

// review draws the avatar in a left gutter and stacks the column elements
// at the lines their frames start on. Elements that would overlap after
// rounding are pushed down.
func (r renderer) review(row feed.ReviewRow, cols int, selected bool) []string {
	// One column is reserved for the selection bar.
	body := max(1, cols-1)
	res := r.engine.Review(row.Cell(), r.unitsWide(body))

	column := make(map[int]string)
	next := 0
	place := func(frame layout.Rect, content []string) {
		at := max(r.lineOf(frame.Y), next)
		for i, line := range content {
			column[at+i] = line
		}
		next = at + len(content)
	}

	colX := r.cols(res.Username.X)
	colW := max(1, body-colX)

	place(res.Username, []string{styles.UsernameStyle.Render(row.Username)})
	place(res.Rating, []string{stars(row.Rating)})

	if !res.Photos.Empty() {
		place(res.Photos, r.photoStrip(row.Photos, layout.VisiblePhotos(res), r.lines(res.Photos.H)))
	}

	if !res.Text.Empty() {
		text := r.text.Lines(row.Text, res.Text.W)
		if n := r.engine.VisibleLines(res); n < len(text) {
			text = text[:n]
		}
		for i, line := range text {
			text[i] = styles.TextStyle.Render(line)
		}
		place(res.Text, text)
	}

	if res.ShowMoreVisible {
		place(res.ShowMore, []string{styles.ShowMoreStyle.Render(layout.ShowMoreText)})
	}

	place(res.Created, []string{styles.CreatedStyle.Render(row.Created)})

	total := max(next, r.lines(res.Height))

	avatarTop := r.lineOf(res.Avatar.Y)
	avatarRows := r.lines(res.Avatar.H)
	avatarX := r.cols(res.Avatar.X)
	avatarW := max(1, r.cols(res.Avatar.W))
	avatar := block(styles.ImageColor(row.Avatar), avatarW)

	bar := " "
	if selected {
		bar = styles.SelectedBarStyle.Render(styles.GlyphCursor)
	}

	out := make([]string, total)
	for i := range out {
		var b strings.Builder
		b.WriteString(bar)

		if i >= avatarTop && i < avatarTop+avatarRows {
			b.WriteString(strings.Repeat(" ", avatarX))
			b.WriteString(avatar)
			b.WriteString(strings.Repeat(" ", max(0, colX-avatarX-avatarW)))
		} else {
			b.WriteString(strings.Repeat(" ", colX))
		}

		if line, ok := column[i]; ok {
			b.WriteString(truncate.String(line, uint(colW)))
		}
		out[i] = b.String()
	}

	return out
}

// photoStrip draws up to n thumbnails as colored blocks, height lines tall.
func (r renderer) photoStrip(photos []image.Image, n, height int) []string {
	n = min(n, len(photos))
	if n == 0 {
		return nil
	}

	w := max(1, r.cols(layout.PhotoWidth))
	gap := strings.Repeat(" ", max(1, r.cols(layout.PhotoSpacing)))

	blocks := make([]string, n)
	for i := range n {
		blocks[i] = block(styles.ImageColor(photos[i]), w)
	}
	line := strings.Join(blocks, gap)

	out := make([]string, height)
	for i := range out {
		out[i] = line
	}
	return out
}

func block(c lipgloss.Color, w int) string {
	return lipgloss.NewStyle().Foreground(c).Render(strings.Repeat(styles.GlyphBlock, w))
}

func stars(rating int) string {
	rating = min(max(rating, 0), layout.RatingStars)
	return styles.StarFullStyle.Render(strings.Repeat(styles.GlyphStarFull, rating)) +
		styles.StarEmptyStyle.Render(strings.Repeat(styles.GlyphStarEmpty, layout.RatingStars-rating))
}
