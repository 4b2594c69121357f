// Package layout computes frames and heights for review list cells. All
// functions are pure and safe to call from any goroutine.
package layout

import (
	"github.com/hay-kot/reviewfeed/internal/core/textmetrics"
)

// Rect is an axis-aligned rectangle in layout units.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Cell is the content of a review row that affects its geometry.
type Cell struct {
	Username   string
	Text       string
	Created    string
	Rating     int
	PhotoCount int
	// MaxLines caps the visible text lines; 0 means unlimited.
	MaxLines int
}

// Result holds every sub-element frame of a review cell and its height.
// Frames of absent elements are zero.
type Result struct {
	Avatar   Rect `json:"avatar"`
	Username Rect `json:"username"`
	Rating   Rect `json:"rating"`
	Photos   Rect `json:"photos"`
	Text     Rect `json:"text"`
	ShowMore Rect `json:"show_more"`
	Created  Rect `json:"created"`

	ShowMoreVisible bool    `json:"show_more_visible"`
	Height          float64 `json:"height"`
}

// Engine lays out review cells using a text measurer.
type Engine struct {
	text textmetrics.Measurer
}

// New returns an engine backed by m.
func New(m textmetrics.Measurer) Engine {
	return Engine{text: m}
}

// Measurer returns the text measurer the engine was built with.
func (e Engine) Measurer() textmetrics.Measurer {
	return e.text
}

// Review lays out a review cell for the given total row width.
func (e Engine) Review(c Cell, width float64) Result {
	var res Result

	res.Avatar = Rect{X: InsetLeft, Y: InsetTop, W: AvatarSize, H: AvatarSize}

	columnX := res.Avatar.MaxX() + AvatarToColumnSpacing
	columnW := max(0, width-columnX-InsetRight)

	username := e.text.Measure(c.Username, columnW)
	res.Username = Rect{X: columnX, Y: InsetTop, W: min(username.Width, columnW), H: username.Height}

	res.Rating = Rect{
		X: columnX,
		Y: res.Username.MaxY() + UsernameToRatingSpacing,
		W: min(RatingWidth, columnW),
		H: RatingStarSize,
	}

	y := max(res.Avatar.MaxY(), res.Rating.MaxY()) + RatingToTextSpacing

	if c.PhotoCount > 0 {
		n := float64(c.PhotoCount)
		stripW := n*PhotoWidth + (n-1)*PhotoSpacing
		res.Photos = Rect{X: columnX, Y: y, W: min(stripW, columnW), H: PhotoHeight}
		y = res.Photos.MaxY() + PhotosToTextSpacing
	}

	if c.Text != "" {
		actual := e.text.Measure(c.Text, columnW).Height

		textH := actual
		if c.MaxLines != 0 {
			current := e.text.LineHeight() * float64(c.MaxLines)
			res.ShowMoreVisible = actual > current
			textH = min(actual, current)
		}

		res.Text = Rect{X: columnX, Y: y, W: columnW, H: textH}
		y = res.Text.MaxY() + TextToCreatedSpacing
	}

	if res.ShowMoreVisible {
		size := e.text.Measure(ShowMoreText, columnW)
		res.ShowMore = Rect{X: columnX, Y: y, W: size.Width, H: size.Height}
		y = res.ShowMore.MaxY() + ShowMoreToCreatedSpacing
	}

	created := e.text.Measure(c.Created, columnW)
	res.Created = Rect{X: columnX, Y: y, W: created.Width, H: created.Height}

	res.Height = res.Created.MaxY() + InsetBottom
	return res
}

// VisibleLines returns how many text lines fit in the text frame of r.
func (e Engine) VisibleLines(r Result) int {
	lh := e.text.LineHeight()
	if lh <= 0 || r.Text.Empty() {
		return 0
	}
	return int(r.Text.H/lh + 0.5)
}

// VisiblePhotos returns how many whole thumbnails fit in the photo strip.
func VisiblePhotos(r Result) int {
	if r.Photos.Empty() {
		return 0
	}
	return int((r.Photos.W + PhotoSpacing) / (PhotoWidth + PhotoSpacing))
}
