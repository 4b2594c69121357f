// Package textmetrics measures wrapped text for the layout engine.
package textmetrics

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Size is a width/height pair in layout units.
type Size struct {
	Width  float64
	Height float64
}

// Measurer reports the space text needs when wrapped to a width.
type Measurer interface {
	// LineHeight is the height of a single line of text.
	LineHeight() float64
	// Measure returns the size of text wrapped to width.
	Measure(text string, width float64) Size
}

// Monospace measures text on a fixed grid: every terminal cell is Advance
// units wide and every line LineHeightUnits tall. Wide runes occupy two cells.
type Monospace struct {
	Advance         float64
	LineHeightUnits float64
}

// NewMonospace returns a monospace measurer. Non-positive values fall back to 1.
func NewMonospace(advance, lineHeight float64) Monospace {
	if advance <= 0 {
		advance = 1
	}
	if lineHeight <= 0 {
		lineHeight = 1
	}
	return Monospace{Advance: advance, LineHeightUnits: lineHeight}
}

func (m Monospace) LineHeight() float64 {
	return m.LineHeightUnits
}

func (m Monospace) Measure(text string, width float64) Size {
	lines := m.Lines(text, width)
	if len(lines) == 0 {
		return Size{}
	}

	widest := 0
	for _, line := range lines {
		widest = max(widest, runewidth.StringWidth(line))
	}

	return Size{
		Width:  float64(widest) * m.Advance,
		Height: float64(len(lines)) * m.LineHeightUnits,
	}
}

// Columns returns how many cells fit in width, never less than one.
func (m Monospace) Columns(width float64) int {
	return max(1, int(math.Floor(width/m.Advance)))
}

// Lines wraps text to width. Words are kept whole where possible; words
// longer than a line are broken hard.
func (m Monospace) Lines(text string, width float64) []string {
	text = strings.TrimRight(text, " \n\t")
	if text == "" {
		return nil
	}

	cols := m.Columns(width)
	wrapped := wrap.String(wordwrap.String(text, cols), cols)
	return strings.Split(wrapped, "\n")
}
