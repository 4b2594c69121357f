// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"image"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	SuccessStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style

	// Review row styles.
	UsernameStyle    lipgloss.Style
	StarFullStyle    lipgloss.Style
	StarEmptyStyle   lipgloss.Style
	TextStyle        lipgloss.Style
	ShowMoreStyle    lipgloss.Style
	CreatedStyle     lipgloss.Style
	CountStyle       lipgloss.Style
	SelectedBarStyle lipgloss.Style

	// Screen chrome.
	TitleStyle  lipgloss.Style
	StatusStyle lipgloss.Style
	HelpStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)

	UsernameStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Bold(true)
	StarFullStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	StarEmptyStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	TextStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	ShowMoreStyle = lipgloss.NewStyle().
		Foreground(p.Primary)
	CreatedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	CountStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)
	SelectedBarStyle = lipgloss.NewStyle().
		Foreground(p.Primary)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	StatusStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
}

// ImageColor returns the average color of img, sampling at most a 16x16 grid.
// A nil or empty image yields the palette's surface color.
func ImageColor(img image.Image) lipgloss.Color {
	if img == nil || img.Bounds().Empty() {
		return CurrentPalette.Surface
	}

	b := img.Bounds()
	stepX := max(1, b.Dx()/16)
	stepY := max(1, b.Dy()/16)

	var r, g, bl float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r, g, bl = r+c.R, g+c.G, bl+c.B
			n++
		}
	}
	if n == 0 {
		return CurrentPalette.Surface
	}

	avg := colorful.Color{R: r / float64(n), G: g / float64(n), B: bl / float64(n)}
	return lipgloss.Color(avg.Clamped().Hex())
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
