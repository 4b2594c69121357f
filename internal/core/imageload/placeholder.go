package imageload

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var placeholderColor = color.RGBA{R: 0xD9, G: 0xD9, B: 0xD9, A: 0xFF}

// Placeholder returns a solid light gray image of the given size. It stands
// in for avatars that are missing or failed to load.
func Placeholder(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderColor}, image.Point{}, draw.Src)
	return img
}
