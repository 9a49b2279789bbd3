// Package imaging holds pure, stateless image transforms.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Invert returns a copy of img with every color channel inverted. Channels
// are read straight, not alpha-premultiplied: alpha is dropped before the
// inversion, so a half-transparent pixel inverts exactly like an opaque one
// and the result is always fully opaque.
func Invert(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{
				R: 255 - c.R,
				G: 255 - c.G,
				B: 255 - c.B,
				A: 255,
			})
		}
	}
	return out
}

// EncodePNG writes img to w in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
