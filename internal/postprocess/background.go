package postprocess

import (
	"image"
	"image/color"
)

// DefaultBackground is the dark teal the frames are cleared to.
var DefaultBackground = color.NRGBA{51, 77, 77, 255}

// Flatten composites img over an opaque background color in place and
// returns it. A background with zero alpha leaves img transparent.
func Flatten(img *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	if bg.A == 0 {
		return img
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			a := float64(img.Pix[i+3]) / 255.0
			img.Pix[i] = clamp8(float64(img.Pix[i])*a + float64(bg.R)*(1-a))
			img.Pix[i+1] = clamp8(float64(img.Pix[i+1])*a + float64(bg.G)*(1-a))
			img.Pix[i+2] = clamp8(float64(img.Pix[i+2])*a + float64(bg.B)*(1-a))
			img.Pix[i+3] = 255
		}
	}
	return img
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
