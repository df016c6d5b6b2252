// Package postprocess finishes rendered frames: supersample reduction and
// background compositing.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Kernel is the resampling filter used by Downsample.
var Kernel draw.Interpolator = draw.CatmullRom

// Downsample reduces img to width×height. Filtering runs on premultiplied
// alpha so transparent edges stay free of dark halos. An image already at or
// below the target size is returned as is.
func Downsample(img *image.NRGBA, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}

	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	Kernel.Scale(small, small.Bounds(), premul, b, draw.Src, nil)

	out := image.NewNRGBA(small.Bounds())
	draw.Draw(out, out.Bounds(), small, image.Point{}, draw.Src)
	return out
}
