package raster

import (
	"image"
	"image/color"
	"math"
)

// SampleTexture returns the bilinear-filtered texel at (u, v). Coordinates
// follow the OBJ convention with v = 0 at the bottom row; values outside
// [0, 1] repeat.
func SampleTexture(tex *image.NRGBA, u, v float64) color.NRGBA {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	u = repeat(u)
	v = repeat(1 - v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	p00 := tex.Pix[y0*tex.Stride+x0*4:]
	p10 := tex.Pix[y0*tex.Stride+x1*4:]
	p01 := tex.Pix[y1*tex.Stride+x0*4:]
	p11 := tex.Pix[y1*tex.Stride+x1*4:]
	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for c := range out {
		f := float64(p00[c])*w00 + float64(p10[c])*w10 + float64(p01[c])*w01 + float64(p11[c])*w11
		out[c] = uint8(f + 0.5)
	}
	return color.NRGBA{out[0], out[1], out[2], out[3]}
}

func repeat(t float64) float64 {
	if t < 0 || t > 1 {
		t -= math.Floor(t)
	}
	return t
}
