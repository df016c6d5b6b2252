package raster

import (
	"image"
	"image/color"
	"math"
)

// corner is one projected triangle vertex. iw is 1/w with w = -z, the
// distance in front of the camera; attributes are pre-divided by w.
type corner struct {
	x, y   float64
	iw     float64
	uw, vw float64
}

// RasterizeTriangle fills one screen-space triangle with depth testing,
// perspective-correct texturing (or the base color), the given flat shade
// and ACES tone mapping. pz holds camera-space z as returned by
// viewmatrix.ProjectVertices. uvs is indexed like px and is only read when
// tex is non-nil.
//
// Hot path: no allocation inside the pixel loop.
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz []float64,
	uvs [][2]float64,
	vi [3]int,
	tex *image.NRGBA,
	base color.NRGBA,
	shade float64,
	lc *LightConfig,
) {
	nv := len(px)
	hasUV := tex != nil && len(uvs) >= nv

	var c [3]corner
	for k, i := range vi {
		if i < 0 || i >= nv || math.IsInf(pz[i], -1) || pz[i] >= 0 {
			return
		}
		iw := -1 / pz[i]
		c[k] = corner{x: px[i], y: py[i], iw: iw}
		if hasUV {
			c[k].uw, c[k].vw = uvs[i][0]*iw, uvs[i][1]*iw
		}
	}

	// Bounding box, clipped to the buffer
	minX := max(int(math.Floor(min(c[0].x, c[1].x, c[2].x))), 0)
	maxX := min(int(math.Ceil(max(c[0].x, c[1].x, c[2].x))), fb.Width-1)
	minY := max(int(math.Floor(min(c[0].y, c[1].y, c[2].y))), 0)
	maxY := min(int(math.Ceil(max(c[0].y, c[1].y, c[2].y))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (c[1].y-c[2].y)*(c[0].x-c[2].x) + (c[2].x-c[1].x)*(c[0].y-c[2].y)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := c[1].y - c[2].y
	dx21 := c[2].x - c[1].x
	dy20 := c[2].y - c[0].y
	dx02 := c[0].x - c[2].x

	exposure := lc.Exposure
	invGamma := lc.InvGamma

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centers
		dsy := float64(sy) + 0.5 - c[2].y
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c[2].x
			b0 := (dy12*dsx + dx21*dsy) * invDet
			b1 := (dy20*dsx + dx02*dsy) * invDet
			b2 := 1.0 - b0 - b1
			if b0 < -0.001 || b1 < -0.001 || b2 < -0.001 {
				continue
			}

			iw := b0*c[0].iw + b1*c[1].iw + b2*c[2].iw
			if iw <= 0 {
				continue
			}
			z := -1 / iw
			zi := sy*fb.Width + sx
			if z <= fb.ZBuf[zi] {
				continue
			}

			col := base
			if hasUV {
				u := (b0*c[0].uw + b1*c[1].uw + b2*c[2].uw) / iw
				v := (b0*c[0].vw + b1*c[1].vw + b2*c[2].vw) / iw
				col = SampleTexture(tex, u, v)
			}

			// Skip transparent texels
			if col.A < 8 {
				continue
			}
			fb.ZBuf[zi] = z

			// sRGB decode, shade, tone map, encode
			tr := ACESTonemap(srgbToLinear[col.R] * shade * exposure)
			tg := ACESTonemap(srgbToLinear[col.G] * shade * exposure)
			tb := ACESTonemap(srgbToLinear[col.B] * shade * exposure)

			pix := fb.Img.Pix[sy*fb.Img.Stride+sx*4:]
			pix[0] = clamp255(math.Pow(tr, invGamma) * 255)
			pix[1] = clamp255(math.Pow(tg, invGamma) * 255)
			pix[2] = clamp255(math.Pow(tb, invGamma) * 255)
			pix[3] = col.A
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
