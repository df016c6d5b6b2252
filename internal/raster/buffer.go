package raster

import (
	"image"
	"math"
)

// FrameBuffer is a color target with a depth buffer. A worker keeps one and
// calls Reset between frames instead of reallocating.
type FrameBuffer struct {
	Width  int
	Height int
	Img    *image.NRGBA
	ZBuf   []float64 // view-space z per pixel, larger is nearer
}

// NewFrameBuffer allocates a transparent w×h buffer with an empty depth buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Img:    image.NewNRGBA(image.Rect(0, 0, w, h)),
		ZBuf:   make([]float64, w*h),
	}
	fb.Reset()
	return fb
}

// Reset clears color to transparent and depth to -Inf.
func (fb *FrameBuffer) Reset() {
	clear(fb.Img.Pix)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = math.Inf(-1)
	}
}
