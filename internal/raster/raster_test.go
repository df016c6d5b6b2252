package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/viewmatrix"
)

func quad(x float64) *Scene {
	return &Scene{
		Positions: []mathutil.Vec3{
			{x, 2, 2}, {x, 2, -2}, {x, 6, -2},
			{x, 2, 2}, {x, 6, -2}, {x, 6, 2},
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
}

func TestRenderCoverage(t *testing.T) {
	img := Render(quad(0), viewmatrix.DefaultCamera(), 64, 48, 1)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("size = %v", img.Bounds())
	}
	if a := img.NRGBAAt(32, 24).A; a != 255 {
		t.Errorf("center alpha = %d, want 255", a)
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
}

func TestRenderSupersample(t *testing.T) {
	img := Render(quad(0), viewmatrix.DefaultCamera(), 32, 32, 3)
	if img.Bounds().Dx() != 96 || img.Bounds().Dy() != 96 {
		t.Errorf("size = %v", img.Bounds())
	}
}

func TestRenderBehindCamera(t *testing.T) {
	img := Render(quad(20), viewmatrix.DefaultCamera(), 32, 32, 1)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("geometry behind the camera was drawn")
		}
	}
}

func TestDepthTest(t *testing.T) {
	px := []float64{0, 20, 0}
	py := []float64{0, 0, 20}
	far := []float64{-5, -5, -5}
	near := []float64{-3, -3, -3}
	lc := NewLightConfig(viewmatrix.DefaultCamera())
	red := color.NRGBA{200, 0, 0, 255}
	blue := color.NRGBA{0, 0, 200, 255}
	vi := [3]int{0, 1, 2}

	want := NewFrameBuffer(32, 32)
	RasterizeTriangle(want, px, py, near, nil, vi, nil, blue, 1, &lc)

	fb := NewFrameBuffer(32, 32)
	RasterizeTriangle(fb, px, py, near, nil, vi, nil, blue, 1, &lc)
	RasterizeTriangle(fb, px, py, far, nil, vi, nil, red, 1, &lc)

	if got, want := fb.Img.NRGBAAt(2, 2), want.Img.NRGBAAt(2, 2); got != want {
		t.Fatalf("pixel = %v, want %v", got, want)
	}
	if d := fb.ZBuf[2*32+2]; math.Abs(d+3) > 1e-9 {
		t.Errorf("depth = %v", d)
	}
}

// Depth is interpolated as 1/w across the screen, not linearly in z.
func TestPerspectiveDepth(t *testing.T) {
	px := []float64{0, 20, 0}
	py := []float64{0, 0, 20}
	pz := []float64{-1, -1, -4}
	lc := NewLightConfig(viewmatrix.DefaultCamera())
	fb := NewFrameBuffer(32, 32)
	RasterizeTriangle(fb, px, py, pz, nil, [3]int{0, 1, 2}, nil, DefaultBaseColor, 1, &lc)

	// Pixel (2, 2) samples (2.5, 2.5): barycentrics 0.75, 0.125, 0.125.
	want := -1 / (0.75 + 0.125 + 0.125/4)
	if d := fb.ZBuf[2*32+2]; math.Abs(d-want) > 1e-9 {
		t.Errorf("depth = %v, want %v", d, want)
	}
}

func TestSampleTexture(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{255, 0, 0, 255}
	green := color.NRGBA{0, 255, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	tex.SetNRGBA(0, 0, red)
	tex.SetNRGBA(1, 0, green)
	tex.SetNRGBA(0, 1, blue)
	tex.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})

	tests := []struct {
		u, v float64
		want color.NRGBA
	}{
		{0, 1, red}, // v = 1 is the top row
		{1, 1, green},
		{0, 0, blue},
		{0.5, 1, color.NRGBA{128, 128, 0, 255}},
		{-1, 1, red}, // repeats
		{1.5, 2, color.NRGBA{128, 128, 0, 255}},
	}
	for _, tt := range tests {
		if got := SampleTexture(tex, tt.u, tt.v); got != tt.want {
			t.Errorf("SampleTexture(%g, %g) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestRendererReuse(t *testing.T) {
	r := NewRenderer(viewmatrix.DefaultCamera(), 32, 32, 1)
	first := r.Render(quad(0))
	if first.NRGBAAt(16, 16).A == 0 {
		t.Fatal("quad not drawn")
	}
	second := r.Render(&Scene{})
	for i := 3; i < len(second.Pix); i += 4 {
		if second.Pix[i] != 0 {
			t.Fatal("buffer not cleared between frames")
		}
	}
}
