package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 1 || y-x <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestDownsample(t *testing.T) {
	c := color.NRGBA{200, 100, 50, 255}
	out := Downsample(solid(64, 36, c), 32, 18)
	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 18 {
		t.Fatalf("size = %v", out.Bounds())
	}
	if got := out.NRGBAAt(16, 9); !near(got, c) {
		t.Errorf("pixel = %v, want %v", got, c)
	}

	small := solid(8, 8, c)
	if Downsample(small, 8, 8) != small {
		t.Error("image at target size should be returned unchanged")
	}
}

func TestDownsampleTransparentEdge(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Downsample(img, 4, 4)
	// Partially covered pixels keep the full white color, only alpha drops.
	for x := 0; x < 4; x++ {
		p := out.NRGBAAt(x, 2)
		if p.A > 1 && p.R < 250 {
			t.Errorf("x=%d: dark halo %v", x, p)
		}
	}
}

func TestFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	Flatten(img, DefaultBackground)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
	if got := img.NRGBAAt(1, 0); got != DefaultBackground {
		t.Errorf("transparent pixel = %v, want background", got)
	}

	clear := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	Flatten(clear, color.NRGBA{})
	if clear.Pix[3] != 0 {
		t.Error("transparent background should leave alpha untouched")
	}
}
