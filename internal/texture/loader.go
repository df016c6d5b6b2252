// Package texture decodes mesh textures and caches them for the frame workers.
package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "github.com/oov/psd"
)

// Supported file extensions, best first: formats that carry alpha win over
// JPEG when several files share a stem.
var extRank = map[string]int{
	".png":  0,
	".tga":  1,
	".psd":  2,
	".jpg":  3,
	".jpeg": 3,
}

// Supported reports whether path has a decodable texture extension.
func Supported(path string) bool {
	_, ok := extRank[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadTexture reads a PNG, JPEG, TGA or PSD file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("texture: unknown extension: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

// decode picks the decoder by extension. TGA has no magic number, so it is
// never left to format sniffing.
func decode(r io.Reader, ext string) (image.Image, error) {
	switch ext {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".tga":
		return tga.Decode(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}

// toNRGBA converts any image to NRGBA format with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha: draw and force opaque
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.SetNRGBA(x, y, color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA))
			}
		}
	}
	return dst
}
