package raster

import (
	"image"
	"image/color"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/viewmatrix"
)

// Scene is one frame of deformed, indexed triangle geometry.
type Scene struct {
	Positions []mathutil.Vec3
	UVs       [][2]float64 // parallel to Positions, may be nil
	Indices   []uint32
	Texture   *image.NRGBA // nil renders BaseColor
	BaseColor color.NRGBA
}

// DefaultBaseColor is the untextured surface color.
var DefaultBaseColor = color.NRGBA{160, 160, 170, 255}

// Renderer draws frames through a fixed camera. It owns its frame buffer,
// so one Renderer serves one goroutine.
type Renderer struct {
	Camera      viewmatrix.Camera
	Width       int
	Height      int
	Supersample int
	Light       LightConfig

	fb *FrameBuffer
}

// NewRenderer returns a renderer producing width×height images scaled by
// supersample.
func NewRenderer(cam viewmatrix.Camera, width, height, supersample int) *Renderer {
	supersample = max(supersample, 1)
	return &Renderer{
		Camera:      cam,
		Width:       width,
		Height:      height,
		Supersample: supersample,
		Light:       NewLightConfig(cam),
		fb:          NewFrameBuffer(width*supersample, height*supersample),
	}
}

// Render rasterizes the scene. Background pixels stay transparent. The
// returned image is the renderer's buffer and is overwritten by the next
// call.
func (r *Renderer) Render(scene *Scene) *image.NRGBA {
	fb := r.fb
	fb.Reset()

	px, py, pz := viewmatrix.ProjectVertices(scene.Positions, r.Camera, fb.Width, fb.Height)

	tex := scene.Texture
	uvs := scene.UVs
	if len(uvs) < len(scene.Positions) {
		tex = nil
	}
	base := scene.BaseColor
	if base.A == 0 {
		base = DefaultBaseColor
	}

	nv := len(scene.Positions)
	for t := 0; t+2 < len(scene.Indices); t += 3 {
		vi := [3]int{int(scene.Indices[t]), int(scene.Indices[t+1]), int(scene.Indices[t+2])}
		if vi[0] >= nv || vi[1] >= nv || vi[2] >= nv {
			continue
		}

		// Flat shading from the world-space face normal
		p0, p1, p2 := scene.Positions[vi[0]], scene.Positions[vi[1]], scene.Positions[vi[2]]
		n, ok := mathutil.SafeNormalize(p1.Sub(p0).Cross(p2.Sub(p0)))
		if !ok {
			continue
		}
		shade := r.Light.ComputeShade(n)

		RasterizeTriangle(fb, px, py, pz, uvs, vi, tex, base, shade, &r.Light)
	}
	return fb.Img
}

// Render rasterizes a single scene into a new image.
func Render(scene *Scene, cam viewmatrix.Camera, width, height, supersample int) *image.NRGBA {
	return NewRenderer(cam, width, height, supersample).Render(scene)
}
