// Package viewmatrix builds the camera transform and projects vertices into
// pixel space for the rasterizer.
package viewmatrix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"heatskin-renderer/internal/mathutil"
)

// Camera is a perspective look-at camera.
type Camera struct {
	Eye    mathutil.Vec3
	Target mathutil.Vec3
	Up     mathutil.Vec3
	FovY   float64 // vertical field of view, degrees
	Near   float64
	Far    float64
}

// DefaultCamera looks at the stock biped from its left side.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mathutil.Vec3{15, 5, 0},
		Target: mathutil.Vec3{0, 4, 0},
		Up:     mathutil.Vec3{0, 1, 0},
		FovY:   45,
		Near:   0.1,
		Far:    100,
	}
}

// FitCamera places the eye on the +X side of the box lo..hi, far enough for
// the whole box to fit the vertical field of view.
func FitCamera(lo, hi mathutil.Vec3, fovY float64) Camera {
	center := lo.Add(hi).Mul(0.5)
	span := hi.Sub(lo)
	radius := span.Len() / 2
	if radius < 0.001 {
		radius = 0.001
	}
	halfFOV := mathutil.Deg2Rad(fovY / 2)
	dist := radius / math.Sin(halfFOV)

	c := DefaultCamera()
	c.FovY = fovY
	c.Target = center
	c.Eye = center.Add(mathutil.Vec3{dist, radius * 0.25, 0})
	c.Near = math.Max(dist-radius*2, 0.01)
	c.Far = dist + radius*2
	return c
}

// View returns the world-to-camera matrix.
func (c Camera) View() mathutil.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the camera-to-clip matrix for the given aspect ratio.
func (c Camera) Projection(aspect float64) mathutil.Mat4 {
	return mgl64.Perspective(mathutil.Deg2Rad(c.FovY), aspect, c.Near, c.Far)
}

// ProjectVertices transforms world-space vertices to screen coordinates.
// Returns px, py (pixels, y down) and pz (camera-space z, larger is nearer).
// Vertices at or behind the near plane get pz = -Inf.
func ProjectVertices(verts []mathutil.Vec3, cam Camera, width, height int) ([]float64, []float64, []float64) {
	n := len(verts)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)

	view := cam.View()
	proj := cam.Projection(float64(width) / float64(height))
	halfW := float64(width) / 2
	halfH := float64(height) / 2

	for i, v := range verts {
		e := view.Mul4x1(v.Vec4(1))
		if -e[2] < cam.Near {
			pz[i] = math.Inf(-1)
			continue
		}
		c := proj.Mul4x1(e)
		invW := 1 / c[3]

		px[i] = (c[0]*invW + 1) * halfW
		py[i] = (1 - c[1]*invW) * halfH
		pz[i] = e[2]
	}

	return px, py, pz
}
