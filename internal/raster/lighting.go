package raster

import (
	"math"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/viewmatrix"
)

// LightConfig is a camera-relative three-light rig: a key light above and
// to the right of the camera, a rim light behind the subject and a
// hemisphere fill.
type LightConfig struct {
	KeyDir   mathutil.Vec3 // toward the light
	RimDir   mathutil.Vec3
	ViewDir  mathutil.Vec3 // camera forward
	HalfKey  mathutil.Vec3 // Blinn-Phong half-vector of the key light
	Up       mathutil.Vec3
	Ambient  float64
	Hemi     float64
	Key      float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// NewLightConfig places the lights relative to cam.
func NewLightConfig(cam viewmatrix.Camera) LightConfig {
	fwd, ok := mathutil.SafeNormalize(cam.Target.Sub(cam.Eye))
	if !ok {
		fwd = mathutil.Vec3{0, 0, -1}
	}
	up := cam.Up
	if up == (mathutil.Vec3{}) {
		up = mathutil.Vec3{0, 1, 0}
	}
	right, ok := mathutil.SafeNormalize(fwd.Cross(up))
	if !ok {
		right = mathutil.Vec3{1, 0, 0}
	}
	up = right.Cross(fwd)

	key := fwd.Mul(-1).Add(up.Mul(0.8)).Add(right.Mul(0.5)).Normalize()
	rim := fwd.Add(up.Mul(0.6)).Sub(right.Mul(0.4)).Normalize()

	return LightConfig{
		KeyDir:   key,
		RimDir:   rim,
		ViewDir:  fwd,
		HalfKey:  key.Sub(fwd).Normalize(),
		Up:       up,
		Ambient:  0.35,
		Hemi:     0.40,
		Key:      1.10,
		Rim:      0.45,
		SpecInt:  0.30,
		SpecPow:  16.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit face normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	if normal.Dot(lc.ViewDir) > 0 {
		normal = normal.Mul(-1)
	}
	key := math.Max(normal.Dot(lc.KeyDir), 0)
	rim := math.Abs(normal.Dot(lc.RimDir))
	hemi := (normal.Dot(lc.Up)*0.5 + 0.5) * lc.Hemi
	spec := math.Pow(math.Max(normal.Dot(lc.HalfKey), 0), lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemi + key*lc.Key + rim*lc.Rim + spec
}

// srgbToLinear decodes 8-bit sRGB channel values.
var srgbToLinear = func() (t [256]float64) {
	for i := range t {
		t[i] = math.Pow(float64(i)/255.0, 2.2)
	}
	return t
}()

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
