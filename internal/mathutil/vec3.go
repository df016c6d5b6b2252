package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 = mgl64.Vec3

// V3 builds a Vec3 from a JSON-style [3]float64.
func V3(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// SegmentParam returns the projection parameter of p onto segment a→b,
// clamped to [0, 1]. A zero-length segment yields 0.
func SegmentParam(p, a, b Vec3) float64 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < DegenerateLenSqr {
		return 0
	}
	t := p.Sub(a).Dot(ab) / den
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// SegmentDistance returns the distance from p to the closest point of segment a→b.
func SegmentDistance(p, a, b Vec3) float64 {
	t := SegmentParam(p, a, b)
	closest := a.Add(b.Sub(a).Mul(t))
	return p.Sub(closest).Len()
}

// SafeNormalize normalizes v, reporting false when v has no usable direction.
func SafeNormalize(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}
