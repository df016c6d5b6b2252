package mathutil

import "math"

const (
	// ParallelDot is the |dot| above which the default up axis is considered
	// parallel to a bone's primary axis.
	ParallelDot = 0.9

	// DegenerateLenSqr is the squared segment length below which a segment
	// is treated as a point.
	DegenerateLenSqr = 1e-12
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
