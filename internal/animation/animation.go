// Package animation writes per-frame bone poses into a skeleton.
package animation

import (
	"math"
	"time"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/rig"
	"heatskin-renderer/internal/skeleton"
)

// Animator sets the pose of every bone of sk for time t (seconds).
type Animator interface {
	Apply(sk *skeleton.Skeleton, t float64) error
}

// Rest holds every bone at its rest pose.
type Rest struct{}

func (Rest) Apply(sk *skeleton.Skeleton, _ float64) error {
	sk.ResetPose()
	return nil
}

// Walk is a procedural walk cycle: the thighs swing in opposition about
// their local X axis and each knee bends while its leg is behind the body.
// Everything else stays at rest.
type Walk struct {
	Stride float64 // thigh swing amplitude, radians
	Knee   float64 // maximum knee bend, radians
	Speed  float64 // phase rate, radians per second

	thigh [2]int
	shin  [2]int
}

const (
	DefaultStride = 0.6
	DefaultKnee   = 0.8
	DefaultSpeed  = 2.0
)

// NewWalk resolves the leg bones of sk by role. The returned animator can be
// applied to sk or any of its clones.
func NewWalk(sk *skeleton.Skeleton, spec rig.AnimationSpec) (*Walk, error) {
	w := &Walk{Stride: DefaultStride, Knee: DefaultKnee, Speed: DefaultSpeed}
	if spec.Stride != nil {
		w.Stride = *spec.Stride
	}
	if spec.Knee != nil {
		w.Knee = *spec.Knee
	}
	if spec.Speed != nil {
		w.Speed = *spec.Speed
	}

	for k, side := range []skeleton.Side{skeleton.SideLeft, skeleton.SideRight} {
		var err error
		if w.thigh[k], err = sk.FindRole(skeleton.RoleThigh, side); err != nil {
			return nil, err
		}
		if w.shin[k], err = sk.FindRole(skeleton.RoleShin, side); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Phase returns the swing phase in [-1, 1] at time t.
func (w *Walk) Phase(t float64) float64 {
	return math.Sin(t * w.Speed)
}

func (w *Walk) Apply(sk *skeleton.Skeleton, t float64) error {
	sk.ResetPose()
	phase := w.Phase(t)

	// Left leg leads on positive phase, right leg mirrors it.
	w.rotate(sk, w.thigh[0], phase*w.Stride)
	w.rotate(sk, w.thigh[1], -phase*w.Stride)
	w.rotate(sk, w.shin[0], math.Max(0, -phase)*w.Knee)
	w.rotate(sk, w.shin[1], math.Max(0, phase)*w.Knee)
	return nil
}

func (w *Walk) rotate(sk *skeleton.Skeleton, bone int, angle float64) {
	b := &sk.Bones[bone]
	b.Pose = b.Rest.Mul4(mathutil.RotX(angle))
}

// FrameCount returns the number of frames in a sweep of the given length.
func FrameCount(fps float64, d time.Duration) int {
	if fps <= 0 || d <= 0 {
		return 0
	}
	return int(math.Round(fps * d.Seconds()))
}

// FrameTime returns the sample time of frame i in seconds.
func FrameTime(i int, fps float64) float64 {
	return float64(i) / fps
}
