// Package skinning assigns each mesh vertex up to four weighted bone
// influences from a heat kernel over the skeleton's bone segments.
package skinning

import (
	"math"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/skeleton"
)

// MaxInfluences is the number of bone slots per vertex.
const MaxInfluences = 4

// Influence binds a vertex to one bone.
type Influence struct {
	Bone   int
	Weight float64
}

// Vertex is a skinnable mesh vertex. Influences is filled by ComputeWeights
// in descending weight order.
type Vertex struct {
	Position   mathutil.Vec3
	Normal     mathutil.Vec3
	Influences [MaxInfluences]Influence
}

// source is one heat emitter: the segment of an eligible bone, the bone its
// heat is credited to and the scale applied on the way.
type source struct {
	a, b   mathutil.Vec3
	target int
	scale  float64
	side   skeleton.Side
	leg    bool
}

type solver struct {
	cfg        Config
	sources    []source
	boneCount  int
	centerline float64
	fallback   int
	spare      []int // torso, thigh and shin bones in index order
}

// ComputeWeights fills the Influences of every vertex. The skeleton is only
// read; vertices are processed independently.
func ComputeWeights(vertices []Vertex, sk *skeleton.Skeleton, cfg Config) error {
	s, err := newSolver(sk, cfg)
	if err != nil {
		return err
	}
	heat := make([]float64, s.boneCount)
	for i := range vertices {
		s.solve(&vertices[i], heat)
	}
	return nil
}

func newSolver(sk *skeleton.Skeleton, cfg Config) (*solver, error) {
	if sk == nil || sk.Len() == 0 {
		return nil, skeleton.ErrEmptySkeleton
	}
	if err := cfg.Validate(sk.Len()); err != nil {
		return nil, err
	}

	fallback, err := ResolveFallback(sk, cfg)
	if err != nil {
		return nil, err
	}
	shin := map[skeleton.Side]int{}
	for _, side := range []skeleton.Side{skeleton.SideLeft, skeleton.SideRight} {
		if _, err := sk.FindRole(skeleton.RoleThigh, side); err != nil {
			return nil, err
		}
		if shin[side], err = sk.FindRole(skeleton.RoleShin, side); err != nil {
			return nil, err
		}
	}

	center, err := sk.Centerline()
	if err != nil {
		return nil, err
	}

	s := &solver{
		cfg:        cfg,
		boneCount:  sk.Len(),
		centerline: center,
		fallback:   fallback,
	}

	for i := range sk.Bones {
		b := &sk.Bones[i]
		src := source{
			a:      b.Head,
			b:      b.Head,
			target: i,
			scale:  1,
			side:   b.Side,
			leg:    b.Role.IsLeg(),
		}
		if !b.IsRoot() {
			src.b = sk.Bones[b.Parent].Head
		}
		switch b.Role {
		case skeleton.RoleSpine, skeleton.RolePelvis:
			src.scale = cfg.SpinePelvisBoost
			s.spare = append(s.spare, i)
		case skeleton.RoleThigh, skeleton.RoleShin:
			s.spare = append(s.spare, i)
		case skeleton.RoleFoot:
			t, ok := shin[b.Side]
			if !ok {
				return nil, &skeleton.UnresolvedRoleError{Role: skeleton.RoleShin, Side: b.Side}
			}
			src.target = t
			src.scale = cfg.FootToShinAttenuation
		default:
			continue
		}
		s.sources = append(s.sources, src)
	}
	return s, nil
}

// solve computes the influences of one vertex. heat is scratch space of
// boneCount entries.
func (s *solver) solve(v *Vertex, heat []float64) {
	clear(heat)

	offset := v.Position[0] - s.centerline
	skipLeft := offset < -s.cfg.LeftRightMargin
	skipRight := offset > s.cfg.LeftRightMargin

	var total float64
	for i := range s.sources {
		src := &s.sources[i]
		if src.leg && (skipLeft && src.side == skeleton.SideLeft || skipRight && src.side == skeleton.SideRight) {
			continue
		}
		d := mathutil.SegmentDistance(v.Position, src.a, src.b)
		h := math.Exp(-d*d/s.cfg.FalloffRadius) * src.scale
		heat[src.target] += h
		total += h
	}

	if total < s.cfg.ZeroHeatEpsilon {
		s.bindFallback(v)
		return
	}

	// Repeated scan-and-clear; strict comparison keeps the lowest index on ties.
	var sum float64
	n := 0
	for ; n < MaxInfluences; n++ {
		best, peak := -1, 0.0
		for i, h := range heat {
			if h > peak {
				best, peak = i, h
			}
		}
		if best < 0 || peak <= s.cfg.ZeroWeightEpsilon {
			break
		}
		v.Influences[n] = Influence{Bone: best, Weight: peak}
		sum += peak
		heat[best] = 0
	}
	if n == 0 {
		s.bindFallback(v)
		return
	}
	s.pad(v, n)

	for k := 0; k < n; k++ {
		v.Influences[k].Weight /= sum
	}
}

func (s *solver) bindFallback(v *Vertex) {
	for k := range v.Influences {
		v.Influences[k] = Influence{Bone: s.fallback}
	}
	v.Influences[0].Weight = 1
}

// pad fills slots n.. with zero weights on the fallback bone, or on the
// lowest unused torso, thigh or shin bone when the fallback is already
// bound, so that no bone is listed twice and feet never take a slot.
func (s *solver) pad(v *Vertex, n int) {
	used := func(bone int, upto int) bool {
		for k := 0; k < upto; k++ {
			if v.Influences[k].Bone == bone {
				return true
			}
		}
		return false
	}
	next := 0
	for k := n; k < MaxInfluences; k++ {
		bone := s.fallback
		if used(bone, k) {
			for next < len(s.spare) && used(s.spare[next], k) {
				next++
			}
			if next < len(s.spare) {
				bone = s.spare[next]
				next++
			}
		}
		v.Influences[k] = Influence{Bone: bone}
	}
}
