package skinning

import (
	"fmt"
	"math"
)

// InvariantError reports a vertex whose influences break a weight invariant.
type InvariantError struct {
	Vertex int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("skinning: vertex %d: %s", e.Vertex, e.Reason)
}

// Validate checks every vertex: weights sum to 1 within eps, are
// non-negative and non-increasing, and name distinct bones unless the vertex
// is fully bound to fallback.
func Validate(vertices []Vertex, fallback int, eps float64) error {
	for i := range vertices {
		if reason := check(&vertices[i], fallback, eps); reason != "" {
			return &InvariantError{Vertex: i, Reason: reason}
		}
	}
	return nil
}

func check(v *Vertex, fallback int, eps float64) string {
	var sum float64
	for k, in := range v.Influences {
		if in.Weight < 0 || math.IsNaN(in.Weight) {
			return fmt.Sprintf("slot %d has weight %v", k, in.Weight)
		}
		if k > 0 && in.Weight > v.Influences[k-1].Weight {
			return fmt.Sprintf("slot %d outweighs slot %d", k, k-1)
		}
		sum += in.Weight
	}
	if math.Abs(sum-1) > eps {
		return fmt.Sprintf("weights sum to %v", sum)
	}
	if IsFallback(v, fallback) {
		return ""
	}
	for a := 0; a < MaxInfluences; a++ {
		for b := a + 1; b < MaxInfluences; b++ {
			if v.Influences[a].Bone == v.Influences[b].Bone {
				return fmt.Sprintf("bone %d listed twice", v.Influences[a].Bone)
			}
		}
	}
	return ""
}

// IsFallback reports whether v is bound entirely to the fallback bone.
func IsFallback(v *Vertex, fallback int) bool {
	for _, in := range v.Influences {
		if in.Bone != fallback {
			return false
		}
	}
	return v.Influences[0].Weight == 1
}

// Summary describes a solved vertex set.
type Summary struct {
	Vertices  int
	Fallback  int   // vertices bound entirely to the fallback bone
	PerBone   []int // vertices with a positive weight on each bone
	Dominant  []int // vertices whose heaviest influence is each bone
	SlotsUsed [MaxInfluences + 1]int
}

// Stats summarizes vertices solved against a skeleton of boneCount bones.
func Stats(vertices []Vertex, boneCount, fallback int) Summary {
	s := Summary{
		Vertices: len(vertices),
		PerBone:  make([]int, boneCount),
		Dominant: make([]int, boneCount),
	}
	for i := range vertices {
		v := &vertices[i]
		if IsFallback(v, fallback) {
			s.Fallback++
		}
		used := 0
		for _, in := range v.Influences {
			if in.Weight > 0 && in.Bone >= 0 && in.Bone < boneCount {
				s.PerBone[in.Bone]++
				used++
			}
		}
		s.SlotsUsed[used]++
		if b := v.Influences[0].Bone; b >= 0 && b < boneCount {
			s.Dominant[b]++
		}
	}
	return s
}
