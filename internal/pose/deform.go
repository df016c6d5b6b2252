package pose

import (
	"fmt"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/skinning"
)

// DeformPoint blends p through the skin matrices named by in.
func DeformPoint(p mathutil.Vec3, in [skinning.MaxInfluences]skinning.Influence, skins []mathutil.Mat4) mathutil.Vec3 {
	var out mathutil.Vec3
	for _, inf := range in {
		if inf.Weight == 0 {
			continue
		}
		out = out.Add(mathutil.MulPoint(skins[inf.Bone], p).Mul(inf.Weight))
	}
	return out
}

// DeformNormal blends n through the linear part of the skin matrices and
// renormalizes. A normal that cancels out is returned unchanged.
func DeformNormal(n mathutil.Vec3, in [skinning.MaxInfluences]skinning.Influence, skins []mathutil.Mat4) mathutil.Vec3 {
	var out mathutil.Vec3
	for _, inf := range in {
		if inf.Weight == 0 {
			continue
		}
		out = out.Add(mathutil.MulDir(skins[inf.Bone], n).Mul(inf.Weight))
	}
	if u, ok := mathutil.SafeNormalize(out); ok {
		return u
	}
	return n
}

// Deform writes the skinned position and normal of every vertex into
// positions and normals, which must be at least len(vertices) long.
func Deform(vertices []skinning.Vertex, skins []mathutil.Mat4, positions, normals []mathutil.Vec3) error {
	if len(positions) < len(vertices) || len(normals) < len(vertices) {
		return fmt.Errorf("pose: deform %d vertices into %d/%d slots", len(vertices), len(positions), len(normals))
	}
	for i := range vertices {
		v := &vertices[i]
		for _, inf := range v.Influences {
			if inf.Bone < 0 || inf.Bone >= len(skins) {
				return fmt.Errorf("pose: vertex %d references bone %d of %d", i, inf.Bone, len(skins))
			}
		}
		positions[i] = DeformPoint(v.Position, v.Influences, skins)
		normals[i] = DeformNormal(v.Normal, v.Influences, skins)
	}
	return nil
}
