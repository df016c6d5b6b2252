package mesh

import "heatskin-renderer/internal/mathutil"

// Mesh is triangulated geometry with one vertex per face corner, so
// Positions, Normals and UVs are parallel arrays and Indices is 0,1,2,...
// until RemoveSmallComponents drops triangles.
type Mesh struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float64
	Indices   []uint32

	HasUVs     bool
	TexPath    string // diffuse map of the first material, resolved against the OBJ directory
	MissingLib string // mtllib named by the OBJ but absent on disk
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (lo, hi mathutil.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}
