package mesh

import "heatskin-renderer/internal/mathutil"

// RemoveSmallComponents drops disconnected pieces with fewer than minTris
// triangles, such as stray helper geometry exported with a character. The
// largest component is always kept. Triangles are connected when they share
// a vertex position, so per-corner duplicates of one point count as one
// vertex. Vertex data is left in place; only Indices is rewritten. Returns
// the number of triangles removed.
func (m *Mesh) RemoveSmallComponents(minTris int) int {
	tris := m.TriangleCount()
	if minTris <= 1 || tris == 0 {
		return 0
	}

	// Weld corners by exact position
	weld := make(map[mathutil.Vec3]int, len(m.Positions))
	ids := make([]int, len(m.Positions))
	for i, p := range m.Positions {
		id, ok := weld[p]
		if !ok {
			id = len(weld)
			weld[p] = id
		}
		ids[i] = id
	}

	parent := make([]int, len(weld))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for t := 0; t < tris; t++ {
		a := find(ids[m.Indices[3*t]])
		for k := 1; k < 3; k++ {
			if b := find(ids[m.Indices[3*t+k]]); b != a {
				parent[b] = a
			}
		}
	}

	// Triangle count per component
	size := make(map[int]int)
	largest, largestSize := -1, 0
	for t := 0; t < tris; t++ {
		root := find(ids[m.Indices[3*t]])
		size[root]++
		if size[root] > largestSize {
			largest, largestSize = root, size[root]
		}
	}
	if len(size) <= 1 {
		return 0
	}

	kept := m.Indices[:0]
	removed := 0
	for t := 0; t < tris; t++ {
		tri := m.Indices[3*t : 3*t+3]
		root := find(ids[tri[0]])
		if root != largest && size[root] < minTris {
			removed++
			continue
		}
		kept = append(kept, tri...)
	}
	m.Indices = kept
	return removed
}
