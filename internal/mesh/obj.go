// Package mesh loads Wavefront OBJ geometry.
package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/skinning"
)

// LoadOBJ reads an OBJ file. When the file names a material library the
// diffuse map of the first material used becomes TexPath. A library that
// does not exist leaves TexPath empty and is recorded in MissingLib.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	m, lib, err := parseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: parse %s: %w", path, err)
	}

	if lib.file != "" {
		dir := filepath.Dir(path)
		libPath := filepath.Join(dir, lib.file)
		maps, err := loadMTL(libPath)
		if errors.Is(err, fs.ErrNotExist) {
			m.MissingLib = libPath
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		if tex, ok := maps[lib.material]; ok {
			m.TexPath = filepath.Join(dir, tex)
		}
	}
	return m, nil
}

// ParseOBJ reads OBJ geometry from r. Material statements are ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m, _, err := parseOBJ(r)
	return m, err
}

type materialRef struct {
	file     string
	material string
}

type corner struct {
	v, vt, vn int // resolved 0-based indices, -1 when absent
}

func parseOBJ(r io.Reader) (*Mesh, materialRef, error) {
	var (
		positions []mathutil.Vec3
		normals   []mathutil.Vec3
		uvs       [][2]float64
		corners   []corner
		lib       materialRef
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, lib, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mathutil.Vec3{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, lib, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, mathutil.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, lib, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, [2]float64{v[0], v[1]})
		case "f":
			if len(fields) < 4 {
				return nil, lib, fmt.Errorf("line %d: face with %d corners", line, len(fields)-1)
			}
			poly := make([]corner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, lib, fmt.Errorf("line %d: %w", line, err)
				}
				poly = append(poly, c)
			}
			// Fan triangulation around the first corner
			for k := 1; k+1 < len(poly); k++ {
				corners = append(corners, poly[0], poly[k], poly[k+1])
			}
		case "mtllib":
			if lib.file == "" && len(fields) > 1 {
				lib.file = strings.Join(fields[1:], " ")
			}
		case "usemtl":
			if lib.material == "" && len(fields) > 1 {
				lib.material = fields[1]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, lib, err
	}

	m := &Mesh{
		Positions: make([]mathutil.Vec3, len(corners)),
		Normals:   make([]mathutil.Vec3, len(corners)),
		UVs:       make([][2]float64, len(corners)),
		Indices:   make([]uint32, len(corners)),
		HasUVs:    len(uvs) > 0,
	}
	missingNormal := false
	for i, c := range corners {
		m.Positions[i] = positions[c.v]
		if c.vt >= 0 {
			m.UVs[i] = uvs[c.vt]
		}
		if c.vn >= 0 {
			m.Normals[i] = normals[c.vn]
		} else {
			missingNormal = true
		}
		m.Indices[i] = uint32(i)
	}
	if missingNormal {
		m.GenerateNormals()
	}
	return m, lib, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseCorner decodes v, v/vt, v//vn or v/vt/vn. Negative indices count
// back from the last element read so far.
func parseCorner(tok string, nv, nt, nn int) (corner, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return corner{}, fmt.Errorf("bad face corner %q", tok)
	}
	c := corner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil {
		return corner{}, err
	}
	if c.v < 0 {
		return corner{}, fmt.Errorf("face corner %q has no position", tok)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nt); err != nil {
			return corner{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nn); err != nil {
			return corner{}, err
		}
	}
	return c, nil
}

func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d defined)", i, n)
}

// GenerateNormals replaces the normals with face normals accumulated per
// vertex and renormalized. Degenerate triangles contribute nothing and a
// vertex left without a direction gets +Y.
func (m *Mesh) GenerateNormals() {
	for i := range m.Normals {
		m.Normals[i] = mathutil.Vec3{}
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		e1 := m.Positions[i1].Sub(m.Positions[i0])
		e2 := m.Positions[i2].Sub(m.Positions[i0])
		n, ok := mathutil.SafeNormalize(e1.Cross(e2))
		if !ok {
			continue
		}
		m.Normals[i0] = m.Normals[i0].Add(n)
		m.Normals[i1] = m.Normals[i1].Add(n)
		m.Normals[i2] = m.Normals[i2].Add(n)
	}
	for i, n := range m.Normals {
		if u, ok := mathutil.SafeNormalize(n); ok {
			m.Normals[i] = u
		} else {
			m.Normals[i] = mathutil.Vec3{0, 1, 0}
		}
	}
}

// SkinVertices returns unweighted solver input for every mesh vertex.
func (m *Mesh) SkinVertices() []skinning.Vertex {
	vs := make([]skinning.Vertex, len(m.Positions))
	for i := range vs {
		vs[i].Position = m.Positions[i]
		vs[i].Normal = m.Normals[i]
	}
	return vs
}

// loadMTL maps material names to their diffuse texture file.
func loadMTL(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	maps := make(map[string]string)
	var current string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			current = fields[1]
		case "map_Kd":
			// Options such as -s or -o precede the file name.
			maps[current] = fields[len(fields)-1]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read %s: %w", path, err)
	}
	return maps, nil
}
