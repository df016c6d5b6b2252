package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"heatskin-renderer/internal/mathutil"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 || len(m.Positions) != 6 {
		t.Fatalf("triangles = %d, vertices = %d", m.TriangleCount(), len(m.Positions))
	}
	// Fan: (1,2,3), (1,3,4)
	want := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for i, p := range want {
		if m.Positions[i] != p {
			t.Errorf("position %d = %v, want %v", i, m.Positions[i], p)
		}
		if m.Indices[i] != uint32(i) {
			t.Errorf("index %d = %d", i, m.Indices[i])
		}
	}
	if !m.HasUVs || m.UVs[2] != [2]float64{1, 1} {
		t.Errorf("uv = %v", m.UVs)
	}
	if m.Normals[0] != (mathutil.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v", m.Normals[0])
	}
}

func TestParseOBJCornerForms(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"position only", "f 1 2 3"},
		{"position and uv", "f 1/1 2/1 3/1"},
		{"position and normal", "f 1//1 2//1 3//1"},
		{"negative", "f -3/-1/-1 -2/-1/-1 -1/-1/-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.5 0.5\nvn 0 0 1\n" + tt.face + "\n"
			m, err := ParseOBJ(strings.NewReader(src))
			if err != nil {
				t.Fatal(err)
			}
			if m.TriangleCount() != 1 {
				t.Fatalf("triangles = %d", m.TriangleCount())
			}
			if m.Positions[2] != (mathutil.Vec3{0, 1, 0}) {
				t.Errorf("position = %v", m.Positions[2])
			}
			if !mathutil.NearVec3(m.Normals[0], mathutil.Vec3{0, 0, 1}, 1e-12) {
				t.Errorf("normal = %v", m.Normals[0])
			}
		})
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"bad corner", "v 0 0 0\nf 1/1/1/1 1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 0 -1\nv 2 0 0\nv 3 0 0\nf 1 2 3\nf 1 4 5\n"
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !mathutil.NearVec3(m.Normals[i], mathutil.Vec3{0, 1, 0}, 1e-12) {
			t.Errorf("normal %d = %v", i, m.Normals[i])
		}
	}
	// The collinear face falls back to +Y.
	if m.Normals[4] != (mathutil.Vec3{0, 1, 0}) {
		t.Errorf("degenerate normal = %v", m.Normals[4])
	}
}

func TestLoadOBJMaterial(t *testing.T) {
	dir := t.TempDir()
	obj := "mtllib body.mtl\nusemtl skin\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	mtl := "newmtl other\nmap_Kd other.png\nnewmtl skin\nKd 1 1 1\nmap_Kd -s 1 1 1 skin.tga\n"
	if err := os.WriteFile(filepath.Join(dir, "body.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "body.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadOBJ(filepath.Join(dir, "body.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "skin.tga"); m.TexPath != want {
		t.Errorf("TexPath = %q, want %q", m.TexPath, want)
	}

	if _, err := LoadOBJ(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOBJMissingMaterialLib(t *testing.T) {
	dir := t.TempDir()
	obj := "mtllib body.mtl\nusemtl skin\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "body.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadOBJ(filepath.Join(dir, "body.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 1 || m.TexPath != "" {
		t.Errorf("tris = %d, TexPath = %q", m.TriangleCount(), m.TexPath)
	}
	if want := filepath.Join(dir, "body.mtl"); m.MissingLib != want {
		t.Errorf("MissingLib = %q, want %q", m.MissingLib, want)
	}
}

func TestBoundsAndSkinVertices(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := m.Bounds()
	if lo != (mathutil.Vec3{0, 0, 0}) || hi != (mathutil.Vec3{1, 1, 0}) {
		t.Errorf("bounds = %v %v", lo, hi)
	}
	vs := m.SkinVertices()
	if len(vs) != 6 || vs[5].Position != (mathutil.Vec3{0, 1, 0}) {
		t.Errorf("skin vertices = %v", vs)
	}
}

const strayOBJ = `# two quads sharing an edge plus a stray triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
v 9 9 9
v 9.1 9 9
v 9 9.1 9
f 1 2 3 4
f 2 5 6 3
f 7 8 9
`

func TestRemoveSmallComponents(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(strayOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 5 {
		t.Fatalf("triangles = %d", m.TriangleCount())
	}

	if n := m.RemoveSmallComponents(1); n != 0 {
		t.Errorf("threshold 1 removed %d", n)
	}
	if n := m.RemoveSmallComponents(2); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if m.TriangleCount() != 4 {
		t.Fatalf("triangles = %d", m.TriangleCount())
	}
	for _, i := range m.Indices {
		if m.Positions[i][0] > 5 {
			t.Errorf("stray vertex %d survived", i)
		}
	}

	// The largest piece stays even when it is below the threshold.
	if n := m.RemoveSmallComponents(100); n != 0 {
		t.Errorf("single component lost %d triangles", n)
	}
}
