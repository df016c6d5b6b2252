package skinning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/rig"
	"heatskin-renderer/internal/skeleton"
)

func buildBiped(t *testing.T, roles rig.RoleMap) *skeleton.Skeleton {
	t.Helper()
	sk, err := skeleton.Build(rig.DefaultBiped(), roles)
	if err != nil {
		t.Fatal(err)
	}
	return sk
}

func bone(t *testing.T, sk *skeleton.Skeleton, name string) int {
	t.Helper()
	i, ok := sk.Lookup(name)
	if !ok {
		t.Fatalf("bone %s missing", name)
	}
	return i
}

// grid covers the biped and the empty space around it.
func grid() []Vertex {
	var vs []Vertex
	for x := -2.0; x <= 2.0; x += 0.5 {
		for y := -1.0; y <= 9.0; y += 0.5 {
			for z := -1.0; z <= 1.0; z += 0.5 {
				vs = append(vs, Vertex{Position: mathutil.Vec3{x, y, z}})
			}
		}
	}
	return vs
}

func solveOne(t *testing.T, sk *skeleton.Skeleton, cfg Config, p mathutil.Vec3) Vertex {
	t.Helper()
	vs := []Vertex{{Position: p}}
	if err := ComputeWeights(vs, sk, cfg); err != nil {
		t.Fatal(err)
	}
	return vs[0]
}

func weightOn(v Vertex, b int) float64 {
	for _, in := range v.Influences {
		if in.Bone == b {
			return in.Weight
		}
	}
	return 0
}

func TestComputeWeightsInvariants(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	vs := grid()
	if err := ComputeWeights(vs, sk, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	pelvis := bone(t, sk, "pelvis")
	if err := Validate(vs, pelvis, 1e-9); err != nil {
		t.Fatal(err)
	}

	head := bone(t, sk, "head")
	for i, v := range vs {
		for _, in := range v.Influences {
			if in.Weight > 0 && in.Bone == head {
				t.Fatalf("vertex %d weighted to a bone with no skinning role", i)
			}
		}
	}
}

func TestFallbackFarVertex(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	pelvis := bone(t, sk, "pelvis")

	v := solveOne(t, sk, DefaultConfig(), mathutil.Vec3{0, 1000, 0})
	want := [MaxInfluences]Influence{{pelvis, 1}, {pelvis, 0}, {pelvis, 0}, {pelvis, 0}}
	if v.Influences != want {
		t.Errorf("influences = %v, want %v", v.Influences, want)
	}

	cfg := DefaultConfig()
	cfg.FallbackBone = bone(t, sk, "spine")
	v = solveOne(t, sk, cfg, mathutil.Vec3{0, 1000, 0})
	if !IsFallback(&v, cfg.FallbackBone) {
		t.Errorf("configured fallback not used: %v", v.Influences)
	}
}

func TestLeftRightIsolation(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	cfg := DefaultConfig()
	center, err := sk.Centerline()
	if err != nil {
		t.Fatal(err)
	}

	left := []int{bone(t, sk, "thigh.L"), bone(t, sk, "shin.L"), bone(t, sk, "foot.L")}
	right := []int{bone(t, sk, "thigh.R"), bone(t, sk, "shin.R"), bone(t, sk, "foot.R")}

	tests := []struct {
		name    string
		x       float64
		skipped []int
	}{
		{"left of centerline", center + 2*cfg.LeftRightMargin, right},
		{"right of centerline", center - 2*cfg.LeftRightMargin, left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, y := range []float64{0.5, 2, 3.5, 4.2} {
				v := solveOne(t, sk, cfg, mathutil.Vec3{tt.x, y, 0})
				for _, b := range tt.skipped {
					if w := weightOn(v, b); w != 0 {
						t.Errorf("y=%v: bone %s has weight %v", y, sk.Bones[b].Name, w)
					}
				}
			}
		})
	}

	// Inside the margin both legs contribute.
	v := solveOne(t, sk, cfg, mathutil.Vec3{center + cfg.LeftRightMargin/2, 2, 0})
	if weightOn(v, bone(t, sk, "shin.L")) == 0 || weightOn(v, bone(t, sk, "shin.R")) == 0 {
		t.Errorf("expected both shins inside the margin, got %v", v.Influences)
	}
}

func TestFootRedirect(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	shin := bone(t, sk, "shin.L")
	feet := []int{bone(t, sk, "foot.L"), bone(t, sk, "foot.R")}

	v := solveOne(t, sk, DefaultConfig(), mathutil.Vec3{0.5, 0.3, 0.3})
	if v.Influences[0].Bone != shin {
		t.Errorf("dominant bone = %s, want shin.L", sk.Bones[v.Influences[0].Bone].Name)
	}

	vs := grid()
	if err := ComputeWeights(vs, sk, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	for i, v := range vs {
		for _, f := range feet {
			if weightOn(v, f) != 0 {
				t.Fatalf("vertex %d weighted to %s", i, sk.Bones[f].Name)
			}
		}
	}
}

func TestPaddingSkipsFeet(t *testing.T) {
	// Feet first so they hold the lowest bone indices.
	var defs []rig.BoneDef
	for _, d := range rig.DefaultBiped() {
		if strings.HasPrefix(d.Name, "foot.") {
			defs = append([]rig.BoneDef{d}, defs...)
		} else {
			defs = append(defs, d)
		}
	}
	sk, err := skeleton.Build(defs, rig.DefaultRoles())
	if err != nil {
		t.Fatal(err)
	}
	if sk.Bones[0].Role != skeleton.RoleFoot || sk.Bones[1].Role != skeleton.RoleFoot {
		t.Fatalf("bones 0,1 = %s, %s", sk.Bones[0].Name, sk.Bones[1].Name)
	}

	cfg := DefaultConfig()
	cfg.FalloffRadius = 0.1
	pelvis := bone(t, sk, "pelvis")
	v := solveOne(t, sk, cfg, mathutil.Vec3{0.5, 0.5, 0.9})
	if v.Influences[0].Bone != bone(t, sk, "shin.L") || v.Influences[0].Weight != 1 {
		t.Fatalf("influences = %v, want shin.L first with full weight", v.Influences)
	}
	for k, in := range v.Influences {
		if r := sk.Bones[in.Bone].Role; r == skeleton.RoleFoot || r == skeleton.RoleOther {
			t.Errorf("slot %d bound to %s (%s)", k, sk.Bones[in.Bone].Name, r)
		}
	}
	if err := Validate([]Vertex{v}, pelvis, 1e-9); err != nil {
		t.Error(err)
	}
}

// The pelvis X is the centerline and +X is the character's left, so a vertex
// at centerline - 2*margin sits on the right leg and drops the left chain.
func TestIsolationDirection(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	cfg := DefaultConfig()
	center, err := sk.Centerline()
	if err != nil {
		t.Fatal(err)
	}

	v := solveOne(t, sk, cfg, mathutil.Vec3{center - 2*cfg.LeftRightMargin, 2, 0})
	for _, name := range []string{"thigh.L", "shin.L"} {
		if w := weightOn(v, bone(t, sk, name)); w != 0 {
			t.Errorf("%s weight = %v, want 0", name, w)
		}
	}
	if w := weightOn(v, bone(t, sk, "shin.R")); w == 0 {
		t.Errorf("shin.R weight = 0, want the right leg to keep its influence: %v", v.Influences)
	}
}

func TestSpinePelvisBoost(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	pelvis := bone(t, sk, "pelvis")
	p := mathutil.Vec3{0.3, 3.8, 0.2}

	plain := DefaultConfig()
	plain.SpinePelvisBoost = 1
	low := weightOn(solveOne(t, sk, plain, p), pelvis)
	high := weightOn(solveOne(t, sk, DefaultConfig(), p), pelvis)
	if !(high > low) {
		t.Errorf("boosted pelvis weight %v not above unboosted %v", high, low)
	}
}

func TestTieKeepsLowerIndex(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	l, r := bone(t, sk, "shin.L"), bone(t, sk, "shin.R")

	// Exactly on the centerline the two legs are mirror images.
	v := solveOne(t, sk, DefaultConfig(), mathutil.Vec3{0, 3, 0})
	if v.Influences[0].Bone != l || v.Influences[1].Bone != r {
		t.Fatalf("order = %v, want shin.L then shin.R", v.Influences)
	}
	if v.Influences[0].Weight != v.Influences[1].Weight {
		t.Errorf("mirrored weights differ: %v", v.Influences)
	}
}

func TestDeterminism(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	a, b, c := grid(), grid(), grid()
	if err := ComputeWeights(a, sk, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if err := ComputeWeights(b, sk, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if err := ComputeWeightsParallel(context.Background(), c, sk, DefaultConfig(), 3); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Influences != b[i].Influences {
			t.Fatalf("vertex %d differs between runs", i)
		}
		if a[i].Influences != c[i].Influences {
			t.Fatalf("vertex %d differs between sequential and parallel", i)
		}
	}
}

func TestComputeWeightsErrors(t *testing.T) {
	noShin := rig.DefaultRoles()
	delete(noShin, "shin.R")
	noPelvis := rig.DefaultRoles()
	delete(noPelvis, "pelvis")

	var roleErr *skeleton.UnresolvedRoleError
	err := ComputeWeights(nil, buildBiped(t, noShin), DefaultConfig())
	if !errors.As(err, &roleErr) || roleErr.Role != skeleton.RoleShin || roleErr.Side != skeleton.SideRight {
		t.Errorf("missing shin.R: err = %v", err)
	}
	err = ComputeWeights(nil, buildBiped(t, noPelvis), DefaultConfig())
	if !errors.As(err, &roleErr) || roleErr.Role != skeleton.RolePelvis {
		t.Errorf("missing pelvis: err = %v", err)
	}

	if err := ComputeWeights(nil, nil, DefaultConfig()); !errors.Is(err, skeleton.ErrEmptySkeleton) {
		t.Errorf("nil skeleton: err = %v", err)
	}

	cfg := DefaultConfig()
	cfg.FalloffRadius = 0
	var cfgErr *ConfigError
	if err := ComputeWeights(nil, buildBiped(t, rig.DefaultRoles()), cfg); !errors.As(err, &cfgErr) {
		t.Errorf("zero radius: err = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative radius", func(c *Config) { c.FalloffRadius = -1 }, false},
		{"boost below one", func(c *Config) { c.SpinePelvisBoost = 0.5 }, false},
		{"attenuation above one", func(c *Config) { c.FootToShinAttenuation = 1.5 }, false},
		{"zero attenuation", func(c *Config) { c.FootToShinAttenuation = 0 }, true},
		{"negative margin", func(c *Config) { c.LeftRightMargin = -0.1 }, false},
		{"negative epsilon", func(c *Config) { c.ZeroHeatEpsilon = -1 }, false},
		{"fallback out of range", func(c *Config) { c.FallbackBone = 10 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate(10)
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestConfigFromProfile(t *testing.T) {
	sk := buildBiped(t, rig.DefaultRoles())
	r := 2.5
	cfg, err := ConfigFromProfile(rig.SolverSpec{FalloffRadius: &r, FallbackBone: "spine"}, sk)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FalloffRadius != 2.5 || cfg.SpinePelvisBoost != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FallbackBone != bone(t, sk, "spine") {
		t.Errorf("fallback = %d", cfg.FallbackBone)
	}

	if _, err := ConfigFromProfile(rig.SolverSpec{FallbackBone: "tail"}, sk); err == nil {
		t.Error("expected error for unknown fallback bone")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		in   [MaxInfluences]Influence
	}{
		{"sum", [MaxInfluences]Influence{{1, 0.5}, {2, 0.2}, {3, 0}, {4, 0}}},
		{"order", [MaxInfluences]Influence{{1, 0.2}, {2, 0.8}, {3, 0}, {4, 0}}},
		{"duplicate", [MaxInfluences]Influence{{1, 0.6}, {1, 0.4}, {3, 0}, {4, 0}}},
		{"negative", [MaxInfluences]Influence{{1, 1.2}, {2, 0}, {3, 0}, {4, -0.2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]Vertex{{Influences: tt.in}}, 0, 1e-9)
			var inv *InvariantError
			if !errors.As(err, &inv) {
				t.Fatalf("err = %v, want *InvariantError", err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	vs := []Vertex{
		{Influences: [MaxInfluences]Influence{{0, 1}, {0, 0}, {0, 0}, {0, 0}}},
		{Influences: [MaxInfluences]Influence{{2, 0.7}, {1, 0.3}, {0, 0}, {3, 0}}},
	}
	s := Stats(vs, 4, 0)
	if s.Vertices != 2 || s.Fallback != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.PerBone[0] != 1 || s.PerBone[1] != 1 || s.PerBone[2] != 1 || s.PerBone[3] != 0 {
		t.Errorf("per bone = %v", s.PerBone)
	}
	if s.Dominant[2] != 1 || s.SlotsUsed[1] != 1 || s.SlotsUsed[2] != 1 {
		t.Errorf("stats = %+v", s)
	}
}
