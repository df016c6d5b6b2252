package main

import (
	"flag"
	"fmt"
	"os"

	"heatskin-renderer/internal/mesh"
	"heatskin-renderer/internal/rig"
	"heatskin-renderer/internal/skeleton"
	"heatskin-renderer/internal/skinning"
)

func main() {
	skelPath := flag.String("skeleton", "", "Bone definitions JSON (default: built-in biped)")
	profilePath := flag.String("profile", "", "Rig profile YAML (default: built-in roles)")
	meshPath := flag.String("mesh", "", "Optional OBJ mesh; prints weight statistics")
	flag.Parse()

	profile := rig.DefaultProfile()
	defs := rig.DefaultBiped()
	var err error
	if *profilePath != "" {
		if profile, err = rig.LoadProfile(*profilePath); err != nil {
			fail(err)
		}
	}
	if *skelPath != "" {
		if defs, err = rig.LoadBones(*skelPath); err != nil {
			fail(err)
		}
	}

	sk, err := skeleton.Build(defs, profile.Roles)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Bones: %d\n", sk.Len())
	for _, i := range sk.Order() {
		b := &sk.Bones[i]
		parent := "-"
		if !b.IsRoot() {
			parent = sk.Bones[b.Parent].Name
		}
		fmt.Printf("  [%2d] %-12s role=%-6s side=%-6s parent=%-12s head=(%.2f, %.2f, %.2f) tail=(%.2f, %.2f, %.2f)\n",
			b.ID, b.Name, b.Role, b.Side, parent,
			b.Head[0], b.Head[1], b.Head[2], b.Tail[0], b.Tail[1], b.Tail[2])
	}
	for d, wave := range sk.Waves() {
		fmt.Printf("  wave %d:", d)
		for _, i := range wave {
			fmt.Printf(" %s", sk.Bones[i].Name)
		}
		fmt.Println()
	}
	if c, err := sk.Centerline(); err == nil {
		fmt.Printf("Centerline X: %.3f\n", c)
	}

	if *meshPath == "" {
		return
	}

	m, err := mesh.LoadOBJ(*meshPath)
	if err != nil {
		fail(err)
	}
	if m.MissingLib != "" {
		fmt.Printf("Warning: material library %s not found\n", m.MissingLib)
	}
	cfg, err := skinning.ConfigFromProfile(profile.Solver, sk)
	if err != nil {
		fail(err)
	}
	verts := m.SkinVertices()
	if err := skinning.ComputeWeights(verts, sk, cfg); err != nil {
		fail(err)
	}
	fallback, _ := skinning.ResolveFallback(sk, cfg)
	sum := skinning.Stats(verts, sk.Len(), fallback)

	lo, hi := m.Bounds()
	fmt.Printf("Mesh: verts=%d, tris=%d, texture=%q\n", len(m.Positions), m.TriangleCount(), m.TexPath)
	fmt.Printf("    BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
	fmt.Printf("    Fallback: %d (%s)\n", sum.Fallback, sk.Bones[fallback].Name)
	for n, c := range sum.SlotsUsed {
		fmt.Printf("    %d influences: %d\n", n, c)
	}
	fmt.Println("    --- Per bone: influenced / dominant ---")
	for i := range sk.Bones {
		if sum.PerBone[i] == 0 {
			continue
		}
		fmt.Printf("    %-12s %6d %6d\n", sk.Bones[i].Name, sum.PerBone[i], sum.Dominant[i])
	}
	if err := skinning.Validate(verts, fallback, 1e-6); err != nil {
		fmt.Printf("    INVALID: %v\n", err)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
