package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"heatskin-renderer/internal/animation"
	"heatskin-renderer/internal/batch"
	"heatskin-renderer/internal/config"
	"heatskin-renderer/internal/export"
	"heatskin-renderer/internal/mesh"
	"heatskin-renderer/internal/rig"
	"heatskin-renderer/internal/skeleton"
	"heatskin-renderer/internal/skinning"
	"heatskin-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	baseDir := flag.String("base", "", "Base directory for relative paths (default: working directory)")
	meshPath := flag.String("mesh", "", "Wavefront OBJ mesh to skin")
	skelPath := flag.String("skeleton", "", "Bone definitions JSON (default: built-in biped)")
	profilePath := flag.String("profile", "", "Rig profile YAML (default: built-in roles)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/output)")
	glbPath := flag.String("glb", "", "Also export the skinned mesh and animation as .glb")
	width := flag.Int("width", 0, "Frame width in pixels (default: 960)")
	height := flag.Int("height", 0, "Frame height in pixels (default: 540)")
	supersample := flag.Int("supersample", 0, "Supersampling factor (default: 2)")
	fps := flag.Float64("fps", 0, "Frames per second (default: 30)")
	duration := flag.Float64("duration", 0, "Sweep length in seconds (default: 10)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	verbose := flag.Bool("v", false, "Debug logging (bone trace on key frames)")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fatal("loading config", err)
		}
	}

	// Env and CLI flags override config file
	err := cfg.Resolve(config.Flags{
		BaseDir:     *baseDir,
		Mesh:        *meshPath,
		Skeleton:    *skelPath,
		Profile:     *profilePath,
		OutputDir:   *outputDir,
		GLB:         *glbPath,
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
		FPS:         *fps,
		Duration:    *duration,
		Workers:     *workers,
	})
	if err != nil {
		fatal("config", err)
	}
	if cfg.Mesh == "" {
		fmt.Fprintln(os.Stderr, "Error: no mesh given. Use -mesh or config.json.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Rig
	profile := rig.DefaultProfile()
	if cfg.Profile != "" {
		if profile, err = rig.LoadProfile(cfg.Profile); err != nil {
			fatal("loading profile", err)
		}
	}
	defs := rig.DefaultBiped()
	if cfg.Skeleton != "" {
		if defs, err = rig.LoadBones(cfg.Skeleton); err != nil {
			fatal("loading skeleton", err)
		}
	}
	sk, err := skeleton.Build(defs, profile.Roles)
	if err != nil {
		fatal("building skeleton", err)
	}
	sk.ComputeRestPoseMatrices()
	logBones(log, sk)

	// Mesh and weights
	m, err := mesh.LoadOBJ(cfg.Mesh)
	if err != nil {
		fatal("loading mesh", err)
	}
	if m.MissingLib != "" {
		log.Warn("material library not found", slog.String("path", m.MissingLib))
	}
	if cfg.MinComponent > 0 {
		if n := m.RemoveSmallComponents(cfg.MinComponent); n > 0 {
			log.Info("removed small components", slog.Int("triangles", n))
		}
	}
	lo, hi := m.Bounds()
	log.Info("mesh", slog.String("path", cfg.Mesh), slog.Int("vertices", len(m.Positions)),
		slog.Int("triangles", m.TriangleCount()), slog.Any("min", lo), slog.Any("max", hi))

	solverCfg, err := skinning.ConfigFromProfile(profile.Solver, sk)
	if err != nil {
		fatal("solver config", err)
	}
	verts := m.SkinVertices()
	start := time.Now()
	if err := skinning.ComputeWeightsParallel(ctx, verts, sk, solverCfg, cfg.Workers); err != nil {
		fatal("computing weights", err)
	}
	fallback, _ := skinning.ResolveFallback(sk, solverCfg)
	if err := skinning.Validate(verts, fallback, 1e-6); err != nil {
		fatal("weights", err)
	}
	sum := skinning.Stats(verts, sk.Len(), fallback)
	log.Info("weights", slog.Duration("elapsed", time.Since(start)),
		slog.Int("fallback", sum.Fallback), slog.Any("slots", sum.SlotsUsed))

	walk, err := animation.NewWalk(sk, profile.Animation)
	if err != nil {
		fatal("animation", err)
	}

	// Texture
	tex := loadTexture(log, cfg, m)

	bg, _ := cfg.BackgroundColor()
	count := animation.FrameCount(cfg.FPS, cfg.SweepDuration())
	trace, _ := sk.FindRole(skeleton.RoleThigh, skeleton.SideLeft)

	fmt.Printf("Heat-diffusion skinning renderer → WebP\n")
	fmt.Printf("Frames: %d (%.0f fps), Size: %dx%d, Workers: %d\n", count, cfg.FPS, cfg.Width, cfg.Height, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start = time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Background:  bg,
		Workers:     cfg.Workers,
		Camera:      cfg.CameraFor(lo, hi),
		Logger:      log,
	}
	scene := &batch.Scene{
		Skeleton:  sk,
		Vertices:  verts,
		UVs:       m.UVs,
		Indices:   m.Indices,
		Texture:   tex,
		Animator:  walk,
		TraceBone: trace,
	}

	results := batch.Run(ctx, batchCfg, scene, count, cfg.FPS)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, count)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors[:min(len(errors), 20)] {
			fmt.Printf("  %s: %s\n", e.File, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, batchCfg, cfg.FPS, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if cfg.GLB != "" {
		model := export.Model{
			Name:     strings.TrimSuffix(filepath.Base(cfg.Mesh), filepath.Ext(cfg.Mesh)),
			Skeleton: sk,
			Vertices: verts,
			Indices:  m.Indices,
		}
		if m.HasUVs {
			model.UVs = m.UVs
		}
		if tex != nil {
			model.Texture = tex
		}
		clip := &export.Clip{Name: "walk", Animator: walk, FPS: cfg.FPS, Frames: count}
		if err := export.WriteGLB(ctx, cfg.GLB, model, clip); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: glb export failed: %v\n", err)
		} else {
			fmt.Printf("GLB: %s\n", cfg.GLB)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}

func logBones(log *slog.Logger, sk *skeleton.Skeleton) {
	for _, i := range sk.Order() {
		b := &sk.Bones[i]
		log.Info("bone", slog.Int("id", b.ID), slog.String("name", b.Name),
			slog.String("role", b.Role.String()), slog.String("side", b.Side.String()),
			slog.Int("parent", b.Parent), slog.Any("head", b.Head))
	}
}

// loadTexture resolves the mesh's map_Kd through the texture directory. A
// missing texture is not fatal; the mesh renders in the base color.
func loadTexture(log *slog.Logger, cfg config.Config, m *mesh.Mesh) *image.NRGBA {
	if m.TexPath == "" || !m.HasUVs {
		return nil
	}
	idx := texture.BuildIndex(cfg.TextureDir)
	cache := texture.NewCache(idx)
	log.Debug("textures indexed", slog.Int("count", idx.Len()))
	tex := cache.Resolve(m.TexPath)
	if tex == nil {
		log.Warn("texture not found", slog.String("name", m.TexPath))
	}
	return tex
}
