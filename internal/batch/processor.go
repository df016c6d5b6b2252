// Package batch renders an animation sweep to numbered WebP frames with a
// pool of workers.
package batch

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"heatskin-renderer/internal/animation"
	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/pose"
	"heatskin-renderer/internal/postprocess"
	"heatskin-renderer/internal/raster"
	"heatskin-renderer/internal/skeleton"
	"heatskin-renderer/internal/skinning"
	"heatskin-renderer/internal/viewmatrix"
)

// Config holds all shared render settings for a batch run.
type Config struct {
	OutputDir   string
	Width       int
	Height      int
	Supersample int
	Background  color.NRGBA
	Workers     int
	Camera      viewmatrix.Camera
	Logger      *slog.Logger
}

// Scene is the read-only input shared by every worker. Each worker poses
// its own clone of Skeleton.
type Scene struct {
	Skeleton *skeleton.Skeleton
	Vertices []skinning.Vertex // weighted
	UVs      [][2]float64
	Indices  []uint32
	Texture  *image.NRGBA
	Animator animation.Animator

	// TraceBone is logged at debug level on key frames; -1 disables.
	TraceBone int
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Frame   int
	Time    float64
	File    string
	Success bool
	Error   string
}

// FrameName returns the output file name of frame i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%05d.webp", i)
}

// Run renders frames 0..count-1 sampled at fps. Per-frame failures are
// reported in the results; cancelling ctx stops scheduling new frames.
func Run(ctx context.Context, cfg Config, scene *Scene, count int, fps float64) []Result {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := max(cfg.Workers, 1)

	results := make([]Result, count)
	for i := range results {
		results[i] = Result{Frame: i, Time: animation.FrameTime(i, fps), File: FrameName(i)}
	}
	if count == 0 {
		return results
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		for i := range results {
			results[i].Error = err.Error()
		}
		return results
	}

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", slog.Int64("frames", p), slog.Int("total", count), slog.Float64("fps", rate))
				}
			}
		}
	}()

	// Worker pool
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := newRenderer(cfg, scene, log)
			for idx := range frameChan {
				r.render(&results[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
send:
	for i := 0; i < count; i++ {
		select {
		case frameChan <- i:
		case <-ctx.Done():
			for j := i; j < count; j++ {
				results[j].Error = ctx.Err().Error()
			}
			break send
		}
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

// renderer is one worker's private state.
type renderer struct {
	cfg        Config
	scene      *Scene
	log        *slog.Logger
	sk         *skeleton.Skeleton
	rasterizer *raster.Renderer
	positions  []mathutil.Vec3
	normals    []mathutil.Vec3
}

func newRenderer(cfg Config, scene *Scene, log *slog.Logger) *renderer {
	return &renderer{
		cfg:        cfg,
		scene:      scene,
		log:        log,
		sk:         scene.Skeleton.Clone(),
		rasterizer: raster.NewRenderer(cfg.Camera, cfg.Width, cfg.Height, cfg.Supersample),
		positions:  make([]mathutil.Vec3, len(scene.Vertices)),
		normals:    make([]mathutil.Vec3, len(scene.Vertices)),
	}
}

func (r *renderer) render(res *Result) {
	if err := r.renderFrame(res); err != nil {
		res.Error = err.Error()
		r.log.Warn("frame failed", slog.Int("frame", res.Frame), slog.Any("err", err))
		return
	}
	res.Success = true
}

func (r *renderer) renderFrame(res *Result) error {
	if err := r.scene.Animator.Apply(r.sk, res.Time); err != nil {
		return fmt.Errorf("animate: %w", err)
	}
	skins, err := pose.ComposeSkinMatrices(r.sk)
	if err != nil {
		return err
	}
	r.trace(res.Frame, skins)

	if err := pose.Deform(r.scene.Vertices, skins, r.positions, r.normals); err != nil {
		return err
	}

	img := r.rasterizer.Render(&raster.Scene{
		Positions: r.positions,
		UVs:       r.scene.UVs,
		Indices:   r.scene.Indices,
		Texture:   r.scene.Texture,
	})

	// Post-processing: supersample downsample, then background
	if r.cfg.Supersample > 1 {
		img = postprocess.Downsample(img, r.cfg.Width, r.cfg.Height)
	}
	img = postprocess.Flatten(img, r.cfg.Background)

	return writeWebP(filepath.Join(r.cfg.OutputDir, res.File), img)
}

// trace logs the traced bone's skin translation on the first frames and
// every 150th frame.
func (r *renderer) trace(frame int, skins []mathutil.Mat4) {
	b := r.scene.TraceBone
	if b < 0 || b >= len(skins) || (frame >= 3 && frame%150 != 0) {
		return
	}
	t := mathutil.Translation(skins[b])
	r.log.Debug("bone transform",
		slog.Int("frame", frame),
		slog.String("bone", r.sk.Bones[b].Name),
		slog.Any("translation", [3]float64(t)))
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
