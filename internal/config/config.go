package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/viewmatrix"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	Mesh       string `json:"mesh"`
	Skeleton   string `json:"skeleton"` // bone definitions JSON; empty uses the built-in biped
	Profile    string `json:"profile"`  // rig profile YAML; empty uses the default roles
	TextureDir string `json:"texture_dir"`
	OutputDir  string `json:"output_dir"`
	GLB        string `json:"glb"` // optional glTF binary export

	// Render settings
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Supersample int         `json:"supersample"`
	FPS         float64     `json:"fps"`
	Duration    float64     `json:"duration"` // seconds
	Background  string      `json:"background"`
	Workers     int         `json:"workers"`
	Camera      *CameraSpec `json:"camera"`

	// MinComponent drops disconnected mesh pieces with fewer triangles
	// before skinning; 0 keeps everything.
	MinComponent int `json:"min_component"`
}

// CameraSpec overrides the default camera. Fit frames the mesh bounds and
// ignores Eye and Target.
type CameraSpec struct {
	Eye    *[3]float64 `json:"eye"`
	Target *[3]float64 `json:"target"`
	FovY   float64     `json:"fov"`
	Fit    bool        `json:"fit"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file and environment
// settings. Zero values mean unset.
type Flags struct {
	BaseDir     string
	Mesh        string
	Skeleton    string
	Profile     string
	OutputDir   string
	GLB         string
	Width       int
	Height      int
	Supersample int
	FPS         float64
	Duration    float64
	Workers     int
}

// Resolve layers environment overrides and CLI flags over the file values,
// resolves relative paths against BaseDir and fills defaults.
func (c *Config) Resolve(flags Flags) error {
	if err := c.applyEnv(); err != nil {
		return err
	}

	setStr(&c.BaseDir, flags.BaseDir)
	setStr(&c.Mesh, flags.Mesh)
	setStr(&c.Skeleton, flags.Skeleton)
	setStr(&c.Profile, flags.Profile)
	setStr(&c.OutputDir, flags.OutputDir)
	setStr(&c.GLB, flags.GLB)
	setNum(&c.Width, flags.Width)
	setNum(&c.Height, flags.Height)
	setNum(&c.Supersample, flags.Supersample)
	setNum(&c.FPS, flags.FPS)
	setNum(&c.Duration, flags.Duration)
	setNum(&c.Workers, flags.Workers)

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	for _, p := range []*string{&c.Mesh, &c.Skeleton, &c.Profile, &c.TextureDir, &c.GLB} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.BaseDir, *p)
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "output")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}
	if c.TextureDir == "" && c.Mesh != "" {
		c.TextureDir = filepath.Dir(c.Mesh)
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 960
	}
	if c.Height <= 0 {
		c.Height = 540
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Duration <= 0 {
		c.Duration = 10
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Background == "" {
		c.Background = "#334d4d"
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// SweepDuration returns Duration as a time.Duration.
func (c *Config) SweepDuration() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}

// BackgroundColor parses Background: "#rrggbb" or "none" for a
// transparent background.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	s := strings.TrimSpace(c.Background)
	if s == "none" || s == "transparent" {
		return color.NRGBA{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("config: background %q: want #rrggbb", c.Background)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("config: background %q: %w", c.Background, err)
	}
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

// CameraFor returns the camera for a mesh with the given bounds.
func (c *Config) CameraFor(lo, hi mathutil.Vec3) viewmatrix.Camera {
	cam := viewmatrix.DefaultCamera()
	cc := c.Camera
	if cc == nil {
		return cam
	}
	if cc.FovY > 0 {
		cam.FovY = cc.FovY
	}
	if cc.Fit {
		return viewmatrix.FitCamera(lo, hi, cam.FovY)
	}
	if cc.Eye != nil {
		cam.Eye = mathutil.V3(*cc.Eye)
	}
	if cc.Target != nil {
		cam.Target = mathutil.V3(*cc.Target)
	}
	return cam
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNum[T int | float64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
