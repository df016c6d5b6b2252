package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds raw environment values layered between the config file
// and CLI flags.
type envOverrides struct {
	BaseDir     string  `env:"HEATSKIN_BASE_DIR"`
	Mesh        string  `env:"HEATSKIN_MESH"`
	Skeleton    string  `env:"HEATSKIN_SKELETON"`
	Profile     string  `env:"HEATSKIN_PROFILE"`
	TextureDir  string  `env:"HEATSKIN_TEXTURE_DIR"`
	OutputDir   string  `env:"HEATSKIN_OUTPUT_DIR"`
	GLB         string  `env:"HEATSKIN_GLB"`
	Width       int     `env:"HEATSKIN_WIDTH"`
	Height      int     `env:"HEATSKIN_HEIGHT"`
	Supersample int     `env:"HEATSKIN_SUPERSAMPLE"`
	FPS         float64 `env:"HEATSKIN_FPS"`
	Duration    float64 `env:"HEATSKIN_DURATION"`
	Background  string  `env:"HEATSKIN_BACKGROUND"`
	Workers     int     `env:"HEATSKIN_WORKERS"`

	MinComponent int `env:"HEATSKIN_MIN_COMPONENT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var e envOverrides
	if err := ParseEnv(&e); err != nil {
		return err
	}
	setStr(&c.BaseDir, e.BaseDir)
	setStr(&c.Mesh, e.Mesh)
	setStr(&c.Skeleton, e.Skeleton)
	setStr(&c.Profile, e.Profile)
	setStr(&c.TextureDir, e.TextureDir)
	setStr(&c.OutputDir, e.OutputDir)
	setStr(&c.GLB, e.GLB)
	setStr(&c.Background, e.Background)
	setNum(&c.Width, e.Width)
	setNum(&c.Height, e.Height)
	setNum(&c.Supersample, e.Supersample)
	setNum(&c.FPS, e.FPS)
	setNum(&c.Duration, e.Duration)
	setNum(&c.Workers, e.Workers)
	setNum(&c.MinComponent, e.MinComponent)
	return nil
}
