package skinning

import (
	"fmt"

	"heatskin-renderer/internal/rig"
	"heatskin-renderer/internal/skeleton"
)

// Config holds the tunable options of the weight solver.
type Config struct {
	FalloffRadius         float64 // heat kernel width, > 0
	SpinePelvisBoost      float64 // torso heat multiplier, >= 1
	FootToShinAttenuation float64 // share of foot heat given to the shin, [0, 1]
	LeftRightMargin       float64 // dead zone around the centerline, >= 0
	ZeroHeatEpsilon       float64 // total heat below this binds to FallbackBone
	ZeroWeightEpsilon     float64 // per-bone heat at or below this is not selected
	FallbackBone          int     // bone index; negative selects the pelvis
}

// DefaultConfig returns the values the stock biped was tuned with.
func DefaultConfig() Config {
	return Config{
		FalloffRadius:         1.0,
		SpinePelvisBoost:      2.0,
		FootToShinAttenuation: 0.5,
		LeftRightMargin:       0.1,
		ZeroHeatEpsilon:       1e-8,
		ZeroWeightEpsilon:     1e-6,
		FallbackBone:          -1,
	}
}

// ConfigError reports an out-of-range solver option.
type ConfigError struct {
	Field string
	Value float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("skinning: invalid %s: %v", e.Field, e.Value)
}

// Validate checks option ranges. boneCount bounds FallbackBone.
func (c Config) Validate(boneCount int) error {
	switch {
	case !(c.FalloffRadius > 0):
		return &ConfigError{"falloff radius", c.FalloffRadius}
	case !(c.SpinePelvisBoost >= 1):
		return &ConfigError{"spine/pelvis boost", c.SpinePelvisBoost}
	case !(c.FootToShinAttenuation >= 0 && c.FootToShinAttenuation <= 1):
		return &ConfigError{"foot-to-shin attenuation", c.FootToShinAttenuation}
	case !(c.LeftRightMargin >= 0):
		return &ConfigError{"left/right margin", c.LeftRightMargin}
	case !(c.ZeroHeatEpsilon >= 0):
		return &ConfigError{"zero heat epsilon", c.ZeroHeatEpsilon}
	case !(c.ZeroWeightEpsilon >= 0):
		return &ConfigError{"zero weight epsilon", c.ZeroWeightEpsilon}
	case c.FallbackBone >= boneCount:
		return &ConfigError{"fallback bone", float64(c.FallbackBone)}
	}
	return nil
}

// ConfigFromProfile overlays the options set in a rig profile on DefaultConfig
// and resolves the fallback bone name against sk.
func ConfigFromProfile(spec rig.SolverSpec, sk *skeleton.Skeleton) (Config, error) {
	cfg := DefaultConfig()
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.FalloffRadius, spec.FalloffRadius)
	set(&cfg.SpinePelvisBoost, spec.SpinePelvisBoost)
	set(&cfg.FootToShinAttenuation, spec.FootToShinAttenuation)
	set(&cfg.LeftRightMargin, spec.LeftRightMargin)
	set(&cfg.ZeroHeatEpsilon, spec.ZeroHeatEpsilon)
	set(&cfg.ZeroWeightEpsilon, spec.ZeroWeightEpsilon)

	if spec.FallbackBone != "" {
		i, ok := sk.Lookup(spec.FallbackBone)
		if !ok {
			return cfg, fmt.Errorf("skinning: fallback bone %q not in skeleton", spec.FallbackBone)
		}
		cfg.FallbackBone = i
	}

	return cfg, cfg.Validate(sk.Len())
}

// ResolveFallback returns the bone index unweighted vertices bind to: the
// configured bone, or the pelvis when none is set.
func ResolveFallback(sk *skeleton.Skeleton, cfg Config) (int, error) {
	if cfg.FallbackBone >= 0 {
		return cfg.FallbackBone, nil
	}
	return sk.FindRole(skeleton.RolePelvis, skeleton.SideCenter)
}
