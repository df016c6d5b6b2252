package rig

// BoneDef holds one bone parsed from a skeleton definition file.
type BoneDef struct {
	Name   string     `json:"name"`
	Head   [3]float64 `json:"head"`
	Tail   [3]float64 `json:"tail"`
	Parent *string    `json:"parent"` // nil for a root bone
}

// HasParent reports whether the definition names a parent bone.
func (d BoneDef) HasParent() bool {
	return d.Parent != nil && *d.Parent != ""
}

// RoleSpec tags a bone name with an anatomical role and body side.
// Role is one of spine, pelvis, thigh, shin, foot, other.
// Side is left, right or empty (center).
type RoleSpec struct {
	Role string `yaml:"role"`
	Side string `yaml:"side,omitempty"`
}

// RoleMap maps bone names to role tags.
type RoleMap map[string]RoleSpec

// Profile is the per-rig tuning loaded from YAML: which bone plays which
// anatomical role, plus solver and animation parameters. Nil fields fall
// back to the defaults of the consuming package.
type Profile struct {
	Roles     RoleMap       `yaml:"roles"`
	Solver    SolverSpec    `yaml:"solver"`
	Animation AnimationSpec `yaml:"animation"`
}

// SolverSpec mirrors the weight solver options.
type SolverSpec struct {
	FalloffRadius         *float64 `yaml:"falloff_radius"`
	SpinePelvisBoost      *float64 `yaml:"spine_pelvis_boost"`
	FootToShinAttenuation *float64 `yaml:"foot_to_shin_attenuation"`
	LeftRightMargin       *float64 `yaml:"left_right_margin"`
	ZeroHeatEpsilon       *float64 `yaml:"zero_heat_epsilon"`
	ZeroWeightEpsilon     *float64 `yaml:"zero_weight_epsilon"`
	FallbackBone          string   `yaml:"fallback_bone"` // bone name; empty = pelvis
}

// AnimationSpec tunes the walk cycle.
type AnimationSpec struct {
	Stride *float64 `yaml:"stride"` // thigh swing amplitude, radians
	Knee   *float64 `yaml:"knee"`   // knee bend amplitude, radians
	Speed  *float64 `yaml:"speed"`  // phase speed, radians per second
}
