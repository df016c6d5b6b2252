package rig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultRoles is the role map for the stock biped asset (Blender metarig names).
func DefaultRoles() RoleMap {
	return RoleMap{
		"pelvis":    {Role: "pelvis"},
		"spine":     {Role: "spine"},
		"spine.001": {Role: "spine"},
		"spine.002": {Role: "spine"},
		"spine.003": {Role: "spine"},
		"thigh.L":   {Role: "thigh", Side: "left"},
		"shin.L":    {Role: "shin", Side: "left"},
		"foot.L":    {Role: "foot", Side: "left"},
		"thigh.R":   {Role: "thigh", Side: "right"},
		"shin.R":    {Role: "shin", Side: "right"},
		"foot.R":    {Role: "foot", Side: "right"},
	}
}

// LoadProfile reads a YAML rig profile. An empty role map is replaced by DefaultRoles.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("rig: read %s: %w", path, err)
	}

	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("rig: parse %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML rig profile.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return Profile{}, err
	}
	if len(p.Roles) == 0 {
		p.Roles = DefaultRoles()
	}
	return p, nil
}

// DefaultProfile returns a profile with the default role map and no overrides.
func DefaultProfile() Profile {
	return Profile{Roles: DefaultRoles()}
}
