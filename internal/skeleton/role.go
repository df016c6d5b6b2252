package skeleton

import "fmt"

// Role is the anatomical function of a bone. Only spine, pelvis and the leg
// roles take part in skinning; everything else is RoleOther.
type Role int

const (
	RoleOther Role = iota
	RoleSpine
	RolePelvis
	RoleThigh
	RoleShin
	RoleFoot
)

var roleNames = [...]string{"other", "spine", "pelvis", "thigh", "shin", "foot"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// IsLeg reports whether the role belongs to a leg chain.
func (r Role) IsLeg() bool {
	return r == RoleThigh || r == RoleShin || r == RoleFoot
}

// IsTorso reports whether the role belongs to the trunk.
func (r Role) IsTorso() bool {
	return r == RoleSpine || r == RolePelvis
}

// ParseRole converts a role name from a rig profile. Empty means RoleOther.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleOther, nil
	}
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return RoleOther, fmt.Errorf("unknown role %q", s)
}

// Side is the body side of a bone.
type Side int

const (
	SideCenter Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "center"
}

// Opposite returns the mirrored side. Center maps to itself.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideCenter
}

// ParseSide converts a side name from a rig profile. Empty means SideCenter.
func ParseSide(s string) (Side, error) {
	switch s {
	case "", "center":
		return SideCenter, nil
	case "left", "l", "L":
		return SideLeft, nil
	case "right", "r", "R":
		return SideRight, nil
	}
	return SideCenter, fmt.Errorf("unknown side %q", s)
}
