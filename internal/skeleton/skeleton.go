// Package skeleton builds bone hierarchies from head/tail definitions and
// propagates rest poses through them in topological order.
package skeleton

import (
	"fmt"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/rig"
)

// Bone holds rest-pose data and the current animated pose for one bone.
type Bone struct {
	ID     int
	Name   string
	Role   Role
	Side   Side
	Parent int // -1 for a root

	Head mathutil.Vec3
	Tail mathutil.Vec3

	Rest    mathutil.Mat4 // columns (right, up, primary, head)
	InvRest mathutil.Mat4
	Pose    mathutil.Mat4 // written by the animator every frame
}

// IsRoot reports whether the bone has no parent.
func (b *Bone) IsRoot() bool {
	return b.Parent < 0
}

// Skeleton is an ordered bone collection with a precomputed topological order.
// Rest data is read-only after Build; Pose is the only field meant to change.
type Skeleton struct {
	Bones []Bone

	order  []int
	waves  [][]int
	byName map[string]int
}

// Build constructs a skeleton from ordered bone definitions. roles tags bones
// by name; names missing from roles get RoleOther, entries naming unknown
// bones are ignored.
func Build(defs []rig.BoneDef, roles rig.RoleMap) (*Skeleton, error) {
	if len(defs) == 0 {
		return nil, ErrEmptySkeleton
	}

	sk := &Skeleton{
		Bones:  make([]Bone, len(defs)),
		byName: make(map[string]int, len(defs)),
	}

	// First pass: create bones and map names
	for i, d := range defs {
		if _, dup := sk.byName[d.Name]; dup {
			return nil, &DuplicateBoneError{Name: d.Name}
		}
		sk.byName[d.Name] = i

		head, tail := mathutil.V3(d.Head), mathutil.V3(d.Tail)
		rest, ok := mathutil.BoneFrame(head, tail)
		if !ok {
			return nil, &DegenerateBoneError{Name: d.Name}
		}

		b := &sk.Bones[i]
		b.ID = i
		b.Name = d.Name
		b.Parent = -1
		b.Head = head
		b.Tail = tail
		b.Rest = rest
		b.InvRest = rest.Inv()
		b.Pose = rest

		if rs, ok := roles[d.Name]; ok {
			role, err := ParseRole(rs.Role)
			if err != nil {
				return nil, fmt.Errorf("skeleton: bone %q: %w", d.Name, err)
			}
			side, err := ParseSide(rs.Side)
			if err != nil {
				return nil, fmt.Errorf("skeleton: bone %q: %w", d.Name, err)
			}
			b.Role, b.Side = role, side
		}
	}

	// Second pass: resolve parent names
	for i, d := range defs {
		if !d.HasParent() {
			continue
		}
		p, ok := sk.byName[*d.Parent]
		if !ok {
			return nil, &UnresolvedParentError{Bone: d.Name, Parent: *d.Parent}
		}
		sk.Bones[i].Parent = p
	}

	order, err := topologicalOrder(sk.Bones)
	if err != nil {
		return nil, err
	}
	sk.order = order
	sk.waves = depthWaves(sk.Bones, order)

	return sk, nil
}

// Len returns the number of bones.
func (s *Skeleton) Len() int {
	return len(s.Bones)
}

// Order returns bone indices such that every parent precedes its children.
// The slice is shared; callers must not modify it.
func (s *Skeleton) Order() []int {
	return s.order
}

// Waves groups bone indices by hierarchy depth. Bones within a wave are
// independent of each other; wave k only depends on waves before it.
func (s *Skeleton) Waves() [][]int {
	return s.waves
}

// Lookup returns the index of the named bone.
func (s *Skeleton) Lookup(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// FindRole returns the lowest-index bone carrying role on the given side.
func (s *Skeleton) FindRole(role Role, side Side) (int, error) {
	for i := range s.Bones {
		if s.Bones[i].Role == role && s.Bones[i].Side == side {
			return i, nil
		}
	}
	return -1, &UnresolvedRoleError{Role: role, Side: side}
}

// Centerline returns the X coordinate of the pelvis rest translation, the
// reference for left/right classification.
func (s *Skeleton) Centerline() (float64, error) {
	p, err := s.FindRole(RolePelvis, SideCenter)
	if err != nil {
		return 0, err
	}
	return mathutil.Translation(s.Bones[p].Rest)[0], nil
}

// ResetPose sets every bone's pose back to its rest transform.
func (s *Skeleton) ResetPose() {
	for i := range s.Bones {
		s.Bones[i].Pose = s.Bones[i].Rest
	}
}

// ComputeRestPoseMatrices propagates the bind-pose baseline through the
// hierarchy: roots take their rest transform, children compose
// parent.Pose · parent.InvRest · Rest.
func (s *Skeleton) ComputeRestPoseMatrices() {
	for _, i := range s.order {
		b := &s.Bones[i]
		if b.IsRoot() {
			b.Pose = b.Rest
			continue
		}
		p := &s.Bones[b.Parent]
		b.Pose = p.Pose.Mul4(p.InvRest).Mul4(b.Rest)
	}
}

// Clone returns a skeleton with its own bone slice. Order, waves and the
// name index are immutable and shared.
func (s *Skeleton) Clone() *Skeleton {
	c := *s
	c.Bones = make([]Bone, len(s.Bones))
	copy(c.Bones, s.Bones)
	return &c
}
