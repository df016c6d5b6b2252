package skeleton

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySkeleton is returned when a skeleton has no bones.
var ErrEmptySkeleton = errors.New("skeleton: no bones")

// UnresolvedParentError reports a bone whose parent name does not exist.
type UnresolvedParentError struct {
	Bone   string
	Parent string
}

func (e *UnresolvedParentError) Error() string {
	return fmt.Sprintf("skeleton: bone %q references unknown parent %q", e.Bone, e.Parent)
}

// CyclicHierarchyError reports a parent chain that loops back on itself.
// Bones lists the members of the cycle in child-to-parent order.
type CyclicHierarchyError struct {
	Bones []string
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("skeleton: cyclic hierarchy: %s -> %s", strings.Join(e.Bones, " -> "), e.Bones[0])
}

// UnresolvedRoleError reports a role needed by the skinning rules that no bone carries.
type UnresolvedRoleError struct {
	Role Role
	Side Side
}

func (e *UnresolvedRoleError) Error() string {
	if e.Side == SideCenter {
		return fmt.Sprintf("skeleton: no bone with role %s", e.Role)
	}
	return fmt.Sprintf("skeleton: no bone with role %s (%s)", e.Role, e.Side)
}

// DuplicateBoneError reports two definitions sharing a name.
type DuplicateBoneError struct {
	Name string
}

func (e *DuplicateBoneError) Error() string {
	return fmt.Sprintf("skeleton: duplicate bone %q", e.Name)
}

// DegenerateBoneError reports a bone whose head and tail coincide.
type DegenerateBoneError struct {
	Name string
}

func (e *DegenerateBoneError) Error() string {
	return fmt.Sprintf("skeleton: bone %q has zero length", e.Name)
}
