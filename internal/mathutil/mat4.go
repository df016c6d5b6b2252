package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat4 is a 4×4 matrix stored column-major. Used for bone rest, pose and skin transforms.
type Mat4 = mgl64.Mat4

func Mat4Identity() Mat4 {
	return mgl64.Ident4()
}

// BoneFrame builds the rest frame of a bone from its head and tail.
// Columns are (right, up, primary, head): primary points from head to tail,
// up starts as world +Y and switches to +X when nearly parallel to primary.
// ok is false when head and tail coincide.
func BoneFrame(head, tail Vec3) (Mat4, bool) {
	primary, ok := SafeNormalize(tail.Sub(head))
	if !ok {
		return Mat4Identity(), false
	}

	up := Vec3{0, 1, 0}
	if abs(primary.Dot(up)) > ParallelDot {
		up = Vec3{1, 0, 0}
	}

	right := primary.Cross(up).Normalize()
	up = right.Cross(primary).Normalize()

	return mgl64.Mat4FromCols(
		right.Vec4(0),
		up.Vec4(0),
		primary.Vec4(0),
		head.Vec4(1),
	), true
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func MulPoint(m Mat4, v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// MulDir transforms a direction (w=0) by the 4×4 matrix.
func MulDir(m Mat4, v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Translation returns the translation column of an affine matrix.
func Translation(m Mat4) Vec3 {
	return m.Col(3).Vec3()
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m Mat4) bool {
	return NearMat4(m, mgl64.Ident4(), 1e-8)
}

// NearMat4 reports whether every element of a and b differs by less than tol.
// mgl's ApproxEqualThreshold squares the threshold next to zero, which
// rejects rounding noise such as cos(π/2).
func NearMat4(a, b Mat4, tol float64) bool {
	return a.ApproxFuncEqual(b, within(tol))
}

// NearVec3 is NearMat4 for vectors.
func NearVec3(a, b Vec3, tol float64) bool {
	return a.ApproxFuncEqual(b, within(tol))
}

func within(tol float64) func(a, b float64) bool {
	return func(a, b float64) bool {
		return abs(a-b) < tol
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
