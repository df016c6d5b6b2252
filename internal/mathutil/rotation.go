package mathutil

import "github.com/go-gl/mathgl/mgl64"

// RotX returns a 4×4 rotation around the X axis. Angle in radians.
func RotX(a float64) Mat4 {
	return mgl64.HomogRotate3DX(a)
}

// RotY returns a 4×4 rotation around the Y axis.
func RotY(a float64) Mat4 {
	return mgl64.HomogRotate3DY(a)
}

// RotZ returns a 4×4 rotation around the Z axis.
func RotZ(a float64) Mat4 {
	return mgl64.HomogRotate3DZ(a)
}

// Translate returns a 4×4 translation.
func Translate(v Vec3) Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

// DecomposeRigid splits a rotation+translation matrix into a unit quaternion
// (x, y, z, w) and a translation. Scale is assumed to be 1.
func DecomposeRigid(m Mat4) (rot [4]float64, pos Vec3) {
	q := mgl64.Mat4ToQuat(m).Normalize()
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}, Translation(m)
}

// QuatMat4 is the inverse of the rotation part of DecomposeRigid.
func QuatMat4(q [4]float64) Mat4 {
	return mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}.Mat4()
}
