package mathutil

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestBoneFrame(t *testing.T) {
	head := Vec3{1, 2, 3}
	frame, ok := BoneFrame(head, Vec3{1, 2, 5})
	if !ok {
		t.Fatal("frame should be valid")
	}

	right := frame.Col(0).Vec3()
	up := frame.Col(1).Vec3()
	primary := frame.Col(2).Vec3()

	if !NearVec3(primary, Vec3{0, 0, 1}, eps) {
		t.Error("primary: ", primary)
	}
	if !NearVec3(Translation(frame), head, eps) {
		t.Error("head: ", Translation(frame))
	}
	for _, pair := range [][2]Vec3{{right, up}, {up, primary}, {right, primary}} {
		if math.Abs(pair[0].Dot(pair[1])) > eps {
			t.Error("axes not orthogonal: ", pair)
		}
	}
	if math.Abs(math.Abs(frame.Det())-1) > eps {
		t.Error("frame is not orthonormal: det=", frame.Det())
	}

	inv := frame.Inv()
	if !IsIdentity(frame.Mul4(inv)) {
		t.Error("inverse: ", frame.Mul4(inv))
	}
}

func TestBoneFrameVertical(t *testing.T) {
	// primary parallel to +Y must switch the up reference to +X
	frame, ok := BoneFrame(Vec3{0, 0, 0}, Vec3{0, 3, 0})
	if !ok {
		t.Fatal("frame should be valid")
	}
	right := frame.Col(0).Vec3()
	if math.IsNaN(right[0]) || right.Len() < 0.5 {
		t.Fatal("degenerate right axis: ", right)
	}
	if !NearVec3(right, Vec3{0, 0, -1}, eps) {
		t.Error("right: ", right)
	}
	if !NearVec3(frame.Col(1).Vec3(), Vec3{1, 0, 0}, eps) {
		t.Error("up: ", frame.Col(1))
	}
}

func TestBoneFrameDegenerate(t *testing.T) {
	if _, ok := BoneFrame(Vec3{1, 1, 1}, Vec3{1, 1, 1}); ok {
		t.Error("zero-length bone should not produce a frame")
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Vec3{0, 0, 0}, Vec3{0, 2, 0}
	tests := []struct {
		p    Vec3
		want float64
	}{
		{Vec3{1, 1, 0}, 1},
		{Vec3{0, -3, 0}, 3},
		{Vec3{0, 5, 0}, 3},
		{Vec3{0, 1, 0}, 0},
	}
	for _, tt := range tests {
		if got := SegmentDistance(tt.p, a, b); math.Abs(got-tt.want) > eps {
			t.Errorf("SegmentDistance(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	// point segment
	if got := SegmentDistance(Vec3{3, 4, 0}, a, a); math.Abs(got-5) > eps {
		t.Errorf("point distance = %v, want 5", got)
	}
}

func TestDecomposeRigid(t *testing.T) {
	m := Translate(Vec3{1, 2, 3}).Mul4(RotZ(math.Pi / 2))
	rot, pos := DecomposeRigid(m)
	if !NearVec3(pos, Vec3{1, 2, 3}, eps) {
		t.Error("pos: ", pos)
	}
	s := math.Sqrt(0.5)
	want := [4]float64{0, 0, s, s}
	for i := range want {
		if math.Abs(rot[i]-want[i]) > 1e-6 {
			t.Error("rot: ", rot)
			break
		}
	}
}

func TestNearAcceptsRoundingAtZero(t *testing.T) {
	rz := RotZ(math.Pi / 2)
	want := Mat4{
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if !NearMat4(rz, want, 1e-12) {
		t.Errorf("Rz(90°) = %v", rz)
	}
	if !NearVec3(MulDir(rz, Vec3{1, 0, 0}), Vec3{0, 1, 0}, 1e-12) {
		t.Error("Rz(90°) should map +X to +Y")
	}
	if NearMat4(rz, want.Mul(2), 1e-12) || NearVec3(Vec3{0, 0, 0}, Vec3{1e-6, 0, 0}, 1e-12) {
		t.Error("distinct values reported near")
	}
	if !IsIdentity(rz.Mul4(rz.Inv())) {
		t.Error("Rz·Rz⁻¹ is not identity")
	}
}
