package rig

// DefaultBiped returns the stock biped skeleton (Y up, +X is the character's
// left, about 7.6 units tall) whose names match DefaultRoles. It is used when
// no skeleton file is given.
func DefaultBiped() []BoneDef {
	return []BoneDef{
		{Name: "pelvis", Head: [3]float64{0, 4, 0}, Tail: [3]float64{0, 4.6, 0}},
		{Name: "spine", Head: [3]float64{0, 4.6, 0}, Tail: [3]float64{0, 5.6, 0}, Parent: parent("pelvis")},
		{Name: "spine.001", Head: [3]float64{0, 5.6, 0}, Tail: [3]float64{0, 6.6, 0}, Parent: parent("spine")},
		{Name: "head", Head: [3]float64{0, 6.6, 0}, Tail: [3]float64{0, 7.6, 0}, Parent: parent("spine.001")},
		{Name: "thigh.L", Head: [3]float64{0.5, 4, 0}, Tail: [3]float64{0.5, 2.2, 0}, Parent: parent("pelvis")},
		{Name: "shin.L", Head: [3]float64{0.5, 2.2, 0}, Tail: [3]float64{0.5, 0.5, 0}, Parent: parent("thigh.L")},
		{Name: "foot.L", Head: [3]float64{0.5, 0.5, 0}, Tail: [3]float64{0.5, 0.1, 0.6}, Parent: parent("shin.L")},
		{Name: "thigh.R", Head: [3]float64{-0.5, 4, 0}, Tail: [3]float64{-0.5, 2.2, 0}, Parent: parent("pelvis")},
		{Name: "shin.R", Head: [3]float64{-0.5, 2.2, 0}, Tail: [3]float64{-0.5, 0.5, 0}, Parent: parent("thigh.R")},
		{Name: "foot.R", Head: [3]float64{-0.5, 0.5, 0}, Tail: [3]float64{-0.5, 0.1, 0.6}, Parent: parent("shin.R")},
	}
}

func parent(name string) *string {
	return &name
}
