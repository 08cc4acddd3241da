package geom

// Transform is a 2D translation, rotation around Z (radians, counter-clockwise)
// and non-uniform scale. A zero Scale behaves as unit scale so the zero
// value is usable.
type Transform struct {
	Translation Vec2
	Rotation    float64
	Scale       Vec2
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: Vec2{X: 1, Y: 1}}
}

// FromTranslation returns an unrotated, unscaled transform moved to t.
func FromTranslation(t Vec2) Transform {
	return Transform{Translation: t, Scale: Vec2{X: 1, Y: 1}}
}

// Apply scales, rotates and then translates p.
func (t Transform) Apply(p Vec2) Vec2 {
	return p.Mul(t.scale()).Rotate(t.Rotation).Add(t.Translation)
}

// RotateScale applies the rotation and then the scale to p without translating.
// This is the order object vertices are built in.
func (t Transform) RotateScale(p Vec2, theta float64) Vec2 {
	return p.Rotate(theta).Mul(t.scale())
}

// Mul composes t with a child transform expressed in t's local space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.Apply(child.Translation),
		Rotation:    t.Rotation + child.Rotation,
		Scale:       t.scale().Mul(child.scale()),
	}
}

func (t Transform) scale() Vec2 {
	if t.Scale == (Vec2{}) {
		return Vec2{X: 1, Y: 1}
	}
	return t.Scale
}
