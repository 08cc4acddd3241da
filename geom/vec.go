// Package geom holds the 2D math shared by map decoding, object geometry
// and collider generation. All types are plain values; vectors and boxes
// share their layout with the physics engine's so they convert for free.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec2 is a point or direction in 2D space.
type Vec2 cp.Vector

func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromVector converts a chipmunk vector.
func FromVector(v cp.Vector) Vec2 {
	return Vec2(v)
}

// Vector returns v as a chipmunk vector.
func (v Vec2) Vector() cp.Vector {
	return cp.Vector(v)
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2(v.Vector().Add(o.Vector()))
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2(v.Vector().Sub(o.Vector()))
}

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2(v.Vector().Mult(s))
}

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{X: v.X * o.X, Y: v.Y * o.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2(v.Vector().Neg())
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.Vector().Dot(o.Vector())
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.Vector().Cross(o.Vector())
}

func (v Vec2) Len() float64 {
	return v.Vector().Length()
}

func (v Vec2) Dist(o Vec2) float64 {
	return v.Vector().Distance(o.Vector())
}

// Rotate rotates v counter-clockwise by theta radians around the origin.
func (v Vec2) Rotate(theta float64) Vec2 {
	if theta == 0 {
		return v
	}
	return Vec2(v.Vector().Rotate(cp.ForAngle(theta)))
}

// Lerp moves t of the way from v to o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2(v.Vector().Lerp(o.Vector(), t))
}

// Min returns the component-wise minimum.
func (v Vec2) Min(o Vec2) Vec2 {
	return Vec2{X: math.Min(v.X, o.X), Y: math.Min(v.Y, o.Y)}
}

// Max returns the component-wise maximum.
func (v Vec2) Max(o Vec2) Vec2 {
	return Vec2{X: math.Max(v.X, o.X), Y: math.Max(v.Y, o.Y)}
}

// ApproxEq reports whether both components differ by less than eps.
func (v Vec2) ApproxEq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) < eps && math.Abs(v.Y-o.Y) < eps
}

// Mean returns the arithmetic mean of pts, or the zero vector for an empty slice.
func Mean(pts []Vec2) Vec2 {
	if len(pts) == 0 {
		return Vec2{}
	}
	var sum Vec2
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}
