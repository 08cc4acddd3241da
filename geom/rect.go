package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Rect is an axis-aligned rectangle. Min is the lower-left corner in a Y-up frame.
type Rect struct {
	Min, Max Vec2
}

func R(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{X: minX, Y: minY}, Max: Vec2{X: maxX, Y: maxY}}
}

// FromBB converts a chipmunk bounding box.
func FromBB(bb cp.BB) Rect {
	return R(bb.L, bb.B, bb.R, bb.T)
}

// BB returns r as a chipmunk bounding box.
func (r Rect) BB() cp.BB {
	return cp.BB{L: r.Min.X, B: r.Min.Y, R: r.Max.X, T: r.Max.Y}
}

// RectFromCenter builds a rectangle centered on c with the given half extents.
func RectFromCenter(c, half Vec2) Rect {
	return FromBB(cp.NewBBForExtents(c.Vector(), half.X, half.Y))
}

// BoundingRect returns the smallest rectangle containing every point.
func BoundingRect(pts ...Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	bb := Rect{Min: pts[0], Max: pts[0]}.BB()
	for _, p := range pts[1:] {
		bb = bb.Expand(p.Vector())
	}
	return FromBB(bb)
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rect) Size() Vec2 {
	return r.Max.Sub(r.Min)
}

func (r Rect) Center() Vec2 {
	return FromVector(r.BB().Center())
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return FromBB(r.BB().Merge(o.BB()))
}

func (r Rect) Translate(v Vec2) Rect {
	return FromBB(r.BB().Offset(v.Vector()))
}

// Intersects reports whether the two rectangles overlap. Touching edges do
// not count, unlike cp.BB.Intersects: maps that merely share a border with a
// viewport stay unloaded.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X &&
		r.Max.X > o.Min.X &&
		r.Min.Y < o.Max.Y &&
		r.Max.Y > o.Min.Y
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Vec2) bool {
	return r.BB().ContainsVect(p.Vector())
}

// Corners returns the four corners counter-clockwise from Min.
func (r Rect) Corners() [4]Vec2 {
	return [4]Vec2{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// ApproxEq compares both corners within eps.
func (r Rect) ApproxEq(o Rect, eps float64) bool {
	return r.Min.ApproxEq(o.Min, eps) && r.Max.ApproxEq(o.Max, eps)
}

// Canon swaps coordinates so that Min <= Max on both axes.
func (r Rect) Canon() Rect {
	return Rect{
		Min: Vec2{X: math.Min(r.Min.X, r.Max.X), Y: math.Min(r.Min.Y, r.Max.Y)},
		Max: Vec2{X: math.Max(r.Min.X, r.Max.X), Y: math.Max(r.Min.Y, r.Max.Y)},
	}
}
