package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// LineString is an ordered run of points. A closed line string repeats its
// first point at the end.
type LineString struct {
	Points []Vec2
	Closed bool
}

// NewRing builds a closed line string, appending the first point when needed.
func NewRing(pts []Vec2) LineString {
	out := make([]Vec2, len(pts), len(pts)+1)
	copy(out, pts)
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return LineString{Points: out, Closed: true}
}

// NewLine builds an open line string from pts.
func NewLine(pts []Vec2) LineString {
	out := make([]Vec2, len(pts))
	copy(out, pts)
	return LineString{Points: out}
}

func (l LineString) IsClosed() bool {
	return l.Closed
}

// Segments returns every consecutive point pair.
func (l LineString) Segments() [][2]Vec2 {
	if len(l.Points) < 2 {
		return nil
	}
	out := make([][2]Vec2, 0, len(l.Points)-1)
	for i := 0; i+1 < len(l.Points); i++ {
		out = append(out, [2]Vec2{l.Points[i], l.Points[i+1]})
	}
	return out
}

// Orb returns the points as an orb line string.
func (l LineString) Orb() orb.LineString {
	return orb.LineString(toPoints(l.Points))
}

// Translate returns a copy moved by v.
func (l LineString) Translate(v Vec2) LineString {
	out := make([]Vec2, len(l.Points))
	for i, p := range l.Points {
		out[i] = p.Add(v)
	}
	return LineString{Points: out, Closed: l.Closed}
}

// Polygon is a closed exterior ring with optional holes.
type Polygon struct {
	Exterior  LineString
	Interiors []LineString
}

// NewPolygon wraps a closed ring without holes.
func NewPolygon(exterior LineString) Polygon {
	return Polygon{Exterior: exterior}
}

// Orb returns the polygon as an orb polygon, exterior ring first.
func (p Polygon) Orb() orb.Polygon {
	out := make(orb.Polygon, 0, 1+len(p.Interiors))
	out = append(out, orb.Ring(toPoints(p.Exterior.Points)))
	for _, h := range p.Interiors {
		out = append(out, orb.Ring(toPoints(h.Points)))
	}
	return out
}

// Area returns the unsigned area of the polygon minus its holes.
func (p Polygon) Area() float64 {
	if len(p.Exterior.Points) < 3 {
		return 0
	}
	return planar.Area(p.Orb())
}

// Rings returns the exterior followed by the interiors.
func (p Polygon) Rings() []LineString {
	out := make([]LineString, 0, 1+len(p.Interiors))
	out = append(out, p.Exterior)
	return append(out, p.Interiors...)
}

func (p Polygon) Translate(v Vec2) Polygon {
	out := Polygon{Exterior: p.Exterior.Translate(v)}
	for _, h := range p.Interiors {
		out.Interiors = append(out.Interiors, h.Translate(v))
	}
	return out
}

func (p Polygon) Bounds() Rect {
	return BoundingRect(p.Exterior.Points...)
}

// MultiPolygon is the union footprint of independent polygons.
type MultiPolygon []Polygon

func (mp MultiPolygon) Orb() orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		if len(p.Exterior.Points) >= 3 {
			out = append(out, p.Orb())
		}
	}
	return out
}

// Area sums the area of every member polygon.
func (mp MultiPolygon) Area() float64 {
	return planar.Area(mp.Orb())
}

// SignedArea returns the shoelace area of a ring; positive when counter-clockwise.
// A repeated closing point does not change the result.
func SignedArea(pts []Vec2) float64 {
	if len(pts) < 3 {
		return 0
	}
	_, a := planar.CentroidArea(orb.Ring(toPoints(pts)))
	return a
}

// Centroid returns the area centroid of a ring, falling back to the mean of
// the points when the ring has no area.
func Centroid(pts []Vec2) Vec2 {
	n := len(pts)
	if n == 0 {
		return Vec2{}
	}
	c, a := planar.CentroidArea(orb.Ring(toPoints(pts)))
	if n < 3 || math.Abs(a) < 1e-9 {
		if n > 1 && pts[0] == pts[n-1] {
			return Mean(pts[:n-1])
		}
		return Mean(pts)
	}
	return V(c.X(), c.Y())
}

func toPoints(pts []Vec2) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}
