// Package physics converts decoded collision geometry into collider shapes.
//
// The adapter functions are pure: they take a geom.MultiPolygon and return
// one of three decompositions. Backends pick a decomposition through
// Strategy and create colliders from it.
package physics

import (
	"github.com/milk9111/tiledmap/geom"
)

// Triangle is one triangle of a compound collider. Points are relative to
// Centroid and wound counter-clockwise.
type Triangle struct {
	Points   [3]geom.Vec2
	Centroid geom.Vec2
}

// Absolute returns the triangle's points in the polygon's own space.
func (t Triangle) Absolute() geom.Triangle {
	return geom.Triangle{
		t.Points[0].Add(t.Centroid),
		t.Points[1].Add(t.Centroid),
		t.Points[2].Add(t.Centroid),
	}
}

// ToTriangles triangulates every polygon of mp, holes respected.
func ToTriangles(mp geom.MultiPolygon) []Triangle {
	var out []Triangle
	for _, p := range mp {
		for _, tri := range geom.Triangulate(p) {
			c := tri.Centroid()
			out = append(out, Triangle{
				Points:   [3]geom.Vec2{tri[0].Sub(c), tri[1].Sub(c), tri[2].Sub(c)},
				Centroid: c,
			})
		}
	}
	return out
}

// ToLineStrings flattens each polygon's exterior and interior rings into one
// list, keeping the point order of every ring.
func ToLineStrings(mp geom.MultiPolygon) []geom.LineString {
	var out []geom.LineString
	for _, p := range mp {
		out = append(out, p.Rings()...)
	}
	return out
}

// ToUnifiedPolyline returns every ring segment as a vertex list plus index
// pairs. Coincident rings are not merged; each ring adds its own vertices.
func ToUnifiedPolyline(mp geom.MultiPolygon) ([]geom.Vec2, [][2]uint32) {
	var (
		verts []geom.Vec2
		pairs [][2]uint32
	)
	for _, ring := range ToLineStrings(mp) {
		pts := ring.Points
		closed := ring.Closed
		if n := len(pts); n > 1 && pts[0] == pts[n-1] {
			pts = pts[:n-1]
			closed = true
		}
		if len(pts) < 2 {
			continue
		}
		base := uint32(len(verts))
		verts = append(verts, pts...)
		for i := 0; i+1 < len(pts); i++ {
			pairs = append(pairs, [2]uint32{base + uint32(i), base + uint32(i+1)})
		}
		if closed && len(pts) > 2 {
			pairs = append(pairs, [2]uint32{base + uint32(len(pts)-1), base})
		}
	}
	return verts, pairs
}

// Segments expands a unified polyline back into point pairs.
func Segments(verts []geom.Vec2, pairs [][2]uint32) [][2]geom.Vec2 {
	out := make([][2]geom.Vec2, 0, len(pairs))
	for _, p := range pairs {
		if int(p[0]) >= len(verts) || int(p[1]) >= len(verts) {
			continue
		}
		out = append(out, [2]geom.Vec2{verts[p[0]], verts[p[1]]})
	}
	return out
}
