package geom

import (
	"math"
	"sort"
)

const triEps = 1e-9

// Triangle is three points in counter-clockwise order.
type Triangle [3]Vec2

func (t Triangle) Centroid() Vec2 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3)
}

func (t Triangle) Area() float64 {
	return math.Abs(orient(t[0], t[1], t[2])) / 2
}

type edgeKey [2]int

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Triangulate returns a constrained Delaunay triangulation of p. Ring edges
// (exterior and holes) are kept; holes are left uncovered. Degenerate input
// yields no triangles.
func Triangulate(p Polygon) []Triangle {
	var pts []Vec2
	constrained := make(map[edgeKey]bool)

	outer := addRing(&pts, p.Exterior.Points, true, constrained)
	if len(outer) < 3 {
		return nil
	}
	var holes [][]int
	for _, h := range p.Interiors {
		if ids := addRing(&pts, h.Points, false, constrained); len(ids) >= 3 {
			holes = append(holes, ids)
		}
	}
	sort.SliceStable(holes, func(i, j int) bool {
		mi, mj := pts[holes[i][maxXVertex(pts, holes[i])]], pts[holes[j][maxXVertex(pts, holes[j])]]
		if mi.X != mj.X {
			return mi.X > mj.X
		}
		return mi.Y < mj.Y
	})
	for i, h := range holes {
		outer = bridgeHole(pts, outer, h, holes[i+1:])
	}

	tris := earClip(pts, outer)
	tris = delaunayFlip(pts, tris, constrained)

	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		tri := Triangle{pts[t[0]], pts[t[1]], pts[t[2]]}
		if tri.Area() > triEps {
			out = append(out, tri)
		}
	}
	return out
}

func orient(a, b, c Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// addRing appends the ring's distinct points to pts and returns their ids,
// counter-clockwise when ccw is set and clockwise otherwise.
func addRing(pts *[]Vec2, ring []Vec2, ccw bool, constrained map[edgeKey]bool) []int {
	clean := make([]Vec2, 0, len(ring))
	for _, v := range ring {
		if len(clean) > 0 && clean[len(clean)-1] == v {
			continue
		}
		clean = append(clean, v)
	}
	for len(clean) > 1 && clean[0] == clean[len(clean)-1] {
		clean = clean[:len(clean)-1]
	}
	if len(clean) < 3 {
		return nil
	}
	if (SignedArea(clean) > 0) != ccw {
		for i, j := 0, len(clean)-1; i < j; i, j = i+1, j-1 {
			clean[i], clean[j] = clean[j], clean[i]
		}
	}
	ids := make([]int, len(clean))
	for i, v := range clean {
		ids[i] = len(*pts)
		*pts = append(*pts, v)
	}
	for i := range ids {
		constrained[keyOf(ids[i], ids[(i+1)%len(ids)])] = true
	}
	return ids
}

// maxXVertex returns the position in ids of the rightmost point, the
// lowest one on ties.
func maxXVertex(pts []Vec2, ids []int) int {
	mi := 0
	for i, id := range ids {
		p, m := pts[id], pts[ids[mi]]
		if p.X > m.X || (p.X == m.X && p.Y < m.Y) {
			mi = i
		}
	}
	return mi
}

// bridgeHole splices a clockwise hole into the counter-clockwise outer ring
// through a pair of coincident bridge edges. The bridge joins the hole's
// rightmost vertex to the nearest ring position that can see it: the segment
// must leave both endpoints through the polygon interior and must not touch
// any edge of the merged ring, the hole itself or the holes still pending.
func bridgeHole(pts []Vec2, outer, hole []int, pending [][]int) []int {
	mi := maxXVertex(pts, hole)
	m := pts[hole[mi]]

	order := make([]int, len(outer))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pts[outer[order[i]]].Dist(m) < pts[outer[order[j]]].Dist(m)
	})

	bridge := -1
	for _, i := range order {
		v := pts[outer[i]]
		if v == m {
			continue
		}
		if !inWedge(pts, outer, i, m) || !inWedge(pts, hole, mi, v) {
			continue
		}
		if ringBlocks(pts, outer, m, v) || ringBlocks(pts, hole, m, v) {
			continue
		}
		blocked := false
		for _, h := range pending {
			if ringBlocks(pts, h, m, v) {
				blocked = true
				break
			}
		}
		if !blocked {
			bridge = i
			break
		}
	}
	if bridge < 0 {
		bridge = order[0]
	}

	out := make([]int, 0, len(outer)+len(hole)+2)
	out = append(out, outer[:bridge+1]...)
	out = append(out, hole[mi:]...)
	out = append(out, hole[:mi]...)
	out = append(out, hole[mi], outer[bridge])
	out = append(out, outer[bridge+1:]...)
	return out
}

// inWedge reports whether the direction from ring[i] towards q lies strictly
// inside the interior angle at that position. The interior is on the left of
// the ring's direction of travel.
func inWedge(pts []Vec2, ring []int, i int, q Vec2) bool {
	n := len(ring)
	v := pts[ring[i]]
	a := pts[ring[(i+n-1)%n]].Sub(v)
	b := pts[ring[(i+1)%n]].Sub(v)
	d := q.Sub(v)
	if b.Cross(a) > triEps {
		return b.Cross(d) > triEps && d.Cross(a) > triEps
	}
	return !(a.Cross(d) >= -triEps && d.Cross(b) >= -triEps)
}

// ringBlocks reports whether segment mv touches an edge of ring anywhere
// other than at m or v.
func ringBlocks(pts []Vec2, ring []int, m, v Vec2) bool {
	n := len(ring)
	for i := range ring {
		p, q := pts[ring[i]], pts[ring[(i+1)%n]]
		if p == m || p == v || q == m || q == v {
			continue
		}
		if segmentsTouch(m, v, p, q) {
			return true
		}
	}
	return false
}

// segmentsTouch reports whether the closed segments ab and cd share a point.
func segmentsTouch(a, b, c, d Vec2) bool {
	o1, o2 := orient(a, b, c), orient(a, b, d)
	o3, o4 := orient(c, d, a), orient(c, d, b)
	if ((o1 > triEps && o2 < -triEps) || (o1 < -triEps && o2 > triEps)) &&
		((o3 > triEps && o4 < -triEps) || (o3 < -triEps && o4 > triEps)) {
		return true
	}
	return (math.Abs(o1) <= triEps && onSegment(a, b, c)) ||
		(math.Abs(o2) <= triEps && onSegment(a, b, d)) ||
		(math.Abs(o3) <= triEps && onSegment(c, d, a)) ||
		(math.Abs(o4) <= triEps && onSegment(c, d, b))
}

// onSegment reports whether q, already known to be collinear with ab, lies
// within its bounds.
func onSegment(a, b, q Vec2) bool {
	return q.X >= math.Min(a.X, b.X)-triEps && q.X <= math.Max(a.X, b.X)+triEps &&
		q.Y >= math.Min(a.Y, b.Y)-triEps && q.Y <= math.Max(a.Y, b.Y)+triEps
}

// pointInTriangle reports whether q lies inside abc or on its border,
// independent of the triangle's winding.
func pointInTriangle(q, a, b, c Vec2) bool {
	d1 := orient(a, b, q)
	d2 := orient(b, c, q)
	d3 := orient(c, a, q)
	hasNeg := d1 < -triEps || d2 < -triEps || d3 < -triEps
	hasPos := d1 > triEps || d2 > triEps || d3 > triEps
	return !(hasNeg && hasPos)
}

func earClip(pts []Vec2, ring []int) [][3]int {
	idx := append([]int(nil), ring...)
	tris := make([][3]int, 0, len(idx))
	for len(idx) > 3 {
		n := len(idx)
		clipped := false
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			if isEar(pts, idx, a, b, c) {
				tris = append(tris, [3]int{a, b, c})
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
		}
		if clipped {
			continue
		}
		// no ear found: the ring is degenerate around some vertex. Drop a
		// collinear vertex if there is one, otherwise force the most convex.
		best, bestOrient := 0, math.Inf(-1)
		for i := 0; i < n; i++ {
			a, b, c := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			o := orient(pts[a], pts[b], pts[c])
			if math.Abs(o) <= triEps {
				best, bestOrient = i, math.Inf(-1)
				break
			}
			if o > bestOrient {
				best, bestOrient = i, o
			}
		}
		if bestOrient > triEps {
			tris = append(tris, [3]int{idx[(best+n-1)%n], idx[best], idx[(best+1)%n]})
		}
		idx = append(idx[:best], idx[best+1:]...)
	}
	if len(idx) == 3 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func isEar(pts []Vec2, idx []int, a, b, c int) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	if orient(pa, pb, pc) <= triEps {
		return false
	}
	for _, id := range idx {
		q := pts[id]
		if q == pa || q == pb || q == pc {
			continue
		}
		if pointInTriangle(q, pa, pb, pc) {
			return false
		}
	}
	return true
}

// inCircle reports whether d lies strictly inside the circumcircle of the
// counter-clockwise triangle abc.
func inCircle(a, b, c, d Vec2) bool {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	det := (adx*adx+ady*ady)*(bdx*cdy-cdx*bdy) -
		(bdx*bdx+bdy*bdy)*(adx*cdy-cdx*ady) +
		(cdx*cdx+cdy*cdy)*(adx*bdy-bdx*ady)
	return det > triEps
}

// delaunayFlip applies Lawson flips to every unconstrained edge that is not
// locally Delaunay.
func delaunayFlip(pts []Vec2, tris [][3]int, constrained map[edgeKey]bool) [][3]int {
	maxIter := 16 * (len(tris) + 1) * (len(tris) + 1)
	for iter := 0; iter < maxIter; iter++ {
		edges := make(map[edgeKey][]int, len(tris)*3)
		for ti, t := range tris {
			for k := 0; k < 3; k++ {
				e := keyOf(t[k], t[(k+1)%3])
				edges[e] = append(edges[e], ti)
			}
		}
		if !flipOnce(pts, tris, edges, constrained) {
			break
		}
	}
	return tris
}

func flipOnce(pts []Vec2, tris [][3]int, edges map[edgeKey][]int, constrained map[edgeKey]bool) bool {
	for ti := range tris {
		t := tris[ti]
		for k := 0; k < 3; k++ {
			a, b, c := t[k], t[(k+1)%3], t[(k+2)%3]
			e := keyOf(a, b)
			if constrained[e] {
				continue
			}
			owners := edges[e]
			if len(owners) != 2 {
				continue
			}
			oj := owners[0]
			if oj == ti {
				oj = owners[1]
			}
			d := -1
			for _, v := range tris[oj] {
				if v != a && v != b {
					d = v
				}
			}
			if d < 0 || pts[d] == pts[c] {
				continue
			}
			if !inCircle(pts[a], pts[b], pts[c], pts[d]) {
				continue
			}
			if orient(pts[a], pts[d], pts[c]) <= triEps || orient(pts[d], pts[b], pts[c]) <= triEps {
				continue
			}
			tris[ti] = [3]int{a, d, c}
			tris[oj] = [3]int{d, b, c}
			return true
		}
	}
	return false
}
