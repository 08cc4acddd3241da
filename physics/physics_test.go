package physics

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"

	"github.com/milk9111/tiledmap/geom"
)

func ring(pts ...geom.Vec2) geom.LineString {
	return geom.NewRing(pts)
}

func squareWithHole() geom.Polygon {
	return geom.Polygon{
		Exterior: ring(geom.V(0, 0), geom.V(10, 0), geom.V(10, 10), geom.V(0, 10)),
		Interiors: []geom.LineString{
			ring(geom.V(4, 4), geom.V(4, 6), geom.V(6, 6), geom.V(6, 4)),
		},
	}
}

func lShape() geom.Polygon {
	return geom.NewPolygon(ring(
		geom.V(0, 0), geom.V(6, 0), geom.V(6, 2), geom.V(2, 2), geom.V(2, 6), geom.V(0, 6),
	))
}

func stackedHoles() geom.Polygon {
	return geom.Polygon{
		Exterior: ring(geom.V(0, 0), geom.V(10, 0), geom.V(10, 20), geom.V(0, 20)),
		Interiors: []geom.LineString{
			ring(geom.V(2, 2), geom.V(6, 2), geom.V(6, 8), geom.V(2, 8)),
			ring(geom.V(2, 12), geom.V(6, 12), geom.V(6, 18), geom.V(2, 18)),
		},
	}
}

func segmentKeys(segs [][2]geom.Vec2) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		a, b := s[0], s[1]
		if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
			a, b = b, a
		}
		out = append(out, geomKey(a)+"-"+geomKey(b))
	}
	sort.Strings(out)
	return out
}

func geomKey(v geom.Vec2) string {
	return fmt.Sprintf("%g,%g", v.X, v.Y)
}

func TestToTrianglesCoversArea(t *testing.T) {
	cases := []struct {
		name string
		mp   geom.MultiPolygon
	}{
		{"square_with_hole", geom.MultiPolygon{squareWithHole()}},
		{"l_shape", geom.MultiPolygon{lShape()}},
		{"two_polygons", geom.MultiPolygon{lShape(), squareWithHole()}},
		{"stacked_holes", geom.MultiPolygon{stackedHoles()}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tris := ToTriangles(c.mp)
			var area float64
			for _, tri := range tris {
				if !geom.Mean(tri.Points[:]).ApproxEq(geom.Vec2{}, 1e-9) {
					t.Fatalf("triangle points are not relative to the centroid: %v", tri.Points)
				}
				abs := tri.Absolute()
				if abs[1].Sub(abs[0]).Cross(abs[2].Sub(abs[0])) <= 0 {
					t.Fatalf("triangle %v is not counter-clockwise", abs)
				}
				area += abs.Area()
			}
			if want := c.mp.Area(); math.Abs(area-want) > 1e-6 {
				t.Fatalf("triangle area = %v, want %v", area, want)
			}
		})
	}
}

func TestToLineStringsKeepsRingOrder(t *testing.T) {
	p := squareWithHole()
	got := ToLineStrings(geom.MultiPolygon{p, lShape()})
	if len(got) != 3 {
		t.Fatalf("got %d rings, want 3", len(got))
	}
	if got[0].Points[1] != p.Exterior.Points[1] || got[1].Points[1] != p.Interiors[0].Points[1] {
		t.Fatalf("rings are out of order: %v", got[:2])
	}
}

func TestUnifiedPolylineMatchesLineStrings(t *testing.T) {
	mp := geom.MultiPolygon{squareWithHole(), lShape()}
	verts, pairs := ToUnifiedPolyline(mp)
	if len(verts) != 4+4+6 {
		t.Fatalf("got %d vertices, want 14", len(verts))
	}
	if len(pairs) != len(verts) {
		t.Fatalf("got %d segments for %d vertices of closed rings", len(pairs), len(verts))
	}
	var fromRings [][2]geom.Vec2
	for _, r := range ToLineStrings(mp) {
		fromRings = append(fromRings, ringSegments(r)...)
	}
	a := segmentKeys(Segments(verts, pairs))
	b := segmentKeys(fromRings)
	if len(a) != len(b) {
		t.Fatalf("segment counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("segment %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestUnifiedPolylineOpenRing(t *testing.T) {
	mp := geom.MultiPolygon{{Exterior: geom.NewLine([]geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})}}
	verts, pairs := ToUnifiedPolyline(mp)
	if len(verts) != 3 || len(pairs) != 2 {
		t.Fatalf("open ring gave %d vertices and %d pairs", len(verts), len(pairs))
	}
}

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in   string
		want Strategy
		err  bool
	}{
		{"", StrategyTriangles, false},
		{"Triangles", StrategyTriangles, false},
		{"linestrings", StrategyLineStrings, false},
		{"polyline", StrategyPolyline, false},
		{"voxels", StrategyTriangles, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseStrategy(c.in)
			if (err != nil) != c.err {
				t.Fatalf("err = %v, want error %v", err, c.err)
			}
			if got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func backends(s Strategy) map[string]Backend {
	return map[string]Backend{
		"chipmunk": NewChipmunk(nil, ChipmunkOptions{Strategy: s, Friction: 0.8, Radius: 1}),
		"resolv":   NewResolv(nil, ResolvOptions{Strategy: s}),
		"noop":     Noop{},
	}
}

func TestBackendsAcceptEmptyGeometry(t *testing.T) {
	degenerate := geom.MultiPolygon{geom.NewPolygon(ring(geom.V(0, 0), geom.V(5, 0), geom.V(10, 0)))}
	for _, s := range []Strategy{StrategyTriangles, StrategyLineStrings, StrategyPolyline} {
		for name, b := range backends(s) {
			t.Run(s.String()+"/"+name, func(t *testing.T) {
				handles, err := b.SpawnColliders(ColliderSource{}, nil)
				if err != nil || len(handles) != 0 {
					t.Fatalf("empty geometry: %d handles, err %v", len(handles), err)
				}
				if s != StrategyTriangles {
					return
				}
				handles, err = b.SpawnColliders(ColliderSource{}, degenerate)
				if err != nil || len(handles) != 0 {
					t.Fatalf("zero area geometry: %d handles, err %v", len(handles), err)
				}
			})
		}
	}
}

func TestChipmunkSpawnAndRemove(t *testing.T) {
	mp := geom.MultiPolygon{lShape()}
	src := ColliderSource{Kind: SourceObject, ObjectID: 7, Owner: "wall"}
	cases := []struct {
		strategy Strategy
		want     int
	}{
		{StrategyTriangles, len(ToTriangles(mp))},
		{StrategyLineStrings, 6},
		{StrategyPolyline, 6},
	}
	for _, c := range cases {
		t.Run(c.strategy.String(), func(t *testing.T) {
			b := NewChipmunk(nil, ChipmunkOptions{Strategy: c.strategy, Friction: 0.8})
			handles, err := b.SpawnColliders(src, mp)
			if err != nil {
				t.Fatalf("SpawnColliders: %v", err)
			}
			if len(handles) != c.want || b.Len() != c.want {
				t.Fatalf("got %d handles (%d live), want %d", len(handles), b.Len(), c.want)
			}
			shape := handles[0].Shape.(*cp.Shape)
			if shape.UserData != "wall" {
				t.Fatalf("UserData = %v, want wall", shape.UserData)
			}
			if got, ok := b.SourceOf(shape); !ok || got.ObjectID != 7 {
				t.Fatalf("SourceOf = %+v, %v", got, ok)
			}
			b.RemoveColliders(handles)
			if b.Len() != 0 {
				t.Fatalf("%d shapes left after remove", b.Len())
			}
			b.RemoveColliders(handles)
		})
	}
}

func TestResolvSpawnAndRemove(t *testing.T) {
	mp := geom.MultiPolygon{geom.NewPolygon(ring(geom.V(32, 32), geom.V(64, 32), geom.V(64, 64), geom.V(32, 64)))}
	src := ColliderSource{Kind: SourceTile, Name: "ground", Owner: 42}
	b := NewResolv(nil, ResolvOptions{Strategy: StrategyTriangles, Tags: []string{"level"}})
	handles, err := b.SpawnColliders(src, mp)
	if err != nil {
		t.Fatalf("SpawnColliders: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("got %d handles, want 2", len(handles))
	}
	for _, h := range handles {
		obj := h.Shape.(*resolv.Object)
		if obj.Data != 42 {
			t.Fatalf("Data = %v, want 42", obj.Data)
		}
		if !obj.HasTags(TagSolid, "level", "ground") {
			t.Fatalf("object tags missing: %v", obj.Tags())
		}
		if obj.X < 32 || obj.Y < 32 || obj.X+obj.W > 64 || obj.Y+obj.H > 64 {
			t.Fatalf("object %v,%v %vx%v is outside the square", obj.X, obj.Y, obj.W, obj.H)
		}
		poly, ok := obj.Shape.(*resolv.ConvexPolygon)
		if !ok || len(poly.Points) != 3 {
			t.Fatalf("shape = %#v, want a triangle", obj.Shape)
		}
		for _, p := range poly.Transformed() {
			if p[0] < 32-1e-9 || p[1] < 32-1e-9 || p[0] > 64+1e-9 || p[1] > 64+1e-9 {
				t.Fatalf("triangle vertex %v is outside the square", p)
			}
		}
	}
	b.RemoveColliders(handles)
	if b.Len() != 0 {
		t.Fatalf("%d objects left after remove", b.Len())
	}
}

func TestResolvSegments(t *testing.T) {
	mp := geom.MultiPolygon{lShape()}
	b := NewResolv(resolv.NewSpace(64, 64, 8, 8), ResolvOptions{Strategy: StrategyLineStrings})
	handles, err := b.SpawnColliders(ColliderSource{}, mp)
	if err != nil {
		t.Fatalf("SpawnColliders: %v", err)
	}
	if len(handles) != 6 {
		t.Fatalf("got %d handles, want 6", len(handles))
	}
}
