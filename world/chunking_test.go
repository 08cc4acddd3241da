package world

import (
	"math"
	"testing"

	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/tiled"
)

// gridWorld lays out n 100×100 maps side by side.
func gridWorld(n int) *Document {
	doc := &Document{}
	for i := 0; i < n; i++ {
		r := geom.R(float64(i)*100, 0, float64(i+1)*100, 100)
		doc.Maps = append(doc.Maps, MapPlacement{Index: i, Rect: r})
		doc.Bounds = doc.Bounds.Union(r)
	}
	return doc
}

func toSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, i := range ids {
		m[i] = true
	}
	return m
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUpdateWithoutChunking(t *testing.T) {
	doc := gridWorld(4)
	diff := Update(doc, geom.Identity(), tiled.AnchorNone, nil, nil, map[int]bool{})
	if !equalInts(diff.Spawn, []int{0, 1, 2, 3}) || len(diff.Remove) != 0 {
		t.Fatalf("expected every map spawned once, got %+v", diff)
	}
	again := Update(doc, geom.Identity(), tiled.AnchorNone, nil, nil, toSet(diff.Spawn))
	if !again.Empty() {
		t.Fatalf("expected no changes once spawned, got %+v", again)
	}
}

func TestUpdateVisibility(t *testing.T) {
	doc := gridWorld(5)
	window := geom.V(60, 60)
	cases := []struct {
		name      string
		transform geom.Transform
		anchor    tiled.Anchor
		viewports []geom.Rect
		current   []int
		spawn     []int
		remove    []int
	}{
		{
			name:      "single_viewport",
			transform: geom.Identity(),
			viewports: []geom.Rect{geom.RectFromCenter(geom.V(150, 50), geom.V(10, 10))},
			spawn:     []int{0, 1, 2},
		},
		{
			name:      "moved_camera",
			transform: geom.Identity(),
			viewports: []geom.Rect{geom.RectFromCenter(geom.V(350, 50), geom.V(10, 10))},
			current:   []int{0, 1, 2},
			spawn:     []int{3, 4},
			remove:    []int{0, 1},
		},
		{
			name:      "two_viewports",
			transform: geom.Identity(),
			viewports: []geom.Rect{
				geom.RectFromCenter(geom.V(50, 50), geom.V(1, 1)),
				geom.RectFromCenter(geom.V(450, 50), geom.V(1, 1)),
			},
			current: []int{2},
			spawn:   []int{0, 1, 3, 4},
			remove:  []int{2},
		},
		{
			name:      "translated_world",
			transform: geom.FromTranslation(geom.V(1000, 0)),
			viewports: []geom.Rect{geom.RectFromCenter(geom.V(1050, 50), geom.V(1, 1))},
			current:   []int{0, 4},
			spawn:     []int{1},
			remove:    []int{4},
		},
		{
			name:      "rotated_world",
			transform: geom.Transform{Rotation: math.Pi / 2, Scale: geom.V(1, 1)},
			viewports: []geom.Rect{geom.RectFromCenter(geom.V(-50, 250), geom.V(1, 1))},
			spawn:     []int{1, 2, 3},
		},
		{
			name:      "center_anchor",
			transform: geom.Identity(),
			anchor:    tiled.AnchorCenter,
			viewports: []geom.Rect{geom.RectFromCenter(geom.V(0, 0), geom.V(1, 1))},
			spawn:     []int{1, 2, 3},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			diff := Update(doc, c.transform, c.anchor, &window, c.viewports, toSet(c.current))
			if !equalInts(diff.Spawn, c.spawn) || !equalInts(diff.Remove, c.remove) {
				t.Fatalf("expected spawn %v remove %v, got %+v", c.spawn, c.remove, diff)
			}
		})
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	doc := gridWorld(6)
	window := geom.V(120, 50)
	views := []geom.Rect{geom.RectFromCenter(geom.V(250, 50), geom.V(20, 20))}

	current := map[int]bool{5: true}
	first := Update(doc, geom.Identity(), tiled.AnchorNone, &window, views, current)
	if first.Empty() {
		t.Fatalf("first update should change something")
	}
	for _, i := range first.Spawn {
		current[i] = true
	}
	for _, i := range first.Remove {
		delete(current, i)
	}
	second := Update(doc, geom.Identity(), tiled.AnchorNone, &window, views, current)
	if !second.Empty() {
		t.Fatalf("second update with same inputs should be empty, got %+v", second)
	}
}

func TestTracker(t *testing.T) {
	doc := gridWorld(3)
	window := geom.V(40, 40)
	tr := NewTracker(tiled.AnchorNone, &window)
	views := []geom.Rect{geom.RectFromCenter(geom.V(50, 50), geom.V(5, 5))}

	diff := tr.Update(doc, geom.Identity(), views)
	if !equalInts(diff.Spawn, []int{0}) {
		t.Fatalf("expected map 0, got %+v", diff)
	}
	if got := tr.Loaded(); len(got) != 0 {
		t.Fatalf("unconfirmed spawn counted as loaded: %v", got)
	}
	if d := tr.Update(doc, geom.Identity(), views); !equalInts(d.Spawn, []int{0}) {
		t.Fatalf("unconfirmed map should be offered again, got %+v", d)
	}
	tr.MarkLoaded(0)
	if d := tr.Update(doc, geom.Identity(), views); !d.Empty() {
		t.Fatalf("unchanged viewports should not recompute, got %+v", d)
	}

	views = []geom.Rect{geom.RectFromCenter(geom.V(250, 50), geom.V(5, 5))}
	diff = tr.Update(doc, geom.Identity(), views)
	if !equalInts(diff.Spawn, []int{2}) || !equalInts(diff.Remove, []int{0}) {
		t.Fatalf("expected swap to map 2, got %+v", diff)
	}
	tr.MarkLoaded(2)
	if got := tr.Loaded(); !equalInts(got, []int{2}) {
		t.Fatalf("unexpected loaded set %v", got)
	}

	tr.Reset()
	if diff := tr.Update(doc, geom.Identity(), views); !equalInts(diff.Spawn, []int{2}) {
		t.Fatalf("reset tracker should respawn visible maps, got %+v", diff)
	}
	tr.Skip(2)
	if d := tr.Update(doc, geom.Identity(), views); !d.Empty() {
		t.Fatalf("skipped map should wait for the viewport to move, got %+v", d)
	}
	if got := tr.Loaded(); len(got) != 0 {
		t.Fatalf("skipped map counted as loaded: %v", got)
	}
}
