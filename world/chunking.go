package world

import (
	"sort"

	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/tiled"
)

// Diff lists map indices to instantiate and to release, both sorted.
type Diff struct {
	Spawn  []int
	Remove []int
}

func (d Diff) Empty() bool {
	return len(d.Spawn) == 0 && len(d.Remove) == 0
}

// Update compares the maps visible from viewports with the instantiated set.
// With a nil window every map is spawned on the first call and nothing
// changes afterwards. Otherwise a map is visible when the bounding box of
// its four transformed placement corners overlaps a box of half extents
// window around the center of any viewport.
func Update(doc *Document, worldTransform geom.Transform, anchor tiled.Anchor, window *geom.Vec2, viewports []geom.Rect, current map[int]bool) Diff {
	var diff Diff
	if window == nil {
		if len(current) > 0 {
			return diff
		}
		for i := range doc.Maps {
			diff.Spawn = append(diff.Spawn, i)
		}
		return diff
	}

	views := make([]geom.Rect, len(viewports))
	for i, v := range viewports {
		views[i] = geom.RectFromCenter(v.Center(), *window)
	}
	offset := doc.Offset(anchor)
	visible := make(map[int]bool, len(doc.Maps))
	for i, m := range doc.Maps {
		box := transformedBounds(worldTransform, m.Rect.Translate(offset))
		for _, v := range views {
			if box.Intersects(v) {
				visible[i] = true
				break
			}
		}
		if visible[i] && !current[i] {
			diff.Spawn = append(diff.Spawn, i)
		}
	}
	for i := range current {
		if current[i] && !visible[i] {
			diff.Remove = append(diff.Remove, i)
		}
	}
	sort.Ints(diff.Remove)
	return diff
}

func transformedBounds(t geom.Transform, r geom.Rect) geom.Rect {
	c := r.Corners()
	return geom.BoundingRect(t.Apply(c[0]), t.Apply(c[1]), t.Apply(c[2]), t.Apply(c[3]))
}

// Tracker keeps the instantiated set for one world entity and only
// recomputes visibility when the viewports or the world transform change.
type Tracker struct {
	Anchor tiled.Anchor
	Window *geom.Vec2

	loaded    map[int]bool
	pending   map[int]bool
	views     []geom.Rect
	transform geom.Transform
	primed    bool
}

func NewTracker(anchor tiled.Anchor, window *geom.Vec2) *Tracker {
	return &Tracker{Anchor: anchor, Window: window, loaded: make(map[int]bool), pending: make(map[int]bool)}
}

// Update returns the changes needed for the given viewports. Removed maps
// are forgotten at once. Spawned maps only count as loaded once MarkLoaded
// confirms them; any left unconfirmed are offered again on the next call
// even when the viewports did not move.
func (t *Tracker) Update(doc *Document, worldTransform geom.Transform, viewports []geom.Rect) Diff {
	if t.loaded == nil {
		t.loaded = make(map[int]bool)
	}
	if t.pending == nil {
		t.pending = make(map[int]bool)
	}
	if t.primed && len(t.pending) == 0 && worldTransform == t.transform && sameRects(viewports, t.views) {
		return Diff{}
	}
	diff := Update(doc, worldTransform, t.Anchor, t.Window, viewports, t.loaded)
	if t.Window == nil && len(t.loaded) > 0 {
		// whole-world mode only reports the first spawn; retries come from here
		for i := range t.pending {
			diff.Spawn = append(diff.Spawn, i)
		}
		sort.Ints(diff.Spawn)
	}
	for _, i := range diff.Remove {
		delete(t.loaded, i)
	}
	clear(t.pending)
	for _, i := range diff.Spawn {
		t.pending[i] = true
	}
	t.views = append(t.views[:0], viewports...)
	t.transform = worldTransform
	t.primed = true
	return diff
}

// MarkLoaded records map i as instantiated.
func (t *Tracker) MarkLoaded(i int) {
	if t.loaded == nil {
		t.loaded = make(map[int]bool)
	}
	t.loaded[i] = true
	delete(t.pending, i)
}

// Skip drops map i from the pending set without loading it. It is offered
// again the next time visibility is recomputed, but does not force one.
func (t *Tracker) Skip(i int) {
	delete(t.pending, i)
}

// Loaded returns the instantiated map indices, sorted.
func (t *Tracker) Loaded() []int {
	out := make([]int, 0, len(t.loaded))
	for i := range t.loaded {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Reset forgets every instantiated map, e.g. after the world was respawned.
func (t *Tracker) Reset() {
	clear(t.loaded)
	clear(t.pending)
	t.views = t.views[:0]
	t.primed = false
}

func sameRects(a, b []geom.Rect) bool {
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
