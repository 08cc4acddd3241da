package physics

import (
	"fmt"
	"strings"

	"github.com/milk9111/tiledmap/geom"
)

// Strategy selects how a backend decomposes collision geometry.
type Strategy int

const (
	// StrategyTriangles creates one convex shape per triangle.
	StrategyTriangles Strategy = iota
	// StrategyLineStrings creates a chain of segments per ring.
	StrategyLineStrings
	// StrategyPolyline creates segments from one shared vertex soup.
	StrategyPolyline
)

func (s Strategy) String() string {
	switch s {
	case StrategyTriangles:
		return "triangles"
	case StrategyLineStrings:
		return "linestrings"
	case StrategyPolyline:
		return "polyline"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy reads a strategy name as used in configuration files.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "triangles", "compound":
		return StrategyTriangles, nil
	case "linestrings", "line_strings", "lines":
		return StrategyLineStrings, nil
	case "polyline", "unified":
		return StrategyPolyline, nil
	}
	return StrategyTriangles, fmt.Errorf("physics: unknown strategy %q", s)
}

// SourceKind tells whether a collider came from a tile or an object.
type SourceKind int

const (
	SourceObject SourceKind = iota
	SourceTile
)

func (k SourceKind) String() string {
	if k == SourceTile {
		return "tile"
	}
	return "object"
}

// ColliderSource describes where a collider's geometry came from. Owner is
// an opaque value chosen by the caller, usually the collider entity.
type ColliderSource struct {
	Kind     SourceKind
	MapPath  string
	LayerID  int
	ObjectID int
	Tileset  int
	Name     string
	Owner    any
}

// ColliderHandle refers to one collider created by a backend. Shape holds
// the backend's native value (*cp.Shape or *resolv.Object).
type ColliderHandle struct {
	ID     uint64
	Shape  any
	Source ColliderSource
}

// Backend creates and removes colliders. SpawnColliders must return zero
// handles and a nil error for empty or degenerate geometry.
type Backend interface {
	SpawnColliders(src ColliderSource, mp geom.MultiPolygon) ([]ColliderHandle, error)
	RemoveColliders(handles []ColliderHandle)
}

// Noop accepts every request and creates nothing.
type Noop struct{}

func (Noop) SpawnColliders(ColliderSource, geom.MultiPolygon) ([]ColliderHandle, error) {
	return nil, nil
}

func (Noop) RemoveColliders([]ColliderHandle) {}

// segmentsFor returns the segments a line based strategy builds for mp.
// Zero length segments are dropped.
func segmentsFor(s Strategy, mp geom.MultiPolygon) [][2]geom.Vec2 {
	var segs [][2]geom.Vec2
	switch s {
	case StrategyPolyline:
		segs = Segments(ToUnifiedPolyline(mp))
	default:
		for _, ring := range ToLineStrings(mp) {
			segs = append(segs, ringSegments(ring)...)
		}
	}
	out := segs[:0]
	for _, seg := range segs {
		if seg[0].Dist(seg[1]) > minExtent {
			out = append(out, seg)
		}
	}
	return out
}

func ringSegments(ring geom.LineString) [][2]geom.Vec2 {
	segs := ring.Segments()
	n := len(ring.Points)
	if ring.Closed && n > 2 && ring.Points[0] != ring.Points[n-1] {
		segs = append(segs, [2]geom.Vec2{ring.Points[n-1], ring.Points[0]})
	}
	return segs
}

// minExtent is the smallest triangle area or segment length kept.
const minExtent = 1e-9

func trianglesFor(mp geom.MultiPolygon) []Triangle {
	tris := ToTriangles(mp)
	out := tris[:0]
	for _, t := range tris {
		if t.Absolute().Area() > minExtent {
			out = append(out, t)
		}
	}
	return out
}
