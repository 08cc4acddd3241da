package tiled

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/tiledmap/geom"
)

// Anchor names the point of a map or world that lands on the rendering
// origin. Nine standard anchors are fractional positions in [-0.5, 0.5]²
// measured from the center; the zero Anchor is AnchorNone.
type Anchor struct {
	v      geom.Vec2
	active bool
}

var (
	AnchorNone         = Anchor{}
	AnchorCenter       = CustomAnchor(geom.V(0, 0))
	AnchorTopLeft      = CustomAnchor(geom.V(-0.5, 0.5))
	AnchorTopCenter    = CustomAnchor(geom.V(0, 0.5))
	AnchorTopRight     = CustomAnchor(geom.V(0.5, 0.5))
	AnchorCenterLeft   = CustomAnchor(geom.V(-0.5, 0))
	AnchorCenterRight  = CustomAnchor(geom.V(0.5, 0))
	AnchorBottomLeft   = CustomAnchor(geom.V(-0.5, -0.5))
	AnchorBottomCenter = CustomAnchor(geom.V(0, -0.5))
	AnchorBottomRight  = CustomAnchor(geom.V(0.5, -0.5))
)

var anchorNames = map[string]Anchor{
	"none":          AnchorNone,
	"center":        AnchorCenter,
	"top_left":      AnchorTopLeft,
	"top_center":    AnchorTopCenter,
	"top_right":     AnchorTopRight,
	"center_left":   AnchorCenterLeft,
	"center_right":  AnchorCenterRight,
	"bottom_left":   AnchorBottomLeft,
	"bottom_center": AnchorBottomCenter,
	"bottom_right":  AnchorBottomRight,
}

// CustomAnchor anchors at v, where (0,0) is the center and (0.5,0.5) the
// top-right corner.
func CustomAnchor(v geom.Vec2) Anchor {
	return Anchor{v: v, active: true}
}

// ParseAnchor accepts the snake_case anchor names or "x,y" for a custom one.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AnchorNone, nil
	}
	if a, ok := anchorNames[s]; ok {
		return a, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if ok {
		x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if errX == nil && errY == nil {
			return CustomAnchor(geom.V(x, y)), nil
		}
	}
	return AnchorNone, fmt.Errorf("tiled: unknown anchor %q", s)
}

func (a Anchor) IsNone() bool {
	return !a.active
}

// Fraction returns the anchor's position relative to the center.
func (a Anchor) Fraction() geom.Vec2 {
	return a.v
}

func (a Anchor) String() string {
	if !a.active {
		return "none"
	}
	for name, b := range anchorNames {
		if b == a {
			return name
		}
	}
	return fmt.Sprintf("%g,%g", a.v.X, a.v.Y)
}

// Offset returns the vector that moves the anchor point of r to the origin.
func (a Anchor) Offset(r geom.Rect) geom.Vec2 {
	if !a.active {
		return geom.Vec2{}
	}
	size := r.Size()
	return geom.Vec2{
		X: (-0.5-a.v.X)*size.X - r.Min.X,
		Y: (-0.5-a.v.Y)*size.Y - r.Min.Y,
	}
}
