package tiled

import (
	"math"

	"github.com/milk9111/tiledmap/geom"
)

// EllipseSamples is the number of boundary points generated for ellipses.
const EllipseSamples = 20

// Object is one shape on an object layer or in a tile's collision group.
// Position is native (Y down) and Rotation is in clockwise degrees.
type Object struct {
	ID         int
	Name       string
	Class      string
	Position   geom.Vec2
	Rotation   float64
	Visible    bool
	Shape      Shape
	Properties Properties
}

// Shape is one of PointShape, RectShape, EllipseShape, PolygonShape,
// PolylineShape, TileShape and TextShape.
type Shape interface {
	isShape()
}

type PointShape struct{}

type RectShape struct {
	Width, Height float64
}

type EllipseShape struct {
	Width, Height float64
}

type PolygonShape struct {
	Points []geom.Vec2
}

type PolylineShape struct {
	Points []geom.Vec2
}

// TileShape is a tile object; it is anchored at its bottom-left corner.
type TileShape struct {
	Tile          LayerTile
	Width, Height float64
}

type TextShape struct {
	Width, Height float64
	Text          string
	FontFamily    string
	PixelSize     int
	Wrap          bool
	Color         Color
}

func (PointShape) isShape()    {}
func (RectShape) isShape()     {}
func (EllipseShape) isShape()  {}
func (PolygonShape) isShape()  {}
func (PolylineShape) isShape() {}
func (TileShape) isShape()     {}
func (TextShape) isShape()     {}

// IsTile reports whether o is a tile object.
func (o *Object) IsTile() bool {
	_, ok := o.Shape.(TileShape)
	return ok
}

// LocalVertices returns the object's vertices relative to its position in a
// Y-up frame, before rotation and scale.
func (o *Object) LocalVertices() []geom.Vec2 {
	switch s := o.Shape.(type) {
	case TileShape:
		return []geom.Vec2{{X: 0, Y: 0}, {X: 0, Y: s.Height}, {X: s.Width, Y: s.Height}, {X: s.Width, Y: 0}}
	case RectShape:
		return []geom.Vec2{{X: 0, Y: 0}, {X: s.Width, Y: 0}, {X: s.Width, Y: -s.Height}, {X: 0, Y: -s.Height}}
	case EllipseShape:
		out := make([]geom.Vec2, EllipseSamples)
		hw, hh := s.Width/2, s.Height/2
		for i := range out {
			theta := 2 * math.Pi * float64(i) / EllipseSamples
			out[i] = geom.Vec2{X: hw*math.Cos(theta) + hw, Y: hh*math.Sin(theta) - hh}
		}
		return out
	case PolygonShape:
		return flipY(s.Points)
	case PolylineShape:
		return flipY(s.Points)
	default:
		return []geom.Vec2{{}}
	}
}

func flipY(pts []geom.Vec2) []geom.Vec2 {
	out := make([]geom.Vec2, len(pts))
	for i, p := range pts {
		out[i] = geom.Vec2{X: p.X, Y: -p.Y}
	}
	return out
}

// Vertices places the local vertices with transform. With isometric set,
// non-tile objects are re-projected vertex by vertex: offset is added in
// native space and the projection of offset alone is subtracted again.
func (o *Object) Vertices(transform geom.Transform, isometric bool, size TileCount, grid, offset geom.Vec2) []geom.Vec2 {
	local := o.LocalVertices()
	out := make([]geom.Vec2, len(local))
	if !isometric || o.IsTile() {
		for i, v := range local {
			out[i] = transform.RotateScale(v, transform.Rotation).Add(transform.Translation)
		}
		return out
	}
	origin := IsoProjection(offset, size, grid)
	for i, v := range local {
		native := geom.Vec2{X: v.X, Y: -v.Y}.Add(offset)
		rel := IsoProjection(native, size, grid).Sub(origin)
		rel = transform.RotateScale(rel, -transform.Rotation)
		out[i] = geom.Vec2{X: rel.X, Y: -rel.Y}.Add(transform.Translation)
	}
	return out
}

// isClosed reports whether the shape yields a closed ring; ok is false for
// shapes without line geometry.
func (o *Object) isClosed() (closed, ok bool) {
	switch o.Shape.(type) {
	case RectShape, EllipseShape, TileShape, PolygonShape:
		return true, true
	case PolylineShape:
		return false, true
	}
	return false, false
}

// LineString returns the outline of the object: a closed ring for rects,
// ellipses, tiles and polygons, an open line for polylines and nil for
// points and text.
func (o *Object) LineString(transform geom.Transform, isometric bool, size TileCount, grid, offset geom.Vec2) *geom.LineString {
	closed, ok := o.isClosed()
	if !ok {
		return nil
	}
	verts := o.Vertices(transform, isometric, size, grid, offset)
	var ls geom.LineString
	if closed {
		ls = geom.NewRing(verts)
	} else {
		ls = geom.NewLine(verts)
	}
	return &ls
}

// Polygon returns the object's area, or nil when its outline is not closed.
func (o *Object) Polygon(transform geom.Transform, isometric bool, size TileCount, grid, offset geom.Vec2) *geom.Polygon {
	ls := o.LineString(transform, isometric, size, grid, offset)
	if ls == nil || !ls.IsClosed() {
		return nil
	}
	p := geom.NewPolygon(*ls)
	return &p
}

// Center returns the area centroid for closed shapes and the vertex mean
// otherwise.
func (o *Object) Center(transform geom.Transform, isometric bool, size TileCount, grid, offset geom.Vec2) geom.Vec2 {
	verts := o.Vertices(transform, isometric, size, grid, offset)
	if closed, _ := o.isClosed(); closed {
		return geom.Centroid(verts)
	}
	return geom.Mean(verts)
}
