package tiled

import (
	"math"

	"github.com/milk9111/tiledmap/geom"
)

// ToWorld adds the infinite-map offset to a native point and projects it.
func (m *MapDocument) ToWorld(p geom.Vec2) geom.Vec2 {
	return Project(m.Type, p.Add(m.TiledOffset), m.TilemapSize, m.GridSize)
}

// IsIsometric reports whether object geometry needs per-vertex re-projection.
func (m *MapDocument) IsIsometric() bool {
	return m.Type == IsoDiamond
}

// ObjectTransform places obj, found on a layer whose accumulated offset is
// layerOffset, in rendering space. Tiled rotates clockwise in a Y-down
// frame, which is counter-clockwise negated here.
func (m *MapDocument) ObjectTransform(layerOffset geom.Vec2, obj *Object) geom.Transform {
	return geom.Transform{
		Translation: m.ToWorld(obj.Position.Add(layerOffset)),
		Rotation:    -obj.Rotation * math.Pi / 180,
		Scale:       geom.V(1, 1),
	}
}

// ObjectVertices is Object.Vertices with the map's projection settings.
func (m *MapDocument) ObjectVertices(layerOffset geom.Vec2, obj *Object) []geom.Vec2 {
	return obj.Vertices(m.ObjectTransform(layerOffset, obj), m.IsIsometric(), m.TilemapSize, m.GridSize, layerOffset)
}

// ObjectLineString is Object.LineString with the map's projection settings.
func (m *MapDocument) ObjectLineString(layerOffset geom.Vec2, obj *Object) *geom.LineString {
	return obj.LineString(m.ObjectTransform(layerOffset, obj), m.IsIsometric(), m.TilemapSize, m.GridSize, layerOffset)
}

// ObjectPolygon is Object.Polygon with the map's projection settings.
func (m *MapDocument) ObjectPolygon(layerOffset geom.Vec2, obj *Object) *geom.Polygon {
	return obj.Polygon(m.ObjectTransform(layerOffset, obj), m.IsIsometric(), m.TilemapSize, m.GridSize, layerOffset)
}

// ObjectCenter is Object.Center with the map's projection settings.
func (m *MapDocument) ObjectCenter(layerOffset geom.Vec2, obj *Object) geom.Vec2 {
	return obj.Center(m.ObjectTransform(layerOffset, obj), m.IsIsometric(), m.TilemapSize, m.GridSize, layerOffset)
}

// TileCenter returns the rendering-space center of the tile at pos.
func (m *MapDocument) TileCenter(pos TilePos) geom.Vec2 {
	return TileCenter(m.Type, pos, m.TilemapSize, m.GridSize)
}

// TileCollisionTransform places a collision object of a tile drawn at pos.
// Collision objects are authored in the tile image's Y-down pixel frame,
// whose bottom-left sits half a tile image below and left of the cell center.
func (m *MapDocument) TileCollisionTransform(pos TilePos, ts *Tileset, obj *Object) geom.Transform {
	size := ts.TileSize
	bottomLeft := m.TileCenter(pos).Sub(m.GridSize.Scale(0.5)).Add(ts.Offset)
	return geom.Transform{
		Translation: bottomLeft.Add(geom.V(obj.Position.X, size.Y-obj.Position.Y)),
		Rotation:    -obj.Rotation * math.Pi / 180,
		Scale:       geom.V(1, 1),
	}
}

// Bounds returns the rendering-space bounding rectangle of the map's grid.
func (m *MapDocument) Bounds() geom.Rect {
	var native geom.Vec2
	if m.Type == IsoDiamond {
		native = geom.V(float64(m.TilemapSize.X)*m.GridSize.Y, float64(m.TilemapSize.Y)*m.GridSize.Y)
	} else {
		native = MapPixelSize(m.Type, m.TilemapSize, m.GridSize)
	}
	corners := geom.R(0, 0, native.X, native.Y).Corners()
	pts := make([]geom.Vec2, len(corners))
	for i, c := range corners {
		pts[i] = Project(m.Type, c, m.TilemapSize, m.GridSize)
	}
	return geom.BoundingRect(pts...)
}

// AnchorOffset returns the translation that puts anchor a of the map at the
// rendering origin.
func (m *MapDocument) AnchorOffset(a Anchor) geom.Vec2 {
	return a.Offset(m.Bounds())
}

// Images lists every image file the map depends on, in discovery order.
func (m *MapDocument) Images() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, ts := range m.Tilesets {
		switch tex := ts.Texture.(type) {
		case PackedTexture:
			add(tex.Image)
		case ImageCollection:
			for _, img := range tex.Images {
				add(img.Path)
			}
		}
	}
	for _, l := range m.Layers {
		l.Walk(geom.Vec2{}, func(l *Layer, _ geom.Vec2) {
			if l.Image != nil {
				add(l.Image.Source)
			}
		})
	}
	return out
}

// Tileset returns the tileset at index i.
func (m *MapDocument) Tileset(i int) (*Tileset, bool) {
	if i < 0 || i >= len(m.Tilesets) {
		return nil, false
	}
	return m.Tilesets[i], true
}

// TileData returns the metadata of a populated cell.
func (m *MapDocument) TileData(t LayerTile) (*TileData, bool) {
	if !t.Valid {
		return nil, false
	}
	ts, ok := m.Tileset(t.Tileset)
	if !ok {
		return nil, false
	}
	td, ok := ts.Tiles[t.ID]
	return td, ok
}
