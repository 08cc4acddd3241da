// Package tiled decodes Tiled maps into immutable documents and projects
// their tiles, objects and chunks into a Y-up rendering space.
package tiled

import (
	"time"

	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/geom"
)

// ChunkExtent is the width and height, in tiles, of an infinite-map chunk.
const ChunkExtent = 16

// ChunkPos is a chunk coordinate; chunk (0,0) covers tiles [0,16)².
type ChunkPos struct {
	X, Y int32
}

// MapDocument is a decoded .tmx file. It is never mutated after Decode.
type MapDocument struct {
	Path            string
	Orientation     Orientation
	StaggerAxis     StaggerAxis
	StaggerIndex    StaggerIndex
	Type            TilemapType
	GridSize        geom.Vec2
	TileSize        geom.Vec2
	TilemapSize     TileCount
	Infinite        bool
	Class           string
	BackgroundColor Color
	Properties      Properties

	// Chunk window spanning every infinite tile layer. TiledOffset is added
	// to native coordinates so that TopLeftChunk starts at the origin.
	TopLeftChunk     ChunkPos
	BottomRightChunk ChunkPos
	TiledOffset      geom.Vec2

	Layers   []*Layer
	Tilesets []*Tileset

	log *zap.Logger
}

// LayerKind reports which payload a Layer carries.
type LayerKind int

const (
	LayerTiles LayerKind = iota
	LayerObjects
	LayerImage
	LayerGroup
)

func (k LayerKind) String() string {
	switch k {
	case LayerTiles:
		return "tiles"
	case LayerObjects:
		return "objects"
	case LayerImage:
		return "image"
	}
	return "group"
}

// Layer is one map layer. Exactly one of Tiles, Objects, Image and Group is set.
type Layer struct {
	ID         int
	Name       string
	Class      string
	Offset     geom.Vec2
	Parallax   geom.Vec2
	Visible    bool
	Opacity    float64
	Tint       Color
	Properties Properties

	Tiles   *TileLayer
	Objects *ObjectLayer
	Image   *ImageLayer
	Group   *GroupLayer
}

func (l *Layer) Kind() LayerKind {
	switch {
	case l.Tiles != nil:
		return LayerTiles
	case l.Objects != nil:
		return LayerObjects
	case l.Image != nil:
		return LayerImage
	}
	return LayerGroup
}

// Walk calls fn for l and every nested layer in source order. Offsets of
// enclosing groups are accumulated into the offset passed to fn.
func (l *Layer) Walk(parentOffset geom.Vec2, fn func(l *Layer, offset geom.Vec2)) {
	off := parentOffset.Add(l.Offset)
	fn(l, off)
	if l.Group != nil {
		for _, c := range l.Group.Layers {
			c.Walk(off, fn)
		}
	}
}

// LayerTile is one populated or empty cell. Valid is false for "no tile".
type LayerTile struct {
	Tileset int
	ID      uint32
	FlipH   bool
	FlipV   bool
	FlipD   bool
	Valid   bool
}

// TileLayer stores either a dense finite grid or sparse chunks.
type TileLayer struct {
	Width, Height uint32
	// Finite is indexed row*Width+col with row 0 at the top.
	Finite []LayerTile
	Chunks map[ChunkPos]*Chunk
}

func (tl *TileLayer) IsInfinite() bool {
	return tl.Chunks != nil
}

// Chunk holds ChunkExtent² cells, row 0 at the top.
type Chunk struct {
	Pos   ChunkPos
	Tiles [ChunkExtent * ChunkExtent]LayerTile
}

type ObjectLayer struct {
	Color     Color
	DrawOrder string
	Objects   []*Object
}

type ImageLayer struct {
	Source  string
	Size    geom.Vec2
	RepeatX bool
	RepeatY bool
}

type GroupLayer struct {
	Layers []*Layer
}

// Tileset is a decoded tileset with its texture layout.
type Tileset struct {
	Name     string
	Class    string
	Source   string
	FirstGID uint32

	TileSize  geom.Vec2
	Spacing   int
	Margin    int
	TileCount uint32
	Columns   uint32
	Offset    geom.Vec2

	Texture TilesetTexture
	// UsableForTiles is false for image collections whose images differ in
	// size; such tilesets can still back tile objects.
	UsableForTiles bool

	Tiles      map[uint32]*TileData
	Properties Properties
}

// TilesetTexture is PackedTexture or ImageCollection.
type TilesetTexture interface {
	isTexture()
}

// PackedTexture is a single image holding a uniform grid of tiles.
type PackedTexture struct {
	Image   string
	Size    geom.Vec2
	Columns uint32
	Rows    uint32
}

// ImageCollection gives every tile its own image. Index maps a tile id to
// its position in Images.
type ImageCollection struct {
	Images []TileImage
	Index  map[uint32]int
}

func (PackedTexture) isTexture()   {}
func (ImageCollection) isTexture() {}

type TileImage struct {
	Path string
	Size geom.Vec2
}

// TextureIndex returns the texture slot of tile id: the atlas cell for
// packed tilesets, the image index for collections.
func (ts *Tileset) TextureIndex(id uint32) (int, bool) {
	switch tex := ts.Texture.(type) {
	case PackedTexture:
		if id >= tex.Columns*tex.Rows {
			return 0, false
		}
		return int(id), true
	case ImageCollection:
		i, ok := tex.Index[id]
		return i, ok
	}
	return 0, false
}

// SourceRect returns the pixel rectangle of tile id inside a packed image,
// with Y down as stored in the image.
func (ts *Tileset) SourceRect(id uint32) (geom.Rect, bool) {
	tex, ok := ts.Texture.(PackedTexture)
	if !ok || tex.Columns == 0 || id >= tex.Columns*tex.Rows {
		return geom.Rect{}, false
	}
	col, row := float64(id%tex.Columns), float64(id/tex.Columns)
	x := float64(ts.Margin) + col*(ts.TileSize.X+float64(ts.Spacing))
	y := float64(ts.Margin) + row*(ts.TileSize.Y+float64(ts.Spacing))
	return geom.R(x, y, x+ts.TileSize.X, y+ts.TileSize.Y), true
}

// TileData is the per-tile metadata of a tileset.
type TileData struct {
	ID          uint32
	Class       string
	Probability float64
	Image       *TileImage
	Collision   []*Object
	Animation   []AnimationFrame
	Properties  Properties
}

type AnimationFrame struct {
	TileID   uint32
	Duration time.Duration
}
