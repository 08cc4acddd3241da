package spawn

import (
	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/ecs/component"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/world"
)

// Transform is an entity's placement relative to its parent. Z orders
// layers; later layers get a higher Z.
type Transform struct {
	Local geom.Transform
	Z     float64
}

type MapInfo struct {
	Path   string
	Type   tiled.TilemapType
	Size   tiled.TileCount
	Grid   geom.Vec2
	Bounds geom.Rect
	Doc    *tiled.MapDocument
}

type LayerInfo struct {
	ID       int
	Name     string
	Kind     tiled.LayerKind
	Index    int
	Offset   geom.Vec2
	Parallax geom.Vec2
	Visible  bool
	Opacity  float64
	Layer    *tiled.Layer
}

// TilemapInfo marks the entity holding one tileset's tiles of a layer.
type TilemapInfo struct {
	LayerID int
	Tileset int
	Name    string
}

type TileInfo struct {
	Pos   tiled.TilePos
	Tile  tiled.LayerTile
	Data  *tiled.TileData
	Index int
}

type ObjectInfo struct {
	Object  *tiled.Object
	LayerID int
	Center  geom.Vec2
}

// Collider holds world-space collision geometry and the backend handles
// created for it.
type Collider struct {
	Source   physics.ColliderSource
	Geometry geom.MultiPolygon
	Handles  []physics.ColliderHandle
}

// Typed is a class property set resolved through a PropertyRegistry.
type Typed struct {
	Class string
	Value any
}

// WorldInfo marks a world root.
type WorldInfo struct {
	Path   string
	Bounds geom.Rect
	Doc    *world.Document
}

// WorldMap marks a map root spawned as part of a world.
type WorldMap struct {
	World ecs.Entity
	Index int
}

var (
	TransformComponent  = component.NewComponent[Transform]("transform")
	MapInfoComponent    = component.NewComponent[MapInfo]("map")
	LayerInfoComponent  = component.NewComponent[LayerInfo]("layer")
	TilemapComponent    = component.NewComponent[TilemapInfo]("tilemap")
	TileInfoComponent   = component.NewComponent[TileInfo]("tile")
	ObjectInfoComponent = component.NewComponent[ObjectInfo]("object")
	ColliderComponent   = component.NewComponent[Collider]("collider")
	PropertiesComponent = component.NewComponent[tiled.Properties]("properties")
	TypedComponent      = component.NewComponent[Typed]("typed")
	WorldInfoComponent  = component.NewComponent[WorldInfo]("world")
	WorldMapComponent   = component.NewComponent[WorldMap]("world_map")
)
