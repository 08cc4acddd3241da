package spawn

import (
	"fmt"

	"github.com/milk9111/tiledmap/ecs"
)

// EventKind names one "created" notification.
type EventKind int

const (
	MapCreated EventKind = iota
	LayerCreated
	TilemapCreated
	TileCreated
	ObjectCreated
	ColliderCreated
	WorldCreated
)

func (k EventKind) String() string {
	switch k {
	case MapCreated:
		return "map_created"
	case LayerCreated:
		return "layer_created"
	case TilemapCreated:
		return "tilemap_created"
	case TileCreated:
		return "tile_created"
	case ObjectCreated:
		return "object_created"
	case ColliderCreated:
		return "collider_created"
	case WorldCreated:
		return "world_created"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports one spawned entity. Events of one spawn are ordered so a
// parent is always announced before its children.
type Event struct {
	Kind   EventKind
	Entity ecs.Entity
	Parent ecs.Entity
	// Map is the map root the entity belongs to.
	Map ecs.Entity
}

// Result is what a spawn produced.
type Result struct {
	Root   ecs.Entity
	Events []Event
}

// Count returns how many events of kind r holds.
func (r Result) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
