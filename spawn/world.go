package spawn

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/world"
)

// WorldSpawner keeps the maps of one world instantiated according to the
// viewports passed to Update.
type WorldSpawner struct {
	spawner *Spawner
	doc     *world.Document
	tracker *world.Tracker
	root    ecs.Entity
	maps    map[int]ecs.Entity
	missing map[int]bool
}

// SpawnWorld creates the world root below parent. No map is spawned until
// the first Update. A nil window spawns every map on that first Update.
func (s *Spawner) SpawnWorld(doc *world.Document, parent ecs.Entity, anchor tiled.Anchor, window *geom.Vec2) (*WorldSpawner, Result, error) {
	if doc == nil {
		return nil, Result{}, fmt.Errorf("spawn: nil world document")
	}
	if s.World == nil {
		return nil, Result{}, fmt.Errorf("spawn: no world")
	}
	root := ecs.CreateEntity(s.World)
	if parent != ecs.NoEntity {
		if err := ecs.SetParent(s.World, root, parent); err != nil {
			ecs.DestroyEntity(s.World, root)
			return nil, Result{}, fmt.Errorf("spawn: attach world: %w", err)
		}
	}
	t := Transform{Local: geom.Identity()}
	if err := ecs.Add(s.World, root, TransformComponent.Kind(), &t); err != nil {
		return nil, Result{}, err
	}
	info := WorldInfo{Path: doc.Path, Bounds: doc.Bounds, Doc: doc}
	if err := ecs.Add(s.World, root, WorldInfoComponent.Kind(), &info); err != nil {
		return nil, Result{}, err
	}
	ev := Event{Kind: WorldCreated, Entity: root, Parent: parent}
	s.World.Events().Push(ecs.Event{Type: ev.Kind.String(), Data: ev})

	ws := &WorldSpawner{
		spawner: s,
		doc:     doc,
		tracker: world.NewTracker(anchor, window),
		root:    root,
		maps:    make(map[int]ecs.Entity),
		missing: make(map[int]bool),
	}
	return ws, Result{Root: root, Events: []Event{ev}}, nil
}

func (ws *WorldSpawner) Root() ecs.Entity {
	return ws.root
}

func (ws *WorldSpawner) Document() *world.Document {
	return ws.doc
}

// Loaded returns the indices of the instantiated maps, sorted.
func (ws *WorldSpawner) Loaded() []int {
	return ws.tracker.Loaded()
}

// MapEntity returns the root of the instantiated map i.
func (ws *WorldSpawner) MapEntity(i int) (ecs.Entity, bool) {
	e, ok := ws.maps[i]
	return e, ok
}

// Update spawns maps that became visible and despawns maps that are no
// longer visible from any viewport. A map whose spawn fails is left out of
// Loaded and retried on the next Update; the other maps still spawn and the
// failures are joined into the returned error.
func (ws *WorldSpawner) Update(viewports []geom.Rect) (world.Diff, Result, error) {
	s := ws.spawner
	diff := ws.tracker.Update(ws.doc, WorldTransform(s.World, ws.root), viewports)
	res := Result{Root: ws.root}
	for _, i := range diff.Remove {
		if e, ok := ws.maps[i]; ok {
			s.Despawn(e)
			delete(ws.maps, i)
		}
	}
	offset := ws.doc.Offset(ws.tracker.Anchor)
	var errs []error
	for _, i := range diff.Spawn {
		p := ws.doc.Maps[i]
		if p.Map == nil {
			if !ws.missing[i] {
				s.logger().Warn("world map was not loaded; skipping",
					zap.String("world", ws.doc.Path), zap.String("map", p.Path))
				ws.missing[i] = true
			}
			ws.tracker.Skip(i)
			continue
		}
		local := geom.FromTranslation(p.Rect.Min.Add(offset))
		r, err := s.spawnMapAt(p.Map, ws.root, local)
		if err != nil {
			errs = append(errs, fmt.Errorf("spawn: world map %s: %w", p.Path, err))
			continue
		}
		if err := ecs.Add(s.World, r.Root, WorldMapComponent.Kind(), &WorldMap{World: ws.root, Index: i}); err != nil {
			s.Despawn(r.Root)
			errs = append(errs, fmt.Errorf("spawn: world map %s: %w", p.Path, err))
			continue
		}
		ws.maps[i] = r.Root
		ws.tracker.MarkLoaded(i)
		res.Events = append(res.Events, r.Events...)
	}
	return diff, res, errors.Join(errs...)
}

// Reload swaps in a new document. Every instantiated map is despawned and
// the next Update spawns the visible maps of doc.
func (ws *WorldSpawner) Reload(doc *world.Document) {
	for i, e := range ws.maps {
		ws.spawner.Despawn(e)
		delete(ws.maps, i)
	}
	ws.tracker.Reset()
	clear(ws.missing)
	ws.doc = doc
	if info, ok := ecs.Get(ws.spawner.World, ws.root, WorldInfoComponent.Kind()); ok {
		info.Path, info.Bounds, info.Doc = doc.Path, doc.Bounds, doc
	}
}

// Despawn removes the world root and every map below it.
func (ws *WorldSpawner) Despawn() int {
	clear(ws.maps)
	clear(ws.missing)
	ws.tracker.Reset()
	return ws.spawner.Despawn(ws.root)
}
