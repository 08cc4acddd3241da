// Package spawn turns decoded maps and worlds into ecs entities and
// physics colliders.
//
// A map becomes a tree: the map root, one entity per layer (groups nest),
// one tilemap entity per tileset used by a tile layer, one entity per tile
// and per object, and collider entities below tilemaps and objects. Every
// entity gets a Transform relative to its parent. Creation is reported
// through Result.Events and the world's event queue, parents first.
package spawn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/tiled"
)

// NameMatcher selects objects by their Tiled name.
type NameMatcher interface {
	Matches(name string) bool
}

// MatchFunc adapts a function to NameMatcher.
type MatchFunc func(name string) bool

func (f MatchFunc) Matches(name string) bool {
	return f(name)
}

// MatchAll matches every name.
var MatchAll = MatchFunc(func(string) bool { return true })

// Config controls what SpawnMap creates.
type Config struct {
	// MapAnchor moves the map root so that this point of the map's bounds
	// sits at the parent's origin. AnchorNone leaves the grid origin there.
	MapAnchor tiled.Anchor
	// LayerZOffset is the Z distance between consecutive layers.
	LayerZOffset float64
	// ObjectColliders and TileColliders pick which objects, and which tile
	// collision objects, become colliders. nil matches nothing.
	ObjectColliders NameMatcher
	TileColliders   NameMatcher
	// OpenLines turns polylines into colliders too. Only line based
	// physics strategies can represent them.
	OpenLines bool
	// Registry resolves class properties into Typed components.
	Registry *tiled.PropertyRegistry
}

func DefaultConfig() Config {
	return Config{
		LayerZOffset:    100,
		ObjectColliders: MatchAll,
		TileColliders:   MatchAll,
	}
}

// Spawner creates entities in World. A nil Backend behaves as physics.Noop.
type Spawner struct {
	World   *ecs.World
	Backend physics.Backend
	Config  Config
	Logger  *zap.Logger
}

func (s *Spawner) backend() physics.Backend {
	if s.Backend == nil {
		return physics.Noop{}
	}
	return s.Backend
}

func (s *Spawner) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// SpawnMap spawns doc below parent, or as a top level entity when parent
// is ecs.NoEntity. On error nothing of the map is left behind.
func (s *Spawner) SpawnMap(doc *tiled.MapDocument, parent ecs.Entity) (Result, error) {
	local := geom.Identity()
	if !s.Config.MapAnchor.IsNone() {
		local = geom.FromTranslation(doc.AnchorOffset(s.Config.MapAnchor))
	}
	return s.spawnMapAt(doc, parent, local)
}

func (s *Spawner) spawnMapAt(doc *tiled.MapDocument, parent ecs.Entity, local geom.Transform) (Result, error) {
	if doc == nil {
		return Result{}, fmt.Errorf("spawn: nil map document")
	}
	if s.World == nil {
		return Result{}, fmt.Errorf("spawn: no world")
	}
	r := &run{s: s, w: s.World, doc: doc}
	root, err := r.spawnMap(parent, local)
	if err != nil {
		if root != ecs.NoEntity {
			s.Despawn(root)
		}
		return Result{}, err
	}
	for _, ev := range r.events {
		s.World.Events().Push(ecs.Event{Type: ev.Kind.String(), Data: ev})
	}
	return Result{Root: root, Events: r.events}, nil
}

// Despawn removes root, everything below it and their colliders. It
// returns the number of destroyed entities.
func (s *Spawner) Despawn(root ecs.Entity) int {
	if !ecs.IsAlive(s.World, root) {
		return 0
	}
	subtree := append([]ecs.Entity{root}, ecs.Descendants(s.World, root)...)
	for _, e := range subtree {
		if c, ok := ecs.Get(s.World, e, ColliderComponent.Kind()); ok && len(c.Handles) > 0 {
			s.backend().RemoveColliders(c.Handles)
		}
	}
	return ecs.DestroyRecursive(s.World, root)
}

// Respawn replaces the map below root with doc, keeping root's parent and
// its local transform.
func (s *Spawner) Respawn(root ecs.Entity, doc *tiled.MapDocument) (Result, error) {
	if !ecs.IsAlive(s.World, root) {
		return s.SpawnMap(doc, ecs.NoEntity)
	}
	parent, _ := ecs.Parent(s.World, root)
	local := geom.Identity()
	if t, ok := ecs.Get(s.World, root, TransformComponent.Kind()); ok {
		local = t.Local
	}
	s.Despawn(root)
	return s.spawnMapAt(doc, parent, local)
}

// WorldTransform composes the transforms from the top of e's hierarchy
// down to e.
func WorldTransform(w *ecs.World, e ecs.Entity) geom.Transform {
	var chain []ecs.Entity
	for cur := e; ecs.IsAlive(w, cur); {
		chain = append(chain, cur)
		p, ok := ecs.Parent(w, cur)
		if !ok {
			break
		}
		cur = p
	}
	t := geom.Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		if tr, ok := ecs.Get(w, chain[i], TransformComponent.Kind()); ok {
			t = t.Mul(tr.Local)
		}
	}
	return t
}

// run is the state of one SpawnMap call.
type run struct {
	s      *Spawner
	w      *ecs.World
	doc    *tiled.MapDocument
	root   ecs.Entity
	layers int
	events []Event
}

func (r *run) create(kind EventKind, parent ecs.Entity, t Transform) (ecs.Entity, error) {
	e := ecs.CreateEntity(r.w)
	if parent != ecs.NoEntity {
		if err := ecs.SetParent(r.w, e, parent); err != nil {
			ecs.DestroyEntity(r.w, e)
			return ecs.NoEntity, fmt.Errorf("spawn: attach %s: %w", kind, err)
		}
	}
	if err := ecs.Add(r.w, e, TransformComponent.Kind(), &t); err != nil {
		return e, err
	}
	mapRoot := r.root
	if kind == MapCreated {
		mapRoot = e
	}
	r.events = append(r.events, Event{Kind: kind, Entity: e, Parent: parent, Map: mapRoot})
	return e, nil
}

func (r *run) spawnMap(parent ecs.Entity, local geom.Transform) (ecs.Entity, error) {
	root, err := r.create(MapCreated, parent, Transform{Local: local})
	if err != nil {
		return root, err
	}
	r.root = root
	doc := r.doc
	info := MapInfo{
		Path:   doc.Path,
		Type:   doc.Type,
		Size:   doc.TilemapSize,
		Grid:   doc.GridSize,
		Bounds: doc.Bounds(),
		Doc:    doc,
	}
	if err := ecs.Add(r.w, root, MapInfoComponent.Kind(), &info); err != nil {
		return root, err
	}
	if err := r.attachProperties(root, doc.Class, doc.Properties); err != nil {
		return root, err
	}
	for _, l := range doc.Layers {
		if err := r.spawnLayer(l, root, geom.Vec2{}); err != nil {
			return root, err
		}
	}
	return root, nil
}

func (r *run) attachProperties(e ecs.Entity, class string, props tiled.Properties) error {
	if len(props) > 0 {
		p := props
		if err := ecs.Add(r.w, e, PropertiesComponent.Kind(), &p); err != nil {
			return err
		}
	}
	reg := r.s.Config.Registry
	if reg == nil || class == "" {
		return nil
	}
	v, ok, err := reg.Resolve(class, props)
	if err != nil {
		r.s.logger().Warn("property class could not be resolved",
			zap.String("map", r.doc.Path), zap.String("class", class), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return ecs.Add(r.w, e, TypedComponent.Kind(), &Typed{Class: class, Value: v})
}

func (r *run) spawnLayer(l *tiled.Layer, parent ecs.Entity, parentOffset geom.Vec2) error {
	off := parentOffset.Add(l.Offset)
	local := geom.Identity()
	switch l.Kind() {
	case tiled.LayerTiles, tiled.LayerImage:
		local = geom.FromTranslation(geom.V(off.X, -off.Y))
	}
	z := float64(r.layers) * r.s.Config.LayerZOffset
	r.layers++

	e, err := r.create(LayerCreated, parent, Transform{Local: local, Z: z})
	if err != nil {
		return err
	}
	info := LayerInfo{
		ID:       l.ID,
		Name:     l.Name,
		Kind:     l.Kind(),
		Index:    r.layers - 1,
		Offset:   off,
		Parallax: l.Parallax,
		Visible:  l.Visible,
		Opacity:  l.Opacity,
		Layer:    l,
	}
	if err := ecs.Add(r.w, e, LayerInfoComponent.Kind(), &info); err != nil {
		return err
	}
	if err := r.attachProperties(e, l.Class, l.Properties); err != nil {
		return err
	}

	switch l.Kind() {
	case tiled.LayerTiles:
		return r.spawnTiles(l, e)
	case tiled.LayerObjects:
		return r.spawnObjects(l, e, off)
	case tiled.LayerGroup:
		for _, c := range l.Group.Layers {
			if err := r.spawnLayer(c, e, off); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) spawnTiles(l *tiled.Layer, layer ecs.Entity) error {
	doc := r.doc
	frame := WorldTransform(r.w, layer)
	for _, tsi := range doc.TilesetsUsed(l) {
		ts := doc.Tilesets[tsi]
		if !ts.UsableForTiles {
			r.s.logger().Warn("tileset images differ in size; skipping its tiles",
				zap.String("map", doc.Path), zap.String("layer", l.Name), zap.String("tileset", ts.Name))
			continue
		}
		tm, err := r.create(TilemapCreated, layer, Transform{Local: geom.Identity()})
		if err != nil {
			return err
		}
		if err := ecs.Add(r.w, tm, TilemapComponent.Kind(), &TilemapInfo{LayerID: l.ID, Tileset: tsi, Name: ts.Name}); err != nil {
			return err
		}

		var shapes geom.MultiPolygon
		var visitErr error
		doc.ForEachTile(l, tsi, func(td *tiled.TileData, tile tiled.LayerTile, pos tiled.TilePos, index int) {
			if visitErr != nil {
				return
			}
			te, err := r.create(TileCreated, tm, Transform{Local: geom.FromTranslation(doc.TileCenter(pos))})
			if err != nil {
				visitErr = err
				return
			}
			info := TileInfo{Pos: pos, Tile: tile, Data: td, Index: index}
			if err := ecs.Add(r.w, te, TileInfoComponent.Kind(), &info); err != nil {
				visitErr = err
				return
			}
			if err := r.attachProperties(te, td.Class, td.Properties); err != nil {
				visitErr = err
				return
			}
			shapes = append(shapes, r.tileShapes(pos, ts, td)...)
		})
		if visitErr != nil {
			return visitErr
		}
		if len(shapes) == 0 {
			continue
		}
		src := physics.ColliderSource{Kind: physics.SourceTile, LayerID: l.ID, Tileset: tsi, Name: ts.Name}
		if err := r.collider(tm, src, transformMulti(frame, shapes)); err != nil {
			return err
		}
	}
	return nil
}

// tileShapes returns the matching collision objects of a tile, placed at
// the tile in its tilemap's frame.
func (r *run) tileShapes(pos tiled.TilePos, ts *tiled.Tileset, td *tiled.TileData) geom.MultiPolygon {
	filter := r.s.Config.TileColliders
	if filter == nil {
		return nil
	}
	var out geom.MultiPolygon
	for _, obj := range td.Collision {
		if !filter.Matches(obj.Name) {
			continue
		}
		t := r.doc.TileCollisionTransform(pos, ts, obj)
		if p := obj.Polygon(t, false, r.doc.TilemapSize, r.doc.GridSize, geom.Vec2{}); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (r *run) spawnObjects(l *tiled.Layer, layer ecs.Entity, off geom.Vec2) error {
	doc := r.doc
	frame := WorldTransform(r.w, layer)
	filter := r.s.Config.ObjectColliders
	for _, obj := range l.Objects.Objects {
		oe, err := r.create(ObjectCreated, layer, Transform{Local: doc.ObjectTransform(off, obj)})
		if err != nil {
			return err
		}
		info := ObjectInfo{Object: obj, LayerID: l.ID, Center: doc.ObjectCenter(off, obj)}
		if err := ecs.Add(r.w, oe, ObjectInfoComponent.Kind(), &info); err != nil {
			return err
		}
		if err := r.attachProperties(oe, obj.Class, obj.Properties); err != nil {
			return err
		}
		if filter == nil || !filter.Matches(obj.Name) {
			continue
		}
		var mp geom.MultiPolygon
		if p := doc.ObjectPolygon(off, obj); p != nil {
			mp = geom.MultiPolygon{*p}
		} else if ls := doc.ObjectLineString(off, obj); ls != nil && r.s.Config.OpenLines {
			mp = geom.MultiPolygon{{Exterior: *ls}}
		}
		if len(mp) == 0 {
			continue
		}
		src := physics.ColliderSource{Kind: physics.SourceObject, LayerID: l.ID, ObjectID: obj.ID, Name: obj.Name}
		if err := r.collider(oe, src, transformMulti(frame, mp)); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) collider(parent ecs.Entity, src physics.ColliderSource, mp geom.MultiPolygon) error {
	ce, err := r.create(ColliderCreated, parent, Transform{Local: geom.Identity()})
	if err != nil {
		return err
	}
	src.MapPath = r.doc.Path
	src.Owner = ce
	handles, err := r.s.backend().SpawnColliders(src, mp)
	if err != nil {
		return fmt.Errorf("spawn: colliders for %s %d: %w", src.Kind, src.ObjectID, err)
	}
	if len(handles) == 0 {
		r.s.logger().Debug("collider produced no shapes",
			zap.String("map", r.doc.Path), zap.Int("layer", src.LayerID), zap.String("name", src.Name))
	}
	return ecs.Add(r.w, ce, ColliderComponent.Kind(), &Collider{Source: src, Geometry: mp, Handles: handles})
}

func transformMulti(t geom.Transform, mp geom.MultiPolygon) geom.MultiPolygon {
	out := make(geom.MultiPolygon, len(mp))
	for i, p := range mp {
		out[i] = geom.Polygon{Exterior: transformRing(t, p.Exterior)}
		for _, h := range p.Interiors {
			out[i].Interiors = append(out[i].Interiors, transformRing(t, h))
		}
	}
	return out
}

func transformRing(t geom.Transform, ls geom.LineString) geom.LineString {
	pts := make([]geom.Vec2, len(ls.Points))
	for i, p := range ls.Points {
		pts[i] = t.Apply(p)
	}
	return geom.LineString{Points: pts, Closed: ls.Closed}
}
