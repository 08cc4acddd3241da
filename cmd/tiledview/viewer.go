package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/asset"
	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/spawn"
	"github.com/milk9111/tiledmap/tiled"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	panSpeed   = 8
)

// Viewer is an ebiten.Game that shows one map or world with its colliders.
type Viewer struct {
	log      *zap.Logger
	server   *asset.Server
	world    *ecs.World
	spawner  *spawn.Spawner
	strategy physics.Strategy
	cam      *Camera
	systems  *ecs.Scheduler

	mapHandle   *asset.MapHandle
	worldHandle *asset.WorldHandle
	seen        uint64
	failures    uint64
	root        ecs.Entity
	ws          *spawn.WorldSpawner
	worldAnchor tiled.Anchor
	window      *geom.Vec2

	showTiles   bool
	showPhysics bool
	events      map[string]int
	lastErr     error
}

type ViewerOptions struct {
	Server      *asset.Server
	Spawner     *spawn.Spawner
	Strategy    physics.Strategy
	Logger      *zap.Logger
	Zoom        float64
	WorldAnchor tiled.Anchor
	Window      *geom.Vec2
}

func NewViewer(opts ViewerOptions) *Viewer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{
		log:         log,
		server:      opts.Server,
		world:       opts.Spawner.World,
		spawner:     opts.Spawner,
		strategy:    opts.Strategy,
		cam:         NewCamera(baseWidth, baseHeight, opts.Zoom),
		worldAnchor: opts.WorldAnchor,
		window:      opts.Window,
		showTiles:   true,
		events:      make(map[string]int),
	}
	v.systems = ecs.NewScheduler(
		ecs.SystemFunc(v.reloadMap),
		ecs.SystemFunc(v.reloadWorld),
		ecs.SystemFunc(v.updateChunks),
		ecs.SystemFunc(v.countEvents),
	)
	return v
}

// OpenMap shows the map at p.
func (v *Viewer) OpenMap(p string) {
	v.mapHandle = v.server.LoadMap(p)
}

// OpenWorld shows the world at p, spawning maps as the camera reaches them.
func (v *Viewer) OpenWorld(p string) {
	v.worldHandle = v.server.LoadWorld(p)
}

// dropFailed despawns what is on screen when the handle reports a failed
// load it has not seen yet.
func (v *Viewer) dropFailed(path string, failures uint64, err error) bool {
	if failures == v.failures {
		return false
	}
	v.failures = failures
	v.lastErr = err
	n := 0
	if v.ws != nil {
		n = v.ws.Despawn()
		v.ws = nil
	} else {
		n = v.spawner.Despawn(v.root)
	}
	v.root = ecs.NoEntity
	v.log.Error("load failed; despawned", zap.String("path", path), zap.Int("entities", n), zap.Error(err))
	return true
}

func (v *Viewer) reloadMap(w *ecs.World) {
	h := v.mapHandle
	if h == nil {
		return
	}
	if v.dropFailed(h.Path(), h.Failures(), h.Err()) || h.Version() == v.seen {
		return
	}
	doc, ok := h.Get()
	if !ok {
		return
	}
	first := v.seen == 0
	v.seen = h.Version()

	res, err := v.spawner.Respawn(v.root, doc)
	if err != nil {
		v.lastErr = err
		v.log.Error("spawn map", zap.String("path", h.Path()), zap.Error(err))
		return
	}
	v.lastErr = nil
	v.root = res.Root
	v.log.Info("map spawned", zap.String("path", h.Path()), zap.Uint64("version", v.seen), zap.Int("entities", len(res.Events)))
	if first {
		v.cam.SnapTo(spawn.WorldTransform(w, v.root).Apply(doc.Bounds().Center()))
	}
}

func (v *Viewer) reloadWorld(w *ecs.World) {
	h := v.worldHandle
	if h == nil {
		return
	}
	if v.dropFailed(h.Path(), h.Failures(), h.Err()) || h.Version() == v.seen {
		return
	}
	doc, ok := h.Get()
	if !ok {
		return
	}
	v.seen = h.Version()
	if v.ws != nil {
		v.ws.Reload(doc)
		v.log.Info("world reloaded", zap.String("path", h.Path()), zap.Uint64("version", v.seen))
		return
	}
	ws, _, err := v.spawner.SpawnWorld(doc, ecs.NoEntity, v.worldAnchor, v.window)
	if err != nil {
		v.lastErr = err
		v.log.Error("spawn world", zap.String("path", h.Path()), zap.Error(err))
		return
	}
	v.ws = ws
	v.root = ws.Root()
	v.cam.SnapTo(doc.Bounds.Center().Add(doc.Offset(v.worldAnchor)))
}

func (v *Viewer) updateChunks(w *ecs.World) {
	if v.ws == nil {
		return
	}
	diff, _, err := v.ws.Update([]geom.Rect{v.cam.Viewport()})
	if err != nil {
		v.lastErr = err
		v.log.Error("world chunks", zap.Error(err))
		return
	}
	if !diff.Empty() {
		v.log.Debug("world chunks changed", zap.Ints("spawn", diff.Spawn), zap.Ints("remove", diff.Remove))
	}
}

func (v *Viewer) countEvents(w *ecs.World) {
	for _, ev := range w.Events().Drain() {
		v.events[ev.Type]++
	}
}

func (v *Viewer) handleInput() {
	step := panSpeed / v.cam.Zoom()
	var d geom.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		d.X -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		d.X += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		d.Y += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		d.Y -= step
	}
	v.cam.Pan(d)

	if _, wy := ebiten.Wheel(); wy > 0 || inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		v.cam.SetZoom(v.cam.Zoom() * 1.25)
	} else if wy < 0 || inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		v.cam.SetZoom(v.cam.Zoom() / 1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		v.showTiles = !v.showTiles
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.showPhysics = !v.showPhysics
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.server.Reload()
	}
}

func (v *Viewer) Update() error {
	v.handleInput()
	v.cam.Update()
	v.systems.Update(v.world)
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	ecs.ForEach(v.world, spawn.MapInfoComponent.Kind(), func(e ecs.Entity, info *spawn.MapInfo) {
		t := spawn.WorldTransform(v.world, e)
		b := info.Bounds
		strokeRect(screen, v.cam, geom.BoundingRect(t.Apply(b.Min), t.Apply(b.Max)), boundsColor)
	})
	if v.ws != nil {
		doc := v.ws.Document()
		off := doc.Offset(v.worldAnchor)
		for _, i := range v.ws.Loaded() {
			strokeRect(screen, v.cam, doc.Maps[i].Rect.Translate(off), chunkColor)
		}
	}

	if v.showTiles {
		ecs.ForEach(v.world, spawn.TileInfoComponent.Kind(), func(e ecs.Entity, _ *spawn.TileInfo) {
			strokeCross(screen, v.cam, spawn.WorldTransform(v.world, e).Translation, 4, tileColor)
		})
	}
	ecs.ForEach(v.world, spawn.ColliderComponent.Kind(), func(_ ecs.Entity, c *spawn.Collider) {
		drawGeometry(screen, v.cam, c.Geometry, v.strategy)
	})
	ecs.ForEach(v.world, spawn.ObjectInfoComponent.Kind(), func(e ecs.Entity, _ *spawn.ObjectInfo) {
		strokeCross(screen, v.cam, spawn.WorldTransform(v.world, e).Translation, 8, objectColor)
	})
	if v.showPhysics {
		if cm, ok := v.spawner.Backend.(*physics.Chipmunk); ok {
			drawSpace(screen, v.cam, cm.Space())
		}
	}

	ebitenutil.DebugPrint(screen, v.status())
}

func (v *Viewer) status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f  zoom: %.2f  pos: %.0f,%.0f  entities: %d\n",
		ebiten.ActualFPS(), v.cam.Zoom(), v.cam.Pos.X, v.cam.Pos.Y, ecs.Len(v.world))
	fmt.Fprintf(&b, "colliders: %d  tiles: %d  objects: %d  pending loads: %d\n",
		ecs.Count(v.world, spawn.ColliderComponent.Kind()),
		ecs.Count(v.world, spawn.TileInfoComponent.Kind()),
		ecs.Count(v.world, spawn.ObjectInfoComponent.Kind()),
		v.server.Pending())
	if v.ws != nil {
		fmt.Fprintf(&b, "world maps loaded: %d/%d\n", len(v.ws.Loaded()), len(v.ws.Document().Maps))
	}
	kinds := make([]string, 0, len(v.events))
	for k := range v.events {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "%s: %d  ", k, v.events[k])
	}
	b.WriteString("\n[WASD] pan  [wheel/+/-] zoom  [T] tiles  [P] physics  [R] reload\n")
	if v.lastErr != nil {
		fmt.Fprintf(&b, "error: %v\n", v.lastErr)
	}
	return b.String()
}

// LayoutF follows the window size so resizing shows more of the map.
func (v *Viewer) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	v.cam.SetScreenSize(int(outsideWidth), int(outsideHeight))
	return outsideWidth, outsideHeight
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
