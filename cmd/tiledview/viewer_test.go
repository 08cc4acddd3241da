package main

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/milk9111/tiledmap/asset"
	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/spawn"
)

const viewerMap = `<map orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16" infinite="0">
 <layer id="1" name="ground" width="2" height="2"><data encoding="csv">0,0,0,0</data></layer>
 <objectgroup id="2" name="things"><object id="1" name="wall" x="0" y="0" width="32" height="8"/></objectgroup>
</map>`

const viewerWorld = `{"maps":[{"fileName":"a.tmx","x":0,"y":0,"width":32,"height":32}]}`

func settle[T any](t *testing.T, h *asset.Handle[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait(%s): %v", h.Path(), err)
	}
}

func newTestViewer(t *testing.T, fsys fstest.MapFS) (*Viewer, *asset.Server) {
	t.Helper()
	server := asset.NewServer(asset.Options{FS: fsys})
	t.Cleanup(server.Close)
	sp := &spawn.Spawner{World: ecs.NewWorld(), Config: spawn.DefaultConfig()}
	return NewViewer(ViewerOptions{Server: server, Spawner: sp}), server
}

func TestViewerDespawnsBrokenMap(t *testing.T) {
	fsys := fstest.MapFS{"a.tmx": {Data: []byte(viewerMap)}}
	v, server := newTestViewer(t, fsys)
	v.OpenMap("a.tmx")
	settle(t, v.mapHandle)
	v.systems.Update(v.world)

	root := v.root
	if !ecs.IsAlive(v.world, root) {
		t.Fatalf("map was not spawned: %v", v.lastErr)
	}

	fsys["a.tmx"] = &fstest.MapFile{Data: []byte(`<map`)}
	server.Reload()
	settle(t, v.mapHandle)
	v.systems.Update(v.world)
	if ecs.IsAlive(v.world, root) || ecs.Len(v.world) != 0 {
		t.Fatalf("broken reload left %d entities", ecs.Len(v.world))
	}
	if v.lastErr == nil {
		t.Fatalf("failure not reported")
	}

	fsys["a.tmx"] = &fstest.MapFile{Data: []byte(viewerMap)}
	server.Reload()
	settle(t, v.mapHandle)
	v.systems.Update(v.world)
	if !ecs.IsAlive(v.world, v.root) || v.lastErr != nil {
		t.Fatalf("fixed map was not respawned: %v", v.lastErr)
	}
}

func TestViewerDespawnsBrokenWorld(t *testing.T) {
	fsys := fstest.MapFS{
		"a.tmx":      {Data: []byte(viewerMap)},
		"demo.world": {Data: []byte(viewerWorld)},
	}
	v, server := newTestViewer(t, fsys)
	v.OpenWorld("demo.world")
	settle(t, v.worldHandle)
	v.systems.Update(v.world)
	if v.ws == nil || len(v.ws.Loaded()) != 1 {
		t.Fatalf("world was not spawned: %v", v.lastErr)
	}

	fsys["a.tmx"] = &fstest.MapFile{Data: []byte(`<map`)}
	server.Reload()
	settle(t, v.worldHandle)
	v.systems.Update(v.world)
	if v.ws != nil || ecs.Len(v.world) != 0 {
		t.Fatalf("broken world left %d entities", ecs.Len(v.world))
	}

	fsys["a.tmx"] = &fstest.MapFile{Data: []byte(viewerMap)}
	server.Reload()
	settle(t, v.worldHandle)
	v.systems.Update(v.world)
	if v.ws == nil || len(v.ws.Loaded()) != 1 {
		t.Fatalf("fixed world was not respawned: %v", v.lastErr)
	}
}
