package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/tiledmap/cache"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/tiled"
)

const yamlConfig = `
map:
  anchor: center
world:
  anchor: top_left
  window:
    width: 640
    height: 360
physics:
  backend: resolv
  strategy: polyline
  object_colliders: [wall, floor]
  tile_colliders: none
  open_lines: true
  tags: [level]
cache:
  kind: ristretto
  max_cost: 512
assets:
  root: testdata
  watch: true
  debounce: 250ms
logging:
  level: debug
  format: json
`

const tomlConfig = `
[map]
anchor = "bottom_left"
layer_z_offset = 10

[physics]
backend = "none"
strategy = "linestrings"
object_colliders = "all"
tile_colliders = ["solid"]

[assets]
debounce = "50ms"
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "tiled.yaml", yamlConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Map.Anchor != "center" {
		t.Fatalf("map.anchor = %q", cfg.Map.Anchor)
	}
	if cfg.Map.LayerZOffset != 100 {
		t.Fatalf("layer_z_offset default lost: %g", cfg.Map.LayerZOffset)
	}
	if cfg.World.Window == nil || cfg.World.Window.Width != 640 || cfg.World.Window.Height != 360 {
		t.Fatalf("world.window = %+v", cfg.World.Window)
	}
	if cfg.Physics.Backend != "resolv" || !cfg.Physics.OpenLines {
		t.Fatalf("physics = %+v", cfg.Physics)
	}
	if !cfg.Physics.ObjectColliders.Matches("wall") || cfg.Physics.ObjectColliders.Matches("door") {
		t.Fatalf("object_colliders = %v", cfg.Physics.ObjectColliders)
	}
	if cfg.Physics.TileColliders.Matches("solid") {
		t.Fatalf("tile_colliders should match nothing")
	}
	if cfg.Assets.Debounce != 250*time.Millisecond || !cfg.Assets.Watch {
		t.Fatalf("assets = %+v", cfg.Assets)
	}
	if cfg.Cache.Kind != "ristretto" || cfg.Cache.MaxCost != 512 {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(writeFile(t, "tiled.toml", tomlConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Map.Anchor != "bottom_left" || cfg.Map.LayerZOffset != 10 {
		t.Fatalf("map = %+v", cfg.Map)
	}
	if !cfg.Physics.ObjectColliders.Matches("anything") {
		t.Fatalf("object_colliders should match everything")
	}
	if !cfg.Physics.TileColliders.Matches("solid") || cfg.Physics.TileColliders.Matches("ladder") {
		t.Fatalf("tile_colliders = %v", cfg.Physics.TileColliders)
	}
	if cfg.Assets.Debounce != 50*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.Assets.Debounce)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("logging default lost: %+v", cfg.Logging)
	}
	if cfg.World.Window != nil {
		t.Fatalf("absent window should stay nil")
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
		want error
	}{
		{"unknown extension", "tiled.ini", "x=1", ErrUnknownFormat},
		{"bad anchor", "tiled.yaml", "map:\n  anchor: middle\n", nil},
		{"bad strategy", "tiled.yaml", "physics:\n  strategy: voxels\n", nil},
		{"bad backend", "tiled.toml", "[physics]\nbackend = \"box2d\"\n", nil},
		{"bad filter", "tiled.yaml", "physics:\n  tile_colliders: some\n", nil},
		{"bad cache", "tiled.yaml", "cache:\n  kind: redis\n", nil},
		{"negative window", "tiled.yaml", "world:\n  window: {width: -1, height: 2}\n", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeFile(t, c.file, c.data))
			if err == nil {
				t.Fatalf("Load succeeded")
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file loaded")
	}
}

func TestNameFilter(t *testing.T) {
	cases := []struct {
		name   string
		filter NameFilter
		in     string
		want   bool
	}{
		{"all", MatchAll(), "x", true},
		{"none", MatchNone(), "x", false},
		{"listed", MatchNames("a", "b"), "b", true},
		{"unlisted", MatchNames("a", "b"), "c", false},
		{"empty name", MatchNames(""), "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.filter.Matches(c.in); got != c.want {
				t.Fatalf("Matches(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestBuilders(t *testing.T) {
	cfg := Default()

	c, err := cfg.Cache.NewCache()
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if _, ok := c.(*cache.Memory); !ok {
		t.Fatalf("default cache is %T", c)
	}
	cfg.Cache.Kind = "ristretto"
	c, err = cfg.Cache.NewCache()
	if err != nil {
		t.Fatalf("NewCache(ristretto): %v", err)
	}
	r, ok := c.(*cache.Ristretto)
	if !ok {
		t.Fatalf("ristretto cache is %T", c)
	}
	r.Close()

	backends := []struct {
		kind string
		check func(physics.Backend) bool
	}{
		{"chipmunk", func(b physics.Backend) bool { _, ok := b.(*physics.Chipmunk); return ok }},
		{"resolv", func(b physics.Backend) bool { _, ok := b.(*physics.Resolv); return ok }},
		{"none", func(b physics.Backend) bool { _, ok := b.(physics.Noop); return ok }},
	}
	for _, b := range backends {
		t.Run(b.kind, func(t *testing.T) {
			pc := cfg.Physics
			pc.Backend = b.kind
			got, err := pc.NewBackend(nil)
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			if !b.check(got) {
				t.Fatalf("backend %q built %T", b.kind, got)
			}
		})
	}

	cfg.Map.Anchor = "center"
	sc, err := cfg.SpawnConfig(nil)
	if err != nil {
		t.Fatalf("SpawnConfig: %v", err)
	}
	if sc.MapAnchor != tiled.AnchorCenter || sc.LayerZOffset != 100 {
		t.Fatalf("spawn config = %+v", sc)
	}
	if sc.ObjectColliders == nil || !sc.ObjectColliders.Matches("wall") {
		t.Fatalf("object colliders not carried over")
	}

	cfg.World.Window = &Size{Width: 10, Height: 20}
	anchor, window, err := cfg.World.WorldAnchor()
	if err != nil || !anchor.IsNone() || window == nil || *window != geom.V(10, 20) {
		t.Fatalf("WorldAnchor = %v %v %v", anchor, window, err)
	}

	if _, err := (LoggingConfig{Level: "nonsense", Format: "json"}).Logger(); err != nil {
		t.Fatalf("Logger: %v", err)
	}
}

func TestLoggerWritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tiled.log")
	log, err := LoggingConfig{Level: "debug", Format: "console", File: p, MaxSizeMB: 1}.Logger()
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	log.Info("map spawned")
	_ = log.Sync()

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"map spawned"`) {
		t.Fatalf("log file = %q", data)
	}
}
