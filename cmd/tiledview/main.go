// Command tiledview opens a Tiled map or world in a window and draws its
// tiles, objects and colliders. Files are reloaded when they change on disk.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/asset"
	"github.com/milk9111/tiledmap/config"
	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/spawn"
)

func main() {
	configPath := flag.String("config", "", "yaml or toml config file")
	root := flag.String("root", "", "asset root directory (overrides assets.root)")
	zoom := flag.Float64("zoom", 2, "initial zoom")
	watch := flag.Bool("watch", false, "reload when files under the asset root change")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: tiledview [flags] <map.tmx|world.world>")
	}
	target := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = c
	}
	if *root != "" {
		cfg.Assets.Root = *root
	}
	if *watch {
		cfg.Assets.Watch = true
	}

	logger, err := cfg.Logging.Logger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	resources, err := cfg.Cache.NewCache()
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}
	backend, err := cfg.Physics.NewBackend(logger)
	if err != nil {
		logger.Fatal("physics backend", zap.Error(err))
	}
	strategy, _ := physics.ParseStrategy(cfg.Physics.Strategy)
	spawnCfg, err := cfg.SpawnConfig(nil)
	if err != nil {
		logger.Fatal("spawn config", zap.Error(err))
	}
	anchor, window, err := cfg.World.WorldAnchor()
	if err != nil {
		logger.Fatal("world config", zap.Error(err))
	}

	server := asset.NewServer(asset.Options{
		FS:     os.DirFS(cfg.Assets.Root),
		Cache:  resources,
		Logger: logger,
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Assets.Watch {
		w, err := asset.WatchTree(cfg.Assets.Debounce, cfg.Assets.Root)
		if err != nil {
			logger.Fatal("watch assets", zap.String("root", cfg.Assets.Root), zap.Error(err))
		}
		defer w.Close()
		go server.Watch(ctx, w)
	}

	viewer := NewViewer(ViewerOptions{
		Server: server,
		Spawner: &spawn.Spawner{
			World:   ecs.NewWorld(),
			Backend: backend,
			Config:  spawnCfg,
			Logger:  logger,
		},
		Strategy:    strategy,
		Logger:      logger,
		Zoom:        *zoom,
		WorldAnchor: anchor,
		Window:      window,
	})
	if strings.HasSuffix(strings.ToLower(target), ".world") {
		viewer.OpenWorld(target)
	} else {
		viewer.OpenMap(target)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("tiledview - " + target)

	if err := ebiten.RunGame(viewer); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
