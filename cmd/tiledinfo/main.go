// Command tiledinfo decodes Tiled maps and worlds and prints their layers,
// tilesets, bounds and the entities and colliders they spawn.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/asset"
	"github.com/milk9111/tiledmap/config"
	"github.com/milk9111/tiledmap/ecs"
	"github.com/milk9111/tiledmap/physics"
	"github.com/milk9111/tiledmap/spawn"
)

type options struct {
	root  string
	cfg   *config.Config
	log   *zap.Logger
	spawn bool
	dump  bool
}

func main() {
	configPath := flag.String("config", "", "yaml or toml config file")
	root := flag.String("root", "", "directory every referenced file lives under (default: the file's directory)")
	doSpawn := flag.Bool("spawn", true, "spawn each map and report entity and collider counts")
	dump := flag.Bool("dump", false, "dump the decoded documents")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tiledinfo [flags] <file.tmx|file.world>...")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = c
	}
	log, err := cfg.Logging.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	opts := options{root: *root, cfg: cfg, log: log, spawn: *doSpawn, dump: *dump}
	failed := false
	for _, p := range flag.Args() {
		if err := inspect(os.Stdout, p, opts); err != nil {
			log.Error("inspect", zap.String("path", p), zap.Error(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// inspect decodes the file at p and writes the report to w. References are
// resolved inside opts.root, or inside p's directory when root is empty.
func inspect(w io.Writer, p string, opts options) error {
	dir, name := filepath.Split(p)
	if opts.root != "" {
		rel, err := filepath.Rel(opts.root, p)
		if err != nil {
			return err
		}
		dir, name = opts.root, rel
	}
	if dir == "" {
		dir = "."
	}
	name = filepath.ToSlash(name)
	resources, err := opts.cfg.Cache.NewCache()
	if err != nil {
		return err
	}
	server := asset.NewServer(asset.Options{FS: os.DirFS(dir), Cache: resources, Logger: opts.log})
	defer server.Close()

	sp := &spawn.Spawner{World: ecs.NewWorld(), Logger: opts.log}
	if opts.spawn {
		sp.Backend, err = opts.cfg.Physics.NewBackend(opts.log)
		if err != nil {
			return err
		}
		if sp.Config, err = opts.cfg.SpawnConfig(nil); err != nil {
			return err
		}
	}

	if strings.EqualFold(filepath.Ext(name), ".world") {
		doc, err := server.DecodeWorld(name)
		if err != nil {
			return err
		}
		if err := writeWorld(w, doc); err != nil {
			return err
		}
		if opts.dump {
			dumper().Fdump(w, doc)
		}
		if !opts.spawn {
			return nil
		}
		anchor, _, err := opts.cfg.World.WorldAnchor()
		if err != nil {
			return err
		}
		ws, _, err := sp.SpawnWorld(doc, ecs.NoEntity, anchor, nil)
		if err != nil {
			return err
		}
		_, res, err := ws.Update(nil)
		if err != nil {
			return err
		}
		writeSpawn(w, res, shapeCount(sp.Backend))
		return nil
	}

	doc, err := server.DecodeMap(name)
	if err != nil {
		return err
	}
	if err := writeMap(w, doc); err != nil {
		return err
	}
	if opts.dump {
		dumper().Fdump(w, doc)
	}
	if !opts.spawn {
		return nil
	}
	res, err := sp.SpawnMap(doc, ecs.NoEntity)
	if err != nil {
		return err
	}
	writeSpawn(w, res, shapeCount(sp.Backend))
	return nil
}

func dumper() *spew.ConfigState {
	return &spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                6,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
}

func shapeCount(b physics.Backend) int {
	switch b := b.(type) {
	case *physics.Chipmunk:
		return b.Len()
	case *physics.Resolv:
		return b.Len()
	}
	return 0
}
