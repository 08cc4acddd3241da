package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/milk9111/tiledmap/tmx"
)

// RistrettoConfig bounds a Ristretto cache. Cost is counted in tiles.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	}
}

// Ristretto is a bounded cache. Entries may be evicted under cost pressure,
// in which case the parser simply reads the file again.
type Ristretto struct {
	tilesets  *ristretto.Cache[string, *tmx.Tileset]
	templates *ristretto.Cache[string, *tmx.Template]
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	def := DefaultRistrettoConfig()
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = def.NumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = def.MaxCost
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = def.BufferItems
	}

	tilesets, err := ristretto.NewCache(&ristretto.Config[string, *tmx.Tileset]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: tileset cache: %w", err)
	}
	templates, err := ristretto.NewCache(&ristretto.Config[string, *tmx.Template]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		tilesets.Close()
		return nil, fmt.Errorf("cache: template cache: %w", err)
	}
	return &Ristretto{tilesets: tilesets, templates: templates}, nil
}

func (r *Ristretto) Tileset(path string) (*tmx.Tileset, bool) {
	return r.tilesets.Get(path)
}

func (r *Ristretto) InsertTileset(path string, ts *tmx.Tileset) {
	cost := int64(ts.TileCount) + 1
	r.tilesets.Set(path, ts, cost)
	r.tilesets.Wait()
}

func (r *Ristretto) Template(path string) (*tmx.Template, bool) {
	return r.templates.Get(path)
}

func (r *Ristretto) InsertTemplate(path string, tpl *tmx.Template) {
	r.templates.Set(path, tpl, 1)
	r.templates.Wait()
}

func (r *Ristretto) Clear() {
	r.tilesets.Clear()
	r.templates.Clear()
}

// Close stops the cache's background goroutines.
func (r *Ristretto) Close() {
	r.tilesets.Close()
	r.templates.Close()
}
