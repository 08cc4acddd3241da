// Package world assembles Tiled .world manifests into placed maps and
// decides which of them should be instantiated for a set of viewports.
package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/tmx"
)

// Options configures Decode. LoadMap decodes a referenced map given its
// path relative to the world's directory; when nil, the sizes declared in
// the manifest are used and maps are left unloaded.
type Options struct {
	Path    string
	LoadMap func(path string) (*tiled.MapDocument, error)
	Logger  *zap.Logger
}

// MapPlacement is one map of a world and its rectangle in the Y-up world
// frame.
type MapPlacement struct {
	Index    int
	FileName string
	Path     string
	Rect     geom.Rect
	Map      *tiled.MapDocument
}

// Document is a decoded world. Bounds always starts at the origin.
type Document struct {
	Path   string
	Maps   []MapPlacement
	Bounds geom.Rect
}

// Decode parses .world JSON and places every listed map. Pattern entries
// are ignored.
func Decode(data []byte, opts Options) (*Document, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	raw, err := tmx.ParseWorld(data)
	if err != nil {
		return nil, tiled.NewDecodeError(tiled.KindParse, opts.Path, err)
	}
	if len(raw.Patterns) > 0 {
		log.Warn("world patterns are not supported and were ignored",
			zap.String("world", opts.Path), zap.Int("patterns", len(raw.Patterns)))
	}
	if len(raw.Maps) == 0 {
		return nil, tiled.NewDecodeError(tiled.KindEmptyWorld, opts.Path, nil)
	}

	doc := &Document{Path: opts.Path, Maps: make([]MapPlacement, len(raw.Maps))}
	naive := make([]geom.Rect, len(raw.Maps))
	for i, wm := range raw.Maps {
		p := MapPlacement{Index: i, FileName: wm.FileName, Path: tmx.ResolvePath(opts.Path, wm.FileName)}
		size := geom.V(wm.Width, wm.Height)
		if opts.LoadMap != nil {
			m, err := opts.LoadMap(p.Path)
			if err != nil {
				return nil, wrapMapError(opts.Path, p.Path, err)
			}
			if m.Infinite {
				return nil, tiled.NewDecodeError(tiled.KindWorldWithInfiniteMap, opts.Path,
					fmt.Errorf("world: map %s is infinite", p.Path))
			}
			p.Map = m
			size = tiled.MapPixelSize(m.Type, m.TilemapSize, m.GridSize)
		}
		naive[i] = geom.R(wm.X, wm.Y, wm.X+size.X, wm.Y+size.Y)
		doc.Maps[i] = p
	}

	// Flip into Y-up once the lowest edge is known.
	worldMaxY := naive[0].Max.Y
	for _, r := range naive[1:] {
		worldMaxY = max(worldMaxY, r.Max.Y)
	}
	doc.Bounds = naive[0]
	for i, r := range naive {
		h := r.Height()
		doc.Maps[i].Rect = geom.R(r.Min.X, worldMaxY-h-r.Min.Y, r.Max.X, worldMaxY-r.Min.Y)
		doc.Bounds = doc.Bounds.Union(r)
	}
	doc.Bounds.Min = geom.Vec2{}

	log.Debug("decoded world",
		zap.String("world", opts.Path),
		zap.Int("maps", len(doc.Maps)),
		zap.Float64("width", doc.Bounds.Width()),
		zap.Float64("height", doc.Bounds.Height()))
	return doc, nil
}

func wrapMapError(world, path string, err error) error {
	var de *tiled.DecodeError
	if errors.As(err, &de) {
		return tiled.NewDecodeError(de.Kind, world, fmt.Errorf("world: map %s: %w", path, err))
	}
	return tiled.NewDecodeError(tiled.KindIo, world, fmt.Errorf("world: map %s: %w", path, err))
}

// Offset returns the vector that moves anchor a of the world to the origin.
func (d *Document) Offset(a tiled.Anchor) geom.Vec2 {
	return a.Offset(d.Bounds)
}

// MapsIn returns the indices of maps whose placement intersects r.
func (d *Document) MapsIn(r geom.Rect) []int {
	var out []int
	for i, m := range d.Maps {
		if m.Rect.Intersects(r) {
			out = append(out, i)
		}
	}
	return out
}
