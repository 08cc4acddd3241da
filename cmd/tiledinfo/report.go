package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/spawn"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/world"
)

func formatRect(r geom.Rect) string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

func writeMap(w io.Writer, doc *tiled.MapDocument) error {
	fmt.Fprintf(w, "map %s\n", doc.Path)
	fmt.Fprintf(w, "  type %s, %dx%d tiles of %gx%g, infinite %v\n",
		doc.Type, doc.TilemapSize.X, doc.TilemapSize.Y, doc.GridSize.X, doc.GridSize.Y, doc.Infinite)
	fmt.Fprintf(w, "  bounds %s", formatRect(doc.Bounds()))
	if doc.Infinite {
		fmt.Fprintf(w, ", chunks (%d,%d)-(%d,%d), offset (%g,%g)",
			doc.TopLeftChunk.X, doc.TopLeftChunk.Y, doc.BottomRightChunk.X, doc.BottomRightChunk.Y,
			doc.TiledOffset.X, doc.TiledOffset.Y)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tLAYER\tKIND\tOFFSET\tTILES\tOBJECTS")
	for _, l := range doc.Layers {
		l.Walk(geom.Vec2{}, func(l *tiled.Layer, off geom.Vec2) {
			tiles, objects := 0, 0
			switch l.Kind() {
			case tiled.LayerTiles:
				tiles = len(doc.CollectTiles(l, tiled.AllTilesets))
			case tiled.LayerObjects:
				objects = len(l.Objects.Objects)
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%g,%g\t%d\t%d\n", l.ID, l.Name, l.Kind(), off.X, off.Y, tiles, objects)
		})
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tTILESET\tTILES\tSIZE\tFOR TILES")
	for i, ts := range doc.Tilesets {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%gx%g\t%v\n", i, ts.Name, ts.TileCount, ts.TileSize.X, ts.TileSize.Y, ts.UsableForTiles)
	}
	return tw.Flush()
}

func writeWorld(w io.Writer, doc *world.Document) error {
	fmt.Fprintf(w, "world %s, %d maps, bounds %s\n", doc.Path, len(doc.Maps), formatRect(doc.Bounds))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tMAP\tPLACEMENT\tLOADED")
	for _, p := range doc.Maps {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%v\n", p.Index, p.Path, formatRect(p.Rect), p.Map != nil)
	}
	return tw.Flush()
}

var spawnKinds = []spawn.EventKind{
	spawn.MapCreated,
	spawn.LayerCreated,
	spawn.TilemapCreated,
	spawn.TileCreated,
	spawn.ObjectCreated,
	spawn.ColliderCreated,
}

// writeSpawn prints how many entities of each kind res created and how
// many shapes the physics backend holds.
func writeSpawn(w io.Writer, res spawn.Result, shapes int) {
	fmt.Fprint(w, "spawned")
	for _, k := range spawnKinds {
		fmt.Fprintf(w, " %s=%d", k, res.Count(k))
	}
	fmt.Fprintf(w, " shapes=%d\n", shapes)
}
