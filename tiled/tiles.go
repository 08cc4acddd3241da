package tiled

import (
	"sort"

	"go.uber.org/zap"
)

// AllTilesets makes ForEachTile visit tiles of every tileset.
const AllTilesets = -1

// TileVisitor receives one populated cell. index is the cell's position in
// its storage: row-major over the layer for finite layers, within the chunk
// for infinite ones.
type TileVisitor func(td *TileData, tile LayerTile, pos TilePos, index int)

// ForEachTile visits every populated cell of a tile layer that belongs to
// tileset, or to any tileset when tileset is AllTilesets. Positions are
// bottom-up. Finite cells are visited in source order; infinite chunks are
// visited row by row, then in source order inside each chunk.
func (m *MapDocument) ForEachTile(l *Layer, tileset int, visit TileVisitor) {
	if l == nil || l.Tiles == nil {
		return
	}
	warned := false
	emit := func(tile LayerTile, pos TilePos, index int) {
		if !tile.Valid || (tileset != AllTilesets && tile.Tileset != tileset) {
			return
		}
		ts, ok := m.Tileset(tile.Tileset)
		if !ok {
			if !warned {
				m.logger().Warn("tile references a missing tileset",
					zap.String("layer", l.Name), zap.Int("tileset", tile.Tileset))
				warned = true
			}
			return
		}
		td, ok := ts.Tiles[tile.ID]
		if !ok {
			return
		}
		visit(td, tile, pos, index)
	}

	tl := l.Tiles
	if !tl.IsInfinite() {
		for y := uint32(0); y < tl.Height; y++ {
			row := tl.Height - 1 - y
			for x := uint32(0); x < tl.Width; x++ {
				i := int(row*tl.Width + x)
				if i >= len(tl.Finite) {
					continue
				}
				emit(tl.Finite[i], TilePos{X: x, Y: y}, i)
			}
		}
		return
	}

	for _, pos := range sortedChunks(tl.Chunks) {
		c := tl.Chunks[pos]
		mx := int64(pos.X - m.TopLeftChunk.X)
		my := int64(pos.Y - m.TopLeftChunk.Y)
		for i := range c.Tiles {
			gx := mx*ChunkExtent + int64(i%ChunkExtent)
			gy := my*ChunkExtent + int64(i/ChunkExtent)
			if gx < 0 || gy < 0 || gx >= int64(m.TilemapSize.X) || gy >= int64(m.TilemapSize.Y) {
				continue
			}
			emit(c.Tiles[i], TilePos{X: uint32(gx), Y: m.TilemapSize.Y - 1 - uint32(gy)}, i)
		}
	}
}

func sortedChunks(chunks map[ChunkPos]*Chunk) []ChunkPos {
	out := make([]ChunkPos, 0, len(chunks))
	for p := range chunks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// TileVisit is one ForEachTile callback captured by CollectTiles.
type TileVisit struct {
	Data  *TileData
	Tile  LayerTile
	Pos   TilePos
	Index int
}

// CollectTiles gathers ForEachTile visits into a slice.
func (m *MapDocument) CollectTiles(l *Layer, tileset int) []TileVisit {
	var out []TileVisit
	m.ForEachTile(l, tileset, func(td *TileData, tile LayerTile, pos TilePos, index int) {
		out = append(out, TileVisit{Data: td, Tile: tile, Pos: pos, Index: index})
	})
	return out
}

// TilesetsUsed returns the sorted tileset indices referenced by a tile layer.
func (m *MapDocument) TilesetsUsed(l *Layer) []int {
	seen := make(map[int]bool)
	m.ForEachTile(l, AllTilesets, func(_ *TileData, tile LayerTile, _ TilePos, _ int) {
		seen[tile.Tileset] = true
	})
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (m *MapDocument) logger() *zap.Logger {
	if m.log == nil {
		return zap.NewNop()
	}
	return m.log
}
