package tiled

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/milk9111/tiledmap/common"
	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/tmx"
)

// DecodeOptions configures Decode. Reader resolves external tilesets,
// templates and image headers; Cache is shared between decodes.
type DecodeOptions struct {
	Path   string
	Reader tmx.ReadFunc
	Cache  tmx.ResourceCache
	Logger *zap.Logger
}

// Decode parses a .tmx file and builds its document. No document is
// returned together with an error.
func Decode(data []byte, opts DecodeOptions) (*MapDocument, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("map", opts.Path))

	p := &tmx.Parser{Read: opts.Reader, Cache: opts.Cache}
	raw, err := p.ParseMap(opts.Path, data)
	if err != nil {
		return nil, classifyParseError(opts.Path, err)
	}

	d := &decoder{raw: raw, path: opts.Path, read: opts.Reader, log: log}
	doc, err := d.build()
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, NewDecodeError(KindParse, opts.Path, err)
	}
	log.Debug("decoded map",
		zap.Stringer("type", doc.Type),
		zap.Uint32("width", doc.TilemapSize.X),
		zap.Uint32("height", doc.TilemapSize.Y),
		zap.Int("layers", len(doc.Layers)),
		zap.Int("tilesets", len(doc.Tilesets)))
	return doc, nil
}

func classifyParseError(path string, err error) *DecodeError {
	var re *tmx.ReadError
	if errors.As(err, &re) {
		return NewDecodeError(KindIo, path, err)
	}
	return NewDecodeError(KindParse, path, err)
}

type decoder struct {
	raw  *tmx.Map
	path string
	read tmx.ReadFunc
	log  *zap.Logger
	doc  *MapDocument
}

func (d *decoder) build() (*MapDocument, error) {
	m := d.raw
	orientation, err := ParseOrientation(m.Orientation)
	if err != nil {
		return nil, err
	}
	axis, err := ParseStaggerAxis(m.StaggerAxis)
	if err != nil {
		return nil, err
	}
	index, err := ParseStaggerIndex(m.StaggerIndex)
	if err != nil {
		return nil, err
	}
	typ, err := Classify(orientation, axis, index)
	if err != nil {
		return nil, NewDecodeError(KindUnsupportedOrientation, d.path, err)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("tiled: invalid tile size %dx%d", m.TileWidth, m.TileHeight)
	}

	bg, err := ParseColor(m.BackgroundColor)
	if err != nil {
		return nil, err
	}
	props, err := convertProperties(m.Properties, d.path)
	if err != nil {
		return nil, err
	}
	grid := geom.V(float64(m.TileWidth), float64(m.TileHeight))
	d.doc = &MapDocument{
		Path:            d.path,
		Orientation:     orientation,
		StaggerAxis:     axis,
		StaggerIndex:    index,
		Type:            typ,
		GridSize:        grid,
		TileSize:        grid,
		TilemapSize:     TileCount{X: uint32(max(m.Width, 0)), Y: uint32(max(m.Height, 0))},
		Class:           m.Class,
		BackgroundColor: bg,
		Properties:      props,
		log:             d.log,
	}

	for _, ref := range m.Tilesets {
		ts, err := d.tileset(ref)
		if err != nil {
			return nil, err
		}
		d.doc.Tilesets = append(d.doc.Tilesets, ts)
	}
	for _, rl := range m.Layers {
		l, err := d.layer(rl)
		if err != nil {
			return nil, err
		}
		d.doc.Layers = append(d.doc.Layers, l)
	}
	d.computeChunkWindow()
	return d.doc, nil
}

func (d *decoder) tileset(ref *tmx.TilesetRef) (*Tileset, error) {
	src := ref.Tileset
	if src == nil {
		return nil, fmt.Errorf("tiled: tileset at firstgid %d was not loaded", ref.FirstGID)
	}
	props, err := convertProperties(src.Properties, src.Path)
	if err != nil {
		return nil, err
	}
	ts := &Tileset{
		Name:      src.Name,
		Class:     src.Class,
		FirstGID:  ref.FirstGID,
		TileSize:  geom.V(float64(src.TileWidth), float64(src.TileHeight)),
		Spacing:   src.Spacing,
		Margin:    src.Margin,
		TileCount: uint32(max(src.TileCount, 0)),
		Columns:   uint32(max(src.Columns, 0)),
		// Tiled stores tile offsets Y down.
		Offset:     geom.V(float64(src.TileOffset.X), -float64(src.TileOffset.Y)),
		Tiles:      make(map[uint32]*TileData),
		Properties: props,
	}
	if ref.Source != "" {
		ts.Source = src.Path
	}

	for _, rt := range src.Tiles {
		td, err := d.tileData(src, rt)
		if err != nil {
			return nil, fmt.Errorf("tiled: tileset %q tile %d: %w", src.Name, rt.ID, err)
		}
		ts.Tiles[rt.ID] = td
	}

	if src.Image != nil {
		d.packTileset(ts, src)
	} else {
		d.collectImages(ts, src)
	}
	return ts, nil
}

// packTileset lays out a single-image tileset as a uniform grid.
func (d *decoder) packTileset(ts *Tileset, src *tmx.Tileset) {
	img := tmx.ResolvePath(src.Path, src.Image.Source)
	size := geom.V(float64(src.Image.Width), float64(src.Image.Height))
	if size.X == 0 || size.Y == 0 {
		size = d.imageSize(img)
	}
	columns := ts.Columns
	if columns == 0 && ts.TileSize.X > 0 {
		n := (int(size.X) - ts.Margin + ts.Spacing) / (int(ts.TileSize.X) + ts.Spacing)
		columns = uint32(max(n, 0))
	}
	var rows uint32
	if columns > 0 {
		rows = ts.TileCount / columns
		if ts.TileCount%columns != 0 {
			rows++
		}
	}
	ts.Columns = columns
	ts.Texture = PackedTexture{Image: img, Size: size, Columns: columns, Rows: rows}
	ts.UsableForTiles = true
	for id := uint32(0); id < ts.TileCount; id++ {
		if _, ok := ts.Tiles[id]; !ok {
			ts.Tiles[id] = &TileData{ID: id, Probability: 1, Properties: Properties{}}
		}
	}
}

// collectImages indexes an image-collection tileset. It is usable for tile
// layers only if every image has the same pixel size.
func (d *decoder) collectImages(ts *Tileset, src *tmx.Tileset) {
	coll := ImageCollection{Index: make(map[uint32]int)}
	usable := true
	for _, rt := range src.Tiles {
		td := ts.Tiles[rt.ID]
		if td.Image == nil {
			continue
		}
		if len(coll.Images) > 0 && coll.Images[0].Size != td.Image.Size {
			usable = false
		}
		coll.Index[rt.ID] = len(coll.Images)
		coll.Images = append(coll.Images, *td.Image)
	}
	if ts.TileCount == 0 {
		ts.TileCount = uint32(len(coll.Images))
	}
	ts.Texture = coll
	ts.UsableForTiles = usable
	if !usable {
		d.log.Warn("tileset images differ in size, tileset can only back tile objects",
			zap.String("tileset", ts.Name))
	}
}

func (d *decoder) tileData(ts *tmx.Tileset, rt *tmx.Tile) (*TileData, error) {
	props, err := convertProperties(rt.Properties, ts.Path)
	if err != nil {
		return nil, err
	}
	td := &TileData{
		ID:          rt.ID,
		Class:       rt.ClassName(),
		Probability: rt.Probability,
		Properties:  props,
	}
	if td.Probability == 0 {
		td.Probability = 1
	}
	if rt.Image != nil {
		p := tmx.ResolvePath(ts.Path, rt.Image.Source)
		size := geom.V(float64(rt.Image.Width), float64(rt.Image.Height))
		if size.X == 0 || size.Y == 0 {
			size = d.imageSize(p)
		}
		td.Image = &TileImage{Path: p, Size: size}
	}
	for _, f := range rt.Animation {
		td.Animation = append(td.Animation, AnimationFrame{
			TileID:   f.TileID,
			Duration: time.Duration(f.Duration) * time.Millisecond,
		})
	}
	if rt.ObjectGroup != nil {
		for _, ro := range rt.ObjectGroup.Objects {
			obj, err := d.object(ro, ts.Path)
			if err != nil {
				return nil, err
			}
			if obj != nil {
				td.Collision = append(td.Collision, obj)
			}
		}
	}
	return td, nil
}

// imageSize reads only the image header to learn its size.
func (d *decoder) imageSize(path string) geom.Vec2 {
	if d.read == nil {
		d.log.Warn("image size unknown and no reader to read it", zap.String("image", path))
		return geom.Vec2{}
	}
	data, err := d.read(path)
	if err != nil {
		d.log.Warn("could not read image header", zap.String("image", path), zap.Error(err))
		return geom.Vec2{}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		d.log.Warn("could not decode image header", zap.String("image", path), zap.Error(err))
		return geom.Vec2{}
	}
	return geom.V(float64(cfg.Width), float64(cfg.Height))
}

func (d *decoder) layer(rl *tmx.Layer) (*Layer, error) {
	props, err := convertProperties(rl.Properties, d.path)
	if err != nil {
		return nil, fmt.Errorf("tiled: layer %q: %w", rl.Name, err)
	}
	tint, err := ParseColor(rl.Tint)
	if err != nil {
		return nil, err
	}
	l := &Layer{
		ID:         rl.ID,
		Name:       rl.Name,
		Class:      rl.Class,
		Offset:     geom.V(rl.OffsetX, rl.OffsetY),
		Parallax:   geom.V(rl.ParallaxX, rl.ParallaxY),
		Visible:    rl.Visible,
		Opacity:    rl.Opacity,
		Tint:       tint,
		Properties: props,
	}
	switch rl.Kind {
	case tmx.TileLayer:
		l.Tiles, err = d.tileLayer(rl)
	case tmx.ObjectGroup:
		l.Objects, err = d.objectLayer(rl)
	case tmx.ImageLayer:
		l.Image = d.imageLayer(rl)
	case tmx.GroupLayer:
		l.Group = &GroupLayer{}
		for _, child := range rl.Layers {
			var c *Layer
			if c, err = d.layer(child); err != nil {
				break
			}
			l.Group.Layers = append(l.Group.Layers, c)
		}
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (d *decoder) tileLayer(rl *tmx.Layer) (*TileLayer, error) {
	w, h := rl.Width, rl.Height
	if w == 0 && h == 0 {
		w, h = d.raw.Width, d.raw.Height
	}
	tl := &TileLayer{Width: uint32(max(w, 0)), Height: uint32(max(h, 0))}
	if rl.Data == nil {
		tl.Finite = make([]LayerTile, w*h)
		return tl, nil
	}

	if len(rl.Data.Chunks) > 0 || d.raw.Infinite {
		tl.Chunks = make(map[ChunkPos]*Chunk)
		for _, rc := range rl.Data.Chunks {
			d.addChunk(tl, rl, rc)
		}
		return tl, nil
	}

	if len(rl.Data.GIDs) != w*h {
		return nil, fmt.Errorf("%w: layer %q has %d tiles, want %d", tmx.ErrInvalidDataLen, rl.Name, len(rl.Data.GIDs), w*h)
	}
	tl.Finite = make([]LayerTile, len(rl.Data.GIDs))
	for i, gid := range rl.Data.GIDs {
		tl.Finite[i] = d.layerTile(gid, rl.Name)
	}
	return tl, nil
}

// addChunk splits a stored chunk into ChunkExtent cells. Every cell a stored
// chunk covers is materialized, populated or not.
func (d *decoder) addChunk(tl *TileLayer, rl *tmx.Layer, rc *tmx.Chunk) {
	for j := 0; j < rc.Height; j++ {
		for i := 0; i < rc.Width; i++ {
			gx, gy := rc.X+i, rc.Y+j
			pos := ChunkPos{
				X: int32(common.FloorDiv(gx, ChunkExtent)),
				Y: int32(common.FloorDiv(gy, ChunkExtent)),
			}
			c := tl.Chunks[pos]
			if c == nil {
				c = &Chunk{Pos: pos}
				tl.Chunks[pos] = c
			}
			local := common.FloorMod(gy, ChunkExtent)*ChunkExtent + common.FloorMod(gx, ChunkExtent)
			c.Tiles[local] = d.layerTile(rc.GIDs[j*rc.Width+i], rl.Name)
		}
	}
}

func (d *decoder) layerTile(gid tmx.GID, layer string) LayerTile {
	if gid.ID() == 0 {
		return LayerTile{}
	}
	idx, ok := d.raw.TilesetFor(gid)
	if !ok {
		d.log.Warn("skipping tile with unknown gid",
			zap.String("layer", layer), zap.Uint32("gid", gid.ID()), zap.Error(tmx.ErrInvalidGID))
		return LayerTile{}
	}
	return LayerTile{
		Tileset: idx,
		ID:      gid.ID() - d.raw.Tilesets[idx].FirstGID,
		FlipH:   gid.FlipH(),
		FlipV:   gid.FlipV(),
		FlipD:   gid.FlipD(),
		Valid:   true,
	}
}

func (d *decoder) objectLayer(rl *tmx.Layer) (*ObjectLayer, error) {
	color, err := ParseColor(rl.Color)
	if err != nil {
		return nil, err
	}
	ol := &ObjectLayer{Color: color, DrawOrder: rl.DrawOrder}
	for _, ro := range rl.Objects {
		obj, err := d.object(ro, d.path)
		if err != nil {
			return nil, fmt.Errorf("tiled: layer %q object %d: %w", rl.Name, ro.ID, err)
		}
		if obj != nil {
			ol.Objects = append(ol.Objects, obj)
		}
	}
	return ol, nil
}

// object converts a parsed object; it returns nil for tile objects whose gid
// matches no tileset.
func (d *decoder) object(ro *tmx.Object, owner string) (*Object, error) {
	props, err := convertProperties(ro.Properties, owner)
	if err != nil {
		return nil, err
	}
	obj := &Object{
		ID:         ro.ID,
		Name:       ro.Name,
		Class:      ro.Class,
		Position:   geom.V(ro.X, ro.Y),
		Rotation:   ro.Rotation,
		Visible:    ro.Visible,
		Properties: props,
	}
	switch {
	case ro.GID != 0:
		tile := d.layerTile(ro.GID, "")
		if !tile.Valid {
			return nil, nil
		}
		obj.Shape = TileShape{Tile: tile, Width: ro.Width, Height: ro.Height}
	case ro.Ellipse:
		obj.Shape = EllipseShape{Width: ro.Width, Height: ro.Height}
	case ro.Point:
		obj.Shape = PointShape{}
	case ro.Polygon != nil:
		obj.Shape = PolygonShape{Points: toVecs(ro.Polygon)}
	case ro.Polyline != nil:
		obj.Shape = PolylineShape{Points: toVecs(ro.Polyline)}
	case ro.Text != nil:
		c, err := ParseColor(ro.Text.Color)
		if err != nil {
			return nil, err
		}
		obj.Shape = TextShape{
			Width:      ro.Width,
			Height:     ro.Height,
			Text:       ro.Text.Content,
			FontFamily: ro.Text.FontFamily,
			PixelSize:  ro.Text.PixelSize,
			Wrap:       ro.Text.Wrap,
			Color:      c,
		}
	default:
		obj.Shape = RectShape{Width: ro.Width, Height: ro.Height}
	}
	return obj, nil
}

func toVecs(pts []tmx.Point) []geom.Vec2 {
	out := make([]geom.Vec2, len(pts))
	for i, p := range pts {
		out[i] = geom.V(p.X, p.Y)
	}
	return out
}

func (d *decoder) imageLayer(rl *tmx.Layer) *ImageLayer {
	il := &ImageLayer{RepeatX: rl.RepeatX, RepeatY: rl.RepeatY}
	if rl.Image != nil && rl.Image.Source != "" {
		il.Source = tmx.ResolvePath(d.path, rl.Image.Source)
		il.Size = geom.V(float64(rl.Image.Width), float64(rl.Image.Height))
		if il.Size.X == 0 || il.Size.Y == 0 {
			il.Size = d.imageSize(il.Source)
		}
	}
	return il
}

// computeChunkWindow finds the chunk window spanning every infinite layer
// and derives the map size and the offset that normalizes negative chunks.
func (d *decoder) computeChunkWindow() {
	doc := d.doc
	minX, minY := int32(math.MaxInt32), int32(math.MaxInt32)
	maxX, maxY := int32(math.MinInt32), int32(math.MinInt32)
	infinite := d.raw.Infinite
	for _, l := range doc.Layers {
		l.Walk(geom.Vec2{}, func(l *Layer, _ geom.Vec2) {
			if l.Tiles == nil || !l.Tiles.IsInfinite() {
				return
			}
			infinite = true
			for pos := range l.Tiles.Chunks {
				minX, minY = min(minX, pos.X), min(minY, pos.Y)
				maxX, maxY = max(maxX, pos.X), max(maxY, pos.Y)
			}
		})
	}
	doc.Infinite = infinite
	if !infinite {
		return
	}
	if minX > maxX {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	doc.TopLeftChunk = ChunkPos{X: minX, Y: minY}
	doc.BottomRightChunk = ChunkPos{X: maxX, Y: maxY}
	doc.TilemapSize = TileCount{
		X: uint32(maxX-minX+1) * ChunkExtent,
		Y: uint32(maxY-minY+1) * ChunkExtent,
	}
	doc.TiledOffset = TiledOffset(doc.Type, doc.TopLeftChunk, doc.GridSize)
}

// TiledOffset returns the native-space vector that moves chunk tl to the
// origin.
func TiledOffset(t TilemapType, tl ChunkPos, grid geom.Vec2) geom.Vec2 {
	cx := -float64(tl.X) * ChunkExtent
	cy := -float64(tl.Y) * ChunkExtent
	switch {
	case t == IsoDiamond:
		return geom.V(cx*grid.Y, cy*grid.Y)
	case t.IsHexColumn():
		return geom.V(cx*grid.X*0.75, cy*grid.Y)
	case t.IsHexRow():
		return geom.V(cx*grid.X, cy*grid.Y*0.75)
	default:
		return geom.V(cx*grid.X, cy*grid.Y)
	}
}
