package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"
)

func encodeGIDs(t *testing.T, gids []uint32, compression string) string {
	t.Helper()
	raw := make([]byte, 4*len(gids))
	for i, g := range gids {
		binary.LittleEndian.PutUint32(raw[4*i:], g)
	}
	var buf bytes.Buffer
	switch compression {
	case "":
		buf.Write(raw)
	case "gzip":
		w := gzip.NewWriter(&buf)
		w.Write(raw)
		w.Close()
	case "zlib":
		w := zlib.NewWriter(&buf)
		w.Write(raw)
		w.Close()
	case "zstd":
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		w.Write(raw)
		w.Close()
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func mapWithData(data string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="16" tileheight="16" infinite="0">
 <layer id="1" name="ground" width="2" height="2">
  ` + data + `
 </layer>
</map>`)
}

func TestDataEncodings(t *testing.T) {
	want := []uint32{1, 0, 0, 2 | FlagFlipH}
	cases := []struct {
		name string
		data string
	}{
		{"xml", `<data><tile gid="1"/><tile/><tile/><tile gid="2147483650"/></data>`},
		{"csv", "<data encoding=\"csv\">\n1,0,\n0,2147483650\n</data>"},
		{"base64", `<data encoding="base64">` + encodeGIDs(t, want, "") + `</data>`},
		{"gzip", `<data encoding="base64" compression="gzip">` + encodeGIDs(t, want, "gzip") + `</data>`},
		{"zlib", `<data encoding="base64" compression="zlib">` + encodeGIDs(t, want, "zlib") + `</data>`},
		{"zstd", `<data encoding="base64" compression="zstd">` + encodeGIDs(t, want, "zstd") + `</data>`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Parser{}
			m, err := p.ParseMap("maps/a.tmx", mapWithData(c.data))
			if err != nil {
				t.Fatalf("ParseMap: %v", err)
			}
			gids := m.Layers[0].Data.GIDs
			if len(gids) != len(want) {
				t.Fatalf("expected %d gids, got %d", len(want), len(gids))
			}
			for i := range want {
				if uint32(gids[i]) != want[i] {
					t.Fatalf("gid %d: expected %#x, got %#x", i, want[i], uint32(gids[i]))
				}
			}
			if !gids[3].FlipH() || gids[3].ID() != 2 {
				t.Fatalf("flip bits not preserved: %#x", uint32(gids[3]))
			}
		})
	}
}

func TestDataErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"unknown_encoding", `<data encoding="hex">00</data>`, ErrUnknownEncoding},
		{"unknown_compression", `<data encoding="base64" compression="lz4">AAAA</data>`, ErrUnknownCompression},
		{"short_base64", `<data encoding="base64">AAA=</data>`, ErrInvalidDataLen},
		{"short_chunk", `<data encoding="csv"><chunk x="0" y="0" width="2" height="2">1,2,3</chunk></data>`, ErrInvalidDataLen},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := (&Parser{}).ParseMap("a.tmx", mapWithData(c.data))
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestLayerSourceOrder(t *testing.T) {
	src := `<map orientation="orthogonal" width="1" height="1" tilewidth="8" tileheight="8">
 <imagelayer id="1" name="sky" repeatx="1"><image source="sky.png" width="64" height="32"/></imagelayer>
 <layer id="2" name="ground" width="1" height="1"><data encoding="csv">0</data></layer>
 <group id="3" name="things" offsetx="4">
  <objectgroup id="4" name="spawns"><object id="1" name="spawn" x="1" y="2"><point/></object></objectgroup>
  <layer id="5" name="deco" width="1" height="1" visible="0"><data encoding="csv">0</data></layer>
 </group>
 <objectgroup id="6" name="top" parallaxx="0.5"/>
</map>`
	m, err := (&Parser{}).ParseMap("a.tmx", []byte(src))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	var names []string
	m.Walk(func(l *Layer) { names = append(names, l.Kind.String()+":"+l.Name) })
	want := "imagelayer:sky layer:ground group:things objectgroup:spawns layer:deco objectgroup:top"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("expected order %q, got %q", want, got)
	}

	if !m.Layers[0].RepeatX || m.Layers[0].Image.Source != "sky.png" {
		t.Fatalf("image layer attributes not parsed: %+v", m.Layers[0])
	}
	group := m.Layers[2]
	if group.OffsetX != 4 || len(group.Layers) != 2 {
		t.Fatalf("group not parsed: %+v", group)
	}
	if group.Layers[1].Visible {
		t.Fatalf("visible=0 should hide layer")
	}
	if !group.Layers[0].Objects[0].Point {
		t.Fatalf("point object not detected")
	}
	if m.Layers[3].ParallaxX != 0.5 || m.Layers[3].ParallaxY != 1 {
		t.Fatalf("parallax defaults wrong: %v,%v", m.Layers[3].ParallaxX, m.Layers[3].ParallaxY)
	}
}

func TestParseObjectShapes(t *testing.T) {
	src := `<map orientation="orthogonal" width="1" height="1" tilewidth="8" tileheight="8">
 <objectgroup id="1">
  <object id="1" x="0" y="0" width="10" height="5"/>
  <object id="2" x="0" y="0" width="10" height="5"><ellipse/></object>
  <object id="3" x="1" y="1"><polygon points="0,0 4,0 4,4"/></object>
  <object id="4" x="1" y="1"><polyline points="0,0 2.5,-1"/></object>
  <object id="5" x="0" y="0" width="40" height="10"><text wrap="1">hello</text></object>
  <object id="6" gid="3" x="0" y="16" width="16" height="16" rotation="90"/>
 </objectgroup>
</map>`
	m, err := (&Parser{}).ParseMap("a.tmx", []byte(src))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	objs := m.Layers[0].Objects
	if len(objs) != 6 {
		t.Fatalf("expected 6 objects, got %d", len(objs))
	}
	if objs[0].Ellipse || objs[0].Polygon != nil {
		t.Fatalf("plain object should be a rectangle")
	}
	if !objs[1].Ellipse {
		t.Fatalf("ellipse not detected")
	}
	if len(objs[2].Polygon) != 3 || objs[2].Polygon[2] != (Point{4, 4}) {
		t.Fatalf("polygon points: %+v", objs[2].Polygon)
	}
	if len(objs[3].Polyline) != 2 || objs[3].Polyline[1] != (Point{2.5, -1}) {
		t.Fatalf("polyline points: %+v", objs[3].Polyline)
	}
	if objs[4].Text == nil || objs[4].Text.Content != "hello" || !objs[4].Text.Wrap {
		t.Fatalf("text: %+v", objs[4].Text)
	}
	if objs[5].GID.ID() != 3 || objs[5].Rotation != 90 {
		t.Fatalf("tile object: %+v", objs[5])
	}
}

func TestParsePointsInvalid(t *testing.T) {
	for _, s := range []string{"1", "a,1", "1,b"} {
		if _, err := ParsePoints(s); !errors.Is(err, ErrInvalidPoints) {
			t.Fatalf("ParsePoints(%q): expected ErrInvalidPoints, got %v", s, err)
		}
	}
}

type countingCache struct {
	tilesets  map[string]*Tileset
	templates map[string]*Template
}

func (c *countingCache) Tileset(p string) (*Tileset, bool) {
	ts, ok := c.tilesets[p]
	return ts, ok
}

func (c *countingCache) InsertTileset(p string, ts *Tileset) {
	c.tilesets[p] = ts
}

func (c *countingCache) Template(p string) (*Template, bool) {
	tpl, ok := c.templates[p]
	return tpl, ok
}

func (c *countingCache) InsertTemplate(p string, tpl *Template) {
	c.templates[p] = tpl
}

func (c *countingCache) Clear() {
	c.tilesets = map[string]*Tileset{}
	c.templates = map[string]*Template{}
}

func fsReader(fsys fs.FS, reads map[string]int) ReadFunc {
	return func(p string) ([]byte, error) {
		reads[p]++
		return fs.ReadFile(fsys, p)
	}
}

func TestExternalTilesetAndTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles/terrain.tsx": {Data: []byte(`<tileset name="terrain" tilewidth="16" tileheight="16" tilecount="4" columns="2">
 <image source="terrain.png" width="32" height="32"/>
 <tile id="1" class="wall"><objectgroup id="2"><object id="1" x="0" y="0" width="16" height="16"/></objectgroup></tile>
</tileset>`)},
		"tiles/props.tsx": {Data: []byte(`<tileset name="props" tilewidth="8" tileheight="8" tilecount="2" columns="2">
 <image source="props.png" width="16" height="8"/>
</tileset>`)},
		"templates/crate.tx": {Data: []byte(`<template>
 <tileset firstgid="1" source="../tiles/props.tsx"/>
 <object name="crate" type="box" gid="2" width="8" height="8">
  <properties><property name="hp" type="int" value="3"/><property name="loot" value="none"/></properties>
 </object>
</template>`)},
	}
	mapSrc := `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="../tiles/terrain.tsx"/>
 <objectgroup id="1">
  <object id="7" template="../templates/crate.tx" x="5" y="6"><properties><property name="hp" type="int" value="9"/></properties></object>
  <object id="8" template="../templates/crate.tx" name="big" x="1" y="1" width="16"/>
 </objectgroup>
</map>`

	reads := map[string]int{}
	cache := &countingCache{}
	cache.Clear()
	p := &Parser{Read: fsReader(fsys, reads), Cache: cache}
	m, err := p.ParseMap("maps/level.tmx", []byte(mapSrc))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	ts := m.Tilesets[0].Tileset
	if ts.Name != "terrain" || ts.Path != "tiles/terrain.tsx" {
		t.Fatalf("external tileset not loaded: %+v", ts)
	}
	tile, ok := ts.Tile(1)
	if !ok || tile.ClassName() != "wall" || len(tile.ObjectGroup.Objects) != 1 {
		t.Fatalf("tile metadata missing: %+v", tile)
	}

	if len(m.Tilesets) != 2 || m.Tilesets[1].FirstGID != 5 {
		t.Fatalf("template tileset should be appended at firstgid 5, got %d refs", len(m.Tilesets))
	}
	crate := m.Layers[0].Objects[0]
	if crate.Name != "crate" || crate.Class != "box" || crate.Width != 8 || crate.X != 5 {
		t.Fatalf("template not applied: %+v", crate)
	}
	if crate.GID.ID() != 6 {
		t.Fatalf("expected rebased gid 6, got %d", crate.GID.ID())
	}
	if hp, _ := crate.Properties.Get("hp"); hp.Value != "9" {
		t.Fatalf("instance property should override template, got %q", hp.Value)
	}
	if _, ok := crate.Properties.Get("loot"); !ok {
		t.Fatalf("template property should be inherited")
	}
	big := m.Layers[0].Objects[1]
	if big.Name != "big" || big.Width != 16 || big.Height != 8 {
		t.Fatalf("override precedence wrong: %+v", big)
	}

	if reads["templates/crate.tx"] != 1 || reads["tiles/props.tsx"] != 1 {
		t.Fatalf("cache should prevent repeated reads: %v", reads)
	}
}

func TestReadErrorIsDistinct(t *testing.T) {
	p := &Parser{Read: func(string) ([]byte, error) { return nil, fs.ErrNotExist }}
	_, err := p.ParseMap("a.tmx", []byte(`<map><tileset firstgid="1" source="missing.tsx"/></map>`))
	var re *ReadError
	if !errors.As(err, &re) || re.Path != "missing.tsx" {
		t.Fatalf("expected ReadError for missing.tsx, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadError should unwrap to the reader's error")
	}
}

func TestTilesetFor(t *testing.T) {
	m := &Map{Tilesets: []*TilesetRef{
		{FirstGID: 1, Tileset: &Tileset{TileCount: 4}},
		{FirstGID: 5, Tileset: &Tileset{TileCount: 2}},
	}}
	cases := []struct {
		gid  GID
		idx  int
		okay bool
	}{
		{1, 0, true},
		{4, 0, true},
		{5, 1, true},
		{6 | FlagFlipV, 1, true},
		{7, 0, false},
		{0, 0, false},
	}
	for _, c := range cases {
		idx, ok := m.TilesetFor(c.gid)
		if ok != c.okay || (ok && idx != c.idx) {
			t.Fatalf("TilesetFor(%d): expected (%d,%v), got (%d,%v)", c.gid.ID(), c.idx, c.okay, idx, ok)
		}
	}
}

func TestParseWorld(t *testing.T) {
	w, err := ParseWorld([]byte(`{"maps":[{"fileName":"a.tmx","x":10,"y":-20,"width":200,"height":100}],"patterns":[{"regexp":"p(\\d+).tmx"}],"type":"world"}`))
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}
	if len(w.Maps) != 1 || w.Maps[0].FileName != "a.tmx" || w.Maps[0].Y != -20 {
		t.Fatalf("unexpected maps: %+v", w.Maps)
	}
	if len(w.Patterns) != 1 {
		t.Fatalf("patterns should be parsed")
	}
	if _, err := ParseWorld([]byte(`{"maps":`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
