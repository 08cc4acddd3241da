package tiled

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

const testTileset = `<tileset firstgid="1" name="terrain" tilewidth="16" tileheight="16" tilecount="8" columns="4">
  <image source="terrain.png" width="64" height="32"/>
 </tileset>`

func fsRead(fsys fstest.MapFS) func(string) ([]byte, error) {
	return func(p string) ([]byte, error) {
		return fs.ReadFile(fsys, p)
	}
}

func decodeString(src string, fsys fstest.MapFS) (*MapDocument, error) {
	if fsys == nil {
		fsys = fstest.MapFS{}
	}
	return Decode([]byte(src), DecodeOptions{Path: "maps/test.tmx", Reader: fsRead(fsys)})
}

func mustDecode(t *testing.T, src string, fsys fstest.MapFS) *MapDocument {
	t.Helper()
	doc, err := decodeString(src, fsys)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return doc
}

// csvGrid renders a w×h csv body with the given gids at native (x,y) cells.
func csvGrid(w, h int, gids map[[2]int]int) string {
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x > 0 || y > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", gids[[2]int{x, y}])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func orthoMap(w, h int, infinite bool, body string) string {
	inf := 0
	if infinite {
		inf = 1
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="%d" height="%d" tilewidth="16" tileheight="16" infinite="%d">
 %s
 %s
</map>`, w, h, inf, testTileset, body)
}

func finiteLayer(w, h int, gids map[[2]int]int) string {
	return fmt.Sprintf(`<layer id="1" name="ground" width="%d" height="%d"><data encoding="csv">%s</data></layer>`, w, h, csvGrid(w, h, gids))
}

// chunk renders one 16×16 chunk whose top-left tile is (x,y). gids are
// chunk-local native positions.
func chunk(x, y int, gids map[[2]int]int) string {
	return fmt.Sprintf(`<chunk x="%d" y="%d" width="16" height="16">%s</chunk>`, x, y, csvGrid(16, 16, gids))
}

func infiniteLayer(chunks ...string) string {
	return `<layer id="1" name="ground" width="16" height="16"><data encoding="csv">` + strings.Join(chunks, "\n") + `</data></layer>`
}
