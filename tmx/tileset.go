package tmx

import (
	"encoding/xml"
)

// Image is an <image> reference. Source is as written in the file; callers
// resolve it against the owning file with ResolvePath.
type Image struct {
	Source string `xml:"source,attr"`
	Trans  string `xml:"trans,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

// TileOffset is the drawing offset applied to every tile of a tileset.
type TileOffset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

// Frame is one step of a tile animation.
type Frame struct {
	TileID   uint32 `xml:"tileid,attr"`
	Duration int    `xml:"duration,attr"`
}

// Tile carries the per-tile metadata of a tileset.
type Tile struct {
	ID          uint32     `xml:"id,attr"`
	Class       string     `xml:"class,attr"`
	Type        string     `xml:"type,attr"`
	Probability float64    `xml:"probability,attr"`
	Image       *Image     `xml:"image"`
	ObjectGroup *Layer     `xml:"objectgroup"`
	Animation   []Frame    `xml:"animation>frame"`
	Properties  Properties `xml:"properties"`
}

// ClassName returns class, falling back to the pre-1.9 type attribute.
func (t *Tile) ClassName() string {
	if t.Class != "" {
		return t.Class
	}
	return t.Type
}

// Tileset is a <tileset> element, either embedded in a map or the root of a
// .tsx file.
type Tileset struct {
	Name            string     `xml:"name,attr"`
	Class           string     `xml:"class,attr"`
	TileWidth       int        `xml:"tilewidth,attr"`
	TileHeight      int        `xml:"tileheight,attr"`
	Spacing         int        `xml:"spacing,attr"`
	Margin          int        `xml:"margin,attr"`
	TileCount       int        `xml:"tilecount,attr"`
	Columns         int        `xml:"columns,attr"`
	ObjectAlignment string     `xml:"objectalignment,attr"`
	TileOffset      TileOffset `xml:"tileoffset"`
	Image           *Image     `xml:"image"`
	Tiles           []*Tile    `xml:"tile"`
	Properties      Properties `xml:"properties"`

	// Path is the file image sources are relative to: the .tsx itself or,
	// for embedded tilesets, the owning map.
	Path string `xml:"-"`
}

// Tile returns the metadata entry for a local tile id.
func (ts *Tileset) Tile(id uint32) (*Tile, bool) {
	for _, t := range ts.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TilesetRef binds a tileset to the first gid it occupies in a map.
// Source is empty for embedded tilesets.
type TilesetRef struct {
	FirstGID uint32
	Source   string
	Tileset  *Tileset
}

func (r *TilesetRef) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	ar := newAttrReader(start)
	r.FirstGID = ar.uint32("firstgid", 1)
	r.Source = ar.str("source", "")
	if ar.err != nil {
		return ar.err
	}
	if r.Source != "" {
		return d.Skip()
	}
	r.Tileset = &Tileset{}
	return d.DecodeElement(r.Tileset, &start)
}

// Contains reports whether gid falls in r's range.
func (r *TilesetRef) Contains(gid GID) bool {
	id := gid.ID()
	if id < r.FirstGID || r.Tileset == nil {
		return false
	}
	span := uint32(r.Tileset.TileCount)
	if span == 0 {
		for _, t := range r.Tileset.Tiles {
			if t.ID+1 > span {
				span = t.ID + 1
			}
		}
	}
	return id-r.FirstGID < span
}

// Template is a .tx object template.
type Template struct {
	Tileset *TilesetRef `xml:"tileset"`
	Object  *Object     `xml:"object"`

	Path string `xml:"-"`
}
