package tmx

import (
	"encoding/xml"
	"fmt"
)

// Map is the root <map> element with its tilesets and layers in source order.
type Map struct {
	Version         string
	TiledVersion    string
	Class           string
	Orientation     string
	RenderOrder     string
	Width           int
	Height          int
	TileWidth       int
	TileHeight      int
	HexSideLength   int
	StaggerAxis     string
	StaggerIndex    string
	ParallaxOriginX float64
	ParallaxOriginY float64
	Infinite        bool
	BackgroundColor string
	NextLayerID     int
	NextObjectID    int

	Properties Properties
	Tilesets   []*TilesetRef
	Layers     []*Layer
}

func (m *Map) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Local != "map" {
		return fmt.Errorf("tmx: expected <map>, got <%s>", start.Name.Local)
	}
	ar := newAttrReader(start)
	*m = Map{
		Version:         ar.str("version", ""),
		TiledVersion:    ar.str("tiledversion", ""),
		Class:           ar.str("class", ""),
		Orientation:     ar.str("orientation", "orthogonal"),
		RenderOrder:     ar.str("renderorder", "right-down"),
		Width:           ar.int("width", 0),
		Height:          ar.int("height", 0),
		TileWidth:       ar.int("tilewidth", 0),
		TileHeight:      ar.int("tileheight", 0),
		HexSideLength:   ar.int("hexsidelength", 0),
		StaggerAxis:     ar.str("staggeraxis", ""),
		StaggerIndex:    ar.str("staggerindex", ""),
		ParallaxOriginX: ar.float("parallaxoriginx", 0),
		ParallaxOriginY: ar.float("parallaxoriginy", 0),
		Infinite:        ar.bool("infinite", false),
		BackgroundColor: ar.str("backgroundcolor", ""),
		NextLayerID:     ar.int("nextlayerid", 0),
		NextObjectID:    ar.int("nextobjectid", 0),
	}
	if ar.err != nil {
		return ar.err
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "properties":
				err = d.DecodeElement(&m.Properties, &t)
			case "tileset":
				ref := &TilesetRef{}
				if err = d.DecodeElement(ref, &t); err == nil {
					m.Tilesets = append(m.Tilesets, ref)
				}
			default:
				if _, ok := layerKindOf(t.Name.Local); ok {
					l := &Layer{}
					if err = d.DecodeElement(l, &t); err == nil {
						m.Layers = append(m.Layers, l)
					}
				} else {
					err = d.Skip()
				}
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Walk visits every layer, including nested group members, in source order.
func (m *Map) Walk(fn func(*Layer)) {
	for _, l := range m.Layers {
		l.Walk(fn)
	}
}

// TilesetFor returns the index of the tileset that owns gid.
func (m *Map) TilesetFor(gid GID) (int, bool) {
	best := -1
	for i, ref := range m.Tilesets {
		if ref.FirstGID <= gid.ID() && (best < 0 || ref.FirstGID > m.Tilesets[best].FirstGID) {
			best = i
		}
	}
	if best < 0 || !m.Tilesets[best].Contains(gid) {
		return 0, false
	}
	return best, true
}

func (m *Map) nextFirstGID() uint32 {
	next := uint32(1)
	for _, ref := range m.Tilesets {
		span := uint32(1)
		if ref.Tileset != nil && ref.Tileset.TileCount > 0 {
			span = uint32(ref.Tileset.TileCount)
		}
		if end := ref.FirstGID + span; end > next {
			next = end
		}
	}
	return next
}
