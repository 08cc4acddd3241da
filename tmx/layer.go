package tmx

import (
	"encoding/xml"
	"fmt"
)

// LayerKind tells which of the four Tiled layer elements a Layer came from.
type LayerKind int

const (
	TileLayer LayerKind = iota
	ObjectGroup
	ImageLayer
	GroupLayer
)

func (k LayerKind) String() string {
	switch k {
	case TileLayer:
		return "layer"
	case ObjectGroup:
		return "objectgroup"
	case ImageLayer:
		return "imagelayer"
	case GroupLayer:
		return "group"
	}
	return fmt.Sprintf("LayerKind(%d)", int(k))
}

func layerKindOf(name string) (LayerKind, bool) {
	switch name {
	case "layer":
		return TileLayer, true
	case "objectgroup":
		return ObjectGroup, true
	case "imagelayer":
		return ImageLayer, true
	case "group":
		return GroupLayer, true
	}
	return 0, false
}

// Layer is any of <layer>, <objectgroup>, <imagelayer> or <group>; the
// fields that apply depend on Kind.
type Layer struct {
	Kind      LayerKind
	ID        int
	Name      string
	Class     string
	Width     int
	Height    int
	Opacity   float64
	Visible   bool
	Tint      string
	OffsetX   float64
	OffsetY   float64
	ParallaxX float64
	ParallaxY float64

	Properties Properties

	// tile layers
	Data *Data

	// object groups
	DrawOrder string
	Color     string
	Objects   []*Object

	// image layers
	Image   *Image
	RepeatX bool
	RepeatY bool

	// groups, in source order
	Layers []*Layer
}

func (l *Layer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	kind, ok := layerKindOf(start.Name.Local)
	if !ok {
		return fmt.Errorf("tmx: unexpected layer element <%s>", start.Name.Local)
	}
	ar := newAttrReader(start)
	*l = Layer{
		Kind:      kind,
		ID:        ar.int("id", 0),
		Name:      ar.str("name", ""),
		Class:     ar.str("class", ar.str("type", "")),
		Width:     ar.int("width", 0),
		Height:    ar.int("height", 0),
		Opacity:   ar.float("opacity", 1),
		Visible:   ar.bool("visible", true),
		Tint:      ar.str("tintcolor", ""),
		OffsetX:   ar.float("offsetx", 0),
		OffsetY:   ar.float("offsety", 0),
		ParallaxX: ar.float("parallaxx", 1),
		ParallaxY: ar.float("parallaxy", 1),
		DrawOrder: ar.str("draworder", "topdown"),
		Color:     ar.str("color", ""),
		RepeatX:   ar.bool("repeatx", false),
		RepeatY:   ar.bool("repeaty", false),
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
			if err := l.decodeChild(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (l *Layer) decodeChild(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "properties":
		return d.DecodeElement(&l.Properties, &t)
	case "data":
		if l.Kind != TileLayer {
			return d.Skip()
		}
		l.Data = &Data{}
		return d.DecodeElement(l.Data, &t)
	case "object":
		if l.Kind != ObjectGroup {
			return d.Skip()
		}
		obj := &Object{}
		if err := d.DecodeElement(obj, &t); err != nil {
			return err
		}
		l.Objects = append(l.Objects, obj)
		return nil
	case "image":
		if l.Kind != ImageLayer {
			return d.Skip()
		}
		l.Image = &Image{}
		return d.DecodeElement(l.Image, &t)
	}
	if _, ok := layerKindOf(t.Name.Local); ok && l.Kind == GroupLayer {
		child := &Layer{}
		if err := d.DecodeElement(child, &t); err != nil {
			return err
		}
		l.Layers = append(l.Layers, child)
		return nil
	}
	return d.Skip()
}

// Walk calls fn for l and every nested layer, depth first in source order.
func (l *Layer) Walk(fn func(*Layer)) {
	fn(l)
	for _, c := range l.Layers {
		c.Walk(fn)
	}
}
