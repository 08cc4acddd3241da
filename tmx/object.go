package tmx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Point is a vertex of an object polygon or polyline, relative to the object.
type Point struct {
	X, Y float64
}

// Text is the content of a text object.
type Text struct {
	Content    string
	FontFamily string
	PixelSize  int
	Wrap       bool
	Color      string
	Bold       bool
	Italic     bool
	HAlign     string
	VAlign     string
}

// Object is one <object>. Set records which attributes and shape children
// were present so template instances can override only what they declare.
type Object struct {
	ID       int
	Name     string
	Class    string
	X, Y     float64
	Width    float64
	Height   float64
	Rotation float64
	GID      GID
	Visible  bool
	Template string

	Ellipse  bool
	Point    bool
	Polygon  []Point
	Polyline []Point
	Text     *Text

	Properties Properties

	Set map[string]bool
}

var objectAttrs = []string{"id", "name", "class", "type", "x", "y", "width", "height", "rotation", "gid", "visible", "template"}

func (o *Object) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	ar := newAttrReader(start)
	*o = Object{
		ID:       ar.int("id", 0),
		Name:     ar.str("name", ""),
		Class:    ar.str("class", ar.str("type", "")),
		X:        ar.float("x", 0),
		Y:        ar.float("y", 0),
		Width:    ar.float("width", 0),
		Height:   ar.float("height", 0),
		Rotation: ar.float("rotation", 0),
		GID:      GID(ar.uint32("gid", 0)),
		Visible:  ar.bool("visible", true),
		Template: ar.str("template", ""),
		Set:      make(map[string]bool),
	}
	if ar.err != nil {
		return ar.err
	}
	for _, name := range objectAttrs {
		if ar.has(name) {
			o.Set[name] = true
		}
	}
	if o.Set["type"] {
		o.Set["class"] = true
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := o.decodeChild(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (o *Object) decodeChild(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "properties":
		return d.DecodeElement(&o.Properties, &t)
	case "ellipse":
		o.Ellipse = true
		o.Set["shape"] = true
		return d.Skip()
	case "point":
		o.Point = true
		o.Set["shape"] = true
		return d.Skip()
	case "polygon", "polyline":
		ar := newAttrReader(t)
		pts, err := ParsePoints(ar.str("points", ""))
		if err != nil {
			return err
		}
		if t.Name.Local == "polygon" {
			o.Polygon = pts
		} else {
			o.Polyline = pts
		}
		o.Set["shape"] = true
		return d.Skip()
	case "text":
		txt, err := decodeText(d, t)
		if err != nil {
			return err
		}
		o.Text = txt
		o.Set["shape"] = true
		return nil
	}
	return d.Skip()
}

func decodeText(d *xml.Decoder, start xml.StartElement) (*Text, error) {
	ar := newAttrReader(start)
	txt := &Text{
		FontFamily: ar.str("fontfamily", "sans-serif"),
		PixelSize:  ar.int("pixelsize", 16),
		Wrap:       ar.bool("wrap", false),
		Color:      ar.str("color", "#000000"),
		Bold:       ar.bool("bold", false),
		Italic:     ar.bool("italic", false),
		HAlign:     ar.str("halign", "left"),
		VAlign:     ar.str("valign", "top"),
	}
	if ar.err != nil {
		return nil, ar.err
	}
	var content struct {
		Text string `xml:",chardata"`
	}
	if err := d.DecodeElement(&content, &start); err != nil {
		return nil, err
	}
	txt.Content = content.Text
	return txt, nil
}

// ParsePoints parses Tiled's "x1,y1 x2,y2 ..." vertex list.
func ParsePoints(s string) ([]Point, error) {
	fields := strings.Fields(s)
	out := make([]Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPoints, f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPoints, f)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPoints, f)
		}
		out = append(out, Point{X: x, Y: y})
	}
	return out, nil
}

// applyTemplate fills every field the instance did not declare from tpl.
func (o *Object) applyTemplate(tpl *Object) {
	set := o.Set
	if !set["name"] {
		o.Name = tpl.Name
	}
	if !set["class"] {
		o.Class = tpl.Class
	}
	if !set["width"] {
		o.Width = tpl.Width
	}
	if !set["height"] {
		o.Height = tpl.Height
	}
	if !set["rotation"] {
		o.Rotation = tpl.Rotation
	}
	if !set["gid"] {
		o.GID = tpl.GID
	}
	if !set["visible"] {
		o.Visible = tpl.Visible
	}
	if !set["shape"] {
		o.Ellipse = tpl.Ellipse
		o.Point = tpl.Point
		o.Polygon = tpl.Polygon
		o.Polyline = tpl.Polyline
		o.Text = tpl.Text
	}
	o.Properties = Merge(tpl.Properties, o.Properties)
}
