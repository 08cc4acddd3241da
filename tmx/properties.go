package tmx

import (
	"encoding/xml"
	"strings"
)

// Property is one <property>. Class properties carry nested Properties.
type Property struct {
	Name         string     `xml:"name,attr"`
	Type         string     `xml:"type,attr"`
	PropertyType string     `xml:"propertytype,attr"`
	Value        string     `xml:"value,attr"`
	Text         string     `xml:",chardata"`
	Properties   Properties `xml:"properties"`
}

// StringValue returns the value attribute, falling back to the element text
// used for multi-line strings.
func (p Property) StringValue() string {
	if p.Value != "" {
		return p.Value
	}
	return strings.TrimSpace(p.Text)
}

// Properties is an ordered <properties> list.
type Properties []Property

func (ps *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Items []Property `xml:"property"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	*ps = append((*ps)[:0], raw.Items...)
	return nil
}

// Get returns the property with the given name.
func (ps Properties) Get(name string) (Property, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Merge returns base overridden by the entries of over, keeping base order.
func Merge(base, over Properties) Properties {
	if len(over) == 0 {
		return base
	}
	out := make(Properties, 0, len(base)+len(over))
	seen := make(map[string]bool, len(over))
	for _, p := range base {
		if o, ok := over.Get(p.Name); ok {
			out = append(out, o)
			seen[p.Name] = true
			continue
		}
		out = append(out, p)
	}
	for _, o := range over {
		if !seen[o.Name] {
			out = append(out, o)
		}
	}
	return out
}
