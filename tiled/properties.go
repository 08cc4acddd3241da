package tiled

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/milk9111/tiledmap/tmx"
)

// PropertyType is the declared type of a custom property.
type PropertyType int

const (
	PropString PropertyType = iota
	PropInt
	PropFloat
	PropBool
	PropColor
	PropFile
	PropObject
	PropClass
)

func (t PropertyType) String() string {
	switch t {
	case PropString:
		return "string"
	case PropInt:
		return "int"
	case PropFloat:
		return "float"
	case PropBool:
		return "bool"
	case PropColor:
		return "color"
	case PropFile:
		return "file"
	case PropObject:
		return "object"
	case PropClass:
		return "class"
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// Color is an RGBA color parsed from Tiled's #AARRGGBB or #RRGGBB form.
type Color struct {
	R, G, B, A uint8
}

func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if h == "" {
		return Color{}, nil
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("tiled: color %q: %w", s, err)
	}
	switch len(h) {
	case 6:
		return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
	case 8:
		return Color{A: uint8(n >> 24), R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
	}
	return Color{}, fmt.Errorf("tiled: color %q: want 6 or 8 hex digits", s)
}

// PropertyValue is a typed property. Value holds a string, int64, float64,
// bool, Color, string path, int object id or nested Properties.
type PropertyValue struct {
	Type  PropertyType
	Class string
	Value any
}

// Properties maps property names to typed values.
type Properties map[string]PropertyValue

func (p Properties) StringValue(name string) (string, bool) {
	v, ok := p[name].Value.(string)
	return v, ok
}

func (p Properties) IntValue(name string) (int64, bool) {
	v, ok := p[name].Value.(int64)
	return v, ok
}

// FloatValue returns a float property; int properties are widened.
func (p Properties) FloatValue(name string) (float64, bool) {
	switch v := p[name].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (p Properties) BoolValue(name string) (bool, bool) {
	v, ok := p[name].Value.(bool)
	return v, ok
}

func (p Properties) ClassValue(name string) (Properties, bool) {
	v, ok := p[name].Value.(Properties)
	return v, ok
}

// Names returns the property names in sorted order.
func (p Properties) Names() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// convertProperties types raw properties. File properties are resolved
// against owner.
func convertProperties(raw tmx.Properties, owner string) (Properties, error) {
	if len(raw) == 0 {
		return Properties{}, nil
	}
	out := make(Properties, len(raw))
	for _, rp := range raw {
		pv, err := convertProperty(rp, owner)
		if err != nil {
			return nil, fmt.Errorf("tiled: property %q: %w", rp.Name, err)
		}
		out[rp.Name] = pv
	}
	return out, nil
}

func convertProperty(rp tmx.Property, owner string) (PropertyValue, error) {
	s := rp.StringValue()
	switch rp.Type {
	case "", "string":
		return PropertyValue{Type: PropString, Value: s}, nil
	case "int":
		if s == "" {
			return PropertyValue{Type: PropInt, Value: int64(0)}, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Type: PropInt, Value: n}, nil
	case "float":
		if s == "" {
			return PropertyValue{Type: PropFloat, Value: 0.0}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Type: PropFloat, Value: f}, nil
	case "bool":
		b := s == "true" || s == "1"
		if !b && s != "" && s != "false" && s != "0" {
			return PropertyValue{}, fmt.Errorf("invalid bool %q", s)
		}
		return PropertyValue{Type: PropBool, Value: b}, nil
	case "color":
		c, err := ParseColor(s)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Type: PropColor, Value: c}, nil
	case "file":
		return PropertyValue{Type: PropFile, Value: tmx.ResolvePath(owner, s)}, nil
	case "object":
		id := 0
		if s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return PropertyValue{}, err
			}
			id = n
		}
		return PropertyValue{Type: PropObject, Value: id}, nil
	case "class":
		nested, err := convertProperties(rp.Properties, owner)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Type: PropClass, Class: rp.PropertyType, Value: nested}, nil
	}
	return PropertyValue{}, fmt.Errorf("unknown property type %q", rp.Type)
}

// Deserializer builds a host value from a class's properties.
type Deserializer func(Properties) (any, error)

// PropertyRegistry resolves Tiled class names to deserializers. Register
// everything at startup; lookups after that are read-only.
type PropertyRegistry struct {
	mu      sync.RWMutex
	classes map[string]Deserializer
}

func NewPropertyRegistry() *PropertyRegistry {
	return &PropertyRegistry{classes: make(map[string]Deserializer)}
}

// Register binds class to fn, replacing any previous binding.
func (r *PropertyRegistry) Register(class string, fn Deserializer) {
	r.mu.Lock()
	r.classes[class] = fn
	r.mu.Unlock()
}

// Resolve runs the deserializer registered for class. ok is false when the
// class is unknown.
func (r *PropertyRegistry) Resolve(class string, props Properties) (v any, ok bool, err error) {
	if r == nil || class == "" {
		return nil, false, nil
	}
	r.mu.RLock()
	fn, ok := r.classes[class]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	v, err = fn(props)
	if err != nil {
		return nil, true, fmt.Errorf("tiled: class %q: %w", class, err)
	}
	return v, true, nil
}

// Classes returns the registered class names, sorted.
func (r *PropertyRegistry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.classes))
	for k := range r.classes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
