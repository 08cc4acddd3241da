package tmx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// attrReader pulls typed attributes out of a start element, keeping the
// first conversion error.
type attrReader struct {
	elem  string
	attrs map[string]string
	err   error
}

func newAttrReader(start xml.StartElement) *attrReader {
	m := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		m[a.Name.Local] = a.Value
	}
	return &attrReader{elem: start.Name.Local, attrs: m}
}

func (r *attrReader) has(name string) bool {
	_, ok := r.attrs[name]
	return ok
}

func (r *attrReader) str(name, def string) string {
	if v, ok := r.attrs[name]; ok {
		return v
	}
	return def
}

func (r *attrReader) int(name string, def int) int {
	v, ok := r.attrs[name]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.fail(name, v, err)
		return def
	}
	return n
}

func (r *attrReader) uint32(name string, def uint32) uint32 {
	v, ok := r.attrs[name]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		r.fail(name, v, err)
		return def
	}
	return uint32(n)
}

func (r *attrReader) float(name string, def float64) float64 {
	v, ok := r.attrs[name]
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		r.fail(name, v, err)
		return def
	}
	return f
}

func (r *attrReader) bool(name string, def bool) bool {
	v, ok := r.attrs[name]
	if !ok || v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	r.fail(name, v, strconv.ErrSyntax)
	return def
}

func (r *attrReader) fail(name, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("tmx: <%s> attribute %s=%q: %w", r.elem, name, value, err)
	}
}
