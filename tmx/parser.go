package tmx

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Parser parses maps and resolves their external tilesets and templates
// through Read, consulting Cache first when it is set.
type Parser struct {
	Read  ReadFunc
	Cache ResourceCache
}

// ParseMap parses the .tmx content data that was read from path. External
// tilesets are loaded and template instances are expanded before return.
func (p *Parser) ParseMap(path string, data []byte) (*Map, error) {
	m := &Map{}
	if err := unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("tmx: parse map %s: %w", path, err)
	}
	for _, ref := range m.Tilesets {
		if ref.Source == "" {
			ref.Tileset.Path = path
			continue
		}
		ts, err := p.LoadTileset(ResolvePath(path, ref.Source))
		if err != nil {
			return nil, err
		}
		ref.Tileset = ts
	}

	var terr error
	m.Walk(func(l *Layer) {
		for _, obj := range l.Objects {
			if terr != nil || obj.Template == "" {
				continue
			}
			terr = p.expandTemplate(m, path, obj)
		}
	})
	if terr != nil {
		return nil, terr
	}
	return m, nil
}

// LoadTileset returns the external tileset at path.
func (p *Parser) LoadTileset(path string) (*Tileset, error) {
	if p.Cache != nil {
		if ts, ok := p.Cache.Tileset(path); ok {
			return ts, nil
		}
	}
	data, err := p.read(path)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTileset(path, data)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		p.Cache.InsertTileset(path, ts)
	}
	return ts, nil
}

// LoadTemplate returns the template at path along with its tileset, if any.
func (p *Parser) LoadTemplate(path string) (*Template, error) {
	if p.Cache != nil {
		if tpl, ok := p.Cache.Template(path); ok {
			return tpl, nil
		}
	}
	data, err := p.read(path)
	if err != nil {
		return nil, err
	}
	tpl := &Template{}
	if err := unmarshal(data, tpl); err != nil {
		return nil, fmt.Errorf("tmx: parse template %s: %w", path, err)
	}
	if tpl.Object == nil {
		return nil, fmt.Errorf("tmx: parse template %s: missing <object>", path)
	}
	tpl.Path = path
	if ref := tpl.Tileset; ref != nil {
		if ref.Source != "" {
			ref.Source = ResolvePath(path, ref.Source)
			ts, err := p.LoadTileset(ref.Source)
			if err != nil {
				return nil, err
			}
			ref.Tileset = ts
		} else {
			ref.Tileset.Path = path
		}
	}
	if p.Cache != nil {
		p.Cache.InsertTemplate(path, tpl)
	}
	return tpl, nil
}

// ParseTileset parses a standalone .tsx file read from path.
func ParseTileset(path string, data []byte) (*Tileset, error) {
	ts := &Tileset{}
	if err := unmarshal(data, ts); err != nil {
		return nil, fmt.Errorf("tmx: parse tileset %s: %w", path, err)
	}
	ts.Path = path
	return ts, nil
}

func (p *Parser) read(path string) ([]byte, error) {
	if p.Read == nil {
		return nil, &ReadError{Path: path, Err: ErrNoReader}
	}
	data, err := p.Read(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

func (p *Parser) expandTemplate(m *Map, owner string, obj *Object) error {
	tpl, err := p.LoadTemplate(ResolvePath(owner, obj.Template))
	if err != nil {
		return err
	}
	declaredGID := obj.Set["gid"]
	obj.applyTemplate(tpl.Object)
	if declaredGID || tpl.Object.GID == 0 || tpl.Tileset == nil {
		return nil
	}

	// Template gids are relative to the template's own tileset reference;
	// rebase them onto the map, registering the tileset if the map lacks it.
	ref := tpl.Tileset
	var target *TilesetRef
	for _, mr := range m.Tilesets {
		if mr.Tileset == ref.Tileset || (ref.Source != "" && ResolvePath(owner, mr.Source) == ref.Source) {
			target = mr
			break
		}
	}
	if target == nil {
		target = &TilesetRef{FirstGID: m.nextFirstGID(), Source: ref.Source, Tileset: ref.Tileset}
		m.Tilesets = append(m.Tilesets, target)
	}
	flags := uint32(tpl.Object.GID) &^ GIDMask
	obj.GID = GID((tpl.Object.GID.ID() - ref.FirstGID + target.FirstGID) | flags)
	return nil
}

func unmarshal(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	return dec.Decode(v)
}
