// Package cache holds parsed tilesets and templates shared between decodes.
// Every implementation drops its whole content on Clear; there is no
// per-entry invalidation.
package cache

import (
	"sync"

	"github.com/milk9111/tiledmap/tmx"
)

// Memory is an unbounded map guarded by a read/write lock.
type Memory struct {
	mu        sync.RWMutex
	tilesets  map[string]*tmx.Tileset
	templates map[string]*tmx.Template
}

func NewMemory() *Memory {
	return &Memory{
		tilesets:  make(map[string]*tmx.Tileset),
		templates: make(map[string]*tmx.Template),
	}
}

func (m *Memory) Tileset(path string) (*tmx.Tileset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.tilesets[path]
	return ts, ok
}

func (m *Memory) InsertTileset(path string, ts *tmx.Tileset) {
	m.mu.Lock()
	m.tilesets[path] = ts
	m.mu.Unlock()
}

func (m *Memory) Template(path string) (*tmx.Template, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tpl, ok := m.templates[path]
	return tpl, ok
}

func (m *Memory) InsertTemplate(path string, tpl *tmx.Template) {
	m.mu.Lock()
	m.templates[path] = tpl
	m.mu.Unlock()
}

func (m *Memory) Clear() {
	m.mu.Lock()
	clear(m.tilesets)
	clear(m.templates)
	m.mu.Unlock()
}

// Len returns the number of cached tilesets and templates.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tilesets) + len(m.templates)
}

var (
	_ tmx.ResourceCache = (*Memory)(nil)
	_ tmx.ResourceCache = (*Ristretto)(nil)
)
