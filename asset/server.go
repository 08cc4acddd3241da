// Package asset loads maps and worlds in the background and reloads them
// when their files change.
package asset

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/cache"
	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/tmx"
	"github.com/milk9111/tiledmap/world"
)

// Options configures a Server. A nil Cache gets a cache.Memory.
type Options struct {
	FS     fs.FS
	Cache  tmx.ResourceCache
	Logger *zap.Logger
}

// Server decodes maps and worlds read from an fs.FS. Handles are shared
// per path; decoding runs on its own goroutine.
type Server struct {
	fsys  fs.FS
	cache tmx.ResourceCache
	log   *zap.Logger

	mu     sync.Mutex
	maps   map[string]*MapHandle
	worlds map[string]*WorldHandle
	wg     sync.WaitGroup
}

func NewServer(opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		fsys:   opts.FS,
		cache:  c,
		log:    log,
		maps:   make(map[string]*MapHandle),
		worlds: make(map[string]*WorldHandle),
	}
}

func (s *Server) Cache() tmx.ResourceCache {
	return s.cache
}

// LoadMap returns the handle for the map at p, starting its load the
// first time p is requested.
func (s *Server) LoadMap(p string) *MapHandle {
	p = path.Clean(p)
	s.mu.Lock()
	h, ok := s.maps[p]
	if !ok {
		h = newHandle[tiled.MapDocument](p)
		s.maps[p] = h
	}
	s.mu.Unlock()
	if !ok {
		s.startMap(h)
	}
	return h
}

// LoadWorld is LoadMap for .world files. Every map the world lists is
// decoded as part of the world's load.
func (s *Server) LoadWorld(p string) *WorldHandle {
	p = path.Clean(p)
	s.mu.Lock()
	h, ok := s.worlds[p]
	if !ok {
		h = newHandle[world.Document](p)
		s.worlds[p] = h
	}
	s.mu.Unlock()
	if !ok {
		s.startWorld(h)
	}
	return h
}

func (s *Server) startMap(h *MapHandle) {
	seq := h.begin()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		doc, err := s.DecodeMap(h.Path())
		if err != nil {
			s.log.Warn("map failed to load", zap.String("path", h.Path()), zap.Error(err))
		}
		h.finish(seq, doc, err)
	}()
}

func (s *Server) startWorld(h *WorldHandle) {
	seq := h.begin()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		doc, err := s.DecodeWorld(h.Path())
		if err != nil {
			s.log.Warn("world failed to load", zap.String("path", h.Path()), zap.Error(err))
		}
		h.finish(seq, doc, err)
	}()
}

// DecodeMap reads and decodes the map at p on the calling goroutine.
func (s *Server) DecodeMap(p string) (*tiled.MapDocument, error) {
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, tiled.NewDecodeError(tiled.KindIo, p, err)
	}
	return tiled.Decode(data, tiled.DecodeOptions{
		Path:   p,
		Reader: s.reader(p, data),
		Cache:  s.cache,
		Logger: s.log,
	})
}

// DecodeWorld reads and decodes the world at p and every map it lists.
func (s *Server) DecodeWorld(p string) (*world.Document, error) {
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, tiled.NewDecodeError(tiled.KindIo, p, err)
	}
	return world.Decode(data, world.Options{
		Path:    p,
		LoadMap: s.DecodeMap,
		Logger:  s.log,
	})
}

// reader serves the file being decoded from its buffer and every other
// resource from the server's file system. Tilesets and templates reach the
// reader only on a cache miss.
func (s *Server) reader(owner string, data []byte) tmx.ReadFunc {
	return func(p string) ([]byte, error) {
		if p == owner {
			return data, nil
		}
		return fs.ReadFile(s.fsys, p)
	}
}

// Reload clears the whole resource cache and reloads every handle.
func (s *Server) Reload() {
	s.cache.Clear()
	s.mu.Lock()
	maps := make([]*MapHandle, 0, len(s.maps))
	for _, h := range s.maps {
		maps = append(maps, h)
	}
	worlds := make([]*WorldHandle, 0, len(s.worlds))
	for _, h := range s.worlds {
		worlds = append(worlds, h)
	}
	s.mu.Unlock()

	s.log.Info("reloading assets", zap.Int("maps", len(maps)), zap.Int("worlds", len(worlds)))
	for _, h := range maps {
		s.startMap(h)
	}
	for _, h := range worlds {
		s.startWorld(h)
	}
}

// Paths lists every requested map and world path, sorted.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.maps)+len(s.worlds))
	for p := range s.maps {
		out = append(out, p)
	}
	for p := range s.worlds {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Pending returns how many handles are still loading.
func (s *Server) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.maps {
		if h.State() == StateLoading {
			n++
		}
	}
	for _, h := range s.worlds {
		if h.State() == StateLoading {
			n++
		}
	}
	return n
}

// Watch reloads every handle whenever w reports a change, until ctx is
// done or w is closed.
func (s *Server) Watch(ctx context.Context, w *Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			s.log.Debug("asset changed", zap.String("path", name))
			s.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("asset watcher error", zap.Error(err))
		}
	}
}

// Close waits for in-flight loads.
func (s *Server) Close() {
	s.wg.Wait()
}
