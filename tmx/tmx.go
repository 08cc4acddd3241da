// Package tmx reads Tiled's XML map (.tmx), tileset (.tsx) and template (.tx)
// files plus JSON world manifests into a plain parse tree. It does no
// coordinate math; see package tiled for that.
package tmx

import (
	"errors"
	"fmt"
	"path"
)

// GID flag bits stored in the high bits of tile data.
const (
	FlagFlipH       = 0x80000000
	FlagFlipV       = 0x40000000
	FlagFlipD       = 0x20000000
	FlagRotateHex   = 0x10000000
	flagMask        = FlagFlipH | FlagFlipV | FlagFlipD | FlagRotateHex
	GIDMask         = ^uint32(flagMask)
	DefaultChunkDim = 16
)

var (
	ErrUnknownEncoding    = errors.New("tmx: unknown data encoding")
	ErrUnknownCompression = errors.New("tmx: unknown data compression")
	ErrInvalidDataLen     = errors.New("tmx: invalid decoded data length")
	ErrInvalidPoints      = errors.New("tmx: invalid points string")
	ErrInvalidGID         = errors.New("tmx: gid does not belong to any tileset")
	ErrNoReader           = errors.New("tmx: no resource reader configured")
)

// GID is a global tile id with flip flags.
type GID uint32

// ID strips the flip flags.
func (g GID) ID() uint32 {
	return uint32(g) & GIDMask
}

func (g GID) FlipH() bool { return uint32(g)&FlagFlipH != 0 }
func (g GID) FlipV() bool { return uint32(g)&FlagFlipV != 0 }
func (g GID) FlipD() bool { return uint32(g)&FlagFlipD != 0 }

// ReadFunc returns the bytes of a resource referenced by a file being parsed.
// Paths are slash separated and already joined with the referencing file's directory.
type ReadFunc func(path string) ([]byte, error)

// ResourceCache stores parsed external tilesets and templates keyed by path.
// Implementations must be safe for concurrent use.
type ResourceCache interface {
	Tileset(path string) (*Tileset, bool)
	InsertTileset(path string, ts *Tileset)
	Template(path string) (*Template, bool)
	InsertTemplate(path string, tpl *Template)
	Clear()
}

// ReadError reports that the resource reader failed, as opposed to the
// content being malformed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("tmx: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ResolvePath joins a reference found in file owner with owner's directory.
func ResolvePath(owner, ref string) string {
	if ref == "" || path.IsAbs(ref) {
		return ref
	}
	return path.Join(path.Dir(owner), ref)
}
