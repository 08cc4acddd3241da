package tiled

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	KindIo ErrorKind = iota + 1
	KindParse
	KindUnsupportedOrientation
	KindEmptyWorld
	KindWorldWithInfiniteMap
)

var (
	ErrIo                     = errors.New("tiled: i/o error")
	ErrParse                  = errors.New("tiled: parse error")
	ErrUnsupportedOrientation = errors.New("tiled: unsupported orientation")
	ErrEmptyWorld             = errors.New("tiled: world has no maps")
	ErrWorldWithInfiniteMap   = errors.New("tiled: world contains an infinite map")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindIo:
		return ErrIo
	case KindParse:
		return ErrParse
	case KindUnsupportedOrientation:
		return ErrUnsupportedOrientation
	case KindEmptyWorld:
		return ErrEmptyWorld
	case KindWorldWithInfiniteMap:
		return ErrWorldWithInfiniteMap
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case KindIo:
		return "io"
	case KindParse:
		return "parse"
	case KindUnsupportedOrientation:
		return "unsupported orientation"
	case KindEmptyWorld:
		return "empty world"
	case KindWorldWithInfiniteMap:
		return "world with infinite map"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError is returned by map and world decoding. errors.Is matches both
// the kind's sentinel and the wrapped cause.
type DecodeError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	msg := "tiled: " + e.Kind.String()
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// NewDecodeError wraps err with kind.
func NewDecodeError(kind ErrorKind, path string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Path: path, Err: err}
}
