// Package component declares typed component kinds for the ecs package.
package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrParentCycle          = errors.New("ecs: parent would create a cycle")
)

// ComponentID identifies one component kind within the process.
type ComponentID uint32

var nextComponentID atomic.Uint32

// ComponentKind is the typed key a component of type T is stored under.
// Two kinds of the same T are distinct stores.
type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

// NewNamedKind is NewComponentKind with a name used in debug output.
func NewNamedKind[T any](name string) ComponentKind[T] {
	k := NewComponentKind[T]()
	k.name = name
	return k
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Name() string {
	return k.name
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// ComponentHandle wraps a kind so package level component vars read as
// FooComponent.Kind().
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any](name string) ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewNamedKind[T](name)}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
