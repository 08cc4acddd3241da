// Package ecs is a small entity store: generational entities, one sparse
// set per component kind and a parent/child hierarchy.
package ecs

import (
	"github.com/milk9111/tiledmap/ecs/component"
)

// World owns entities, their components and their hierarchy.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
	parent   map[entityID]Entity
	children map[entityID][]Entity
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:   make(map[component.ComponentID]store),
		parent:   make(map[entityID]Entity),
		children: make(map[entityID][]Entity),
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes e and its components. Its children are detached,
// not destroyed; see DestroyRecursive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	id := e.id()
	for _, s := range w.stores {
		s.remove(id)
	}
	detach(w, e)
	for _, c := range w.children[id] {
		delete(w.parent, c.id())
	}
	delete(w.children, id)
	return w.entities.destroy(e)
}

// DestroyRecursive destroys e and every descendant, children first. It
// returns how many entities were destroyed.
func DestroyRecursive(w *World, e Entity) int {
	if w == nil || !w.entities.isAlive(e) {
		return 0
	}
	n := 0
	kids := append([]Entity(nil), w.children[e.id()]...)
	for _, c := range kids {
		n += DestroyRecursive(w, c)
	}
	if DestroyEntity(w, e) {
		n++
	}
	return n
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns every live entity in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	for i := range w.entities.gen {
		if e, ok := w.entities.resolve(entityID(i + 1)); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of live entities.
func Len(w *World) int {
	if w == nil {
		return 0
	}
	return w.entities.count
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	s, ok := w.stores[kind.ID()]
	if !ok {
		if !create {
			return nil
		}
		ss := &sparseSet[T]{}
		w.stores[kind.ID()] = ss
		return ss
	}
	ss, _ := s.(*sparseSet[T])
	return ss
}

// Add stores value under kind for e, replacing any previous value.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	storeFor(w, kind, true).set(e.id(), value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e.id())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeFor(w, kind, false)
	return s != nil && s.remove(e.id())
}

// Count returns how many entities carry kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	if w == nil {
		return 0
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return 0
	}
	return s.len()
}

// ForEach visits every entity with kind. fn may add or remove components;
// the visited set is fixed when the call starts.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil {
		return
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return
	}
	for _, id := range append([]entityID(nil), s.dense...) {
		e, ok := w.entities.resolve(id)
		if !ok {
			continue
		}
		if v, ok := s.get(id); ok {
			fn(e, v)
		}
	}
}

// ForEach2 visits entities that carry both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil {
		return
	}
	sb := storeFor(w, kb, false)
	if sb == nil {
		return
	}
	ForEach(w, ka, func(e Entity, a *A) {
		if b, ok := sb.get(e.id()); ok {
			fn(e, a, b)
		}
	})
}

// ForEach3 visits entities that carry all three kinds.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if w == nil {
		return
	}
	sc := storeFor(w, kc, false)
	if sc == nil {
		return
	}
	ForEach2(w, ka, kb, func(e Entity, a *A, b *B) {
		if c, ok := sc.get(e.id()); ok {
			fn(e, a, b, c)
		}
	})
}
