package ecs

import "github.com/milk9111/tiledmap/ecs/component"

// SetParent makes parent the parent of child, detaching child from any
// previous parent. A NoEntity parent only detaches.
func SetParent(w *World, child, parent Entity) error {
	if !IsAlive(w, child) {
		return component.ErrEntityNotAlive
	}
	if parent == NoEntity {
		detach(w, child)
		return nil
	}
	if !IsAlive(w, parent) {
		return component.ErrEntityNotAlive
	}
	for p := parent; p != NoEntity; p = w.parent[p.id()] {
		if p == child {
			return component.ErrParentCycle
		}
	}
	detach(w, child)
	w.parent[child.id()] = parent
	w.children[parent.id()] = append(w.children[parent.id()], child)
	return nil
}

// Parent returns e's parent.
func Parent(w *World, e Entity) (Entity, bool) {
	if !IsAlive(w, e) {
		return NoEntity, false
	}
	p, ok := w.parent[e.id()]
	return p, ok
}

// Children returns e's children in the order they were attached.
func Children(w *World, e Entity) []Entity {
	if !IsAlive(w, e) {
		return nil
	}
	return append([]Entity(nil), w.children[e.id()]...)
}

// Descendants returns every entity below e, depth first, parents before
// their children.
func Descendants(w *World, e Entity) []Entity {
	var out []Entity
	for _, c := range Children(w, e) {
		out = append(out, c)
		out = append(out, Descendants(w, c)...)
	}
	return out
}

func detach(w *World, child Entity) {
	p, ok := w.parent[child.id()]
	if !ok {
		return
	}
	delete(w.parent, child.id())
	kids := w.children[p.id()]
	for i, c := range kids {
		if c == child {
			kids = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	if len(kids) == 0 {
		delete(w.children, p.id())
		return
	}
	w.children[p.id()] = kids
}
