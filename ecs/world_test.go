package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/tiledmap/ecs/component"
)

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex < 0 {
				return
			}
			if !DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if IsAlive(w, ents[c.destroyIndex]) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("second DestroyEntity should return false")
			}
			if Len(w) != c.create-1 {
				t.Fatalf("Len = %d, want %d", Len(w), c.create-1)
			}
		})
	}
}

func TestRecycledSlotGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	old := CreateEntity(w)
	if err := Add(w, old, kind, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("recycled entity kept its generation")
	}
	if Has(w, fresh, kind) {
		t.Fatalf("recycled entity inherited a component")
	}
	if err := Add(w, old, kind, intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("Add on stale handle: err = %v", err)
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestComponents(t *testing.T) {
	w := NewWorld()
	ints := component.NewComponent[int]("int")
	strs := component.NewComponent[string]("string")

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, ints.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, ints.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
				if Has(w, e2, ints.Kind()) {
					t.Fatalf("e2 should not have the int component")
				}
			},
			teardown: func() bool { return Remove(w, e1, ints.Kind()) },
		},
		{
			name: "add_str_to_both",
			setup: func() error {
				if err := Add(w, e1, strs.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, strs.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if Count(w, strs.Kind()) != 2 {
					t.Fatalf("expected both entities to have the string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, strs.Kind()) },
		},
		{
			name:  "replace_value",
			setup: func() error { return Add(w, e2, strs.Kind(), stringPtr("c")) },
			check: func(t *testing.T) {
				if v, _ := Get(w, e2, strs.Kind()); v == nil || *v != "c" {
					t.Fatalf("expected replaced value c, got %v", v)
				}
			},
			teardown: func() bool { return Remove(w, e2, strs.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	if err := Add[int](w, e1, ints.Kind(), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("nil value: err = %v", err)
	}
	var zero component.ComponentKind[int]
	if err := Add(w, e1, zero, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("zero kind: err = %v", err)
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	kc := component.NewComponentKind[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	for _, add := range []struct {
		e    Entity
		kind component.ComponentKind[int]
		v    int
	}{
		{e1, ka, 1}, {e2, ka, 2}, {e2, kb, 3}, {e2, kc, 4}, {e3, kb, 5}, {e3, kc, 6},
	} {
		if err := Add(w, add.e, add.kind, intPtr(add.v)); err != nil {
			t.Fatal(err)
		}
	}

	var one []Entity
	ForEach(w, ka, func(e Entity, _ *int) { one = append(one, e) })
	if len(one) != 2 {
		t.Fatalf("ForEach visited %v, want e1 and e2", one)
	}

	var two []Entity
	ForEach2(w, kb, kc, func(e Entity, _ *int, _ *int) { two = append(two, e) })
	if len(two) != 2 {
		t.Fatalf("ForEach2 visited %v, want e2 and e3", two)
	}

	var three []Entity
	ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { three = append(three, e) })
	if len(three) != 1 || three[0] != e2 {
		t.Fatalf("ForEach3 visited %v, want only e2", three)
	}

	DestroyEntity(w, e2)
	three = nil
	ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { three = append(three, e) })
	if len(three) != 0 {
		t.Fatalf("expected empty result after destroy, got %v", three)
	}
}

func TestForEachAllowsRemoval(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	for i := 0; i < 4; i++ {
		if err := Add(w, CreateEntity(w), kind, intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}
	visited := 0
	ForEach(w, kind, func(e Entity, _ *int) {
		visited++
		Remove(w, e, kind)
	})
	if visited != 4 || Count(w, kind) != 0 {
		t.Fatalf("visited %d, %d left", visited, Count(w, kind))
	}
}

func TestHierarchy(t *testing.T) {
	w := NewWorld()
	root := CreateEntity(w)
	a := CreateEntity(w)
	b := CreateEntity(w)
	leaf := CreateEntity(w)

	for _, link := range [][2]Entity{{a, root}, {b, root}, {leaf, a}} {
		if err := SetParent(w, link[0], link[1]); err != nil {
			t.Fatalf("SetParent: %v", err)
		}
	}
	if p, ok := Parent(w, leaf); !ok || p != a {
		t.Fatalf("Parent(leaf) = %v, %v", p, ok)
	}
	if got := Children(w, root); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Children(root) = %v", got)
	}
	if got := Descendants(w, root); len(got) != 3 || got[0] != a || got[1] != leaf || got[2] != b {
		t.Fatalf("Descendants(root) = %v", got)
	}
	if err := SetParent(w, root, leaf); !errors.Is(err, component.ErrParentCycle) {
		t.Fatalf("cycle: err = %v", err)
	}

	if err := SetParent(w, leaf, b); err != nil {
		t.Fatal(err)
	}
	if len(Children(w, a)) != 0 {
		t.Fatalf("leaf still listed under a")
	}

	if n := DestroyRecursive(w, root); n != 4 {
		t.Fatalf("DestroyRecursive = %d, want 4", n)
	}
	if Len(w) != 0 {
		t.Fatalf("%d entities left", Len(w))
	}
}

func TestDestroyDetachesChildren(t *testing.T) {
	w := NewWorld()
	parent := CreateEntity(w)
	child := CreateEntity(w)
	if err := SetParent(w, child, parent); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, parent)
	if !IsAlive(w, child) {
		t.Fatalf("child should survive a plain destroy")
	}
	if _, ok := Parent(w, child); ok {
		t.Fatalf("child still has a parent")
	}
}

func TestEventQueue(t *testing.T) {
	w := NewWorld()
	w.Events().Push(Event{Type: "a"})
	w.Events().Push(Event{Type: "b"})
	if w.Events().Len() != 2 {
		t.Fatalf("Len = %d", w.Events().Len())
	}
	got := w.Events().Drain()
	if len(got) != 2 || got[0].Type != "a" || w.Events().Drain() != nil {
		t.Fatalf("Drain = %v", got)
	}
}

func TestScheduler(t *testing.T) {
	var order []string
	s := NewScheduler(SystemFunc(func(*World) { order = append(order, "first") }))
	s.Add(nil)
	s.Add(SystemFunc(func(*World) { order = append(order, "second") }))
	s.Update(NewWorld())
	if len(order) != 2 || order[0] != "first" || len(s.Systems()) != 2 {
		t.Fatalf("order = %v", order)
	}
}
