package ecscore

import (
	"errors"
	"testing"
)

func newTestWorld(t *testing.T) (*World, ComponentID, ComponentID) {
	t.Helper()
	w := NewWorld()
	pos := w.RegisterComponent("Position",
		FieldSpec{Name: "x", Type: F64},
		FieldSpec{Name: "y", Type: F64},
	)
	vel := w.RegisterComponent("Velocity",
		FieldSpec{Name: "vx", Type: F64},
		FieldSpec{Name: "vy", Type: F64},
	)
	return w, pos, vel
}

func TestCreateEntityStartsInEmptyArchetype(t *testing.T) {
	w := NewWorld()
	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.IsAlive(e) {
		t.Fatalf("expected newly created entity to be alive")
	}
	if w.EntityCount() != 1 {
		t.Fatalf("expected entity count 1, got %d", w.EntityCount())
	}
}

func TestAddComponentRoundTrip(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()

	if err := w.AddComponent(e, pos, Values{"x": 1.0, "y": 2.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	has, err := w.HasComponent(e, pos)
	if err != nil || !has {
		t.Fatalf("expected entity to carry Position, err=%v has=%v", err, has)
	}
	x, err := w.GetField(e, pos, "x")
	if err != nil || x.(float64) != 1.0 {
		t.Fatalf("expected x=1.0, got %v err=%v", x, err)
	}
}

func TestAddComponentTwiceOverwritesInPlace(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	w.AddComponent(e, pos, Values{"x": 1.0, "y": 2.0})
	archBefore := w.archetypeOf(e)

	if err := w.AddComponent(e, pos, Values{"x": 9.0, "y": 9.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.archetypeOf(e) != archBefore {
		t.Fatalf("expected archetype unchanged on re-add")
	}
	x, _ := w.GetField(e, pos, "x")
	if x.(float64) != 9.0 {
		t.Fatalf("expected overwritten x=9.0, got %v", x)
	}
}

func TestRemoveComponentIsNoOpWhenAbsent(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	if err := w.RemoveComponent(e, pos); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
}

func TestRemoveComponentThenReRemoveIsNoOp(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	w.AddComponent(e, pos, Values{"x": 1.0, "y": 2.0})

	if err := w.RemoveComponent(e, pos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	has, _ := w.HasComponent(e, pos)
	if has {
		t.Fatalf("expected Position removed")
	}
	if err := w.RemoveComponent(e, pos); err != nil {
		t.Fatalf("expected second remove to be a no-op, got %v", err)
	}
}

func TestAddComponentOnDeadEntityFails(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	w.DestroyEntity(e)

	err := w.AddComponent(e, pos, nil)
	if !errors.Is(err, ErrDeadEntity) {
		t.Fatalf("expected ErrDeadEntity, got %v", err)
	}
}

// TestStaleIDRejection is §8 scenario 4.
func TestStaleIDRejection(t *testing.T) {
	w := NewWorld()
	e1, _ := w.CreateEntity()
	if err := w.DestroyEntity(e1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e2, _ := w.CreateEntity()

	if w.IsAlive(e1) {
		t.Fatalf("expected e1 to be dead")
	}
	if !w.IsAlive(e2) {
		t.Fatalf("expected e2 to be alive")
	}
	if e1.Slot() != e2.Slot() {
		t.Fatalf("expected recycled slot, got %d and %d", e1.Slot(), e2.Slot())
	}
	if e2.Generation() != e1.Generation()+1 {
		t.Fatalf("expected generation bumped by 1, got %d vs %d", e2.Generation(), e1.Generation())
	}
}

// TestSwapAndPopIntegrity is §8 scenario 3, at the World/Field level.
func TestSwapAndPopIntegrity(t *testing.T) {
	w := NewWorld()
	data := w.RegisterComponent("Data",
		FieldSpec{Name: "a", Type: I32}, FieldSpec{Name: "b", Type: I32},
		FieldSpec{Name: "c", Type: I32}, FieldSpec{Name: "d", Type: I32},
		FieldSpec{Name: "e", Type: I32},
	)

	entities := make([]Entity, 5)
	for i := 0; i < 5; i++ {
		e, _ := w.CreateEntity()
		entities[i] = e
		w.AddComponent(e, data, Values{
			"a": int32(10*i + 0), "b": int32(10*i + 1), "c": int32(10*i + 2),
			"d": int32(10*i + 3), "e": int32(10*i + 4),
		})
	}

	if err := w.DestroyEntity(entities[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := []string{"a", "b", "c", "d", "e"}
	for i := 1; i < 5; i++ {
		for fi, name := range fields {
			v, err := w.GetField(entities[i], data, name)
			if err != nil {
				t.Fatalf("unexpected error reading field %s of entity %d: %v", name, i, err)
			}
			want := int32(10*i + fi)
			if v.(int32) != want {
				t.Fatalf("entity %d field %s: got %v want %v", i, name, v, want)
			}
		}
	}
}

func TestBatchAddComponentMovesWholeArchetype(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	tag := w.RegisterTag("Frozen")

	var src ArchetypeID
	for i := 0; i < 4; i++ {
		e, _ := w.CreateEntity()
		w.AddComponent(e, pos, Values{"x": float64(i), "y": float64(i)})
		src = w.archetypeOf(e)
	}

	if err := w.BatchAddComponent(src, tag, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.archetypes.Archetype(src).Count() != 0 {
		t.Fatalf("expected source archetype emptied, got count %d", w.archetypes.Archetype(src).Count())
	}

	q := w.Query(pos, tag)
	if q.Len() != 4 {
		t.Fatalf("expected 4 entities carrying Position+Frozen, got %d", q.Len())
	}
}

func TestDestroyCallbackFiresOnce(t *testing.T) {
	w := NewWorld()
	e, _ := w.CreateEntity()
	fired := 0
	w.SetDestroyCallback(e, func(Entity) { fired++ })

	if err := w.DestroyEntity(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected callback to fire once, fired %d times", fired)
	}
}

func TestDestroyParentReparentsChildren(t *testing.T) {
	w := NewWorld()
	grandparent, _ := w.CreateEntity()
	parent, _ := w.CreateEntity()
	child, _ := w.CreateEntity()

	w.SetParent(parent, grandparent)
	w.SetParent(child, parent)

	if err := w.DestroyEntity(parent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	newParent, ok := w.Parent(child)
	if !ok || newParent != grandparent {
		t.Fatalf("expected child reparented to grandparent, got %v ok=%v", newParent, ok)
	}
}
