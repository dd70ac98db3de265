package ecscore

import "testing"

// TestMovementTick is §8 scenario 1.
func TestMovementTick(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	posX := NewField[float64](pos, 0)
	posY := NewField[float64](pos, 1)
	velX := NewField[float64](vel, 0)
	velY := NewField[float64](vel, 1)

	type sample struct{ px, py, vx, vy float64 }
	samples := []sample{
		{1, 2, 10, 20},
		{3, 4, 30, 40},
		{5, 6, 50, 60},
	}
	entities := make([]Entity, len(samples))
	for i, s := range samples {
		e, _ := w.CreateEntity()
		w.AddComponent(e, pos, Values{"x": s.px, "y": s.py})
		w.AddComponent(e, vel, Values{"vx": s.vx, "vy": s.vy})
		entities[i] = e
	}

	q := w.Query(pos, vel)
	cursor := q.Cursor()
	for cursor.Next() {
		e := cursor.Entity()
		dt := 0.1
		posX.Set(e, w, posX.Get(e, w)+velX.Get(e, w)*dt)
		posY.Set(e, w, posY.Get(e, w)+velY.Get(e, w)*dt)
	}

	want := []sample{{2, 4, 0, 0}, {6, 8, 0, 0}, {10, 12, 0, 0}}
	for i, e := range entities {
		gotX := posX.Get(e, w)
		gotY := posY.Get(e, w)
		if gotX != want[i].px || gotY != want[i].py {
			t.Fatalf("entity %d: got (%v,%v) want (%v,%v)", i, gotX, gotY, want[i].px, want[i].py)
		}
	}
}

// TestLiveQueryGrowth is §8 scenario 5.
func TestLiveQueryGrowth(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	q := w.Query(pos)
	if q.Len() != 0 {
		t.Fatalf("expected empty query result, got %d", q.Len())
	}

	e1, _ := w.CreateEntity()
	w.AddComponent(e1, pos, Values{"x": 1.0, "y": 1.0})

	if q.Len() != 1 {
		t.Fatalf("expected live query to grow to 1 entity, got %d", q.Len())
	}
	if len(q.Archetypes()) != 1 {
		t.Fatalf("expected exactly one matched archetype, got %d", len(q.Archetypes()))
	}

	// Re-requesting the same triple must return the same cached Query.
	same := w.Query(pos)
	if same != q {
		t.Fatalf("expected same Query object for repeated request")
	}
}

func TestQueryAndIsOrderIndependent(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	a := w.Query(pos).And(vel)
	b := w.Query(vel).And(pos)
	if a != b {
		t.Fatalf("expected and() chaining to be order-independent")
	}
}

func TestQueryAndNoOpWhenAlreadyIncluded(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	q := w.Query(pos)
	if q.And(pos) != q {
		t.Fatalf("expected and() with already-included component to be a no-op")
	}
}

func TestQueryExcludeAndAnyOf(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	frozen := w.RegisterTag("Frozen")

	eBare, _ := w.CreateEntity()
	w.AddComponent(eBare, pos, Values{"x": 0.0, "y": 0.0})

	eFrozen, _ := w.CreateEntity()
	w.AddComponent(eFrozen, pos, Values{"x": 0.0, "y": 0.0})
	w.AddComponent(eFrozen, frozen, nil)

	eVel, _ := w.CreateEntity()
	w.AddComponent(eVel, pos, Values{"x": 0.0, "y": 0.0})
	w.AddComponent(eVel, vel, Values{"vx": 0.0, "vy": 0.0})

	notFrozen := w.QueryEx([]ComponentID{pos}, []ComponentID{frozen}, nil)
	if notFrozen.Len() != 2 {
		t.Fatalf("expected 2 non-frozen entities, got %d", notFrozen.Len())
	}

	frozenOrMoving := w.QueryEx([]ComponentID{pos}, nil, []ComponentID{frozen, vel})
	if frozenOrMoving.Len() != 2 {
		t.Fatalf("expected 2 entities matching any_of(frozen, vel), got %d", frozenOrMoving.Len())
	}
}

func TestQueryEachVisitsEveryMatchedArchetype(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	for i := 0; i < 3; i++ {
		e, _ := w.CreateEntity()
		w.AddComponent(e, pos, Values{"x": float64(i), "y": float64(i)})
	}
	for i := 0; i < 2; i++ {
		e, _ := w.CreateEntity()
		w.AddComponent(e, pos, Values{"x": float64(i), "y": float64(i)})
		w.AddComponent(e, vel, Values{"vx": 1.0, "vy": 1.0})
	}

	posX := NewField[float64](pos, 0)
	total := 0
	w.Query(pos).Each(func(chunk Chunk) {
		xs := ColumnOf(chunk, posX)
		total += len(xs)
	})
	if total != 5 {
		t.Fatalf("expected Each to visit all 5 rows across archetypes, got %d", total)
	}
}
