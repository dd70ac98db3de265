package archetype

import (
	"testing"

	"github.com/thebitdrifter/ecscore/internal/component"
)

type captureSubscriber struct {
	created []*Archetype
}

func (s *captureSubscriber) OnArchetypeCreated(a *Archetype) {
	s.created = append(s.created, a)
}

func TestGetOrCreateDedupesBySignature(t *testing.T) {
	reg, pos, vel := testRegistry(t)
	ar, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id1, err := ar.GetOrCreate([]component.ID{pos, vel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same components, different input order.
	id2, err := ar.GetOrCreate([]component.ID{vel, pos})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id1 != id2 {
		t.Fatalf("expected same archetype id for equivalent signatures, got %d and %d", id1, id2)
	}
}

func TestResolveAddRemoveEdgesAreBidirectional(t *testing.T) {
	reg, pos, vel := testRegistry(t)
	ar, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base, _ := ar.GetOrCreate([]component.ID{pos})
	target, err := ar.ResolveAdd(base, vel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	baseArch := ar.Archetype(base)
	targetArch := ar.Archetype(target)

	addEdge, ok := baseArch.Edge(vel)
	if !ok || !addEdge.HasAdd || addEdge.Add != target {
		t.Fatalf("expected add edge from base to target")
	}
	removeEdge, ok := targetArch.Edge(vel)
	if !ok || !removeEdge.HasRemove || removeEdge.Remove != base {
		t.Fatalf("expected reciprocal remove edge from target to base")
	}

	back, err := ar.ResolveRemove(target, vel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != base {
		t.Fatalf("expected resolve-remove to return to base archetype, got %d want %d", back, base)
	}
}

func TestGetMatchingIncludeExcludeAnyOf(t *testing.T) {
	reg, pos, vel := testRegistry(t)
	tag := reg.Register(component.Schema{Name: "Frozen"})
	ar, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posOnly, _ := ar.GetOrCreate([]component.ID{pos})
	posVel, _ := ar.GetOrCreate([]component.ID{pos, vel})
	posVelTag, _ := ar.GetOrCreate([]component.ID{pos, vel, tag})

	matches := ar.GetMatching([]component.ID{pos}, nil, nil)
	if !containsID(matches, posOnly) || !containsID(matches, posVel) || !containsID(matches, posVelTag) {
		t.Fatalf("expected all three archetypes to match bare Position query, got %v", matches)
	}

	excluded := ar.GetMatching([]component.ID{pos}, []component.ID{tag}, nil)
	if containsID(excluded, posVelTag) {
		t.Fatalf("expected tag-excluded query to drop posVelTag, got %v", excluded)
	}
	if !containsID(excluded, posOnly) || !containsID(excluded, posVel) {
		t.Fatalf("expected posOnly and posVel to remain, got %v", excluded)
	}

	anyOf := ar.GetMatching([]component.ID{pos}, nil, []component.ID{tag})
	if !containsID(anyOf, posVelTag) || containsID(anyOf, posOnly) || containsID(anyOf, posVel) {
		t.Fatalf("expected only posVelTag to match any_of(tag), got %v", anyOf)
	}
}

func TestGetMatchingEmptyIncludeReturnsAll(t *testing.T) {
	reg, pos, vel := testRegistry(t)
	ar, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ar.GetOrCreate([]component.ID{pos})
	ar.GetOrCreate([]component.ID{vel})

	all := ar.GetMatching(nil, nil, nil)
	// empty archetype (created at NewRegistry) + pos + vel == 3
	if len(all) != 3 {
		t.Fatalf("expected 3 archetypes including the empty one, got %d", len(all))
	}
}

func TestSubscriberNotifiedOnNewArchetype(t *testing.T) {
	reg, pos, _ := testRegistry(t)
	ar, err := NewRegistry(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub := &captureSubscriber{}
	ar.Subscribe(sub)

	ar.GetOrCreate([]component.ID{pos})
	if len(sub.created) != 1 {
		t.Fatalf("expected subscriber notified once, got %d", len(sub.created))
	}

	// Re-requesting the same signature must not notify again.
	ar.GetOrCreate([]component.ID{pos})
	if len(sub.created) != 1 {
		t.Fatalf("expected no additional notification for dedup hit, got %d", len(sub.created))
	}
}

func containsID(ids []ID, want ID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
