package ecscore

// Deferred mutations are buffered rather than applied immediately so a
// system iterating a Query's Cursor never observes an archetype reshuffle
// mid-traversal. Three concrete buffers (rather than the teacher's single
// polymorphic EntityOperation/Apply queue) keep flush ordering explicit
// and let Stats report pending counts per kind without a type switch.

type deferredAdd struct {
	entity    Entity
	component ComponentID
	values    Values
}

type deferredRemove struct {
	entity    Entity
	component ComponentID
}

type deferredDestroy struct {
	entity Entity
}

// AddComponentDeferred queues c to be added to e (with values) at the
// next Flush, instead of moving e's archetype immediately.
func (w *World) AddComponentDeferred(e Entity, c ComponentID, values Values) {
	w.deferredAdds = append(w.deferredAdds, deferredAdd{entity: e, component: c, values: values})
}

// RemoveComponentDeferred queues c to be removed from e at the next Flush.
func (w *World) RemoveComponentDeferred(e Entity, c ComponentID) {
	w.deferredRemoves = append(w.deferredRemoves, deferredRemove{entity: e, component: c})
}

// DestroyEntityDeferred queues e to be destroyed at the next Flush, after
// every deferred add and remove has been applied.
func (w *World) DestroyEntityDeferred(e Entity) {
	w.deferredDestroys = append(w.deferredDestroys, deferredDestroy{entity: e})
}

// Flush applies every buffered mutation in strict order: all deferred
// adds (in queue order), then all deferred removes (in queue order) —
// together, flush_structural — followed by flush_destroyed. An entity
// destroyed (immediately or by an earlier queued destroy) before its
// turn is silently skipped rather than erroring, since a queued mutation
// against an entity that won't exist by flush time is expected, not a
// caller mistake.
func (w *World) Flush() (FlushStats, error) {
	var stats FlushStats

	adds := w.deferredAdds
	w.deferredAdds = nil
	for _, op := range adds {
		if !w.allocator.IsAlive(op.entity) {
			continue
		}
		if err := w.AddComponent(op.entity, op.component, op.values); err != nil {
			return stats, err
		}
		stats.AddsApplied++
	}

	removes := w.deferredRemoves
	w.deferredRemoves = nil
	for _, op := range removes {
		if !w.allocator.IsAlive(op.entity) {
			continue
		}
		if err := w.RemoveComponent(op.entity, op.component); err != nil {
			return stats, err
		}
		stats.RemovesApplied++
	}

	destroys := w.deferredDestroys
	w.deferredDestroys = nil
	for _, op := range destroys {
		if !w.allocator.IsAlive(op.entity) {
			continue
		}
		if err := w.DestroyEntity(op.entity); err != nil {
			return stats, err
		}
		stats.DestroysApplied++
	}

	if Config.events.OnFlush != nil {
		Config.events.OnFlush(stats)
	}
	return stats, nil
}

// PendingFlush reports whether any deferred mutation is waiting for the
// next Flush.
func (w *World) PendingFlush() bool {
	return len(w.deferredAdds) > 0 || len(w.deferredRemoves) > 0 || len(w.deferredDestroys) > 0
}
