package ecscore

import (
	"github.com/kamstrup/intmap"
	"github.com/thebitdrifter/ecscore/internal/archetype"
	"github.com/thebitdrifter/ecscore/internal/component"
	"github.com/thebitdrifter/ecscore/internal/ecserr"
	"github.com/thebitdrifter/ecscore/internal/entity"
	"github.com/thebitdrifter/ecscore/internal/xlog"
)

// FlushStats summarizes one World.Flush call, handed to Config's OnFlush
// hook.
type FlushStats struct {
	AddsApplied     int
	RemovesApplied  int
	DestroysApplied int
}

// World is the engine's single entry point: it owns entity lifecycle,
// component registration, archetype storage, the query cache, and the
// three deferred-mutation buffers a running system writes through (§4.6).
// Grounded on the teacher's Storage/Factory pairing, collapsed into one
// type the way delaneyj-arche's World and edwinsyarief-lazyecs's World
// both do.
type World struct {
	allocator   *entity.Allocator
	components  *component.Registry
	archetypes  *archetype.Registry
	queries     *QueryEngine

	// entityArchetype maps an entity's slot to the archetype it currently
	// lives in. A slot's row within that archetype is always resolved
	// on demand via Archetype.RowOf rather than cached a second time here,
	// since the archetype's own sparse index is already O(1) and a second
	// copy would just be more state to keep in sync for no added behavior.
	entityArchetype *intmap.Map[uint32, archetype.ID]

	deferredAdds     []deferredAdd
	deferredRemoves  []deferredRemove
	deferredDestroys []deferredDestroy

	// Supplemented features (§5): per-entity destroy callbacks and
	// parent/child bookkeeping, keyed by slot since both are dense,
	// small-integer indexed side tables in exactly the shape intmap fits.
	destroyCallbacks *intmap.Map[uint32, func(Entity)]
	parentOf         *intmap.Map[uint32, Entity]
	childrenOf       *intmap.Map[uint32, []Entity]

	logger xlog.Logger
}

// NewWorld returns an empty World: one allocator, one component registry,
// one archetype registry seeded with the empty archetype, and one query
// engine subscribed to it.
func NewWorld() *World {
	compReg := component.NewRegistry()
	archReg, err := archetype.NewRegistry(compReg)
	if err != nil {
		// Only possible if constructing the empty (nil-signature) archetype
		// itself failed, which newArchetype never does.
		panic(xlog.Traced(err))
	}
	archReg.Subscribe(archetypeCreatedHook{})
	return &World{
		allocator:        entity.NewAllocator(),
		components:       compReg,
		archetypes:       archReg,
		queries:          newQueryEngine(archReg, compReg),
		entityArchetype:  intmap.New[uint32, archetype.ID](64),
		destroyCallbacks: intmap.New[uint32, func(Entity)](8),
		parentOf:         intmap.New[uint32, Entity](8),
		childrenOf:       intmap.New[uint32, []Entity](8),
		logger:           Config.logOrNop(),
	}
}

// SetLogger overrides the World's logger (default: Config's, or a no-op).
func (w *World) SetLogger(l xlog.Logger) { w.logger = l }

// Logger returns the World's current logger.
func (w *World) Logger() xlog.Logger { return w.logger }

// archetypeCreatedHook forwards archetype creation to Config's global
// OnArchetypeCreated hook, independent of any particular World's query
// engine subscription.
type archetypeCreatedHook struct{}

func (archetypeCreatedHook) OnArchetypeCreated(a *archetype.Archetype) {
	if Config.events.OnArchetypeCreated != nil {
		Config.events.OnArchetypeCreated(a.Signature())
	}
}

func deadEntityErr(e Entity) error {
	return ecserr.DeadEntityf("entity %d (slot %d gen %d) is not alive", e, e.Slot(), e.Generation())
}

func (w *World) archetypeOf(e Entity) archetype.ID {
	id, ok := w.entityArchetype.Get(e.Slot())
	if !ok {
		return w.archetypes.EmptyArchetypeID()
	}
	return id
}

// RegisterComponent assigns the next component ID to a schema with the
// given named, typed fields (teacher-idiom-named RegisterNamed under the
// hood, so re-registering the same name returns the existing ID).
func (w *World) RegisterComponent(name string, fields ...FieldSpec) ComponentID {
	schemaFields := make([]component.Field, len(fields))
	for i, f := range fields {
		schemaFields[i] = component.Field{Name: f.Name, Type: f.Type}
	}
	return w.components.RegisterNamed(name, component.Schema{Fields: schemaFields})
}

// RegisterTag registers a zero-field marker component.
func (w *World) RegisterTag(name string) ComponentID {
	return w.components.RegisterNamed(name, component.Schema{})
}

// CreateEntity allocates a new entity and places it in the empty archetype.
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.allocator.Create()
	if err != nil {
		return 0, err
	}
	emptyID := w.archetypes.EmptyArchetypeID()
	w.archetypes.Archetype(emptyID).AddEntity(e, e.Slot())
	w.entityArchetype.Put(e.Slot(), emptyID)
	return e, nil
}

// IsAlive reports whether e is a currently live entity.
func (w *World) IsAlive(e Entity) bool { return w.allocator.IsAlive(e) }

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int { return w.allocator.Count() }

// ArchetypeCount returns the number of archetypes created so far.
func (w *World) ArchetypeCount() int { return w.archetypes.Count() }

// HasComponent reports whether e carries component c.
func (w *World) HasComponent(e Entity, c ComponentID) (bool, error) {
	if !w.allocator.IsAlive(e) {
		return false, deadEntityErr(e)
	}
	return w.archetypes.Archetype(w.archetypeOf(e)).HasComponent(c), nil
}

// GetField reads one named field of one component on e.
func (w *World) GetField(e Entity, c ComponentID, fieldName string) (any, error) {
	if !w.allocator.IsAlive(e) {
		return nil, deadEntityErr(e)
	}
	arch := w.archetypes.Archetype(w.archetypeOf(e))
	schema, err := w.components.Schema(c)
	if err != nil {
		return nil, err
	}
	fi := schema.FieldIndex(fieldName)
	if fi < 0 {
		return nil, ecserr.UnknownComponentf("component %q has no field %q", schema.Name, fieldName)
	}
	col, err := arch.GetColumn(c, fi)
	if err != nil {
		return nil, err
	}
	return component.GetAny(col, arch.RowOf(e.Slot())), nil
}

// SetField writes one named field of one component on e.
func (w *World) SetField(e Entity, c ComponentID, fieldName string, value any) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	arch := w.archetypes.Archetype(w.archetypeOf(e))
	schema, err := w.components.Schema(c)
	if err != nil {
		return err
	}
	fi := schema.FieldIndex(fieldName)
	if fi < 0 {
		return ecserr.UnknownComponentf("component %q has no field %q", schema.Name, fieldName)
	}
	col, err := arch.GetColumn(c, fi)
	if err != nil {
		return err
	}
	component.SetAny(col, arch.RowOf(e.Slot()), value)
	return nil
}

func (w *World) writeFields(arch *archetype.Archetype, row int, c ComponentID, values Values) error {
	if len(values) == 0 {
		return nil
	}
	schema, err := w.components.Schema(c)
	if err != nil {
		return err
	}
	for name, v := range values {
		fi := schema.FieldIndex(name)
		if fi < 0 {
			return ecserr.UnknownComponentf("component %q has no field %q", schema.Name, name)
		}
		col, err := arch.GetColumn(c, fi)
		if err != nil {
			return err
		}
		component.SetAny(col, row, v)
	}
	return nil
}

// copySharedColumns copies every field of every component present in both
// src and dst from srcRow into dstRow, used whenever an entity moves
// between archetypes that share a common sub-signature.
func (w *World) copySharedColumns(src *archetype.Archetype, srcRow int, dst *archetype.Archetype, dstRow int) {
	for _, c := range src.Signature() {
		if !dst.HasComponent(c) {
			continue
		}
		src.ForEachColumn(c, func(field int, srcCol component.Column) {
			dstCol, _ := dst.GetColumn(c, field)
			component.CopyValue(dstCol, dstRow, srcCol, srcRow)
		})
	}
}

// moveEntity relocates e from its current archetype to targetID, copying
// every shared column and returning the row it now occupies there.
func (w *World) moveEntity(e Entity, src *archetype.Archetype, targetID archetype.ID) (*archetype.Archetype, int, error) {
	slot := e.Slot()
	target := w.archetypes.Archetype(targetID)
	srcRow := src.RowOf(slot)
	dstRow := target.AddEntity(e, slot)
	w.copySharedColumns(src, srcRow, target, dstRow)
	if _, _, err := src.RemoveEntity(slot); err != nil {
		return nil, 0, err
	}
	w.entityArchetype.Put(slot, targetID)
	return target, dstRow, nil
}

// AddComponent adds component c to e, initializing its fields from
// values. If e already carries c, its fields are overwritten in place
// instead (§4.6 step 2) — no archetype move happens.
func (w *World) AddComponent(e Entity, c ComponentID, values Values) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	archID := w.archetypeOf(e)
	arch := w.archetypes.Archetype(archID)
	if arch.HasComponent(c) {
		return w.writeFields(arch, arch.RowOf(e.Slot()), c, values)
	}

	targetID, err := w.archetypes.ResolveAdd(archID, c)
	if err != nil {
		return err
	}
	target, row, err := w.moveEntity(e, arch, targetID)
	if err != nil {
		return err
	}
	return w.writeFields(target, row, c, values)
}

// AddComponents adds every component in list to e in a single archetype
// move, initializing each one's fields from its Values. A component
// already present on e has its fields overwritten in place and is not
// part of the move.
func (w *World) AddComponents(e Entity, list []ComponentValues) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	archID := w.archetypeOf(e)
	arch := w.archetypes.Archetype(archID)

	var newOnes []ComponentValues
	for _, cv := range list {
		if arch.HasComponent(cv.Component) {
			if err := w.writeFields(arch, arch.RowOf(e.Slot()), cv.Component, cv.Values); err != nil {
				return err
			}
			continue
		}
		newOnes = append(newOnes, cv)
	}
	if len(newOnes) == 0 {
		return nil
	}

	targetID := archID
	var err error
	for _, cv := range newOnes {
		targetID, err = w.archetypes.ResolveAdd(targetID, cv.Component)
		if err != nil {
			return err
		}
	}
	target, row, err := w.moveEntity(e, arch, targetID)
	if err != nil {
		return err
	}
	for _, cv := range newOnes {
		if err := w.writeFields(target, row, cv.Component, cv.Values); err != nil {
			return err
		}
	}
	return nil
}

// RemoveComponent removes component c from e. A no-op if e does not
// carry c.
func (w *World) RemoveComponent(e Entity, c ComponentID) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	archID := w.archetypeOf(e)
	arch := w.archetypes.Archetype(archID)
	if !arch.HasComponent(c) {
		return nil
	}
	targetID, err := w.archetypes.ResolveRemove(archID, c)
	if err != nil {
		return err
	}
	_, _, err = w.moveEntity(e, arch, targetID)
	return err
}

// RemoveComponents removes every component in ids from e in a single
// archetype move. Components e does not carry are ignored.
func (w *World) RemoveComponents(e Entity, ids ...ComponentID) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	archID := w.archetypeOf(e)
	arch := w.archetypes.Archetype(archID)

	targetID := archID
	changed := false
	for _, c := range ids {
		if !w.archetypes.Archetype(targetID).HasComponent(c) {
			continue
		}
		var err error
		targetID, err = w.archetypes.ResolveRemove(targetID, c)
		if err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return nil
	}
	_, _, err := w.moveEntity(e, arch, targetID)
	return err
}

// DestroyEntity removes e from its archetype and invalidates its ID.
// Runs e's destroy callback (if any) and reparents its children (if any)
// to e's own parent, before the slot is recycled.
func (w *World) DestroyEntity(e Entity) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	slot := e.Slot()
	arch := w.archetypes.Archetype(w.archetypeOf(e))

	if cb, ok := w.destroyCallbacks.Get(slot); ok {
		cb(e)
		w.destroyCallbacks.Del(slot)
	}
	w.reparentChildren(e)
	if parent, ok := w.parentOf.Get(slot); ok {
		w.removeChild(parent, e)
		w.parentOf.Del(slot)
	}

	if _, _, err := arch.RemoveEntity(slot); err != nil {
		return err
	}
	if err := w.allocator.Destroy(e); err != nil {
		return err
	}
	w.entityArchetype.Del(slot)
	return nil
}

// SetDestroyCallback installs fn to run exactly once, synchronously,
// the moment e is destroyed (whether immediately or via a deferred
// destroy flush). Replaces any previously installed callback.
func (w *World) SetDestroyCallback(e Entity, fn func(Entity)) error {
	if !w.allocator.IsAlive(e) {
		return deadEntityErr(e)
	}
	w.destroyCallbacks.Put(e.Slot(), fn)
	return nil
}

// SetParent records parent as child's parent. Destroying parent
// reparents child to parent's own parent (or orphans it, if parent had
// none); destroying child clears the link without affecting parent.
func (w *World) SetParent(child, parent Entity) error {
	if !w.allocator.IsAlive(child) {
		return deadEntityErr(child)
	}
	if !w.allocator.IsAlive(parent) {
		return deadEntityErr(parent)
	}
	w.parentOf.Put(child.Slot(), parent)
	kids, _ := w.childrenOf.Get(parent.Slot())
	w.childrenOf.Put(parent.Slot(), append(kids, child))
	return nil
}

// Parent returns e's parent entity, if one is set.
func (w *World) Parent(e Entity) (Entity, bool) {
	return w.parentOf.Get(e.Slot())
}

// Children returns a copy of e's recorded children.
func (w *World) Children(e Entity) []Entity {
	kids, _ := w.childrenOf.Get(e.Slot())
	out := make([]Entity, len(kids))
	copy(out, kids)
	return out
}

func (w *World) reparentChildren(e Entity) {
	kids, ok := w.childrenOf.Get(e.Slot())
	if !ok {
		return
	}
	newParent, hasNewParent := w.parentOf.Get(e.Slot())
	for _, kid := range kids {
		if hasNewParent {
			w.parentOf.Put(kid.Slot(), newParent)
			existing, _ := w.childrenOf.Get(newParent.Slot())
			w.childrenOf.Put(newParent.Slot(), append(existing, kid))
		} else {
			w.parentOf.Del(kid.Slot())
		}
	}
	w.childrenOf.Del(e.Slot())
}

func (w *World) removeChild(parent, child Entity) {
	kids, ok := w.childrenOf.Get(parent.Slot())
	if !ok {
		return
	}
	for i, kid := range kids {
		if kid == child {
			kids = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	w.childrenOf.Put(parent.Slot(), kids)
}

// Query returns the live, cached Query matching every entity that carries
// all of required.
func (w *World) Query(required ...ComponentID) *Query {
	return w.queries.query(required, nil, nil)
}

// QueryEx returns the live, cached Query for the full (include, exclude,
// any_of) triple.
func (w *World) QueryEx(include, exclude, anyOf []ComponentID) *Query {
	return w.queries.query(include, exclude, anyOf)
}

// BatchAddComponent moves every entity of archetype src to the archetype
// reached by adding c, writing values into every moved row's new c
// columns. A no-op if src's archetype already carries c.
func (w *World) BatchAddComponent(src ArchetypeID, c ComponentID, values Values) error {
	targetID, err := w.archetypes.ResolveAdd(src, c)
	if err != nil {
		return err
	}
	if targetID == src {
		return nil
	}
	return w.bulkMove(src, targetID, func(target *archetype.Archetype, row int) error {
		return w.writeFields(target, row, c, values)
	})
}

// BatchRemoveComponent moves every entity of archetype src to the
// archetype reached by removing c. A no-op if src's archetype does not
// carry c.
func (w *World) BatchRemoveComponent(src ArchetypeID, c ComponentID) error {
	targetID, err := w.archetypes.ResolveRemove(src, c)
	if err != nil {
		return err
	}
	if targetID == src {
		return nil
	}
	return w.bulkMove(src, targetID, nil)
}

// bulkMove relocates every row of srcID's archetype into targetID's in a
// single pass, invoking afterMove (if non-nil) once per moved row with
// its new archetype and row, then clears the now-empty source archetype
// in one step rather than swap-and-popping it down to zero.
func (w *World) bulkMove(srcID, targetID archetype.ID, afterMove func(target *archetype.Archetype, row int) error) error {
	src := w.archetypes.Archetype(srcID)
	target := w.archetypes.Archetype(targetID)
	n := src.Count()
	for row := 0; row < n; row++ {
		e := src.EntityAt(row)
		slot := e.Slot()
		newRow := target.AddEntity(e, slot)
		w.copySharedColumns(src, row, target, newRow)
		if afterMove != nil {
			if err := afterMove(target, newRow); err != nil {
				return err
			}
		}
		w.entityArchetype.Put(slot, targetID)
	}
	src.Clear()
	return nil
}

// Stats reports current population counts, for diagnostics and tests.
type Stats struct {
	Entities         int
	Archetypes       int
	Components       int
	PendingAdds      int
	PendingRemoves   int
	PendingDestroys  int
}

// Stats returns a snapshot of current World population counts.
func (w *World) Stats() Stats {
	return Stats{
		Entities:        w.allocator.Count(),
		Archetypes:      w.archetypes.Count(),
		Components:      w.components.Count(),
		PendingAdds:     len(w.deferredAdds),
		PendingRemoves:  len(w.deferredRemoves),
		PendingDestroys: len(w.deferredDestroys),
	}
}
