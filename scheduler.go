package ecscore

import (
	"container/heap"

	"github.com/thebitdrifter/ecscore/internal/ecserr"
)

// Phase is one of the scheduler's fixed lifecycle buckets, per §4.8.
type Phase int

const (
	PhasePreStartup Phase = iota
	PhaseStartup
	PhasePostStartup
	PhasePreUpdate
	PhaseUpdate
	PhasePostUpdate
	// PhaseFixedUpdate is driven by a separate accumulator in the calling
	// façade (outside this core's concern) rather than by RunUpdate.
	PhaseFixedUpdate
)

var startupPhases = [...]Phase{PhasePreStartup, PhaseStartup, PhasePostStartup}
var updatePhases = [...]Phase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate}

// SystemID is an opaque handle identifying a registered system. Systems
// are tracked by this handle rather than by function identity, since Go
// function values are not comparable.
type SystemID uint32

// System is a user-supplied unit of per-phase work.
type System func(ctx *SystemContext, dt float64)

// Ordering declares a system's position relative to other systems already
// minted via Scheduler.Register, within the phase it is added to.
type Ordering struct {
	Before []SystemID
	After  []SystemID
}

// Entry pairs a registered system with its ordering constraints for one
// AddSystems call.
type Entry struct {
	ID       SystemID
	Ordering Ordering
}

type phaseEntry struct {
	id     SystemID
	before []SystemID
	after  []SystemID
}

type phaseState struct {
	entries        []phaseEntry
	insertionOrder map[SystemID]int
	sorted         []SystemID
	dirty          bool
}

func newPhaseState() *phaseState {
	return &phaseState{insertionOrder: make(map[SystemID]int)}
}

// Scheduler runs registered systems in six fixed phases (plus an optional
// seventh, caller-driven fixed_update phase), topologically sorting each
// phase's systems by their before/after constraints, per §4.8.
type Scheduler struct {
	fns      map[SystemID]System
	nextID   SystemID
	phaseOf  map[SystemID]Phase
	phases   map[Phase]*phaseState
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		fns:     make(map[SystemID]System),
		phaseOf: make(map[SystemID]Phase),
		phases:  make(map[Phase]*phaseState),
	}
}

// Register mints a new SystemID bound to fn, independent of any phase
// assignment. The returned ID can be referenced by other entries'
// Ordering before AddSystems is ever called for it, which is what lets
// two systems declare a mutual after/after dependency on each other.
func (s *Scheduler) Register(fn System) SystemID {
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return id
}

// AddSystems adds every entry to phase, in call order. Fails with
// SYSTEM_NOT_FOUND if an entry's ID was never Registered, or
// DUPLICATE_SYSTEM if it is already assigned to a phase.
func (s *Scheduler) AddSystems(phase Phase, entries ...Entry) error {
	ps := s.phases[phase]
	if ps == nil {
		ps = newPhaseState()
		s.phases[phase] = ps
	}
	for _, e := range entries {
		if _, ok := s.fns[e.ID]; !ok {
			return ecserr.SystemNotFoundf("system %d was never registered", e.ID)
		}
		if _, ok := s.phaseOf[e.ID]; ok {
			return ecserr.DuplicateSystemf("system %d is already assigned to a phase", e.ID)
		}
		ps.insertionOrder[e.ID] = len(ps.entries)
		ps.entries = append(ps.entries, phaseEntry{id: e.ID, before: e.Ordering.Before, after: e.Ordering.After})
		s.phaseOf[e.ID] = phase
	}
	ps.dirty = true
	return nil
}

// RemoveSystem drops id from whichever phase it is assigned to and
// forgets its function. Fails with SYSTEM_NOT_FOUND if id is not assigned
// to a phase, including an id that was Registered but never added via
// AddSystems (HasSystem still reports such an id).
func (s *Scheduler) RemoveSystem(id SystemID) error {
	phase, ok := s.phaseOf[id]
	if !ok {
		return ecserr.SystemNotFoundf("system %d is not registered", id)
	}
	ps := s.phases[phase]
	for i, e := range ps.entries {
		if e.id == id {
			ps.entries = append(ps.entries[:i], ps.entries[i+1:]...)
			break
		}
	}
	delete(ps.insertionOrder, id)
	ps.dirty = true
	delete(s.phaseOf, id)
	delete(s.fns, id)
	return nil
}

// HasSystem reports whether id refers to a currently registered system.
func (s *Scheduler) HasSystem(id SystemID) bool {
	_, ok := s.fns[id]
	return ok
}

// GetAllSystems returns every registered system's ID, in ascending order
// of ID (registration order).
func (s *Scheduler) GetAllSystems() []SystemID {
	ids := make([]SystemID, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sortSystemIDs(ids)
	return ids
}

// Clear removes every system and phase assignment, resetting the
// scheduler to its construction state (except the ID counter, so IDs
// already handed out are never reissued).
func (s *Scheduler) Clear() {
	s.fns = make(map[SystemID]System)
	s.phaseOf = make(map[SystemID]Phase)
	s.phases = make(map[Phase]*phaseState)
}

// RunStartup runs pre_startup, startup, and post_startup in order, once,
// flushing structural mutations and destroys between each.
func (s *Scheduler) RunStartup(ctx *SystemContext) error {
	for _, phase := range startupPhases {
		if err := s.runPhase(phase, ctx, 0); err != nil {
			return err
		}
	}
	return nil
}

// RunUpdate runs pre_update, update, and post_update in order, flushing
// between each.
func (s *Scheduler) RunUpdate(ctx *SystemContext, dt float64) error {
	for _, phase := range updatePhases {
		if err := s.runPhase(phase, ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

// RunFixedUpdate runs the optional fixed_update phase once, for a façade
// driving it from its own accumulator rather than once per RunUpdate.
func (s *Scheduler) RunFixedUpdate(ctx *SystemContext, dt float64) error {
	return s.runPhase(PhaseFixedUpdate, ctx, dt)
}

func (s *Scheduler) runPhase(phase Phase, ctx *SystemContext, dt float64) error {
	ps := s.phases[phase]
	if ps == nil || len(ps.entries) == 0 {
		return nil
	}
	order, err := s.sortPhase(ps)
	if err != nil {
		return err
	}
	for _, id := range order {
		s.fns[id](ctx, dt)
	}
	_, err = ctx.world.Flush()
	return err
}

// sortPhase returns ps's systems in topological order, per §4.8: a
// container/heap min-heap over zero-in-degree nodes, keyed by insertion
// order, so ties resolve to registration order exactly as the spec
// requires. Cached until the phase's membership next changes.
func (s *Scheduler) sortPhase(ps *phaseState) ([]SystemID, error) {
	if !ps.dirty && ps.sorted != nil {
		return ps.sorted, nil
	}

	n := len(ps.entries)
	inDegree := make(map[SystemID]int, n)
	adjacency := make(map[SystemID][]SystemID, n)
	present := make(map[SystemID]bool, n)
	for _, e := range ps.entries {
		inDegree[e.id] = 0
		present[e.id] = true
	}

	addEdge := func(from, to SystemID) {
		// An ordering reference to a system outside this phase is not a
		// constraint this sort can enforce; it is silently ignored rather
		// than erroring, since the referenced system runs in a different
		// phase boundary entirely.
		if !present[from] || !present[to] {
			return
		}
		adjacency[from] = append(adjacency[from], to)
		inDegree[to]++
	}
	for _, e := range ps.entries {
		for _, b := range e.before {
			addEdge(e.id, b)
		}
		for _, a := range e.after {
			addEdge(a, e.id)
		}
	}

	h := &systemHeap{}
	for _, e := range ps.entries {
		if inDegree[e.id] == 0 {
			heap.Push(h, heapItem{id: e.id, order: ps.insertionOrder[e.id]})
		}
	}

	out := make([]SystemID, 0, n)
	for h.Len() > 0 {
		item := heap.Pop(h).(heapItem)
		out = append(out, item.id)
		for _, next := range adjacency[item.id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(h, heapItem{id: next, order: ps.insertionOrder[next]})
			}
		}
	}

	if len(out) != n {
		return nil, ecserr.CyclicDependencyf("phase has a cyclic dependency among %d systems", n)
	}
	ps.sorted = out
	ps.dirty = false
	return out, nil
}

type heapItem struct {
	id    SystemID
	order int
}

// systemHeap implements container/heap.Interface, ordered by insertion
// order so the topological sort's tiebreak is deterministic.
type systemHeap []heapItem

func (h systemHeap) Len() int            { return len(h) }
func (h systemHeap) Less(i, j int) bool  { return h[i].order < h[j].order }
func (h systemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *systemHeap) Push(x any)         { *h = append(*h, x.(heapItem)) }
func (h *systemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func sortSystemIDs(ids []SystemID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// SystemContext is the restricted view of a World a running system
// receives: entity creation and field access are immediate (neither can
// invalidate an ongoing traversal), structural mutation and destruction
// are deferred until the phase's post-run flush.
type SystemContext struct {
	world *World
}

// NewSystemContext wraps w for system execution.
func NewSystemContext(w *World) *SystemContext {
	return &SystemContext{world: w}
}

// CreateEntity creates a new entity immediately.
func (ctx *SystemContext) CreateEntity() (Entity, error) {
	return ctx.world.CreateEntity()
}

// AddComponent queues c to be added to e at the phase's next flush.
func (ctx *SystemContext) AddComponent(e Entity, c ComponentID, values Values) {
	ctx.world.AddComponentDeferred(e, c, values)
}

// RemoveComponent queues c to be removed from e at the phase's next flush.
func (ctx *SystemContext) RemoveComponent(e Entity, c ComponentID) {
	ctx.world.RemoveComponentDeferred(e, c)
}

// DestroyEntity queues e for destruction at the phase's next flush.
func (ctx *SystemContext) DestroyEntity(e Entity) {
	ctx.world.DestroyEntityDeferred(e)
}

// GetField reads a field immediately.
func (ctx *SystemContext) GetField(e Entity, c ComponentID, field string) (any, error) {
	return ctx.world.GetField(e, c, field)
}

// SetField writes a field immediately.
func (ctx *SystemContext) SetField(e Entity, c ComponentID, field string, value any) error {
	return ctx.world.SetField(e, c, field, value)
}

// HasComponent reports component presence immediately.
func (ctx *SystemContext) HasComponent(e Entity, c ComponentID) (bool, error) {
	return ctx.world.HasComponent(e, c)
}

// IsAlive reports entity liveness immediately.
func (ctx *SystemContext) IsAlive(e Entity) bool {
	return ctx.world.IsAlive(e)
}

// Query returns the world's live, cached query for required.
func (ctx *SystemContext) Query(required ...ComponentID) *Query {
	return ctx.world.Query(required...)
}

// Flush runs an out-of-band manual flush inside a running system.
// Permitted, but invalidates any column reference the caller is holding.
func (ctx *SystemContext) Flush() (FlushStats, error) {
	return ctx.world.Flush()
}
