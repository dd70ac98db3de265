// Package entity implements the generational entity allocator: §4.2 of the
// spec. An Entity packs a slot index and a generation counter into one
// uint32 so liveness checks and equality are a single integer comparison,
// grounded on the teacher's table.EntryID (an opaque packed handle) and on
// delaneyj-arche's packed ecs.Entity (ID + generation in one value).
package entity

import "github.com/thebitdrifter/ecscore/internal/ecserr"

const (
	slotBits = 20
	genBits  = 12

	// MaxSlots is the largest slot index the 20-bit field can address.
	MaxSlots = 1 << slotBits
	// MaxGeneration is the modulus the 12-bit generation counter wraps at.
	MaxGeneration = 1 << genBits

	slotMask = MaxSlots - 1
)

// Entity is a packed (slot, generation) identifier. No value is reserved:
// the zero value (slot 0, generation 0) is the first entity an Allocator
// creates.
type Entity uint32

// Pack builds an Entity from a slot and generation. Both must already fit
// their bit fields; callers within this package are responsible for that.
func Pack(slot, generation uint32) Entity {
	return Entity((generation << slotBits) | (slot & slotMask))
}

// Slot returns the low 20 bits: the index into per-entity storage.
func (e Entity) Slot() uint32 {
	return uint32(e) & slotMask
}

// Generation returns the high 12 bits.
func (e Entity) Generation() uint32 {
	return uint32(e) >> slotBits
}

// Allocator hands out packed generational entity IDs and recycles slots on
// destroy, per §4.2.
type Allocator struct {
	generations []uint16 // 12 bits used per slot
	highWater   int
	freeList    []uint32 // LIFO stack of free slots
	liveCount   int
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) growTo(n int) {
	if n <= len(a.generations) {
		return
	}
	newCap := max(n, 2*len(a.generations))
	if newCap == 0 {
		newCap = 16
	}
	grown := make([]uint16, newCap)
	copy(grown, a.generations)
	a.generations = grown
}

// Create allocates a new entity, preferring a recycled slot over growing
// the high-water mark.
func (a *Allocator) Create() (Entity, error) {
	if len(a.freeList) > 0 {
		slot := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		a.liveCount++
		return Pack(slot, uint32(a.generations[slot])), nil
	}

	if a.highWater >= MaxSlots {
		return 0, ecserr.CapacityOverflowf("entity slot space exhausted at %d slots", MaxSlots)
	}
	slot := a.highWater
	a.growTo(slot + 1)
	a.generations[slot] = 0
	a.highWater++
	a.liveCount++
	return Pack(uint32(slot), 0), nil
}

// Destroy invalidates e, bumping its slot's generation and returning the
// slot to the free list. Fails with ecserr.DoubleDestroy if e is not alive.
func (a *Allocator) Destroy(e Entity) error {
	if !a.IsAlive(e) {
		return ecserr.DoubleDestroyf("entity %d is not alive", e)
	}
	slot := e.Slot()
	next := (uint32(a.generations[slot]) + 1) % MaxGeneration
	a.generations[slot] = uint16(next)
	a.freeList = append(a.freeList, slot)
	a.liveCount--
	return nil
}

// IsAlive reports whether e's slot is in range and its generation current.
func (a *Allocator) IsAlive(e Entity) bool {
	slot := e.Slot()
	if int(slot) >= len(a.generations) || int(slot) >= a.highWater {
		return false
	}
	return uint32(a.generations[slot]) == e.Generation()
}

// Count returns the number of currently live entities.
func (a *Allocator) Count() int {
	return a.liveCount
}

// Capacity returns the high-water slot count (allocated slots, live or
// recycled-but-unclaimed).
func (a *Allocator) Capacity() int {
	return a.highWater
}
