// Package archetype implements the archetype table (§4.4) and archetype
// graph (§4.5): one bucket per exact component set, dense row-aligned
// typed columns, sparse-set entity membership, swap-and-pop removal, and
// the dedup/transition-edge/matching machinery that groups archetypes
// into a queryable graph.
//
// Grounded on the teacher's archetype.go (ID + owning table pairing) and
// storage.go (mask-keyed dedup, sorted-signature bit marking), generalized
// from the teacher's single opaque table.Table per archetype into this
// package's own row-indexed component.Column slices, and on
// delaneyj-arche's archetypeNode (per-component add/remove transition
// slots) for the edge cache shape.
package archetype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thebitdrifter/ecscore/internal/bitset"
	"github.com/thebitdrifter/ecscore/internal/component"
	"github.com/thebitdrifter/ecscore/internal/ecserr"
	"github.com/thebitdrifter/ecscore/internal/entity"
)

// ID is a dense, non-negative archetype identifier.
type ID uint32

const (
	initialRowCapacity    = 16
	initialSparseCapacity = 64
)

// Edge caches the archetype reached by adding or removing one component
// from this archetype. Populated lazily by Registry.ResolveAdd/ResolveRemove
// and always bidirectional: if A.edges[c].Add == B then B.edges[c].Remove == A.
type Edge struct {
	Add      ID
	HasAdd   bool
	Remove   ID
	HasRemove bool
}

// Archetype is one component-set bucket: every entity sharing the same
// sorted signature lives in exactly one archetype, at some dense row.
type Archetype struct {
	id         ID
	signature  []component.ID // sorted, no duplicates
	mask       bitset.Bitset  // same signature, as a bitset for fast matching
	entityIDs  []entity.Entity
	indexToRow []int32 // sparse: entity slot -> row, -1 if absent
	count      int

	// columns[i] holds one Column per field of signature's i-th component,
	// in schema field order.
	columns [][]component.Column

	edges map[component.ID]*Edge
}

func newArchetype(id ID, signature []component.ID, registry *component.Registry) (*Archetype, error) {
	a := &Archetype{
		id:         id,
		signature:  signature,
		entityIDs:  make([]entity.Entity, 0, initialRowCapacity),
		indexToRow: make([]int32, initialSparseCapacity),
		columns:    make([][]component.Column, len(signature)),
		edges:      make(map[component.ID]*Edge),
	}
	for i := range a.indexToRow {
		a.indexToRow[i] = -1
	}
	for i, c := range signature {
		a.mask.Set(int(c))
		cols, err := registry.NewColumns(c, initialRowCapacity)
		if err != nil {
			return nil, err
		}
		a.columns[i] = cols
	}
	return a, nil
}

// ID returns the archetype's dense identifier.
func (a *Archetype) ID() ID { return a.id }

// Signature returns the sorted, deduplicated component-ID set.
func (a *Archetype) Signature() []component.ID { return a.signature }

// Mask returns the bitset view of the signature, used by the registry's
// matching logic and by queries.
func (a *Archetype) Mask() bitset.Bitset { return a.mask }

// Count returns the number of live rows (0..Count()-1 are valid).
func (a *Archetype) Count() int { return a.count }

// Capacity returns the current dense row capacity.
func (a *Archetype) Capacity() int { return cap(a.entityIDs) }

// HasComponent reports whether c is in the signature, via binary search.
func (a *Archetype) HasComponent(c component.ID) bool {
	return a.componentIndex(c) >= 0
}

// Matches reports whether every component in required is present.
func (a *Archetype) Matches(required []component.ID) bool {
	for _, c := range required {
		if !a.HasComponent(c) {
			return false
		}
	}
	return true
}

func (a *Archetype) componentIndex(c component.ID) int {
	i := sort.Search(len(a.signature), func(i int) bool { return a.signature[i] >= c })
	if i < len(a.signature) && a.signature[i] == c {
		return i
	}
	return -1
}

// EntityAt returns the entity stored at row.
func (a *Archetype) EntityAt(row int) entity.Entity {
	return a.entityIDs[row]
}

// RowOf returns the row an entity slot occupies, or -1 if absent.
func (a *Archetype) RowOf(slot uint32) int {
	if int(slot) >= len(a.indexToRow) {
		return -1
	}
	return int(a.indexToRow[slot])
}

// GetColumn returns the column for the field-th field of component c.
func (a *Archetype) GetColumn(c component.ID, field int) (component.Column, error) {
	ci := a.componentIndex(c)
	if ci < 0 {
		return nil, ecserr.UnknownComponentf("archetype %d does not contain component %d", a.id, c)
	}
	cols := a.columns[ci]
	if field < 0 || field >= len(cols) {
		return nil, ecserr.UnknownComponentf("component %d has no field %d", c, field)
	}
	return cols[field], nil
}

// ForEachColumn invokes fn once per field column of component c, in schema
// field order. The World uses it to copy shared columns when an entity
// moves between archetypes.
func (a *Archetype) ForEachColumn(c component.ID, fn func(field int, col component.Column)) {
	ci := a.componentIndex(c)
	if ci < 0 {
		return
	}
	for field, col := range a.columns[ci] {
		fn(field, col)
	}
}

func (a *Archetype) growSparse(slot int) {
	if slot < len(a.indexToRow) {
		return
	}
	newCap := len(a.indexToRow) * 2
	if newCap <= slot {
		newCap = slot + 1
	}
	grown := make([]int32, newCap)
	for i := range grown {
		grown[i] = -1
	}
	copy(grown, a.indexToRow)
	a.indexToRow = grown
}

func (a *Archetype) growDense() {
	if a.count < cap(a.entityIDs) {
		return
	}
	newCap := cap(a.entityIDs) * 2
	if newCap == 0 {
		newCap = initialRowCapacity
	}
	for _, cols := range a.columns {
		for _, col := range cols {
			col.Grow(newCap)
		}
	}
}

// AddEntity appends e (whose allocator slot is slot) as a new row and
// returns that row index.
func (a *Archetype) AddEntity(e entity.Entity, slot uint32) int {
	a.growDense()
	a.growSparse(int(slot))

	row := a.count
	a.entityIDs = append(a.entityIDs, e)
	a.indexToRow[slot] = int32(row)
	a.count++
	return row
}

// RemoveEntity removes the row occupied by slot via swap-and-pop: the last
// row is copied into the removed row's position across entityIDs and every
// column of every component, atomically (no partial state is ever
// observed by a caller between the copy and the bookkeeping update).
// It returns the slot of the entity that was moved into the vacated row,
// and false if the removed row was already the last row.
func (a *Archetype) RemoveEntity(slot uint32) (movedSlot uint32, moved bool, err error) {
	row := a.RowOf(slot)
	if row < 0 {
		return 0, false, ecserr.NotInArchetypef("slot %d is not present in archetype %d", slot, a.id)
	}
	last := a.count - 1
	a.indexToRow[slot] = -1

	if row != last {
		movedEntity := a.entityIDs[last]
		a.entityIDs[row] = movedEntity
		for _, cols := range a.columns {
			for _, col := range cols {
				col.CopyRow(row, last)
			}
		}
		a.indexToRow[movedEntity.Slot()] = int32(row)
		movedSlot, moved = movedEntity.Slot(), true
	}
	a.count--
	return movedSlot, moved, nil
}

// Clear empties the archetype in one step: every row is dropped and every
// occupied sparse slot reset to absent, without a per-entity swap-and-pop
// pass. Used by batch_add_component/batch_remove_component (§4.6), which
// move an entire archetype's population to a target archetype and then
// discard the now-empty source in bulk.
func (a *Archetype) Clear() {
	for row := 0; row < a.count; row++ {
		a.indexToRow[a.entityIDs[row].Slot()] = -1
	}
	a.entityIDs = a.entityIDs[:0]
	a.count = 0
}

// Edge returns the cached transition edge for component c, if any.
func (a *Archetype) Edge(c component.ID) (*Edge, bool) {
	e, ok := a.edges[c]
	return e, ok
}

func (a *Archetype) edgeFor(c component.ID) *Edge {
	e, ok := a.edges[c]
	if !ok {
		e = &Edge{}
		a.edges[c] = e
	}
	return e
}

func (a *Archetype) setAddEdge(c component.ID, to ID) {
	e := a.edgeFor(c)
	e.Add, e.HasAdd = to, true
}

func (a *Archetype) setRemoveEdge(c component.ID, to ID) {
	e := a.edgeFor(c)
	e.Remove, e.HasRemove = to, true
}

// String renders the sorted component-ID signature using registry schema
// names, for debug logging and test failure messages (grounded on the
// teacher's entity.go ComponentsAsString).
func (a *Archetype) String(registry *component.Registry) string {
	if len(a.signature) == 0 {
		return "[]"
	}
	names := make([]string, 0, len(a.signature))
	for _, c := range a.signature {
		schema, err := registry.Schema(c)
		if err != nil || schema.Name == "" {
			names = append(names, fmt.Sprintf("#%d", c))
			continue
		}
		names = append(names, schema.Name)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
