package ecscore

import (
	"sort"

	"github.com/thebitdrifter/ecscore/internal/archetype"
	"github.com/thebitdrifter/ecscore/internal/bitset"
	"github.com/thebitdrifter/ecscore/internal/component"
)

// QueryEngine caches one Query object per distinct (include, exclude,
// any_of) triple and keeps every cached Query's matched-archetype list
// growing as new archetypes are created, per §4.7. It implements
// archetype.Subscriber so ArchetypeRegistry can notify it without
// importing this package.
type QueryEngine struct {
	registry *archetype.Registry
	compReg  *component.Registry
	buckets  map[uint32][]*Query
	all      []*Query
}

func newQueryEngine(reg *archetype.Registry, compReg *component.Registry) *QueryEngine {
	qe := &QueryEngine{
		registry: reg,
		compReg:  compReg,
		buckets:  make(map[uint32][]*Query),
	}
	reg.Subscribe(qe)
	return qe
}

// OnArchetypeCreated implements archetype.Subscriber: it walks every live
// query and appends the new archetype to each one it matches.
func (qe *QueryEngine) OnArchetypeCreated(a *archetype.Archetype) {
	for _, q := range qe.all {
		if q.matchesArchetype(a) {
			q.archetypes = append(q.archetypes, a.ID())
		}
	}
}

// query returns the cached Query for (include, exclude, anyOf), building
// and seeding one via Registry.GetMatching on a cache miss.
func (qe *QueryEngine) query(include, exclude, anyOf []component.ID) *Query {
	include = sortDedupeIDs(include)
	exclude = sortDedupeIDs(exclude)
	anyOf = sortDedupeIDs(anyOf)

	includeMask := idsToBitset(include)
	excludeMask := idsToBitset(exclude)
	anyMask := idsToBitset(anyOf)
	hasExclude := len(exclude) > 0
	hasAny := len(anyOf) > 0

	h := mixHash(includeMask.Hash(), excludeMask.Hash(), anyMask.Hash(), hasExclude, hasAny)
	for _, q := range qe.buckets[h] {
		if q.sameTriple(includeMask, excludeMask, anyMask, hasExclude, hasAny) {
			return q
		}
	}

	q := &Query{
		engine:      qe,
		include:     include,
		exclude:     exclude,
		anyOf:       anyOf,
		includeMask: includeMask,
		excludeMask: excludeMask,
		anyMask:     anyMask,
		hasExclude:  hasExclude,
		hasAny:      hasAny,
	}
	q.archetypes = qe.registry.GetMatching(include, exclude, anyOf)
	qe.buckets[h] = append(qe.buckets[h], q)
	qe.all = append(qe.all, q)
	return q
}

// Query is a cached, live-updating view over every archetype whose
// signature is a superset of its include set, disjoint from its exclude
// set, and (if non-empty) overlapping its any_of set. Two queries built
// from the same three component sets, regardless of argument order, are
// the exact same Query object.
type Query struct {
	engine *QueryEngine

	include, exclude, anyOf                []component.ID
	includeMask, excludeMask, anyMask       bitset.Bitset
	hasExclude, hasAny                      bool

	archetypes []ArchetypeID
}

func (q *Query) matchesArchetype(a *archetype.Archetype) bool {
	if !a.Mask().Contains(q.includeMask) {
		return false
	}
	if q.hasExclude && a.Mask().Overlaps(q.excludeMask) {
		return false
	}
	if q.hasAny && !a.Mask().Overlaps(q.anyMask) {
		return false
	}
	return true
}

func (q *Query) sameTriple(include, exclude, anyOf bitset.Bitset, hasExclude, hasAny bool) bool {
	if q.hasExclude != hasExclude || q.hasAny != hasAny {
		return false
	}
	if !q.includeMask.Equals(include) {
		return false
	}
	if hasExclude && !q.excludeMask.Equals(exclude) {
		return false
	}
	if hasAny && !q.anyMask.Equals(anyOf) {
		return false
	}
	return true
}

// And returns the query additionally requiring components, or the
// receiver unchanged if they are already all present in its include set.
func (q *Query) And(components ...ComponentID) *Query {
	merged := unionIDs(q.include, components)
	if sameIDs(merged, q.include) {
		return q
	}
	return q.engine.query(merged, q.exclude, q.anyOf)
}

// Not returns the query additionally excluding components.
func (q *Query) Not(components ...ComponentID) *Query {
	merged := unionIDs(q.exclude, components)
	if sameIDs(merged, q.exclude) {
		return q
	}
	return q.engine.query(q.include, merged, q.anyOf)
}

// Or returns the query additionally accepting components in its any_of set.
func (q *Query) Or(components ...ComponentID) *Query {
	merged := unionIDs(q.anyOf, components)
	if sameIDs(merged, q.anyOf) {
		return q
	}
	return q.engine.query(q.include, q.exclude, merged)
}

// Cursor returns a fresh row-at-a-time iterator over the query's current
// matched archetypes.
func (q *Query) Cursor() *Cursor {
	return newCursor(q)
}

// Len returns the total number of entities across every matched archetype.
func (q *Query) Len() int {
	total := 0
	for _, id := range q.archetypes {
		total += q.engine.registry.Archetype(id).Count()
	}
	return total
}

// Archetypes returns a copy of the query's currently matched archetype IDs.
func (q *Query) Archetypes() []ArchetypeID {
	out := make([]ArchetypeID, len(q.archetypes))
	copy(out, q.archetypes)
	return out
}

// Chunk is one non-empty archetype's slice of a query's result, handed to
// Query.Each's callback. It exposes bulk typed column access via ColumnOf
// so tight loops can pull a component's backing array once per archetype
// instead of indexing through a Field per row.
type Chunk struct {
	archetype *archetype.Archetype
}

// Count returns the number of live rows in this chunk.
func (c Chunk) Count() int { return c.archetype.Count() }

// ArchetypeID returns the chunk's archetype.
func (c Chunk) ArchetypeID() ArchetypeID { return c.archetype.ID() }

// Entity returns the entity at the given row within this chunk.
func (c Chunk) Entity(row int) Entity { return c.archetype.EntityAt(row) }

// ColumnOf returns f's backing array for this chunk, bounded to the
// chunk's live row count. Panics if the chunk's archetype lacks f's
// component, which cannot happen for a Field included in the Query that
// produced this chunk.
func ColumnOf[T Numeric](c Chunk, f Field[T]) []T {
	col, err := c.archetype.GetColumn(f.component, f.field)
	if err != nil {
		panic(err)
	}
	return component.Slice[T](col)[:c.archetype.Count()]
}

// Each invokes fn once per non-empty archetype currently matched by the
// query, reusing a single Chunk value across calls rather than allocating
// one per archetype, per §4.7's typed column iteration primitive.
func (q *Query) Each(fn func(chunk Chunk)) {
	var chunk Chunk
	for _, id := range q.archetypes {
		a := q.engine.registry.Archetype(id)
		if a.Count() == 0 {
			continue
		}
		chunk.archetype = a
		fn(chunk)
	}
}

func sortDedupeIDs(ids []component.ID) []component.ID {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]component.ID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, c := range sorted[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

func unionIDs(base []component.ID, extra []ComponentID) []component.ID {
	merged := make([]component.ID, 0, len(base)+len(extra))
	merged = append(merged, base...)
	merged = append(merged, extra...)
	return sortDedupeIDs(merged)
}

func sameIDs(a, b []component.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func idsToBitset(ids []component.ID) bitset.Bitset {
	var b bitset.Bitset
	for _, id := range ids {
		b.Set(int(id))
	}
	return b
}

// mixHash folds the three triple-hashes and the exclude/any_of presence
// flags into one bucket key. Presence flags are mixed in so an empty
// exclude set (no filtering) never collides with a present-but-empty one
// (there is no such state today, but the distinction is cheap to keep).
func mixHash(include, exclude, anyOf uint32, hasExclude, hasAny bool) uint32 {
	h := include
	h = h*16777619 ^ exclude
	h = h*16777619 ^ anyOf
	if hasExclude {
		h ^= 0x9e3779b9
	}
	if hasAny {
		h ^= 0x85ebca6b
	}
	return h
}
