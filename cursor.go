package ecscore

import "github.com/thebitdrifter/ecscore/internal/archetype"

// Cursor iterates over every entity in every archetype currently matched
// by a Query, one row at a time. Grounded on the teacher's cursor.go
// (storageIndex/entityIndex/remaining advance loop over matched
// archetypes), generalized from the teacher's single owned-storage lock
// to this engine's deferred-mutation model: a Cursor is not safe to hold
// across immediate structural mutations, since a swap-and-pop can move an
// unvisited last row into an already-visited position and a moved entity
// can land in an archetype the cursor has yet to reach, which is why every
// system is expected to mutate via the deferred Store operations while
// iterating (§4.6/§4.8).
type Cursor struct {
	query   *Query
	archIdx int
	row     int
}

func newCursor(q *Query) *Cursor {
	return &Cursor{query: q, archIdx: -1, row: -1}
}

// Next advances the cursor to the next matched entity, skipping empty
// archetypes, and reports whether one was found.
func (c *Cursor) Next() bool {
	if c.archIdx < 0 {
		c.archIdx = 0
		c.row = -1
	}
	for c.archIdx < len(c.query.archetypes) {
		a := c.currentArchetype()
		if c.row+1 < a.Count() {
			c.row++
			return true
		}
		c.archIdx++
		c.row = -1
	}
	return false
}

// Reset rewinds the cursor so a subsequent Next starts from the beginning.
func (c *Cursor) Reset() {
	c.archIdx = -1
	c.row = -1
}

// Entity returns the entity at the cursor's current position. Only valid
// after a Next call that returned true.
func (c *Cursor) Entity() Entity {
	return c.currentArchetype().EntityAt(c.row)
}

// ArchetypeID returns the archetype the cursor is currently positioned in.
func (c *Cursor) ArchetypeID() ArchetypeID {
	return c.query.archetypes[c.archIdx]
}

// Row returns the cursor's row within its current archetype.
func (c *Cursor) Row() int {
	return c.row
}

// TotalMatched returns the total number of entities across every
// currently matched archetype, without disturbing cursor position.
func (c *Cursor) TotalMatched() int {
	total := 0
	for _, id := range c.query.archetypes {
		total += c.query.engine.registry.Archetype(id).Count()
	}
	return total
}

func (c *Cursor) currentArchetype() *archetype.Archetype {
	return c.query.engine.registry.Archetype(c.query.archetypes[c.archIdx])
}
