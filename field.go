package ecscore

import (
	"github.com/thebitdrifter/ecscore/internal/archetype"
	"github.com/thebitdrifter/ecscore/internal/component"
	"github.com/thebitdrifter/ecscore/internal/xlog"
)

// Field is a typed, zero-reflection handle onto one field of one
// component's schema, resolved once at registration time and reused
// across every entity and every cursor position. Grounded on the
// teacher's AccessibleComponent[T]/table.Accessor[T] pair, generalized
// from a table-column accessor to an archetype-row-column accessor.
type Field[T Numeric] struct {
	component ComponentID
	field     int
}

// NewField builds a handle onto the field-th field (in schema declaration
// order) of component c. The caller is responsible for T matching that
// field's declared FieldType; a mismatch panics on first access.
func NewField[T Numeric](c ComponentID, field int) Field[T] {
	return Field[T]{component: c, field: field}
}

// Get reads the field's value for e. Panics if e is dead or does not carry
// the field's component — callers that cannot guarantee presence should
// use CheckEntity first or read via a Query that includes the component.
func (f Field[T]) Get(e Entity, w *World) T {
	col, row := w.resolveColumn(e, f.component, f.field)
	return component.Get[T](col, row)
}

// Set writes the field's value for e. Panics under the same conditions as Get.
func (f Field[T]) Set(e Entity, w *World, v T) {
	col, row := w.resolveColumn(e, f.component, f.field)
	component.Set[T](col, row, v)
}

// CheckEntity reports whether e currently carries the field's component.
func (f Field[T]) CheckEntity(e Entity, w *World) bool {
	has, _ := w.HasComponent(e, f.component)
	return has
}

// GetFromCursor reads the field's value at the cursor's current row.
// Panics if the cursor's current archetype lacks the component — a query
// that includes the component in its required set never triggers this.
func (f Field[T]) GetFromCursor(c *Cursor) T {
	col, row := f.resolveCursor(c)
	return component.Get[T](col, row)
}

// SetFromCursor writes the field's value at the cursor's current row.
func (f Field[T]) SetFromCursor(c *Cursor, v T) {
	col, row := f.resolveCursor(c)
	component.Set[T](col, row, v)
}

// GetFromCursorSafe is GetFromCursor without the panic: it reports whether
// the component is present in the cursor's current archetype before reading.
func (f Field[T]) GetFromCursorSafe(c *Cursor) (T, bool) {
	if !f.CheckCursor(c) {
		var zero T
		return zero, false
	}
	return f.GetFromCursor(c), true
}

// CheckCursor reports whether the cursor's current archetype carries the
// field's component.
func (f Field[T]) CheckCursor(c *Cursor) bool {
	return c.currentArchetype().HasComponent(f.component)
}

func (f Field[T]) resolveCursor(c *Cursor) (component.Column, int) {
	col, err := c.currentArchetype().GetColumn(f.component, f.field)
	if err != nil {
		panic(xlog.Traced(err))
	}
	return col, c.row
}

func (w *World) resolveColumn(e Entity, c ComponentID, field int) (component.Column, int) {
	if !w.allocator.IsAlive(e) {
		panic(xlog.Traced(deadEntityErr(e)))
	}
	archID := w.archetypeOf(e)
	arch := w.archetypes.Archetype(archetype.ID(archID))
	row := arch.RowOf(e.Slot())
	col, err := arch.GetColumn(c, field)
	if err != nil {
		panic(xlog.Traced(err))
	}
	return col, row
}
