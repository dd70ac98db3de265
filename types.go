// Package ecscore is an archetype-based Entity Component System core: an
// in-memory data engine that groups large entity populations by their
// exact component set, exposes fast column-oriented iteration over those
// groups, and coordinates structural mutations so user-supplied system
// functions can run in ordered phases without invalidating ongoing
// traversals.
//
// The package follows the same shape as its teacher, TheBitDrifter's
// warehouse: a World (Store) owns component registration, entity
// lifecycle, and archetype storage; Query/Cursor provide iteration;
// Field[T] gives typed, zero-reflection access to a component's fields,
// mirroring warehouse's AccessibleComponent[T].GetFromCursor.
//
// Basic usage:
//
//	world := ecscore.NewWorld()
//	position := world.RegisterComponent("Position",
//		ecscore.FieldSpec{Name: "x", Type: ecscore.F64},
//		ecscore.FieldSpec{Name: "y", Type: ecscore.F64},
//	)
//	velocity := world.RegisterComponent("Velocity",
//		ecscore.FieldSpec{Name: "vx", Type: ecscore.F64},
//		ecscore.FieldSpec{Name: "vy", Type: ecscore.F64},
//	)
//	posX := ecscore.NewField[float64](position, 0)
//	posY := ecscore.NewField[float64](position, 1)
//
//	e, _ := world.CreateEntity()
//	world.AddComponent(e, position, ecscore.Values{"x": 1.0, "y": 2.0})
//	world.AddComponent(e, velocity, ecscore.Values{"vx": 10.0, "vy": 20.0})
//
//	query := world.Query(position, velocity)
//	cursor := query.Cursor()
//	for cursor.Next() {
//		x := posX.Get(cursor.Entity(), world)
//		posX.Set(cursor.Entity(), world, x+1)
//	}
package ecscore

import (
	"github.com/thebitdrifter/ecscore/internal/archetype"
	"github.com/thebitdrifter/ecscore/internal/component"
	"github.com/thebitdrifter/ecscore/internal/entity"
)

// Entity is an opaque packed (slot, generation) identity. The zero value
// is the first entity a World creates (slot 0, generation 0).
type Entity = entity.Entity

// ComponentID is a dense, non-negative component identifier assigned in
// registration order.
type ComponentID = component.ID

// ArchetypeID is a dense, non-negative archetype identifier.
type ArchetypeID = archetype.ID

// FieldType is one of the closed set of backing numeric types a schema
// field may declare.
type FieldType = component.FieldType

// Numeric constrains Field[T] to the engine's closed set of backing types.
type Numeric = component.Numeric

const (
	F32 = component.F32
	F64 = component.F64
	I8  = component.I8
	I16 = component.I16
	I32 = component.I32
	U8  = component.U8
	U16 = component.U16
	U32 = component.U32
)

// FieldSpec names one field of a component schema being registered.
type FieldSpec struct {
	Name string
	Type FieldType
}

// Values holds initializer field values by name, for AddComponent and
// friends. A tag component (no fields) is added with a nil or empty Values.
type Values map[string]any

// ComponentValues pairs a component with its initializer values, for
// AddComponents' multi-component move.
type ComponentValues struct {
	Component ComponentID
	Values    Values
}
