// Package component implements the schema registry and typed column
// factory of §4.3: components are assigned dense sequential IDs, each
// schema is an ordered named list of numeric fields, and a schema with no
// fields is a tag that owns no storage.
//
// Component data itself lives in the owning Archetype's dense, row-indexed
// columns (§4.4) rather than in a second slot-indexed copy here — see
// DESIGN.md's "ComponentRegistry storage" entry for why the registry does
// not keep a duplicate per-slot column array: the spec's own swap-and-pop
// invariant (archetype columns reshuffle by row on removal) only makes
// sense for a single row-indexed store, and keeping two in sync would add
// complexity with no corresponding testable property in §8.
package component

import "github.com/thebitdrifter/ecscore/internal/ecserr"

// ID is a dense, non-negative component identifier assigned in
// registration order.
type ID uint32

// FieldType is one of the closed set of backing numeric types a schema
// field may declare.
type FieldType int

const (
	F32 FieldType = iota
	F64
	I8
	I16
	I32
	U8
	U16
	U32
)

func (t FieldType) String() string {
	switch t {
	case F32:
		return "f32"
	case F64:
		return "f64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	}
	return "unknown"
}

// Field is one named, typed slot of a component schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an ordered, named list of fields. A Schema with zero fields is
// a tag: it contributes to archetype signatures but owns no column data.
type Schema struct {
	Name   string
	Fields []Field
}

// IsTag reports whether s has no backing storage.
func (s Schema) IsTag() bool {
	return len(s.Fields) == 0
}

// FieldIndex returns the position of a named field, or -1 if absent.
func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Registry assigns component IDs in registration order and stores each
// component's schema, per §4.3.
type Registry struct {
	schemas []Schema
	byName  *nameCache
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: newNameCache()}
}

// Register assigns the next sequential ID to schema and stores it.
func (r *Registry) Register(schema Schema) ID {
	id := ID(len(r.schemas))
	r.schemas = append(r.schemas, schema)
	return id
}

// RegisterNamed registers schema under name, returning the existing ID if
// a component with that name was already registered (idempotent
// convenience over bare Register, adapted from the teacher's SimpleCache
// string-keyed registration).
func (r *Registry) RegisterNamed(name string, schema Schema) ID {
	if id, ok := r.byName.get(name); ok {
		return ID(id)
	}
	schema.Name = name
	id := r.Register(schema)
	r.byName.put(name, int(id))
	return id
}

// Schema returns the schema registered for id. Fails with
// ecserr.UnknownComponent if id was never registered.
func (r *Registry) Schema(id ID) (Schema, error) {
	if int(id) < 0 || int(id) >= len(r.schemas) {
		return Schema{}, ecserr.UnknownComponentf("component %d is not registered", id)
	}
	return r.schemas[id], nil
}

// Count returns the number of registered components.
func (r *Registry) Count() int {
	return len(r.schemas)
}

// NewColumns allocates one empty Column per field of id's schema, each
// with the given initial row capacity, for an Archetype to adopt as its
// dense per-field storage.
func (r *Registry) NewColumns(id ID, capacity int) ([]Column, error) {
	schema, err := r.Schema(id)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = newColumn(f.Type, capacity)
	}
	return cols, nil
}
