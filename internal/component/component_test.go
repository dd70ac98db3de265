package component

import (
	"math"
	"testing"
)

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry()
	pos := r.Register(Schema{Name: "Position", Fields: []Field{{Name: "x", Type: F64}, {Name: "y", Type: F64}}})
	vel := r.Register(Schema{Name: "Velocity", Fields: []Field{{Name: "vx", Type: F64}, {Name: "vy", Type: F64}}})

	if pos != 0 || vel != 1 {
		t.Fatalf("expected sequential ids 0,1 got %d,%d", pos, vel)
	}
}

func TestRegisterNamedIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := r.RegisterNamed("Tag", Schema{})
	b := r.RegisterNamed("Tag", Schema{})
	if a != b {
		t.Fatalf("expected same id for repeated named registration, got %d and %d", a, b)
	}
}

func TestTagSchemaHasNoFields(t *testing.T) {
	r := NewRegistry()
	id := r.Register(Schema{Name: "Marker"})
	schema, err := r.Schema(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !schema.IsTag() {
		t.Fatalf("expected empty schema to be a tag")
	}
}

func TestUnknownComponentFails(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Schema(99); err == nil {
		t.Fatalf("expected error for unregistered component")
	}
}

func TestColumnGrowPreservesExistingRows(t *testing.T) {
	col := newColumn(F64, 2)
	SetAny(col, 0, 1.5)
	SetAny(col, 1, 2.5)
	col.Grow(10)
	if col.Len() < 10 {
		t.Fatalf("expected column to grow to at least 10, got %d", col.Len())
	}
	if GetAny(col, 0) != 1.5 || GetAny(col, 1) != 2.5 {
		t.Fatalf("growing should preserve existing rows")
	}
}

func TestColumnCopyRow(t *testing.T) {
	col := newColumn(I32, 4)
	SetAny(col, 3, int32(42))
	col.CopyRow(0, 3)
	if GetAny(col, 0) != int32(42) {
		t.Fatalf("expected copied value 42, got %v", GetAny(col, 0))
	}
}

func TestColumnPoisonFloat(t *testing.T) {
	col := newColumn(F32, 2)
	col.Poison(0)
	v := GetAny(col, 0).(float32)
	if !math.IsNaN(float64(v)) {
		t.Fatalf("expected NaN poison value, got %v", v)
	}
}

func TestColumnPoisonInt(t *testing.T) {
	col := newColumn(U8, 2)
	col.Poison(0)
	v := GetAny(col, 0).(uint8)
	if v != 0xFF {
		t.Fatalf("expected all-bits-set poison for u8, got %v", v)
	}

	col32 := newColumn(I32, 2)
	col32.Poison(0)
	v32 := GetAny(col32, 0).(int32)
	if v32 != -1 {
		t.Fatalf("expected all-bits-set (-1) poison for i32, got %v", v32)
	}
}
