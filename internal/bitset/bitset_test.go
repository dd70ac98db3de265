package bitset

import "testing"

func TestSetHasClear(t *testing.T) {
	var b Bitset
	b.Set(3)
	b.Set(70)

	if !b.Has(3) || !b.Has(70) {
		t.Fatalf("expected bits 3 and 70 set")
	}
	if b.Has(4) {
		t.Fatalf("bit 4 should not be set")
	}

	b.Clear(3)
	if b.Has(3) {
		t.Fatalf("bit 3 should have been cleared")
	}
	if !b.Has(70) {
		t.Fatalf("bit 70 should remain set")
	}
}

func TestContainsOverlaps(t *testing.T) {
	var a, b Bitset
	a.Set(1)
	a.Set(2)
	a.Set(64)
	b.Set(1)
	b.Set(64)

	if !a.Contains(b) {
		t.Fatalf("a should be a superset of b")
	}
	if b.Contains(a) {
		t.Fatalf("b should not be a superset of a")
	}
	if !a.Overlaps(b) {
		t.Fatalf("a and b should overlap")
	}

	var c Bitset
	c.Set(99)
	if a.Overlaps(c) {
		t.Fatalf("a and c should not overlap")
	}
}

func TestEqualsIgnoresTrailingCapacity(t *testing.T) {
	a := New(200)
	a.Set(5)
	var b Bitset
	b.Set(5)

	if !a.Equals(b) {
		t.Fatalf("bitsets with same content but different capacity should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("bitsets with same content should hash equal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(8)
	a.Set(1)
	b := a.Clone()
	b.Set(2)

	if a.Has(2) {
		t.Fatalf("clone mutation should not affect original")
	}
}

func TestIsEmpty(t *testing.T) {
	var a Bitset
	if !a.IsEmpty() {
		t.Fatalf("zero-value bitset should be empty")
	}
	a.Set(10)
	a.Clear(10)
	if !a.IsEmpty() {
		t.Fatalf("bitset should be empty after clearing its only bit")
	}
}

func TestBitsOrder(t *testing.T) {
	var a Bitset
	a.Set(40)
	a.Set(1)
	a.Set(33)
	got := a.Bits()
	want := []int{1, 33, 40}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
