package archetype

import (
	"sort"

	"github.com/thebitdrifter/ecscore/internal/bitset"
	"github.com/thebitdrifter/ecscore/internal/component"
)

func sortComponentIDs(ids []component.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// dedupeSorted removes duplicate entries from an already-sorted slice,
// reusing its backing array.
func dedupeSorted(sorted []component.ID) []component.ID {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, c := range sorted[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

func signaturesEqual(a, b []component.ID) bool {
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

func signatureHash(sig []component.ID) uint32 {
	var b bitset.Bitset
	for _, c := range sig {
		b.Set(int(c))
	}
	return b.Hash()
}

func bitsetFrom(ids []component.ID) bitset.Bitset {
	var b bitset.Bitset
	for _, c := range ids {
		b.Set(int(c))
	}
	return b
}

// insertSorted returns a new sorted signature with c inserted, or the
// original (shared) slice if c is already present.
func insertSorted(signature []component.ID, c component.ID) []component.ID {
	i := sort.Search(len(signature), func(i int) bool { return signature[i] >= c })
	if i < len(signature) && signature[i] == c {
		return signature
	}
	out := make([]component.ID, len(signature)+1)
	copy(out, signature[:i])
	out[i] = c
	copy(out[i+1:], signature[i:])
	return out
}

// removeSorted returns a new sorted signature with c removed, or the
// original (shared) slice if c was not present.
func removeSorted(signature []component.ID, c component.ID) []component.ID {
	i := sort.Search(len(signature), func(i int) bool { return signature[i] >= c })
	if i >= len(signature) || signature[i] != c {
		return signature
	}
	out := make([]component.ID, 0, len(signature)-1)
	out = append(out, signature[:i]...)
	out = append(out, signature[i+1:]...)
	return out
}
