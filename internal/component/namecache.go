package component

// nameCache is a string-keyed index from component name to registry slot,
// adapted from the teacher's SimpleCache[T] (cache.go): that type paired a
// map[string]int index with an append-only item slice so callers could
// register-or-fetch by name without a linear scan. Here it backs
// Registry.RegisterNamed instead of a generic item cache, since the
// registry itself already owns the append-only schema slice.
type nameCache struct {
	indices map[string]int
}

func newNameCache() *nameCache {
	return &nameCache{indices: make(map[string]int)}
}

func (c *nameCache) get(name string) (int, bool) {
	idx, ok := c.indices[name]
	return idx, ok
}

func (c *nameCache) put(name string, idx int) {
	c.indices[name] = idx
}
