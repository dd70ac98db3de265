package archetype

import (
	"github.com/kamstrup/intmap"
	"github.com/thebitdrifter/ecscore/internal/component"
)

// Subscriber is notified whenever the registry creates a new archetype.
// QueryEngine implements this to keep live result arrays growing
// monotonically (§4.7) without the registry importing the query package.
type Subscriber interface {
	OnArchetypeCreated(a *Archetype)
}

// Registry deduplicates archetypes by signature, maintains the
// component-ID to archetype-set index, and resolves add/remove
// transitions, per §4.5.
type Registry struct {
	compReg     *component.Registry
	archetypes  []*Archetype
	bucketsByHash map[uint32][]ID
	// componentIndex maps a component ID to the archetype IDs whose
	// signature contains it; kept as github.com/kamstrup/intmap since keys
	// are dense small integers (component.ID) on the hot
	// structural-mutation path, per SPEC_FULL's domain-stack wiring.
	componentIndex *intmap.Map[uint32, []ID]
	subscribers    []Subscriber
	emptyID        ID
}

// NewRegistry builds a registry over compReg and eagerly creates the empty
// archetype (ID 0), which every newly created entity starts in.
func NewRegistry(compReg *component.Registry) (*Registry, error) {
	r := &Registry{
		compReg:        compReg,
		bucketsByHash:  make(map[uint32][]ID),
		componentIndex: intmap.New[uint32, []ID](64),
	}
	emptyID, err := r.GetOrCreate(nil)
	if err != nil {
		return nil, err
	}
	r.emptyID = emptyID
	return r, nil
}

// EmptyArchetypeID returns the ID of the archetype with no components.
func (r *Registry) EmptyArchetypeID() ID { return r.emptyID }

// Subscribe registers s to be notified of every archetype created from
// this point on. It does not replay archetypes that already exist: a
// subscriber that needs the current set (QueryEngine, on a cache miss)
// is expected to seed itself via GetMatching/All before subscribing.
func (r *Registry) Subscribe(s Subscriber) {
	r.subscribers = append(r.subscribers, s)
}

// Archetype returns the archetype for id.
func (r *Registry) Archetype(id ID) *Archetype {
	return r.archetypes[id]
}

// Count returns the number of archetypes created so far.
func (r *Registry) Count() int {
	return len(r.archetypes)
}

// All returns every archetype, in creation order.
func (r *Registry) All() []*Archetype {
	return r.archetypes
}

func sortedSignatureOf(components []component.ID) []component.ID {
	sig := make([]component.ID, len(components))
	copy(sig, components)
	sortComponentIDs(sig)
	return dedupeSorted(sig)
}

// GetOrCreate returns the archetype matching signature (already expected
// sorted by callers that built it via resolveAdd/resolveRemove; raw
// callers may pass an unsorted slice and it will be sorted and
// deduplicated here), creating and registering it if no archetype yet
// has that exact signature.
func (r *Registry) GetOrCreate(signature []component.ID) (ID, error) {
	sig := sortedSignatureOf(signature)
	h := signatureHash(sig)

	for _, id := range r.bucketsByHash[h] {
		if signaturesEqual(r.archetypes[id].signature, sig) {
			return id, nil
		}
	}

	id := ID(len(r.archetypes))
	a, err := newArchetype(id, sig, r.compReg)
	if err != nil {
		return 0, err
	}
	r.archetypes = append(r.archetypes, a)
	r.bucketsByHash[h] = append(r.bucketsByHash[h], id)

	for _, c := range sig {
		key := uint32(c)
		ids, _ := r.componentIndex.Get(key)
		r.componentIndex.Put(key, append(ids, id))
	}

	for _, s := range r.subscribers {
		s.OnArchetypeCreated(a)
	}

	return id, nil
}

// ResolveAdd returns the archetype reached from archID by adding c,
// resolving and caching the transition edge (bidirectionally) on miss.
func (r *Registry) ResolveAdd(archID ID, c component.ID) (ID, error) {
	a := r.archetypes[archID]
	if a.HasComponent(c) {
		return archID, nil
	}
	if e, ok := a.Edge(c); ok && e.HasAdd {
		return e.Add, nil
	}

	target := insertSorted(a.signature, c)
	targetID, err := r.GetOrCreate(target)
	if err != nil {
		return 0, err
	}

	a.setAddEdge(c, targetID)
	r.archetypes[targetID].setRemoveEdge(c, archID)
	return targetID, nil
}

// ResolveRemove returns the archetype reached from archID by removing c,
// resolving and caching the transition edge (bidirectionally) on miss.
func (r *Registry) ResolveRemove(archID ID, c component.ID) (ID, error) {
	a := r.archetypes[archID]
	if !a.HasComponent(c) {
		return archID, nil
	}
	if e, ok := a.Edge(c); ok && e.HasRemove {
		return e.Remove, nil
	}

	target := removeSorted(a.signature, c)
	targetID, err := r.GetOrCreate(target)
	if err != nil {
		return 0, err
	}

	a.setRemoveEdge(c, targetID)
	r.archetypes[targetID].setAddEdge(c, archID)
	return targetID, nil
}

// GetMatching returns every archetype whose signature is a superset of
// include, disjoint from exclude, and (if non-empty) overlapping anyOf,
// per §4.5's matching algorithm: candidates are seeded from the smallest
// component_index bucket among include's components rather than scanning
// every archetype, unless include itself is empty.
func (r *Registry) GetMatching(include, exclude, anyOf []component.ID) []ID {
	var candidates []ID

	if len(include) == 0 {
		candidates = make([]ID, len(r.archetypes))
		for i := range r.archetypes {
			candidates[i] = ID(i)
		}
	} else {
		haveBest := false
		var bestIDs []ID
		for _, c := range include {
			ids, _ := r.componentIndex.Get(uint32(c))
			if len(ids) == 0 {
				return nil
			}
			if !haveBest || len(ids) < len(bestIDs) {
				haveBest = true
				bestIDs = ids
			}
		}
		candidates = bestIDs
	}

	includeMask := bitsetFrom(include)
	excludeMask := bitsetFrom(exclude)
	anyMask := bitsetFrom(anyOf)

	var out []ID
	for _, id := range candidates {
		a := r.archetypes[id]
		if !a.Mask().Contains(includeMask) {
			continue
		}
		if len(exclude) > 0 && a.Mask().Overlaps(excludeMask) {
			continue
		}
		if len(anyOf) > 0 && !a.Mask().Overlaps(anyMask) {
			continue
		}
		out = append(out, id)
	}
	return out
}
