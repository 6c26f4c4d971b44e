package warehouse

// LookupAccess is an entity-scoped fetch accessor: instead of iterating a
// Cursor, it resolves one known entity's row once and hands out typed
// component pointers against it, the way spec.md's `Lookup[F]`/
// `LookupAccess[F]` pair is used inside a system that already knows which
// entity it wants (e.g. the target of a relation).
type LookupAccess struct {
	world  *World
	entity EntityID
}

// Lookup builds a LookupAccess for e against w. Validity is checked lazily
// on first Get, mirroring GetFromEntity's own error return rather than
// failing at construction time.
func Lookup(w *World, e EntityID) LookupAccess {
	return LookupAccess{world: w, entity: e}
}

// Entity returns the entity this accessor is scoped to.
func (l LookupAccess) Entity() EntityID { return l.entity }

// Valid reports whether the underlying entity is still alive.
func (l LookupAccess) Valid() bool { return l.world.Valid(l.entity) }

// Get retrieves comp's value for l's entity.
func Get[T any](l LookupAccess, comp AccessibleComponent[T]) (*T, error) {
	return comp.GetFromEntity(l.world, l.entity)
}

// Has reports whether l's entity carries comp's column.
func Has[T any](l LookupAccess, comp AccessibleComponent[T]) bool {
	rec, ok := l.world.recordFor(l.entity)
	if !ok {
		return false
	}
	return rec.archetype.Has(comp.ID())
}

// Related returns every R-kind edge l's entity carries, each paired with
// its payload — the LookupAccess-flavored spelling of RelationsOutgoing,
// per spec.md §4.5's relation-lookup combinator list.
func Related[R any](l LookupAccess) []Relation[R] {
	return RelationsOutgoing[R](l.world, l.entity)
}

// Traverse walks the R-relation graph outward from l's entity.
func Traverse[R any](l LookupAccess, visit func(EntityID) bool) {
	TraverseOutgoing[R](l.world, l.entity, visit)
}

// Is reports whether an R-kind edge exists from l's entity to other.
func Is[R any](l LookupAccess, other EntityID) bool {
	for _, rel := range RelationsOutgoing[R](l.world, l.entity) {
		if rel.Other == other {
			return true
		}
	}
	return false
}

// IsNot is the negation of Is.
func IsNot[R any](l LookupAccess, other EntityID) bool {
	return !Is[R](l, other)
}

// Follow returns the first R-related entity from l's entity and its
// payload, for relations that are conceptually single-valued (e.g. ChildOf
// a single parent).
func Follow[R any](l LookupAccess) (EntityID, R, bool) {
	related := RelationsOutgoing[R](l.world, l.entity)
	if len(related) == 0 {
		var zero R
		return EntityID{}, zero, false
	}
	return related[0].Other, related[0].Payload, true
}

// Limit truncates ids to at most n entries.
func Limit(ids []EntityID, n int) []EntityID {
	if n < 0 || n >= len(ids) {
		return ids
	}
	return ids[:n]
}

// Single returns the sole entity in ids, or ok=false if ids doesn't
// contain exactly one entry.
func Single(ids []EntityID) (EntityID, bool) {
	if len(ids) != 1 {
		return EntityID{}, false
	}
	return ids[0], true
}

// SelectEntity returns the first entity in ids satisfying pred.
func SelectEntity(ids []EntityID, pred func(EntityID) bool) (EntityID, bool) {
	for _, e := range ids {
		if pred(e) {
			return e, true
		}
	}
	return EntityID{}, false
}

// Join intersects any number of entity sets, preserving the order of the
// first set.
func Join(sets ...[]EntityID) []EntityID {
	if len(sets) == 0 {
		return nil
	}
	counts := make(map[uint64]int, len(sets[0]))
	for _, set := range sets {
		seen := make(map[uint64]struct{}, len(set))
		for _, e := range set {
			key := e.ToU64()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
		}
	}
	var out []EntityID
	for _, e := range sets[0] {
		if counts[e.ToU64()] == len(sets) {
			out = append(out, e)
		}
	}
	return out
}
