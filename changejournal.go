package warehouse

// changeJournal tracks which entities were added, removed, or updated
// (component insert/remove causing an archetype migration, or a value
// fetched through an Update term) since the last ClearChanges call, indexed by the TypeHash of every component the
// entity's archetype carries at the moment of the change — so a caller can
// ask "which entities carrying Marker were added this tick" without
// re-diffing every archetype by hand, the per-type query spec.md's
// `added.of::<Marker>()` describes. Grounded on the teacher's
// change-counter fields on ArchetypeImpl (addedCount/removedCount/
// updatedCount survive here as archetype.addedCount etc.).
type changeJournal struct {
	added   map[TypeHash][]EntityID
	removed map[TypeHash][]EntityID
	updated map[TypeHash][]EntityID

	addedSeen   map[TypeHash]map[uint64]struct{}
	removedSeen map[TypeHash]map[uint64]struct{}
	updatedSeen map[TypeHash]map[uint64]struct{}
}

func newChangeJournal() *changeJournal {
	j := &changeJournal{}
	j.clear()
	return j
}

// recordInto appends e under hash's bucket in byType, deduping against
// seen so repeated migrations of the same entity within one tick don't
// produce repeated entries.
func recordInto(byType map[TypeHash][]EntityID, seen map[TypeHash]map[uint64]struct{}, hash TypeHash, e EntityID) {
	set, ok := seen[hash]
	if !ok {
		set = make(map[uint64]struct{})
		seen[hash] = set
	}
	key := e.ToU64()
	if _, dup := set[key]; dup {
		return
	}
	set[key] = struct{}{}
	byType[hash] = append(byType[hash], e)
}

func (j *changeJournal) recordAdded(a *archetype, e EntityID) {
	a.addedCount++
	for hash := range a.columns {
		recordInto(j.added, j.addedSeen, hash, e)
	}
}

func (j *changeJournal) recordRemoved(a *archetype, e EntityID) {
	a.removedCount++
	for hash := range a.columns {
		recordInto(j.removed, j.removedSeen, hash, e)
	}
}

func (j *changeJournal) recordUpdated(a *archetype, e EntityID) {
	a.markUpdated()
	for hash := range a.columns {
		recordInto(j.updated, j.updatedSeen, hash, e)
	}
}

func (j *changeJournal) clear() {
	j.added = make(map[TypeHash][]EntityID)
	j.removed = make(map[TypeHash][]EntityID)
	j.updated = make(map[TypeHash][]EntityID)
	j.addedSeen = make(map[TypeHash]map[uint64]struct{})
	j.removedSeen = make(map[TypeHash]map[uint64]struct{})
	j.updatedSeen = make(map[TypeHash]map[uint64]struct{})
}

// mergedUnique flattens a per-type journal into one deduped slice, for
// callers that just want "everything that changed" regardless of type.
func mergedUnique(byType map[TypeHash][]EntityID) []EntityID {
	seen := make(map[uint64]struct{})
	var out []EntityID
	for _, ids := range byType {
		for _, e := range ids {
			key := e.ToU64()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// Added returns every entity spawned since the last ClearChanges.
func (w *World) Added() []EntityID {
	return mergedUnique(w.journal.added)
}

// Removed returns every entity despawned since the last ClearChanges.
func (w *World) Removed() []EntityID {
	return mergedUnique(w.journal.removed)
}

// Updated returns every entity whose component set changed (via Insert or
// Remove) or whose value was fetched through an Update term since the last
// ClearChanges.
func (w *World) Updated() []EntityID {
	return mergedUnique(w.journal.updated)
}

// AddedOf returns every entity carrying comp that was spawned since the
// last ClearChanges.
func AddedOf[T any](w *World, comp AccessibleComponent[T]) []EntityID {
	return append([]EntityID(nil), w.journal.added[comp.ID()]...)
}

// RemovedOf returns every entity carrying comp (at the time it was
// despawned) that was removed since the last ClearChanges.
func RemovedOf[T any](w *World, comp AccessibleComponent[T]) []EntityID {
	return append([]EntityID(nil), w.journal.removed[comp.ID()]...)
}

// UpdatedOf returns every entity carrying comp whose component set changed,
// or that was fetched through an Update term, since the last ClearChanges.
func UpdatedOf[T any](w *World, comp AccessibleComponent[T]) []EntityID {
	return append([]EntityID(nil), w.journal.updated[comp.ID()]...)
}
