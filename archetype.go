package warehouse

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

type archetypeID uint32

// archetype is a row-parallel table of components sharing one type-set. It
// keeps the dense entity list mapping row -> EntityID alongside the
// underlying table.Table, plus per-column locks and the three change
// counters (added/removed/updated), which are incremented as changes are
// recorded; nothing in the package reads them.
type archetype struct {
	id       archetypeID
	key      mask.Mask
	tbl      table.Table
	entities *entityDenseMap
	columns  map[TypeHash]*column

	addedCount   int
	removedCount int
	updatedCount int
}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id archetypeID, key mask.Mask, components ...Component) (*archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, comp := range components {
		elementTypes[i] = comp
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	cols := make(map[TypeHash]*column, len(components))
	for _, c := range components {
		h := typeHashOf(c)
		cols[h] = &column{hash: h}
	}
	return &archetype{
		id:       id,
		key:      key,
		tbl:      tbl,
		entities: newEntityDenseMap(),
		columns:  cols,
	}, nil
}

// ID returns the archetype's storage-local identifier.
func (a *archetype) ID() uint32 { return uint32(a.id) }

// Table returns the underlying columnar table.
func (a *archetype) Table() table.Table { return a.tbl }

// Mask returns the component type-set that identifies this archetype.
func (a *archetype) Mask() mask.Mask { return a.key }

func (a *archetype) columnFor(hash TypeHash) (*column, bool) {
	c, ok := a.columns[hash]
	return c, ok
}

// Has reports whether the archetype carries the given component type.
func (a *archetype) Has(hash TypeHash) bool {
	_, ok := a.columns[hash]
	return ok
}

func (a *archetype) Len() int {
	return a.entities.Len()
}

// insert records row bookkeeping for an entity newly placed into this
// archetype's table at the next dense row.
func (a *archetype) insert(e EntityID) int {
	a.addedCount++
	return a.entities.Insert(e)
}

// remove drops e's row bookkeeping, mirroring the swap-remove the
// underlying table.Table performs on DeleteEntries/TransferEntries.
func (a *archetype) remove(e EntityID) (moved EntityID, row int, ok bool) {
	a.removedCount++
	return a.entities.Remove(e)
}

func (a *archetype) markUpdated() {
	a.updatedCount++
}

// sdirContended reports whether any of the archetype's columns is currently
// pinned by a View's SDIR reservation — the condition Spawn/Insert/Remove
// must refuse to mutate through, since a structural change would move rows
// out from under a View that promised its matched archetypes stay stable.
func (a *archetype) sdirContended() (TypeHash, bool) {
	for hash, col := range a.columns {
		if col.lock.SDIRHeld() {
			return hash, true
		}
	}
	return 0, false
}
