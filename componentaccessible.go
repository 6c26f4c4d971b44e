package warehouse

import "github.com/TheBitDrifter/table"

// AccessibleComponent extends a base Component with table-based
// accessibility. It provides typed getters for the three places a
// component value is read from: a Cursor mid-iteration, a resolved
// EntityID, or a raw (archetype, row) pair.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T] // concrete.
}

// GetFromCursor retrieves a component value for the entity at the cursor's
// current position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Get(
		cursor.entityIndex-1,
		cursor.currentArchetype.tbl,
	)
}

// GetFromCursorSafe safely retrieves a component value, checking first
// that the cursor's current archetype carries the column at all.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if !c.Accessor.Check(cursor.currentArchetype.tbl) {
		return false, nil
	}
	return true, c.GetFromCursor(cursor)
}

// CheckCursor determines if the component exists in the archetype at the
// cursor's current position.
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return c.Accessor.Check(cursor.currentArchetype.tbl)
}

// GetFromEntity retrieves a component value for the given entity, resolved
// against w's entity index. It returns InvalidEntityError if the entity is
// invalid and MissingComponentError if its archetype doesn't carry the
// column.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e EntityID) (*T, error) {
	rec, ok := w.recordFor(e)
	if !ok {
		return nil, InvalidEntityError{Entity: e}
	}
	if !c.Accessor.Check(rec.archetype.tbl) {
		return nil, MissingComponentError{Entity: e, Type: c.ID()}
	}
	return c.Get(rec.row, rec.archetype.tbl), nil
}

// GetFromRow retrieves a component value directly from an archetype row,
// bypassing entity-index resolution — used by Fetch/Lookup internals that
// already hold the archetype and row.
func (c AccessibleComponent[T]) GetFromRow(a *archetype, row int) *T {
	return c.Get(row, a.tbl)
}
