package warehouse

import "fmt"

// EntityID identifies an entity by slot and generation. The zero value is
// never valid. Generation bumps every time a slot is recycled, so a stale
// EntityID can never be mistaken for whatever now occupies its slot.
type EntityID struct {
	ID         uint32
	Generation uint32
}

// Valid reports whether e could ever have been returned by a spawn.
func (e EntityID) Valid() bool {
	return e.ID != 0
}

// ToU64 packs the id/generation pair into a single comparable value,
// generation in the high bits.
func (e EntityID) ToU64() uint64 {
	return uint64(e.Generation)<<32 | uint64(e.ID)
}

// EntityFromU64 reverses ToU64.
func EntityFromU64(v uint64) EntityID {
	return EntityID{ID: uint32(v), Generation: uint32(v >> 32)}
}

// Less gives EntityID a total order, generation first, so callers needing
// a deterministic iteration order don't need to invent their own comparator.
func (e EntityID) Less(o EntityID) bool {
	if e.Generation != o.Generation {
		return e.Generation < o.Generation
	}
	return e.ID < o.ID
}

func (e EntityID) String() string {
	return fmt.Sprintf("Entity(%d#%d)", e.ID, e.Generation)
}

// EntityDestroyCallback is invoked, if set, just before an entity's row is
// removed from its archetype.
type EntityDestroyCallback func(EntityID)

// entityRecord is the World's id -> location index entry.
type entityRecord struct {
	generation uint32
	alive      bool
	archetype  *archetype
	row        int
	onDestroy  EntityDestroyCallback
	parent     EntityID
}

// entityDenseMap is an array-backed, swap-remove set of entities used by an
// archetype to track which row holds which entity. Removing an entity moves
// the archetype's last row into the hole, so row order is not preserved
// across removals.
type entityDenseMap struct {
	dense  []EntityID
	sparse map[uint32]int
}

func newEntityDenseMap() *entityDenseMap {
	return &entityDenseMap{sparse: make(map[uint32]int)}
}

// Insert appends e as the new last row and returns its row index.
func (m *entityDenseMap) Insert(e EntityID) int {
	idx := len(m.dense)
	m.dense = append(m.dense, e)
	m.sparse[e.ID] = idx
	return idx
}

// Remove swap-removes e. moved is the EntityID that now occupies e's old
// row (the zero EntityID if e was already the last row).
func (m *entityDenseMap) Remove(e EntityID) (moved EntityID, row int, ok bool) {
	idx, found := m.sparse[e.ID]
	if !found {
		return EntityID{}, -1, false
	}
	last := len(m.dense) - 1
	moved = m.dense[last]
	m.dense[idx] = moved
	m.dense = m.dense[:last]
	delete(m.sparse, e.ID)
	if idx != last {
		m.sparse[moved.ID] = idx
	} else {
		moved = EntityID{}
	}
	return moved, idx, true
}

func (m *entityDenseMap) At(row int) EntityID { return m.dense[row] }

func (m *entityDenseMap) RowOf(e EntityID) (int, bool) {
	idx, ok := m.sparse[e.ID]
	return idx, ok
}

func (m *entityDenseMap) Len() int { return len(m.dense) }
