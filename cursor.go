package warehouse

import (
	"iter"

	"github.com/TheBitDrifter/table"
)

// iCursor defines the interface for iterating over entities in a World.
type iCursor interface {
	Entities() iter.Seq2[int, table.Table]
	Next() bool
}

var _ iCursor = &Cursor{}

// Cursor provides iteration over the archetypes matching a QueryNode. It
// pins the World's structural lock for its lifetime, the same way the
// teacher's cursor held the storage lock across iteration. A cursor built
// through Fetch2..Fetch8 also carries the Read/Write terms' component sets
// and acquires the matching per-column SharedRead/ExclusiveWrite lock on
// every matched archetype, releasing it on Reset.
type Cursor struct {
	query QueryNode
	world *World

	currentArchetype *archetype
	archetypeIndex   int
	entityIndex      int
	remaining        int

	initialized       bool
	matchedArchetypes []*archetype

	readComps  []Component
	writeComps []Component
	heldRead   []*column
	heldWrite  []*column
	lockErr    error
}

func newCursor(query QueryNode, world *World) *Cursor {
	return &Cursor{query: query, world: world}
}

// newLockedCursor builds a Cursor that additionally acquires a SharedRead
// lock on every column in reads and an ExclusiveWrite lock on every column
// in writes, across each matched archetype, for the duration of iteration.
func newLockedCursor(query QueryNode, world *World, reads, writes []Component) *Cursor {
	return &Cursor{query: query, world: world, readComps: reads, writeComps: writes}
}

// Err returns the error that stopped iteration early, if Next returned
// false because a column lock acquisition failed rather than because the
// query was exhausted.
func (c *Cursor) Err() error {
	return c.lockErr
}

// Next advances to the next entity and returns whether one exists.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.Initialize()
	}
	if c.lockErr != nil {
		return false
	}

	for c.archetypeIndex < len(c.matchedArchetypes) {
		c.currentArchetype = c.matchedArchetypes[c.archetypeIndex]
		c.remaining = c.currentArchetype.Len()
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.archetypeIndex++
		c.entityIndex = 0
	}

	c.Reset()
	return false
}

// Entities returns an iterator sequence over (row, table) pairs matching
// the query.
func (c *Cursor) Entities() iter.Seq2[int, table.Table] {
	return func(yield func(int, table.Table) bool) {
		c.Initialize()
		if c.lockErr != nil {
			return
		}

		for c.archetypeIndex < len(c.matchedArchetypes) {
			c.currentArchetype = c.matchedArchetypes[c.archetypeIndex]
			c.remaining = c.currentArchetype.Len()

			for c.entityIndex < c.remaining {
				if !yield(c.entityIndex, c.currentArchetype.tbl) {
					c.Reset()
					return
				}
				c.entityIndex++
			}

			c.entityIndex = 0
			c.archetypeIndex++
		}

		c.Reset()
	}
}

// Initialize finds all matching archetypes, locks the World structurally
// against them for the duration of iteration, and — for a cursor built via
// Fetch2..Fetch8 — acquires a SharedRead/ExclusiveWrite lock on every
// Read/Write term's column across each matched archetype. If any column is
// already held incompatibly, every lock acquired so far is released and
// Err reports a ContendedError; iteration then behaves as exhausted.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}

	c.world.addStructuralLock()
	c.matchedArchetypes = make([]*archetype, 0)

	for _, arch := range c.world.archetypeList() {
		if c.query.Evaluate(arch, c.world) {
			c.matchedArchetypes = append(c.matchedArchetypes, arch)
		}
	}

	if err := c.acquireColumnLocks(); err != nil {
		c.lockErr = err
		c.matchedArchetypes = nil
		c.world.removeStructuralLock()
		c.initialized = true
		return
	}

	if len(c.matchedArchetypes) > 0 {
		c.archetypeIndex = 0
		c.currentArchetype = c.matchedArchetypes[0]
		c.remaining = c.currentArchetype.Len()
	}

	c.initialized = true
}

func (c *Cursor) acquireColumnLocks() error {
	for _, arch := range c.matchedArchetypes {
		for _, comp := range c.readComps {
			col, ok := arch.columnFor(typeHashOf(comp))
			if !ok {
				continue
			}
			if !col.lock.AcquireRead() {
				c.releaseColumnLocks()
				return ContendedError{Type: typeHashOf(comp)}
			}
			c.heldRead = append(c.heldRead, col)
		}
		for _, comp := range c.writeComps {
			col, ok := arch.columnFor(typeHashOf(comp))
			if !ok {
				continue
			}
			if !col.lock.AcquireWrite() {
				c.releaseColumnLocks()
				return ContendedError{Type: typeHashOf(comp)}
			}
			c.heldWrite = append(c.heldWrite, col)
		}
	}
	return nil
}

func (c *Cursor) releaseColumnLocks() {
	for _, col := range c.heldRead {
		col.lock.ReleaseRead()
	}
	for _, col := range c.heldWrite {
		col.lock.ReleaseWrite()
	}
	c.heldRead = nil
	c.heldWrite = nil
}

// Reset clears cursor state, releases any column locks acquired by
// Initialize, and releases the World's structural lock.
func (c *Cursor) Reset() {
	c.archetypeIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matchedArchetypes = nil
	c.initialized = false
	c.lockErr = nil
	c.releaseColumnLocks()
	c.world.removeStructuralLock()
}

// CurrentEntity returns the EntityID at the current cursor position.
func (c *Cursor) CurrentEntity() (EntityID, error) {
	return c.currentArchetype.entities.At(c.entityIndex - 1), nil
}

// EntityAtOffset returns the EntityID at the specified offset from the
// current position, within the current archetype only.
func (c *Cursor) EntityAtOffset(offset int) (EntityID, error) {
	row := c.entityIndex - 1 + offset
	if row < 0 || row >= c.currentArchetype.Len() {
		return EntityID{}, InvalidEntityError{}
	}
	return c.currentArchetype.entities.At(row), nil
}

// EntityIndex returns the current row within the current archetype plus
// one (the current row is EntityIndex()-1).
func (c *Cursor) EntityIndex() int {
	return c.entityIndex
}

// RemainingInArchetype returns the number of rows left in the current
// archetype.
func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex
}

// TotalMatched returns the total number of entities matching the query,
// consuming and resetting the cursor.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.Initialize()
	}
	if c.lockErr != nil {
		return 0
	}

	total := 0
	for _, arch := range c.matchedArchetypes {
		total += arch.Len()
	}

	c.Reset()
	return total
}
