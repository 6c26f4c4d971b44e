package warehouse

// Term is anything that can appear in a typed Fetch tuple: it knows which
// components it touches and whether it needs write access, so
// buildFetchQuery can build the dynamic Query (via maskFor/archetype.Mask) that selects
// matching archetypes before any row is ever read.
type Term interface {
	readSet() []Component
	writeSet() []Component
}

// EntityTerm fetches the EntityID of the current row — present in nearly
// every tuple, the way spec.md's Fetch list leads with `Entity`.
type EntityTerm struct{}

func (EntityTerm) readSet() []Component  { return nil }
func (EntityTerm) writeSet() []Component { return nil }

func (EntityTerm) value(c *Cursor) (EntityID, error) { return c.CurrentEntity() }

// Read fetches shared (*T) access to a component column.
type Read[T any] struct {
	comp AccessibleComponent[T]
}

// ReadOf builds a Read term over comp.
func ReadOf[T any](comp AccessibleComponent[T]) Read[T] { return Read[T]{comp: comp} }

func (r Read[T]) readSet() []Component  { return []Component{r.comp} }
func (r Read[T]) writeSet() []Component { return nil }

// lockRead marks r's column for a SharedRead acquisition on the backing
// Cursor, per the Read/Write term aliasing rule.
func (r Read[T]) lockRead() []Component { return []Component{r.comp} }

// Value returns the component value for the cursor's current row.
func (r Read[T]) Value(c *Cursor) *T { return r.comp.GetFromCursor(c) }

// Write fetches exclusive (*T) access to a component column.
type Write[T any] struct {
	comp AccessibleComponent[T]
}

// WriteOf builds a Write term over comp.
func WriteOf[T any](comp AccessibleComponent[T]) Write[T] { return Write[T]{comp: comp} }

func (w Write[T]) readSet() []Component  { return nil }
func (w Write[T]) writeSet() []Component { return []Component{w.comp} }

// lockWrite marks w's column for an ExclusiveWrite acquisition on the
// backing Cursor. Update embeds Write and inherits this.
func (w Write[T]) lockWrite() []Component { return []Component{w.comp} }

// Value returns a mutable pointer into the component column for the
// cursor's current row.
func (w Write[T]) Value(c *Cursor) *T { return w.comp.GetFromCursor(c) }

// Update is Write plus a journal notification: every call to Value marks
// the current entity as updated, matching spec.md §6's `update[T]` fetch
// that both grants mutable access and records the change.
type Update[T any] struct {
	Write[T]
}

// UpdateOf builds an Update term over comp.
func UpdateOf[T any](comp AccessibleComponent[T]) Update[T] {
	return Update[T]{Write: WriteOf(comp)}
}

// Value returns a mutable pointer and records the current entity as
// updated in the world's change journal.
func (u Update[T]) Value(c *Cursor) *T {
	if e, err := c.CurrentEntity(); err == nil {
		c.world.journal.recordUpdated(c.currentArchetype, e)
	}
	return u.Write.Value(c)
}

// Include requires a component be present without fetching it.
type Include[T any] struct {
	comp AccessibleComponent[T]
}

// IncludeOf builds an Include term over comp.
func IncludeOf[T any](comp AccessibleComponent[T]) Include[T] { return Include[T]{comp: comp} }

func (i Include[T]) readSet() []Component  { return []Component{i.comp} }
func (i Include[T]) writeSet() []Component { return nil }

// Exclude requires a component be absent. It contributes no readSet so
// buildFetchQuery wires it into a Not node instead of an And node.
type Exclude[T any] struct {
	comp AccessibleComponent[T]
}

// ExcludeOf builds an Exclude term over comp.
func ExcludeOf[T any](comp AccessibleComponent[T]) Exclude[T] { return Exclude[T]{comp: comp} }

func (e Exclude[T]) readSet() []Component  { return nil }
func (e Exclude[T]) writeSet() []Component { return nil }

// Option fetches a component that may or may not be present on the matched
// archetype; presence is checked per-row rather than folded into the
// archetype filter, the way spec.md describes an optional fetch.
type Option[T any] struct {
	comp AccessibleComponent[T]
}

// OptionOf builds an Option term over comp.
func OptionOf[T any](comp AccessibleComponent[T]) Option[T] { return Option[T]{comp: comp} }

func (o Option[T]) readSet() []Component  { return nil }
func (o Option[T]) writeSet() []Component { return nil }

// Value returns the component value for the current row and whether the
// current archetype actually carries the column.
func (o Option[T]) Value(c *Cursor) (*T, bool) {
	ok, v := o.comp.GetFromCursorSafe(c)
	return v, ok
}

func excludesOf(terms ...Term) []Component {
	var out []Component
	for _, t := range terms {
		if e, ok := t.(interface{ excludeSet() []Component }); ok {
			out = append(out, e.excludeSet()...)
		}
	}
	return out
}

func (e Exclude[T]) excludeSet() []Component { return []Component{e.comp} }

// buildFetchQuery composes an arbitrary number of Terms into one QueryNode
// (And of every readSet/writeSet, Not of every Exclude) ready to back a
// Cursor, mirroring spec.md's tuple Fetch composition up to 8-ary — Go
// generics make a variadic heterogeneous tuple awkward, so each arity gets
// its own constructor (Fetch2..Fetch8) below instead of one generic
// N-tuple type.
func buildFetchQuery(world *World, terms ...Term) QueryNode {
	q := world.NewQuery()
	var comps []Component
	for _, t := range terms {
		comps = append(comps, t.readSet()...)
		comps = append(comps, t.writeSet()...)
	}
	and := q.And(comps)
	if ex := excludesOf(terms...); len(ex) > 0 {
		return q.And(and, q.Not(ex))
	}
	return and
}

// lockSetsOf collects the columns a Read or Write/Update term actually
// dereferences per row, as opposed to readSet/writeSet's broader use in
// building the archetype mask (which also folds in Include). These are the
// columns buildFetchQuery's Cursor must hold a SharedRead/ExclusiveWrite
// lock on for the duration of iteration.
func lockSetsOf(terms ...Term) (reads, writes []Component) {
	for _, t := range terms {
		if lr, ok := t.(interface{ lockRead() []Component }); ok {
			reads = append(reads, lr.lockRead()...)
		}
		if lw, ok := t.(interface{ lockWrite() []Component }); ok {
			writes = append(writes, lw.lockWrite()...)
		}
	}
	return reads, writes
}

// Fetch2 composes two terms into one Query, returning a Cursor plus the
// term values themselves so the caller can read each term's Value per row.
func Fetch2[A, B Term](world *World, a A, b B) (*Cursor, A, B) {
	node := buildFetchQuery(world, a, b)
	reads, writes := lockSetsOf(a, b)
	return newLockedCursor(node, world, reads, writes), a, b
}

// Fetch3 composes three terms into one Query.
func Fetch3[A, B, C Term](world *World, a A, b B, c C) (*Cursor, A, B, C) {
	node := buildFetchQuery(world, a, b, c)
	reads, writes := lockSetsOf(a, b, c)
	return newLockedCursor(node, world, reads, writes), a, b, c
}

// Fetch4 composes four terms into one Query.
func Fetch4[A, B, C, D Term](world *World, a A, b B, c C, d D) (*Cursor, A, B, C, D) {
	node := buildFetchQuery(world, a, b, c, d)
	reads, writes := lockSetsOf(a, b, c, d)
	return newLockedCursor(node, world, reads, writes), a, b, c, d
}

// Fetch5 composes five terms into one Query.
func Fetch5[A, B, C, D, E Term](world *World, a A, b B, c C, d D, e E) (*Cursor, A, B, C, D, E) {
	node := buildFetchQuery(world, a, b, c, d, e)
	reads, writes := lockSetsOf(a, b, c, d, e)
	return newLockedCursor(node, world, reads, writes), a, b, c, d, e
}

// Fetch6 composes six terms into one Query.
func Fetch6[A, B, C, D, E, F Term](world *World, a A, b B, c C, d D, e E, f F) (*Cursor, A, B, C, D, E, F) {
	node := buildFetchQuery(world, a, b, c, d, e, f)
	reads, writes := lockSetsOf(a, b, c, d, e, f)
	return newLockedCursor(node, world, reads, writes), a, b, c, d, e, f
}

// Fetch7 composes seven terms into one Query.
func Fetch7[A, B, C, D, E, F, G Term](world *World, a A, b B, c C, d D, e E, f F, g G) (*Cursor, A, B, C, D, E, F, G) {
	node := buildFetchQuery(world, a, b, c, d, e, f, g)
	reads, writes := lockSetsOf(a, b, c, d, e, f, g)
	return newLockedCursor(node, world, reads, writes), a, b, c, d, e, f, g
}

// Fetch8 composes eight terms into one Query, the arity cap this port
// chose over the original's 16-ary tuples (Open Question, see DESIGN.md).
func Fetch8[A, B, C, D, E, F, G, H Term](world *World, a A, b B, c C, d D, e E, f F, g G, h H) (*Cursor, A, B, C, D, E, F, G, H) {
	node := buildFetchQuery(world, a, b, c, d, e, f, g, h)
	reads, writes := lockSetsOf(a, b, c, d, e, f, g, h)
	return newLockedCursor(node, world, reads, writes), a, b, c, d, e, f, g, h
}
