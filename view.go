package warehouse

// View is a read-mostly, parallel-safe window over every archetype
// matching a query: it reserves SharedDynamicImmutable (SDIR) on the given
// columns for its lifetime, so concurrent systems can each hold a View over
// overlapping columns without racing, released explicitly on Close rather
// than by finalizer. Grounded on crates/_/src/view.rs's View/
// EntitiesWorkGroup shape.
type View struct {
	world      *World
	comps      []Component
	archetypes []*archetype
	locked     []*column
	closed     bool
}

// NewView matches node against world's current archetypes and reserves SDIR
// on comps across every matched archetype. If any column is already under
// exclusive write, construction fails with a ContendedError and whatever
// locks were already acquired are released.
func NewView(world *World, node QueryNode, comps ...Component) (*View, error) {
	var matched []*archetype
	for _, a := range world.archetypeList() {
		if node.Evaluate(a, world) {
			matched = append(matched, a)
		}
	}
	v := &View{world: world, comps: comps, archetypes: matched}
	for _, a := range matched {
		for _, c := range comps {
			col, ok := a.columnFor(typeHashOf(c))
			if !ok {
				continue
			}
			if !col.lock.AcquireSDIR() {
				v.Close()
				return nil, ContendedError{Type: typeHashOf(c)}
			}
			v.locked = append(v.locked, col)
		}
	}
	return v, nil
}

// Close releases every SDIR reservation this View holds. Safe to call more
// than once.
func (v *View) Close() {
	if v.closed {
		return
	}
	for _, col := range v.locked {
		col.lock.ReleaseSDIR()
	}
	v.locked = nil
	v.closed = true
}

// Entities returns every entity across every matched archetype, in
// archetype-then-row order.
func (v *View) Entities() []EntityID {
	var out []EntityID
	for _, a := range v.archetypes {
		for i := 0; i < a.Len(); i++ {
			out = append(out, a.entities.At(i))
		}
	}
	return out
}

// EntitiesWorkGroup partitions the View's entities into groupCount
// balanced slices and returns the one at groupIndex, shrinking the
// effective group count so no group falls below minItemsPerGroup — a
// groupIndex beyond the effective count returns an empty slice, letting a
// caller spawn groupCount workers unconditionally and have the extras
// no-op. Signature matches spec.md's EntitiesWorkGroup exactly.
func (v *View) EntitiesWorkGroup(groupIndex, groupCount, minItemsPerGroup int) []EntityID {
	all := v.Entities()
	if groupCount <= 0 {
		groupCount = 1
	}
	effective := groupCount
	if minItemsPerGroup > 0 {
		if max := len(all) / minItemsPerGroup; max >= 1 && max < effective {
			effective = max
		}
	}
	if groupIndex >= effective {
		return nil
	}
	per := len(all) / effective
	rem := len(all) % effective
	start := groupIndex*per + min(groupIndex, rem)
	end := start + per
	if groupIndex < rem {
		end++
	}
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		start = len(all)
	}
	return all[start:end]
}
