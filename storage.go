package warehouse

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// globalEntryIndex backs every archetype table built by every World in the
// process, the way the teacher's single global EntryIndex underlies every
// Storage instance. Component column storage is per-archetype; this index
// is shared purely so table.Table's own bookkeeping (distinct from this
// package's own entity/row index in world.go) stays process-wide.
var globalEntryIndex = table.Factory.NewEntryIndex()

// rowIndexFor returns the schema bit assigned to a component type,
// registering it first if this is the first time the World has seen it.
func (w *World) rowIndexFor(c Component) uint32 {
	w.schema.Register(c)
	return w.schema.RowIndexFor(c)
}

// Register adds component types to the World's schema without creating an
// archetype, so later queries can reference them before any entity using
// them has been spawned.
func (w *World) Register(comps ...Component) {
	ets := make([]table.ElementType, len(comps))
	for i, c := range comps {
		ets[i] = c
	}
	w.schema.Register(ets...)
}

func (w *World) keyFor(comps ...Component) mask.Mask {
	var m mask.Mask
	for _, c := range comps {
		m.Mark(w.rowIndexFor(c))
	}
	return m
}

// NewOrExistingArchetype returns the archetype for exactly this component
// set, creating it on first use.
func (w *World) NewOrExistingArchetype(comps ...Component) (*archetype, error) {
	key := w.keyFor(comps...)
	if a, ok := w.byMask[key]; ok {
		return a, nil
	}
	w.nextArchID++
	a, err := newArchetype(w.schema, globalEntryIndex, w.nextArchID, key, comps...)
	if err != nil {
		w.nextArchID--
		return nil, err
	}
	w.byMask[key] = a
	w.all = append(w.all, a)
	return a, nil
}

func (w *World) archetypeList() []*archetype {
	return w.all
}

// Transfer moves entities out of w and into target, the cross-World
// counterpart to Insert/Remove's within-World archetype migration. Each
// moved entity gets a fresh EntityID in target; its EntityID in w becomes
// invalid.
// Grounded on the teacher's storage.go TransferEntities, generalized from
// Storage to World and from Entity (table.Entry-shaped) to EntityID.
func (w *World) Transfer(target *World, entities ...EntityID) error {
	if w.Locked() {
		return LockedStorageError{}
	}
	for _, e := range entities {
		rec, ok := w.recordFor(e)
		if !ok {
			continue
		}
		comps := componentsOf(rec.archetype)
		target.Register(comps...)
		destArch, err := target.NewOrExistingArchetype(comps...)
		if err != nil {
			return err
		}
		if err := rec.archetype.tbl.TransferEntries(destArch.tbl, rec.row); err != nil {
			return fmt.Errorf("failed to transfer entity: %w", err)
		}
		moved, _, _ := rec.archetype.remove(e)
		if moved.Valid() {
			w.entities[moved.ID-1].row = rec.row
		}
		w.free(e)

		newE := target.allocate()
		newRow := destArch.insert(newE)
		target.entities[newE.ID-1].archetype = destArch
		target.entities[newE.ID-1].row = newRow
	}
	return nil
}
