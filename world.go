package warehouse

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

const structuralLockBit uint32 = 0

// World owns one archetype registry, one entity index, the three change
// journals, and the relation store for a single simulation space. It is
// the central type this library revolves around, replacing the teacher's
// lower-level Storage with the full spec surface (spawn/despawn/insert/
// remove/query/lookup/relate/traverse) while reusing the teacher's
// archetype-registry-by-mask and lock-gated command queue mechanism.
type World struct {
	mu       sync.RWMutex
	locking  bool
	schema   table.Schema

	nextArchID archetypeID
	byMask     map[mask.Mask]*archetype
	all        []*archetype

	entities []entityRecord
	freeList []uint32

	structuralLocks mask.Mask256
	opQueue         EntityOperationsQueue

	journal   *changeJournal
	relations *relationStore
}

// NewWorld returns a World with column and structural locking enforced —
// the default, safe for concurrent systems.
func NewWorld() *World {
	return newWorld(true)
}

// NewUnsafeWorld returns a World whose locking flag is false. Nothing reads
// that flag: column locks, SDIR pins and the structural lock are enforced
// exactly as on a World from NewWorld, so the two behave the same.
func NewUnsafeWorld() *World {
	return newWorld(false)
}

func newWorld(locking bool) *World {
	return &World{
		locking:   locking,
		schema:    table.Factory.NewSchema(),
		byMask:    make(map[mask.Mask]*archetype),
		opQueue:   &entityOperationsQueue{},
		journal:   newChangeJournal(),
		relations: newRelationStore(),
	}
}

// Locked reports whether the World is structurally locked (by Lock or by
// an iterating Cursor). While it is, SpawnN, Despawn, Insert and Remove
// return LockedStorageError and the Enqueue* methods queue their work.
func (w *World) Locked() bool {
	return !w.structuralLocks.IsEmpty()
}

func (w *World) addStructuralLock() {
	w.structuralLocks.Mark(structuralLockBit)
}

func (w *World) removeStructuralLock() {
	w.structuralLocks.Unmark(structuralLockBit)
	if w.structuralLocks.IsEmpty() {
		if err := w.opQueue.ProcessAll(w); err != nil {
			panic(fmt.Errorf("error draining command buffer: %w", err))
		}
	}
}

// Lock sets the structural lock until Unlock. While it is set, SpawnN,
// Despawn, Insert and Remove return LockedStorageError; only EnqueueSpawn,
// EnqueueDespawn and Enqueue defer their work into the command queue.
func (w *World) Lock() { w.addStructuralLock() }

// Unlock releases the structural lock and drains the command queue.
func (w *World) Unlock() { w.removeStructuralLock() }

func (w *World) allocate() EntityID {
	if n := len(w.freeList); n > 0 {
		id := w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		rec := &w.entities[id-1]
		rec.alive = true
		return EntityID{ID: id, Generation: rec.generation}
	}
	w.entities = append(w.entities, entityRecord{generation: 1, alive: true})
	id := uint32(len(w.entities))
	return EntityID{ID: id, Generation: 1}
}

func (w *World) free(e EntityID) {
	rec := &w.entities[e.ID-1]
	rec.alive = false
	rec.generation++
	rec.archetype = nil
	w.freeList = append(w.freeList, e.ID)
}

// recordFor resolves an EntityID against the entity index, validating
// generation.
func (w *World) recordFor(e EntityID) (entityRecord, bool) {
	if e.ID == 0 || int(e.ID) > len(w.entities) {
		return entityRecord{}, false
	}
	rec := w.entities[e.ID-1]
	if !rec.alive || rec.generation != e.Generation {
		return entityRecord{}, false
	}
	return rec, true
}

// Valid reports whether e currently refers to a live entity in this World.
func (w *World) Valid(e EntityID) bool {
	_, ok := w.recordFor(e)
	return ok
}

// Spawn creates one entity with the given components.
func (w *World) Spawn(comps ...Component) (EntityID, error) {
	ids, err := w.SpawnN(1, comps...)
	if err != nil {
		return EntityID{}, err
	}
	return ids[0], nil
}

// SpawnN creates n entities sharing the given component set.
func (w *World) SpawnN(n int, comps ...Component) ([]EntityID, error) {
	if w.Locked() {
		return nil, LockedStorageError{}
	}
	arch, err := w.NewOrExistingArchetype(comps...)
	if err != nil {
		return nil, err
	}
	if hash, contended := arch.sdirContended(); contended {
		return nil, ContendedError{Type: hash}
	}
	if _, err := arch.tbl.NewEntries(n); err != nil {
		return nil, err
	}
	ids := make([]EntityID, n)
	for i := 0; i < n; i++ {
		e := w.allocate()
		row := arch.insert(e)
		w.entities[e.ID-1].archetype = arch
		w.entities[e.ID-1].row = row
		ids[i] = e
		w.journal.recordAdded(arch, e)
	}
	return ids, nil
}

// Despawn removes entities from the World, swap-removing their archetype
// rows.
func (w *World) Despawn(es ...EntityID) error {
	if w.Locked() {
		return LockedStorageError{}
	}
	for _, e := range es {
		rec, ok := w.recordFor(e)
		if !ok {
			continue
		}
		if rec.onDestroy != nil {
			rec.onDestroy(e)
		}
		if _, err := rec.archetype.tbl.DeleteEntries(rec.row); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		moved, _, _ := rec.archetype.remove(e)
		if moved.Valid() {
			w.entities[moved.ID-1].row = rec.row
		}
		w.journal.recordRemoved(rec.archetype, e)
		w.relations.dropEntity(e)
		w.free(e)
	}
	return nil
}

// EnqueueSpawn queues entity creation for when the World next unlocks, or
// creates them immediately if it is not currently locked.
func (w *World) EnqueueSpawn(n int, comps ...Component) error {
	if !w.Locked() {
		_, err := w.SpawnN(n, comps...)
		return err
	}
	w.opQueue.Enqueue(spawnOperation{count: n, components: comps})
	return nil
}

// EnqueueDespawn queues entity destruction for when the World next
// unlocks, or destroys immediately if it is not currently locked.
func (w *World) EnqueueDespawn(es ...EntityID) error {
	if !w.Locked() {
		return w.Despawn(es...)
	}
	for _, e := range es {
		w.opQueue.Enqueue(despawnOperation{entity: e})
	}
	return nil
}

// Insert adds a component to an entity, migrating it to the archetype for
// its new component set.
func (w *World) Insert(e EntityID, c Component) error {
	return w.insert(e, c, nil)
}

// InsertWithValue adds a component to an entity with an initial value. If
// the entity already carries the component, its value is overwritten in
// place and the entity does not migrate.
func (w *World) InsertWithValue(e EntityID, c Component, value any) error {
	return w.insert(e, c, value)
}

func (w *World) insert(e EntityID, c Component, value any) error {
	if w.Locked() {
		return LockedStorageError{}
	}
	rec, ok := w.recordFor(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	origin := rec.archetype
	if origin.Has(typeHashOf(c)) {
		if value == nil {
			return ComponentExistsError{Type: typeHashOf(c)}
		}
		return (dynamicAccessor{}).set(origin.tbl, rec.row, value)
	}
	comps := append(componentsOf(origin), c)
	dest, err := w.NewOrExistingArchetype(comps...)
	if err != nil {
		return err
	}
	if hash, contended := dest.sdirContended(); contended {
		return ContendedError{Type: hash}
	}
	if err := w.migrate(e, &rec, origin, dest); err != nil {
		return err
	}
	if value != nil {
		if err := (dynamicAccessor{}).set(dest.tbl, rec.row, value); err != nil {
			return err
		}
	}
	w.journal.recordUpdated(dest, e)
	return nil
}

// Remove drops a component from an entity, migrating it to the archetype
// for its new, smaller component set.
func (w *World) Remove(e EntityID, c Component) error {
	if w.Locked() {
		return LockedStorageError{}
	}
	rec, ok := w.recordFor(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	origin := rec.archetype
	if !origin.Has(typeHashOf(c)) {
		return ComponentNotFoundError{Type: typeHashOf(c)}
	}
	comps := componentsOf(origin)
	remaining := make([]Component, 0, len(comps))
	for _, comp := range comps {
		if typeHashOf(comp) != typeHashOf(c) {
			remaining = append(remaining, comp)
		}
	}
	dest, err := w.NewOrExistingArchetype(remaining...)
	if err != nil {
		return err
	}
	if hash, contended := dest.sdirContended(); contended {
		return ContendedError{Type: hash}
	}
	if err := w.migrate(e, &rec, origin, dest); err != nil {
		return err
	}
	w.journal.recordUpdated(dest, e)
	return nil
}

// migrate transfers e's row from origin to dest, updating the entity index
// and both archetypes' dense row maps.
func (w *World) migrate(e EntityID, rec *entityRecord, origin, dest *archetype) error {
	if err := origin.tbl.TransferEntries(dest.tbl, rec.row); err != nil {
		return fmt.Errorf("failed to transfer entity: %w", err)
	}
	moved, _, _ := origin.remove(e)
	if moved.Valid() {
		w.entities[moved.ID-1].row = rec.row
	}
	newRow := dest.insert(e)
	w.entities[e.ID-1].archetype = dest
	w.entities[e.ID-1].row = newRow
	return nil
}

// componentsOf reconstructs the component identity list for an archetype
// (its columns, as Component values) by projecting against the process-wide
// component registry.
func componentsOf(a *archetype) []Component {
	comps := make([]Component, 0, len(a.columns))
	for _, reg := range registeredComponents {
		if _, ok := a.columns[reg.ID()]; ok {
			comps = append(comps, reg)
		}
	}
	return comps
}

// registeredComponents is a process-wide registry of every Component value
// ever created via FactoryNewComponent, so an archetype's TypeHash set can
// be projected back into concrete Component values for migration. Mirrors
// the teacher's reliance on a single global type registry (globalEntryIndex)
// for identity that outlives any one World.
var registeredComponents []Component

func registerComponentIdentity(c Component) {
	registeredComponents = append(registeredComponents, c)
}

// SetParent records parent as child's parent link (distinct from the typed
// Relate/Unrelate graph in relation.go). The link is only stored: Despawn
// does not read it and does not cascade to children.
func (w *World) SetParent(child, parent EntityID) error {
	crec, ok := w.recordFor(child)
	if !ok {
		return InvalidEntityError{Entity: child}
	}
	if crec.parent.Valid() {
		return EntityRelationError{Child: child, Parent: crec.parent}
	}
	w.entities[child.ID-1].parent = parent
	return nil
}

// SetDestroyCallback registers a callback invoked just before e's row is
// removed by Despawn.
func (w *World) SetDestroyCallback(e EntityID, cb EntityDestroyCallback) error {
	rec, ok := w.recordFor(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	_ = rec
	w.entities[e.ID-1].onDestroy = cb
	return nil
}

// Enqueue adds a raw operation to the command buffer, for callers building
// their own EntityOperation values.
func (w *World) Enqueue(op EntityOperation) {
	w.opQueue.Enqueue(op)
}

// NewQuery returns a fresh, empty Query builder.
func (w *World) NewQuery() Query {
	return newQuery()
}

// NewCursor returns a Cursor iterating entities matching node.
func (w *World) NewCursor(node QueryNode) *Cursor {
	return newCursor(node, w)
}

// Clear removes every entity and archetype from the World, returning it to
// a freshly constructed state (schema registrations are retained).
func (w *World) Clear() {
	w.byMask = make(map[mask.Mask]*archetype)
	w.all = nil
	w.entities = nil
	w.freeList = nil
	w.journal.clear()
}

// ClearChanges empties the added/removed/updated journals without
// touching any entity or archetype state.
func (w *World) ClearChanges() {
	w.journal.clear()
}
