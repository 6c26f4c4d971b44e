package warehouse

// Resources is a singleton-component store: at most one instance of each
// component type lives on a single hidden entity, the way a Universe's
// global/shared state (current tick, asset handles, config) is meant to be
// reached without every system threading it through by hand. Grounded on
// the original's dedicated resources world, generalized here onto the same
// World/Component/EntityID machinery the simulation world itself uses
// rather than a bespoke map[TypeHash]any.
type Resources struct {
	world  *World
	entity EntityID
}

func newResourcesHandle(world *World) (*Resources, error) {
	e, err := world.Spawn()
	if err != nil {
		return nil, err
	}
	return &Resources{world: world, entity: e}, nil
}

// World returns the backing World, for callers that want to run queries
// over resource state directly.
func (r *Resources) World() *World { return r.world }

// SetResource installs or overwrites the singleton value for comp's type.
func SetResource[T any](r *Resources, comp AccessibleComponent[T], value T) error {
	rec, ok := r.world.recordFor(r.entity)
	if !ok {
		return InvalidEntityError{Entity: r.entity}
	}
	if rec.archetype.Has(comp.ID()) {
		ptr, err := comp.GetFromEntity(r.world, r.entity)
		if err != nil {
			return err
		}
		*ptr = value
		return nil
	}
	return r.world.InsertWithValue(r.entity, comp, value)
}

// GetResource returns the current singleton value for comp's type.
func GetResource[T any](r *Resources, comp AccessibleComponent[T]) (*T, error) {
	return comp.GetFromEntity(r.world, r.entity)
}

// HasResource reports whether comp's type currently has a singleton value
// installed.
func HasResource[T any](r *Resources, comp AccessibleComponent[T]) bool {
	rec, ok := r.world.recordFor(r.entity)
	if !ok {
		return false
	}
	return rec.archetype.Has(comp.ID())
}

// RemoveResource clears comp's singleton value.
func RemoveResource[T any](r *Resources, comp AccessibleComponent[T]) error {
	return r.world.Remove(r.entity, comp)
}
