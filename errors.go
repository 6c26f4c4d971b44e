package warehouse

import "fmt"

// LockedStorageError is returned when a structural operation (SpawnN,
// Despawn, Insert, Remove, Transfer) is attempted against a World that is
// structurally locked, by World.Lock or by an iterating Cursor.
type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

// InvalidEntityError is returned whenever an EntityID fails its
// generation check against the World's entity index: despawned, never
// spawned, or spawned in a different World.
type InvalidEntityError struct {
	Entity EntityID
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity: %v", e.Entity)
}

// MissingComponentError is returned when a fetch or lookup targets a
// component type the resolved archetype does not carry.
type MissingComponentError struct {
	Entity EntityID
	Type   TypeHash
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity %v has no component of type %d", e.Entity, e.Type)
}

// EmptyColumnSetError reports an empty component/column set.
// NewOrExistingArchetype, the Fetch constructors and NewView all accept an
// empty set, and none of them returns this error.
type EmptyColumnSetError struct{}

func (e EmptyColumnSetError) Error() string {
	return "component/column set must not be empty"
}

// BadTypeError is returned when a value passed to InsertWithValue (or
// a dynamic accessor) doesn't match the component's declared Go type.
type BadTypeError struct {
	Want, Got string
}

func (e BadTypeError) Error() string {
	return fmt.Sprintf("invalid value type %s for component %s", e.Got, e.Want)
}

// ContendedError is returned when AcquireRead/AcquireWrite fails because
// another caller currently holds the column.
type ContendedError struct {
	Type TypeHash
}

func (e ContendedError) Error() string {
	return fmt.Sprintf("column %d is contended", e.Type)
}

// CycleError is returned by the scheduler when the systems graph contains
// a dependency cycle and therefore has no valid run order.
type CycleError struct {
	Node EntityID
}

func (e CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected at system %v", e.Node)
}

// DependencyError is returned by GraphScheduler.Run when a system's
// DependsOn target never runs during the pass, so the deferred system can
// never be scheduled.
type DependencyError struct {
	Node, DependsOn EntityID
}

func (e DependencyError) Error() string {
	return fmt.Sprintf("system %v depends on missing system %v", e.Node, e.DependsOn)
}

// DeadlineError reports a job wait that ran past a deadline. JobHandle and
// AllJobsHandle waits take no deadline, and nothing in this package returns
// this error.
type DeadlineError struct{}

func (e DeadlineError) Error() string {
	return "deadline exceeded waiting for job"
}

// SendError reports a job submitted to a worker pool that has already been
// shut down. JobPool.Submit does not return it: submitting after Close
// sends on the closed job channel and panics.
type SendError struct{}

func (e SendError) Error() string {
	return "job pool is closed"
}

// EntityRelationError is returned by SetParent when the child already has
// a parent set (a nonzero parent ID, whether or not that entity is alive).
type EntityRelationError struct {
	Child, Parent EntityID
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("child (%v) already has parent %v", e.Child, e.Parent)
}

// ComponentExistsError is returned by Insert when the entity's archetype
// already carries the component type and no value is given.
type ComponentExistsError struct {
	Type TypeHash
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity: type %d", e.Type)
}

// ComponentNotFoundError is returned by Remove when the entity's archetype
// does not carry the component type, and by Prefab.Instantiate for a
// TypeHash that no registered component has.
type ComponentNotFoundError struct {
	Type TypeHash
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: type %d", e.Type)
}

// CacheFullError is returned by Cache.Register when the cache has already
// registered maxCapacity items.
type CacheFullError struct {
	Capacity int
}

func (e CacheFullError) Error() string {
	return fmt.Sprintf("cache at maximum capacity (%d)", e.Capacity)
}
