package warehouse

import "github.com/TheBitDrifter/table"

// factory implements the factory pattern for warehouse's top-level types.
type factory struct{}

// Factory is the global factory instance for creating warehouse types.
var Factory factory

// NewWorld creates a locking World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewUnsafeWorld creates a World through NewUnsafeWorld (see its doc for
// how it differs from NewWorld).
func (f factory) NewUnsafeWorld() *World {
	return NewUnsafeWorld()
}

// NewQuery creates a new Query instance.
func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor creates a new Cursor over world matching query.
func (f factory) NewCursor(query QueryNode, world *World) *Cursor {
	return newCursor(query, world)
}

// NewUniverse creates a Universe with its three constituent Worlds wired.
func (f factory) NewUniverse() *Universe {
	return newUniverse()
}

// FactoryNewComponent creates a new AccessibleComponent for type T and
// registers its identity in the process-wide component registry so
// archetype migration can project TypeHash sets back into Component
// values (see componentsOf in world.go).
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	comp := AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
	registerComponentIdentity(comp)
	return comp
}

// FactoryNewCache creates a new Cache with the specified capacity. Slot 0
// is reserved, so the first registered item gets index 1.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		items:       make([]T, 1, cap+1),
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
