/*
Package warehouse provides an archetype-based Entity-Component-System (ECS)
data engine for games and simulations.

Entities with the same component set are stored together in one archetype's
columnar table, keeping iteration cache-friendly; adding or removing a
component migrates an entity's row into the archetype for its new
component set. Component access is arbitrated per column with three lock
states (SharedRead, ExclusiveWrite, SharedDynamicImmutable) so a View can
hand out safe concurrent access to a system's worker pool without the
World's structural shape moving underneath it.

Core Concepts:

  - Entity: a generation-checked {ID, Generation} value, never a pointer.
  - Component: a data attribute attached to entities, created via
    FactoryNewComponent and identified by a process-wide TypeHash.
  - Archetype: the set of entities sharing one component type-set, backed
    by one table.Table.
  - Column: one component's storage within an archetype, plus the lock
    state guarding concurrent access to it.
  - World: owns the archetype registry, the entity index, the relation
    graph, and the change journals (added/removed/updated) for one
    simulation space.
  - Query / Lookup / View: Query composes a dynamic or typed Fetch over
    every matching archetype; Lookup resolves one already-known entity;
    View pins SDIR on a column set for safe concurrent, parallel reads.
  - Universe: composes a simulation World, a systems World (the scheduler
    graph, self-hosted as entities and relations), and a resources World
    (singleton globals).

Basic Usage:

	world := warehouse.NewWorld()

	position := warehouse.FactoryNewComponent[Position]()
	velocity := warehouse.FactoryNewComponent[Velocity]()

	world.SpawnN(100, position, velocity)

	query := world.NewQuery()
	cursor := world.NewCursor(query.And(position, velocity))

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Warehouse has no CLI, no file format, and no network surface: it is a
library a host application embeds directly.
*/
package warehouse
