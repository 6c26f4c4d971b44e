package warehouse

import (
	"testing"
)

// Test component types, shared across this package's test files.
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

func TestEntityCreation(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	tests := []struct {
		name           string
		componentTypes []Component
		entityCount    int
	}{
		{"Single component", []Component{posComp}, 10},
		{"Multiple components", []Component{posComp, velComp}, 5},
		{"Large batch", []Component{posComp, velComp, healthComp}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()

			entities, err := world.SpawnN(tt.entityCount, tt.componentTypes...)
			if err != nil {
				t.Fatalf("SpawnN() error = %v", err)
			}

			if len(entities) != tt.entityCount {
				t.Errorf("Created %d entities, want %d", len(entities), tt.entityCount)
			}

			for i, e := range entities {
				if !e.Valid() {
					t.Errorf("Entity %d is invalid", i)
				}
			}

			if len(entities) > 0 {
				rec, ok := world.recordFor(entities[0])
				if !ok {
					t.Fatalf("Spawned entity not found in world")
				}
				comps := componentsOf(rec.archetype)
				if len(comps) != len(tt.componentTypes) {
					t.Errorf("Entity has %d components, want %d", len(comps), len(tt.componentTypes))
				}
			}
		})
	}
}

func TestSpawnEmptyComponentSet(t *testing.T) {
	world := NewWorld()
	entities, err := world.SpawnN(3)
	if err != nil {
		t.Fatalf("SpawnN() with no components should succeed (tag entity), got error: %v", err)
	}
	if len(entities) != 3 {
		t.Errorf("Created %d entities, want 3", len(entities))
	}
}

func TestComponentAddRemove(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	tests := []struct {
		name              string
		initialComponents []Component
		addComponents     []Component
		removeComponents  []Component
		finalCount        int
	}{
		{
			name:              "Add component",
			initialComponents: []Component{posComp},
			addComponents:     []Component{velComp},
			removeComponents:  nil,
			finalCount:        2,
		},
		{
			name:              "Remove component",
			initialComponents: []Component{posComp, velComp},
			addComponents:     nil,
			removeComponents:  []Component{velComp},
			finalCount:        1,
		},
		{
			name:              "Add and remove",
			initialComponents: []Component{posComp},
			addComponents:     []Component{velComp, healthComp},
			removeComponents:  []Component{posComp},
			finalCount:        2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()

			entities, err := world.SpawnN(1, tt.initialComponents...)
			if err != nil {
				t.Fatalf("Failed to create entity: %v", err)
			}
			entity := entities[0]

			for _, comp := range tt.addComponents {
				if err := world.Insert(entity, comp); err != nil {
					t.Errorf("Insert() error = %v", err)
				}
			}

			for _, comp := range tt.removeComponents {
				if err := world.Remove(entity, comp); err != nil {
					t.Errorf("Remove() error = %v", err)
				}
			}

			rec, ok := world.recordFor(entity)
			if !ok {
				t.Fatalf("entity missing from world after mutation")
			}
			comps := componentsOf(rec.archetype)
			if len(comps) != tt.finalCount {
				t.Errorf("Entity has %d components, want %d", len(comps), tt.finalCount)
			}
		})
	}
}

func TestComponentValues(t *testing.T) {
	world := NewWorld()

	positionComp := FactoryNewComponent[Position]()
	velocityComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	initialPos := Position{X: 1.0, Y: 2.0}
	initialVel := Velocity{X: 3.0, Y: 4.0}

	entities, err := world.SpawnN(1, healthComp)
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}
	entity := entities[0]

	if err := world.InsertWithValue(entity, positionComp, initialPos); err != nil {
		t.Fatalf("Failed to add position component: %v", err)
	}
	if err := world.InsertWithValue(entity, velocityComp, initialVel); err != nil {
		t.Fatalf("Failed to add velocity component: %v", err)
	}

	posPtr, err := positionComp.GetFromEntity(world, entity)
	if err != nil {
		t.Fatalf("GetFromEntity(position) error = %v", err)
	}
	velPtr, err := velocityComp.GetFromEntity(world, entity)
	if err != nil {
		t.Fatalf("GetFromEntity(velocity) error = %v", err)
	}

	if posPtr.X != initialPos.X || posPtr.Y != initialPos.Y {
		t.Errorf("Position = {%v, %v}, want {%v, %v}", posPtr.X, posPtr.Y, initialPos.X, initialPos.Y)
	}
	if velPtr.X != initialVel.X || velPtr.Y != initialVel.Y {
		t.Errorf("Velocity = {%v, %v}, want {%v, %v}", velPtr.X, velPtr.Y, initialVel.X, initialVel.Y)
	}

	posPtr.X, posPtr.Y = 5.0, 6.0
	velPtr.X, velPtr.Y = 7.0, 8.0

	posPtr2, _ := positionComp.GetFromEntity(world, entity)
	velPtr2, _ := velocityComp.GetFromEntity(world, entity)

	if posPtr2.X != 5.0 || posPtr2.Y != 6.0 {
		t.Errorf("Updated Position = {%v, %v}, want {5.0, 6.0}", posPtr2.X, posPtr2.Y)
	}
	if velPtr2.X != 7.0 || velPtr2.Y != 8.0 {
		t.Errorf("Updated Velocity = {%v, %v}, want {7.0, 8.0}", velPtr2.X, velPtr2.Y)
	}
}

func TestEntityGenerationReuse(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()

	e, err := world.Spawn(posComp)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := world.Despawn(e); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	if world.Valid(e) {
		t.Errorf("entity should be invalid after despawn")
	}

	e2, err := world.Spawn(posComp)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if e2.ID != e.ID {
		t.Fatalf("expected recycled slot %d, got %d", e.ID, e2.ID)
	}
	if e2.Generation != e.Generation+1 {
		t.Errorf("expected generation %d, got %d", e.Generation+1, e2.Generation)
	}
	if world.Valid(e) {
		t.Errorf("stale EntityID should remain invalid after slot recycling")
	}
	if !world.Valid(e2) {
		t.Errorf("recycled EntityID should be valid")
	}
}
