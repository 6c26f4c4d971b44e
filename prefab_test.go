package warehouse

import "testing"

type mapProcessor map[EntityID]EntityID

func (m mapProcessor) RemapEntity(local EntityID) (EntityID, bool) {
	id, ok := m[local]
	return id, ok
}

func TestPrefabInstantiateSimpleValues(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()

	prefab := Prefab{
		Entities: []PrefabEntity{
			{
				LocalID: EntityID{ID: 1},
				Values: map[TypeHash]any{
					posComp.ID(): Position{X: 1, Y: 2},
				},
			},
		},
	}

	ids, err := prefab.Instantiate(world, nil)
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Instantiate() returned %d entities, want 1", len(ids))
	}

	pos, err := posComp.GetFromEntity(world, ids[0])
	if err != nil {
		t.Fatalf("GetFromEntity() error = %v", err)
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Errorf("Position = %+v, want {1 2}", pos)
	}
}

type ownerComp struct {
	Owner EntityID
}

func TestPrefabInstantiateRemapsIntraPrefabReferences(t *testing.T) {
	world := NewWorld()
	ownerHandle := FactoryNewComponent[ownerComp]()

	local1 := EntityID{ID: 1}
	local2 := EntityID{ID: 2}

	prefab := Prefab{
		Entities: []PrefabEntity{
			{LocalID: local1, Values: map[TypeHash]any{}},
			{
				LocalID: local2,
				Values: map[TypeHash]any{
					ownerHandle.ID(): ownerComp{Owner: local1},
				},
			},
		},
	}

	ids, err := prefab.Instantiate(world, nil)
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}

	owner, err := ownerHandle.GetFromEntity(world, ids[1])
	if err != nil {
		t.Fatalf("GetFromEntity() error = %v", err)
	}
	if owner.Owner != ids[0] {
		t.Errorf("remapped owner = %v, want %v (the prefab's own first entity)", owner.Owner, ids[0])
	}
}

func TestPrefabInstantiateFallsBackToProcessor(t *testing.T) {
	world := NewWorld()
	ownerHandle := FactoryNewComponent[ownerComp]()

	externalEntities, err := world.SpawnN(1)
	if err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}
	external := externalEntities[0]

	outsideRef := EntityID{ID: 999}
	proc := mapProcessor{outsideRef: external}

	prefab := Prefab{
		Entities: []PrefabEntity{
			{
				LocalID: EntityID{ID: 1},
				Values: map[TypeHash]any{
					ownerHandle.ID(): ownerComp{Owner: outsideRef},
				},
			},
		},
	}

	ids, err := prefab.Instantiate(world, proc)
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}

	owner, err := ownerHandle.GetFromEntity(world, ids[0])
	if err != nil {
		t.Fatalf("GetFromEntity() error = %v", err)
	}
	if owner.Owner != external {
		t.Errorf("remapped owner = %v, want external entity %v", owner.Owner, external)
	}
}
