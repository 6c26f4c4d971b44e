package warehouse

import (
	"testing"
)

// TestQueryFiltering tests the basic query filtering capabilities
func TestQueryFiltering(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	type entitySetup struct {
		components []Component
		count      int
	}

	tests := []struct {
		name            string
		entitySetups    []entitySetup
		queryType       string // "and", "or", "not", "complex"
		queryComponents []Component
		expectedMatches int
	}{
		{
			name: "And query matches exact",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "and",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 5,
		},
		{
			name: "Or query matches either",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "or",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 30, // 5 + 10 + 15
		},
		{
			name: "Not query excludes",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
				{[]Component{healthComp}, 20},
			},
			queryType:       "not",
			queryComponents: []Component{velComp},
			expectedMatches: 30, // 10 + 20
		},
		{
			name: "Complex query",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp, healthComp}, 5},
				{[]Component{posComp, velComp}, 10},
				{[]Component{posComp, healthComp}, 15},
				{[]Component{velComp, healthComp}, 20},
				{[]Component{posComp}, 25},
				{[]Component{velComp}, 30},
				{[]Component{healthComp}, 35},
			},
			queryType:       "complex",
			queryComponents: []Component{posComp, velComp, healthComp},
			expectedMatches: 30, // (P AND V) OR (P AND H) = 10 + 15 + 5 (counted once)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()

			for _, setup := range tt.entitySetups {
				_, err := world.SpawnN(setup.count, setup.components...)
				if err != nil {
					t.Fatalf("Failed to create entities: %v", err)
				}
			}

			query := world.NewQuery()
			var queryNode QueryNode

			switch tt.queryType {
			case "and":
				interfaceComponents := make([]interface{}, len(tt.queryComponents))
				for i, comp := range tt.queryComponents {
					interfaceComponents[i] = comp
				}
				queryNode = query.And(interfaceComponents...)
			case "or":
				interfaceComponents := make([]interface{}, len(tt.queryComponents))
				for i, comp := range tt.queryComponents {
					interfaceComponents[i] = comp
				}
				queryNode = query.Or(interfaceComponents...)
			case "not":
				interfaceComponents := make([]interface{}, len(tt.queryComponents))
				for i, comp := range tt.queryComponents {
					interfaceComponents[i] = comp
				}
				queryNode = query.Not(interfaceComponents...)
			case "complex":
				andQuery1 := query.And(posComp, velComp)
				andQuery2 := query.And(posComp, healthComp)
				queryNode = query.Or(andQuery1, andQuery2)
			}

			cursor := world.NewCursor(queryNode)
			matchCount := 0
			for cursor.Next() {
				matchCount++
			}

			if matchCount != tt.expectedMatches {
				t.Errorf("Query matched %d entities, want %d", matchCount, tt.expectedMatches)
			}
		})
	}
}

// TestQueryWithCursor tests the cursor-based entity iteration
func TestQueryWithCursor(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	tests := []struct {
		name            string
		entityTypes     [][]Component
		queryComponents []Component
		expectedCount   int
	}{
		{
			name: "Query with position",
			entityTypes: [][]Component{
				{posComp},
				{posComp, velComp},
				{velComp},
			},
			queryComponents: []Component{posComp},
			expectedCount:   20, // 10 + 10
		},
		{
			name: "Query with position and velocity",
			entityTypes: [][]Component{
				{posComp},
				{posComp, velComp},
				{velComp},
			},
			queryComponents: []Component{posComp, velComp},
			expectedCount:   10,
		},
		{
			name: "Query with no matches",
			entityTypes: [][]Component{
				{posComp},
				{velComp},
			},
			queryComponents: []Component{healthComp},
			expectedCount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()

			for _, componentSet := range tt.entityTypes {
				_, err := world.SpawnN(10, componentSet...)
				if err != nil {
					t.Fatalf("Failed to create entities: %v", err)
				}
			}

			query := world.NewQuery()
			interfaceComponents := make([]interface{}, len(tt.queryComponents))
			for i, comp := range tt.queryComponents {
				interfaceComponents[i] = comp
			}
			queryNode := query.And(interfaceComponents...)

			// Method 1: Use cursor directly
			cursor := world.NewCursor(queryNode)
			count1 := 0
			for cursor.Next() {
				count1++
			}

			// Method 2: Use cursor's TotalMatched
			cursor = world.NewCursor(queryNode)
			count2 := cursor.TotalMatched()

			if count1 != count2 {
				t.Errorf("Cursor counts inconsistent: %d vs %d", count1, count2)
			}

			if count1 != tt.expectedCount {
				t.Errorf("Query matched %d entities, want %d", count1, tt.expectedCount)
			}
		})
	}
}

// TestQueryComponentAccess tests accessing component data through queries
func TestQueryComponentAccess(t *testing.T) {
	world := NewWorld()

	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	for i := 0; i < 10; i++ {
		pos := Position{X: float64(i), Y: float64(i * 2)}
		entities, err := world.SpawnN(1, posComp)
		if err != nil {
			t.Fatalf("Failed to create entity: %v", err)
		}
		entity := entities[0]

		posPtr, err := posComp.GetFromEntity(world, entity)
		if err != nil {
			t.Fatalf("GetFromEntity(position) error = %v", err)
		}
		*posPtr = pos

		vel := Velocity{X: float64(i) * 0.1, Y: float64(i) * 0.2}
		if err := world.InsertWithValue(entity, velComp, vel); err != nil {
			t.Fatalf("Failed to add velocity: %v", err)
		}
	}

	query := world.NewQuery()
	queryNode := query.And(interface{}(posComp), interface{}(velComp))
	cursor := world.NewCursor(queryNode)

	for cursor.Next() {
		entity, err := cursor.CurrentEntity()
		if err != nil {
			t.Fatalf("Failed to get current entity: %v", err)
		}

		pos, err := posComp.GetFromEntity(world, entity)
		if err != nil {
			t.Fatalf("GetFromEntity(position) error = %v", err)
		}
		vel, err := velComp.GetFromEntity(world, entity)
		if err != nil {
			t.Fatalf("GetFromEntity(velocity) error = %v", err)
		}

		pos.X += vel.X
		pos.Y += vel.Y
	}

	cursor = world.NewCursor(queryNode)
	for cursor.Next() {
		entity, err := cursor.CurrentEntity()
		if err != nil {
			t.Fatalf("Failed to get current entity: %v", err)
		}

		pos, err := posComp.GetFromEntity(world, entity)
		if err != nil {
			t.Fatalf("GetFromEntity(position) error = %v", err)
		}
		vel, err := velComp.GetFromEntity(world, entity)
		if err != nil {
			t.Fatalf("GetFromEntity(velocity) error = %v", err)
		}

		expectedX := pos.X - vel.X
		expectedY := pos.Y - vel.Y

		if !almostEqual(expectedX, vel.X*10, 0.0001) || !almostEqual(expectedY/2, vel.X*10, 0.0001) {
			t.Errorf("Position {%v, %v} with velocity {%v, %v} doesn't match expected pattern",
				pos.X-vel.X, pos.Y-vel.Y, vel.X, vel.Y)
		}
	}
}

// Helper function for float comparisons
func almostEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
