package warehouse

import "testing"

func TestFetch2ReadWrite(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	entities, err := world.SpawnN(3, posComp, velComp)
	if err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}
	for i, e := range entities {
		if err := world.InsertWithValue(e, velComp, Velocity{X: float64(i + 1), Y: 0}); err != nil {
			t.Fatalf("InsertWithValue() error = %v", err)
		}
	}

	cursor, pos, vel := Fetch2(world, WriteOf(posComp), ReadOf(velComp))

	count := 0
	for cursor.Next() {
		p := pos.Value(cursor)
		v := vel.Value(cursor)
		p.X += v.X
		count++
	}

	if count != 3 {
		t.Fatalf("Fetch2 iterated %d rows, want 3", count)
	}

	cursor2 := world.NewCursor(world.NewQuery().And(posComp))
	total := 0.0
	for cursor2.Next() {
		p := posComp.GetFromCursor(cursor2)
		total += p.X
	}
	if total != 1+2+3 {
		t.Errorf("sum of updated positions = %v, want 6", total)
	}
}

func TestFetchExcludeAndInclude(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	if _, err := world.SpawnN(2, posComp, velComp); err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}
	if _, err := world.SpawnN(3, posComp, velComp, healthComp); err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}

	cursor, _, _ := Fetch2(world, ReadOf(posComp), ExcludeOf(healthComp))
	count := 0
	for cursor.Next() {
		count++
	}
	if count != 2 {
		t.Errorf("Fetch with Exclude matched %d rows, want 2", count)
	}

	cursor2, _, _, _ := Fetch3(world, ReadOf(posComp), ReadOf(velComp), IncludeOf(healthComp))
	count2 := 0
	for cursor2.Next() {
		count2++
	}
	if count2 != 3 {
		t.Errorf("Fetch with Include matched %d rows, want 3", count2)
	}
}

func TestFetchOption(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()
	healthComp := FactoryNewComponent[Health]()

	withHealth, err := world.SpawnN(1, posComp, healthComp)
	if err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}
	if err := world.InsertWithValue(withHealth[0], healthComp, Health{Current: 5, Max: 10}); err != nil {
		t.Fatalf("InsertWithValue() error = %v", err)
	}
	if _, err := world.SpawnN(1, posComp); err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}

	cursor, _, health := Fetch2(world, ReadOf(posComp), OptionOf(healthComp))

	present, missing := 0, 0
	for cursor.Next() {
		if h, ok := health.Value(cursor); ok {
			if h.Current != 5 {
				t.Errorf("Option value = %+v, want Current=5", h)
			}
			present++
		} else {
			missing++
		}
	}
	if present != 1 || missing != 1 {
		t.Errorf("present=%d missing=%d, want 1 and 1", present, missing)
	}
}

func TestFetchUpdateRecordsJournal(t *testing.T) {
	world := NewWorld()
	posComp := FactoryNewComponent[Position]()

	entities, err := world.SpawnN(2, posComp)
	if err != nil {
		t.Fatalf("SpawnN() error = %v", err)
	}
	world.ClearChanges()

	cursor, pos := buildUpdateFetch(world, posComp)
	for cursor.Next() {
		pos.Value(cursor).X = 1
	}

	updated := world.Updated()
	if len(updated) != 2 {
		t.Fatalf("Updated() after Update fetch = %v, want both entities", updated)
	}
	for _, e := range entities {
		if !containsEntity(updated, e) {
			t.Errorf("Updated() missing %v", e)
		}
	}
}

func buildUpdateFetch(world *World, posComp AccessibleComponent[Position]) (*Cursor, Update[Position]) {
	u := UpdateOf(posComp)
	node := buildFetchQuery(world, u)
	return world.NewCursor(node), u
}
