package warehouse

import "testing"

type countingPlugin struct {
	installed *bool
}

func (p countingPlugin) Install(u *Universe) error {
	*p.installed = true
	return nil
}

func TestUniverseUsePlugin(t *testing.T) {
	universe := Factory.NewUniverse()
	installed := false

	if err := universe.Use(countingPlugin{installed: &installed}); err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if !installed {
		t.Errorf("plugin Install() was not called")
	}
}

func TestUniverseExecuteCommandsDrainsAllWorlds(t *testing.T) {
	universe := Factory.NewUniverse()
	posComp := FactoryNewComponent[Position]()

	universe.Simulation().Lock()
	if err := universe.Simulation().EnqueueSpawn(3, posComp); err != nil {
		t.Fatalf("EnqueueSpawn() error = %v", err)
	}

	query := universe.Simulation().NewQuery()
	cursor := universe.Simulation().NewCursor(query.And(posComp))
	count := 0
	for cursor.Next() {
		count++
	}
	if count != 0 {
		t.Fatalf("entities should not exist while the simulation world is locked, found %d", count)
	}

	universe.Simulation().Unlock()
	if err := universe.ExecuteCommands(); err != nil {
		t.Fatalf("ExecuteCommands() error = %v", err)
	}

	cursor = universe.Simulation().NewCursor(query.And(posComp))
	count = 0
	for cursor.Next() {
		count++
	}
	if count != 3 {
		t.Errorf("entity count after ExecuteCommands() = %d, want 3", count)
	}
}

func TestUniverseJobsLazyStart(t *testing.T) {
	universe := Factory.NewUniverse()
	defer universe.Close()

	pool := universe.Jobs(2)
	if pool == nil {
		t.Fatalf("Jobs() returned nil")
	}

	// a second call should return the same pool, not start a new one.
	again := universe.Jobs(8)
	if again != pool {
		t.Errorf("Jobs() called twice returned different pools")
	}

	h := pool.Submit(func() (any, *Continuation, error) { return "ok", nil, nil })
	v, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if v != "ok" {
		t.Errorf("job result = %v, want \"ok\"", v)
	}
}

func TestUniverseRunDrivesScheduler(t *testing.T) {
	universe := Factory.NewUniverse()
	posComp := FactoryNewComponent[Position]()
	ran := false

	_, err := universe.Scheduler().AddSystem(func(u *Universe) error {
		ran = true
		return u.Simulation().EnqueueSpawn(1, posComp)
	})
	if err != nil {
		t.Fatalf("AddSystem() error = %v", err)
	}

	if err := universe.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !ran {
		t.Fatalf("scheduler system did not run")
	}

	query := universe.Simulation().NewQuery()
	cursor := universe.Simulation().NewCursor(query.And(posComp))
	count := 0
	for cursor.Next() {
		count++
	}
	if count != 1 {
		t.Errorf("Run() should flush the simulation world's command buffer, found %d entities, want 1", count)
	}
}
