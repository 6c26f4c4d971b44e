package warehouse

// Plugin installs systems, resources, and components into a Universe at
// setup time — the composition seam spec.md's library surface calls for
// so a consumer can ship a reusable bundle of scheduler nodes without the
// Universe constructor knowing about it ahead of time.
type Plugin interface {
	Install(*Universe) error
}

// Universe composes the three Worlds a running simulation needs:
// simulation (gameplay/domain entities), systems (the scheduler graph,
// self-hosted as entities and relations), and resources (singleton
// globals). Grounded on the original's Universe type.
type Universe struct {
	simulation *World
	systems    *World
	resources  *Resources

	scheduler *GraphScheduler
	jobs      *JobPool
}

func newUniverse() *Universe {
	systemsWorld := NewWorld()
	resourcesWorld := NewWorld()
	res, err := newResourcesHandle(resourcesWorld)
	if err != nil {
		panic(err)
	}
	return &Universe{
		simulation: NewWorld(),
		systems:    systemsWorld,
		resources:  res,
		scheduler:  NewGraphScheduler(systemsWorld),
	}
}

// Simulation returns the gameplay/domain World.
func (u *Universe) Simulation() *World { return u.simulation }

// Systems returns the World backing the scheduler graph.
func (u *Universe) Systems() *World { return u.systems }

// Resources returns the singleton-component store.
func (u *Universe) Resources() *Resources { return u.resources }

// Scheduler returns the GraphScheduler bound to this Universe's systems
// World.
func (u *Universe) Scheduler() *GraphScheduler { return u.scheduler }

// Jobs returns the Universe's worker pool, starting one lazily on first
// use with the given worker count (ignored on later calls).
func (u *Universe) Jobs(workers int) *JobPool {
	if u.jobs == nil {
		u.jobs = NewJobPool(workers)
	}
	return u.jobs
}

// Use installs a Plugin into this Universe.
func (u *Universe) Use(plugin Plugin) error {
	return plugin.Install(u)
}

// Run drives one full scheduler pass over the systems graph.
func (u *Universe) Run() error {
	return u.scheduler.Run(u)
}

// ExecuteCommands drains the command buffer of all three Worlds, in
// simulation -> resources -> systems order. GraphScheduler.Run calls this
// itself as the protocol's final step; exported so a caller driving
// structural mutation outside of Run (e.g. between frames) can flush
// without a full scheduler pass.
func (u *Universe) ExecuteCommands() error {
	if err := u.simulation.opQueue.ProcessAll(u.simulation); err != nil {
		return err
	}
	if err := u.resources.World().opQueue.ProcessAll(u.resources.World()); err != nil {
		return err
	}
	return u.systems.opQueue.ProcessAll(u.systems)
}

// Close releases the Universe's worker pool, if one was started.
func (u *Universe) Close() {
	if u.jobs != nil {
		u.jobs.Close()
	}
}
