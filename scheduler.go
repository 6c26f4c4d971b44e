package warehouse

import (
	"runtime"
	"sort"
	"sync"
)

// SystemFunc is one scheduler node's body. It receives the Universe so it
// can reach the simulation world, its own systems-world node (for
// system-local state), and the resources world.
type SystemFunc func(*Universe) error

// systemNode is the hidden component every scheduler node entity carries,
// the systems-world analogue of SystemObject in the original source.
type systemNode struct {
	fn         SystemFunc
	priority   int
	order      int
	parallel   bool
	workerName string
}

var systemObjectComponent = FactoryNewComponent[systemNode]()

// SystemOption configures a node at AddSystem time.
type SystemOption func(*systemNode)

// SystemPriority sets a node's scheduling priority; higher runs first
// among siblings.
func SystemPriority(p int) SystemOption { return func(n *systemNode) { n.priority = p } }

// SystemOrder sets a stable tiebreaker among same-priority siblings.
func SystemOrder(o int) SystemOption { return func(n *systemNode) { n.order = o } }

// SystemParallelize marks a node as eligible to run concurrently with its
// siblings: whenever a run of contiguous same-parent nodes are all
// parallel-eligible and their dependencies are already satisfied,
// GraphScheduler dispatches them onto the Universe's JobPool instead of
// running them one at a time.
func SystemParallelize(on bool) SystemOption { return func(n *systemNode) { n.parallel = on } }

// SystemNamedWorker dispatches node onto a dedicated named JobPool worker
// instead of the shared pool, so every call runs in series on that one
// goroutine while still overlapping with its parallel-eligible siblings.
// Implies SystemParallelize(true).
func SystemNamedWorker(name string) SystemOption {
	return func(n *systemNode) {
		n.workerName = name
		n.parallel = true
	}
}

// IsParallel reports whether node was marked eligible for concurrent
// dispatch via SystemParallelize or SystemNamedWorker.
func (s *GraphScheduler) IsParallel(node EntityID) (bool, error) {
	ptr, err := systemObjectComponent.GetFromEntity(s.systems, node)
	if err != nil {
		return false, err
	}
	return ptr.parallel, nil
}

// GroupChild relates a group node to one of its member nodes. Grounded on
// the systems-as-entities self-hosting choice: the scheduler graph is
// itself stored as relations in a systems World rather than a bespoke
// graph type.
type GroupChild struct{}

// DependsOn relates a node to another node that must run first.
type DependsOn struct{}

// GraphScheduler runs every system node in a systems World in dependency
// and group order, five steps per run: find roots, check for cycles, run
// each group depth-first, drain nodes deferred by a not-yet-run
// dependency, then clear per-run state and flush the command buffer.
type GraphScheduler struct {
	systems *World
	ran     map[uint64]bool
	ranMu   sync.Mutex
}

func (s *GraphScheduler) hasRan(node EntityID) bool {
	s.ranMu.Lock()
	defer s.ranMu.Unlock()
	return s.ran[node.ToU64()]
}

func (s *GraphScheduler) markRan(node EntityID) {
	s.ranMu.Lock()
	s.ran[node.ToU64()] = true
	s.ranMu.Unlock()
}

func (s *GraphScheduler) ranCount() int {
	s.ranMu.Lock()
	defer s.ranMu.Unlock()
	return len(s.ran)
}

// NewGraphScheduler wraps a systems World.
func NewGraphScheduler(systemsWorld *World) *GraphScheduler {
	return &GraphScheduler{systems: systemsWorld}
}

// AddSystem spawns a new node entity carrying fn as its body.
func (s *GraphScheduler) AddSystem(fn SystemFunc, opts ...SystemOption) (EntityID, error) {
	node := systemNode{fn: fn}
	for _, opt := range opts {
		opt(&node)
	}
	e, err := s.systems.Spawn(systemObjectComponent)
	if err != nil {
		return EntityID{}, err
	}
	ptr, err := systemObjectComponent.GetFromEntity(s.systems, e)
	if err != nil {
		return EntityID{}, err
	}
	*ptr = node
	return e, nil
}

// Group marks child as belonging to parent's group.
func (s *GraphScheduler) Group(parent, child EntityID) error {
	return Relate[GroupChild](s.systems, parent, child, GroupChild{})
}

// After marks node as depending on dep.
func (s *GraphScheduler) After(node, dep EntityID) error {
	return Relate[DependsOn](s.systems, node, dep, DependsOn{})
}

// othersOf projects a Relation[R] slice down to the related entities,
// discarding payloads — for call sites (priority sort, graph traversal)
// that only care which nodes are reachable.
func othersOf[R any](rels []Relation[R]) []EntityID {
	if len(rels) == 0 {
		return nil
	}
	out := make([]EntityID, len(rels))
	for i, r := range rels {
		out[i] = r.Other
	}
	return out
}

// Context returns a SystemContext scoped to node, for reading system-local
// state components stored alongside SystemObject on the same entity.
func (s *GraphScheduler) Context(node EntityID) SystemContext {
	return SystemContext{LookupAccess: Lookup(s.systems, node)}
}

// SystemContext is the accessor a system body uses to reach its own
// system-local state (arbitrary components on its node entity), per
// 07_system_locals.rs's SystemContext shape.
type SystemContext struct {
	LookupAccess
}

func (s *GraphScheduler) nodes() []EntityID {
	var out []EntityID
	for _, a := range s.systems.archetypeList() {
		if !a.Has(systemObjectComponent.ID()) {
			continue
		}
		for i := 0; i < a.Len(); i++ {
			out = append(out, a.entities.At(i))
		}
	}
	return out
}

func (s *GraphScheduler) sortByPriority(nodes []EntityID) {
	sort.SliceStable(nodes, func(i, j int) bool {
		ni, _ := systemObjectComponent.GetFromEntity(s.systems, nodes[i])
		nj, _ := systemObjectComponent.GetFromEntity(s.systems, nodes[j])
		if ni.priority != nj.priority {
			return ni.priority > nj.priority
		}
		return ni.order < nj.order
	})
}

// roots returns every node with no incoming GroupChild edge — the
// top-level groups/systems a Run starts from.
func (s *GraphScheduler) roots() []EntityID {
	var out []EntityID
	for _, n := range s.nodes() {
		if len(RelationsIncoming[GroupChild](s.systems, n)) == 0 {
			out = append(out, n)
		}
	}
	s.sortByPriority(out)
	return out
}

// validateNoCycles walks the DependsOn graph with a three-color DFS,
// failing on the first back-edge found.
func (s *GraphScheduler) validateNoCycles() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[uint64]int)
	var visit func(EntityID) error
	visit = func(n EntityID) error {
		color[n.ToU64()] = gray
		for _, rel := range RelationsOutgoing[DependsOn](s.systems, n) {
			dep := rel.Other
			switch color[dep.ToU64()] {
			case gray:
				return CycleError{Node: dep}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[n.ToU64()] = black
		return nil
	}
	for _, n := range s.nodes() {
		if color[n.ToU64()] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes the full scheduler protocol: cycle check, root-down group
// execution, a deferred-dependency drain pass, then clears per-run state
// and flushes the command buffers of all three worlds (simulation,
// systems and resources) via Universe.ExecuteCommands.
func (s *GraphScheduler) Run(universe *Universe) error {
	if err := s.validateNoCycles(); err != nil {
		return err
	}
	s.ran = make(map[uint64]bool)
	var deferred []EntityID
	if err := s.runChildren(universe, s.roots(), &deferred); err != nil {
		return err
	}
	for progress := true; progress && len(deferred) > 0; {
		progress = false
		var remaining []EntityID
		for _, node := range deferred {
			before := s.ranCount()
			if err := s.runNode(universe, node, &remaining); err != nil {
				return err
			}
			if s.ranCount() > before {
				progress = true
			}
		}
		deferred = remaining
	}
	if len(deferred) > 0 {
		node := deferred[0]
		var dep EntityID
		if deps := RelationsOutgoing[DependsOn](s.systems, node); len(deps) > 0 {
			dep = deps[0].Other
		}
		s.ran = nil
		return DependencyError{Node: node, DependsOn: dep}
	}
	s.ran = nil
	return universe.ExecuteCommands()
}

// runNode runs node (and its group children, depth-first) if its
// dependencies have already run this pass; otherwise it appends node to
// deferred for a later retry.
func (s *GraphScheduler) runNode(universe *Universe, node EntityID, deferred *[]EntityID) error {
	if s.hasRan(node) {
		return nil
	}
	for _, rel := range RelationsOutgoing[DependsOn](s.systems, node) {
		if !s.hasRan(rel.Other) {
			*deferred = append(*deferred, node)
			return nil
		}
	}
	if err := s.runSingle(universe, node); err != nil {
		return err
	}
	s.markRan(node)
	children := othersOf(RelationsOutgoing[GroupChild](s.systems, node))
	s.sortByPriority(children)
	return s.runChildren(universe, children, deferred)
}

// runChildren runs a sibling list in order, dispatching any contiguous
// run of parallel-eligible, dependency-satisfied nodes onto the Universe's
// JobPool instead of running them one at a time. Nodes that aren't
// eligible (not marked parallel, already run, or still waiting on a
// dependency) fall back to runNode, which defers them the usual way.
func (s *GraphScheduler) runChildren(universe *Universe, nodes []EntityID, deferred *[]EntityID) error {
	i := 0
	for i < len(nodes) {
		if !s.eligibleForParallel(nodes[i]) {
			if err := s.runNode(universe, nodes[i], deferred); err != nil {
				return err
			}
			i++
			continue
		}
		j := i + 1
		for j < len(nodes) && s.eligibleForParallel(nodes[j]) {
			j++
		}
		if err := s.runParallelBatch(universe, nodes[i:j], deferred); err != nil {
			return err
		}
		i = j
	}
	return nil
}

func (s *GraphScheduler) eligibleForParallel(node EntityID) bool {
	if s.hasRan(node) {
		return false
	}
	for _, rel := range RelationsOutgoing[DependsOn](s.systems, node) {
		if !s.hasRan(rel.Other) {
			return false
		}
	}
	ptr, err := systemObjectComponent.GetFromEntity(s.systems, node)
	if err != nil {
		return false
	}
	return ptr.parallel
}

func (s *GraphScheduler) workerNameOf(node EntityID) (string, bool) {
	ptr, err := systemObjectComponent.GetFromEntity(s.systems, node)
	if err != nil || ptr.workerName == "" {
		return "", false
	}
	return ptr.workerName, true
}

// runParallelBatch dispatches every node in the batch onto the Universe's
// JobPool concurrently (named workers get their own dedicated channel,
// everyone else shares the pool), waits for all of them, then records
// each as ran and descends into its group children before moving on.
func (s *GraphScheduler) runParallelBatch(universe *Universe, nodes []EntityID, deferred *[]EntityID) error {
	pool := universe.Jobs(runtime.GOMAXPROCS(0))
	handles := make([]*JobHandle, len(nodes))
	for idx, node := range nodes {
		node := node
		body := func() (any, *Continuation, error) {
			return nil, nil, s.runSingle(universe, node)
		}
		if name, named := s.workerNameOf(node); named {
			handles[idx] = pool.SubmitNamed(name, body)
			continue
		}
		handles[idx] = pool.Submit(body)
	}
	for idx, h := range handles {
		if _, err := h.Wait(); err != nil {
			return err
		}
		s.markRan(nodes[idx])
	}
	for _, node := range nodes {
		children := othersOf(RelationsOutgoing[GroupChild](s.systems, node))
		s.sortByPriority(children)
		if err := s.runChildren(universe, children, deferred); err != nil {
			return err
		}
	}
	return nil
}

func (s *GraphScheduler) runSingle(universe *Universe, node EntityID) error {
	ptr, err := systemObjectComponent.GetFromEntity(s.systems, node)
	if err != nil {
		return err
	}
	return ptr.fn(universe)
}

// RunNode runs exactly one node's body with no dependency or group
// traversal, bypassing Run's bookkeeping — used by scheduleOperation to
// honor a one-off deferred run queued while the World was locked.
func (s *GraphScheduler) RunNode(universe *Universe, node EntityID) error {
	return s.runSingle(universe, node)
}

// EnqueueRun defers running node until w next unlocks, or runs it
// immediately if w isn't currently locked — the command-buffer counterpart
// to RunNode, for a system that wants to trigger a one-off sub-run without
// nesting a Run call inside the current one.
func (s *GraphScheduler) EnqueueRun(w *World, universe *Universe, node EntityID) error {
	if !w.Locked() {
		return s.RunNode(universe, node)
	}
	w.Enqueue(scheduleOperation{scheduler: s, universe: universe, node: node})
	return nil
}

// RunSystem runs node once, then runs substeps-1 additional passes over
// just that node's group children — spec.md's §6 library surface names
// this signature without describing its body; this is the plain reading
// of "run a node for N substeps".
func (s *GraphScheduler) RunSystem(universe *Universe, node EntityID, substeps int) error {
	if substeps < 1 {
		substeps = 1
	}
	if err := s.runSingle(universe, node); err != nil {
		return err
	}
	children := othersOf(RelationsOutgoing[GroupChild](s.systems, node))
	s.sortByPriority(children)
	for i := 1; i < substeps; i++ {
		for _, child := range children {
			if err := s.runSingle(universe, child); err != nil {
				return err
			}
		}
	}
	return nil
}
