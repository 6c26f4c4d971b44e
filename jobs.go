package warehouse

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// JobFunc is one unit of work submitted to a JobPool. Returning a non-nil
// Continuation means the job isn't finished: it should be re-enqueued onto
// the named pool instead of being considered complete. This is the direct
// translation of the original's poll-based future suspension into Go:
// there is no user-schedulable future to poll in place, so a job instead
// says where it wants to resume and the pool re-enqueues it there.
type JobFunc func() (result any, next *Continuation, err error)

const (
	localTarget = "\x00local"
	anyTarget   = "\x00any"

	// maxNamedWorkers bounds how many distinct named workers one JobPool
	// will start, the same capacity-bounded-registry shape Cache imposes
	// on every other string-keyed table in this library.
	maxNamedWorkers = 64
)

// Continuation tells the pool where to resume a job that isn't done yet.
type Continuation struct {
	MoveTo string
}

// ContinueLocal resumes the job on the caller-drained local queue.
func ContinueLocal() Continuation { return Continuation{MoveTo: localTarget} }

// ContinueAnyWorker resumes the job on the shared worker pool.
func ContinueAnyWorker() Continuation { return Continuation{MoveTo: anyTarget} }

// ContinueNamed resumes the job on a specific named worker, created on
// first use if it doesn't already exist.
func ContinueNamed(name string) Continuation { return Continuation{MoveTo: name} }

// JobHandle is a future-like handle to one submitted job's eventual
// result.
type JobHandle struct {
	done   chan struct{}
	result any
	err    error
}

// Wait blocks until the job (and any continuations it requested) has
// fully completed.
func (h *JobHandle) Wait() (any, error) {
	<-h.done
	return h.result, h.err
}

// TryTake returns the job's result without blocking; ok is false if the
// job hasn't completed yet.
func (h *JobHandle) TryTake() (any, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return nil, false
	}
}

// Slot is one AllJobsHandle result: OK is false if that job returned an
// error. The returned slice never shrinks, so slot index always matches
// submission order. A job that panics or is dropped never completes, so
// TryTake keeps returning (nil, false) and Wait blocks.
type Slot struct {
	Value any
	OK    bool
}

// AllJobsHandle waits for every handle in a batch together.
type AllJobsHandle struct {
	handles []*JobHandle
}

// AllJobs bundles handles for a joint wait.
func AllJobs(handles ...*JobHandle) AllJobsHandle {
	return AllJobsHandle{handles: handles}
}

// TryTake returns (nil, false) unless every handle has completed, in which
// case it returns one Slot per handle in submission order.
func (a AllJobsHandle) TryTake() ([]Slot, bool) {
	slots := make([]Slot, len(a.handles))
	allDone := true
	for i, h := range a.handles {
		v, done := h.TryTake()
		if !done {
			allDone = false
			continue
		}
		slots[i] = Slot{Value: v, OK: h.err == nil}
	}
	if !allDone {
		return nil, false
	}
	return slots, true
}

// Wait blocks until every handle has completed.
func (a AllJobsHandle) Wait() []Slot {
	slots := make([]Slot, len(a.handles))
	for i, h := range a.handles {
		v, err := h.Wait()
		slots[i] = Slot{Value: v, OK: err == nil}
	}
	return slots
}

// AnyJobHandle resolves as soon as any one of its handles completes.
type AnyJobHandle struct {
	handles []*JobHandle
}

// AnyJob bundles handles for a race.
func AnyJob(handles ...*JobHandle) AnyJobHandle {
	return AnyJobHandle{handles: handles}
}

// TryTake returns the first completed handle's result, if any.
func (a AnyJobHandle) TryTake() (any, bool) {
	for _, h := range a.handles {
		if v, ok := h.TryTake(); ok {
			return v, true
		}
	}
	return nil, false
}

// JobPool is a worker pool plus optional named single-goroutine workers
// plus a caller-drained local queue, modeled on the original's job engine:
// Closure/Future duality becomes plain JobFunc/Continuation here.
type JobPool struct {
	mu         sync.Mutex
	named      Cache[chan func()]
	namedChans []chan func()
	anyCh      chan func()
	local      []func()
	wg         sync.WaitGroup
}

// NewJobPool starts a pool with the given number of shared worker
// goroutines.
func NewJobPool(workers int) *JobPool {
	if workers < 1 {
		workers = 1
	}
	p := &JobPool{
		named: FactoryNewCache[chan func()](maxNamedWorkers),
		anyCh: make(chan func(), 256),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.runWorker(p.anyCh)
	}
	return p
}

func (p *JobPool) runWorker(ch chan func()) {
	defer p.wg.Done()
	for task := range ch {
		p.runProtected(task)
	}
}

func (p *JobPool) runProtected(task func()) {
	defer func() {
		if r := recover(); r != nil {
			_ = bark.AddTrace(fmt.Errorf("job panic: %v", r))
		}
	}()
	task()
}

// NamedWorker ensures a dedicated single-goroutine worker exists for name.
// Calling it more than once for the same name is a no-op. The pool holds
// at most maxNamedWorkers distinct names; past that, new names fall back
// to running on the shared pool instead (see namedChannel).
func (p *JobPool) NamedWorker(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.named.GetIndex(name); ok {
		return
	}
	ch := make(chan func(), 256)
	if _, err := p.named.Register(name, ch); err != nil {
		_ = bark.AddTrace(fmt.Errorf("named worker %q: %w", name, err))
		return
	}
	p.namedChans = append(p.namedChans, ch)
	p.wg.Add(1)
	go p.runWorker(ch)
}

func (p *JobPool) namedChannel(name string) chan func() {
	p.NamedWorker(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.named.GetIndex(name)
	if !ok {
		return p.anyCh
	}
	return *p.named.GetItem(idx)
}

func (p *JobPool) resumer(h *JobHandle, fn JobFunc) func() {
	var run func(f JobFunc)
	run = func(f JobFunc) {
		value, next, err := f()
		if next == nil {
			h.result, h.err = value, err
			close(h.done)
			return
		}
		resumed := func() { run(f) }
		switch next.MoveTo {
		case localTarget:
			p.mu.Lock()
			p.local = append(p.local, resumed)
			p.mu.Unlock()
		case anyTarget:
			p.anyCh <- resumed
		default:
			p.namedChannel(next.MoveTo) <- resumed
		}
	}
	return func() { run(fn) }
}

// Submit runs fn on the shared worker pool.
func (p *JobPool) Submit(fn JobFunc) *JobHandle {
	h := &JobHandle{done: make(chan struct{})}
	p.anyCh <- p.resumer(h, fn)
	return h
}

// SubmitNamed runs fn on a dedicated named worker, created on first use.
func (p *JobPool) SubmitNamed(name string, fn JobFunc) *JobHandle {
	h := &JobHandle{done: make(chan struct{})}
	p.namedChannel(name) <- p.resumer(h, fn)
	return h
}

// Broadcast submits fn n times onto the shared worker pool, returning one
// handle per submission in order. Each call runs fn independently — fn is
// responsible for telling its n invocations apart (e.g. by closing over an
// index) if that matters.
func (p *JobPool) Broadcast(n int, fn JobFunc) []*JobHandle {
	handles := make([]*JobHandle, n)
	for i := 0; i < n; i++ {
		handles[i] = p.Submit(fn)
	}
	return handles
}

// SubmitLocal enqueues fn on the local queue; it does not run until the
// caller invokes DrainLocal.
func (p *JobPool) SubmitLocal(fn JobFunc) *JobHandle {
	h := &JobHandle{done: make(chan struct{})}
	p.mu.Lock()
	p.local = append(p.local, p.resumer(h, fn))
	p.mu.Unlock()
	return h
}

// DrainLocal runs every locally queued job on the calling goroutine,
// including any further jobs continuations enqueue locally, until the
// local queue is empty.
func (p *JobPool) DrainLocal() {
	for {
		p.mu.Lock()
		if len(p.local) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.local[0]
		p.local = p.local[1:]
		p.mu.Unlock()
		p.runProtected(task)
	}
}

// Close stops accepting new work on every channel and waits for every
// worker goroutine (shared and named) to drain and exit.
func (p *JobPool) Close() {
	close(p.anyCh)
	p.mu.Lock()
	for _, ch := range p.namedChans {
		close(ch)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
