package warehouse

import "sync/atomic"

// TypeHash identifies a component or relation type across a World. It is
// the component's table.ElementType identifier, reused as-is so the lock
// and the underlying column agree on what "one type" means.
type TypeHash = uint32

func typeHashOf(c Component) TypeHash {
	return c.ID()
}

// columnLock is the per-archetype-per-component lock governing concurrent
// access to one column. SharedRead allows any number of concurrent readers.
// ExclusiveWrite allows exactly one writer and no readers. SharedDynamicImmutable
// (SDIR) behaves like SharedRead but is pinned for a View's lifetime instead
// of being acquired/released per query, so it is tracked separately from
// ordinary readers.
type columnLock struct {
	readers int32
	sdir    int32
	writer  int32
}

// AcquireRead takes a SharedRead lock. Returns false if an exclusive writer
// currently holds the column.
func (l *columnLock) AcquireRead() bool {
	if atomic.LoadInt32(&l.writer) != 0 {
		return false
	}
	atomic.AddInt32(&l.readers, 1)
	if atomic.LoadInt32(&l.writer) != 0 {
		atomic.AddInt32(&l.readers, -1)
		return false
	}
	return true
}

func (l *columnLock) ReleaseRead() {
	atomic.AddInt32(&l.readers, -1)
}

// AcquireWrite takes an ExclusiveWrite lock. Returns false if any reader,
// SDIR pin, or other writer currently holds the column.
func (l *columnLock) AcquireWrite() bool {
	if !atomic.CompareAndSwapInt32(&l.writer, 0, 1) {
		return false
	}
	if atomic.LoadInt32(&l.readers) != 0 || atomic.LoadInt32(&l.sdir) != 0 {
		atomic.StoreInt32(&l.writer, 0)
		return false
	}
	return true
}

func (l *columnLock) ReleaseWrite() {
	atomic.StoreInt32(&l.writer, 0)
}

// AcquireSDIR pins a SharedDynamicImmutable reservation for a View. Returns
// false if an exclusive writer currently holds the column.
func (l *columnLock) AcquireSDIR() bool {
	if atomic.LoadInt32(&l.writer) != 0 {
		return false
	}
	atomic.AddInt32(&l.sdir, 1)
	return true
}

func (l *columnLock) ReleaseSDIR() {
	atomic.AddInt32(&l.sdir, -1)
}

// Contended reports whether a writer currently holds the column, the
// condition a caller should check before deciding to block or retry.
func (l *columnLock) Contended() bool {
	return atomic.LoadInt32(&l.writer) != 0
}

// SDIRHeld reports whether a View currently pins this column's
// SharedDynamicImmutable reservation.
func (l *columnLock) SDIRHeld() bool {
	return atomic.LoadInt32(&l.sdir) != 0
}

// column pairs a component's TypeHash with the lock guarding concurrent
// access to that type within one archetype. The component data itself
// lives in the archetype's table.Table; column only arbitrates access to it.
type column struct {
	hash TypeHash
	lock columnLock
}
