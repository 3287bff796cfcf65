package alloc

import "sync"

// Locked serializes access to an Allocator with a single mutex held for the
// whole of each call. Block headers and free-list links share one buffer, so
// there is no finer-grained lock that would be correct.
type Locked struct {
	mu sync.Mutex
	al *Allocator
}

// NewLocked wraps al. The caller must stop using al directly.
func NewLocked(al *Allocator) *Locked {
	return &Locked{al: al}
}

// Alloc implements Heap.
func (l *Locked) Alloc(n uint32) (Ref, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.al.Alloc(n)
}

// Free implements Heap.
func (l *Locked) Free(ref Ref) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.al.Free(ref)
}

// Coalesce runs a coalescing pass under the lock.
func (l *Locked) Coalesce() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.al.Coalesce()
}

// Stats returns the counters under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.al.Stats()
}

// Do runs fn with exclusive access to the wrapped allocator, for inspection
// (walkers, snapshots) that must not interleave with Alloc or Free.
func (l *Locked) Do(fn func(al *Allocator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.al)
}

var (
	_ Heap = (*Allocator)(nil)
	_ Heap = (*Locked)(nil)
)
