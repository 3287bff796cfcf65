package dirty

// DirtyTracker is the minimal interface for tracking modified arena byte ranges.
//
// Allocators only notify; they never flush. A nil DirtyTracker is allowed
// wherever one is accepted.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the arena offset, length is the number of bytes.
	Add(off, length int)
}
