package alloc

import "errors"

var (
	// ErrZeroSize indicates a zero-byte request. Nothing is allocated.
	ErrZeroSize = errors.New("alloc: zero-size request")

	// ErrNoSpace indicates that no free block fits and growing the break would
	// exceed the arena capacity.
	ErrNoSpace = errors.New("alloc: out of memory")

	// ErrBadRef indicates a reference that cannot name a block of this arena.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrClosed indicates the allocator has been closed.
	ErrClosed = errors.New("alloc: allocator closed")

	// ErrBadConfig indicates an unusable Config.
	ErrBadConfig = errors.New("alloc: invalid config")
)
