// Package arena owns the fixed-capacity byte region a heap allocator carves
// blocks from, together with the break offset separating carved bytes from
// untouched capacity.
//
// The arena never reallocates: Grow and Retract only move the break inside
// the buffer created by New, so slices handed out over [0, Break()) stay
// valid until Release.
package arena

import (
	"errors"
	"fmt"
	"math"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrOverflow indicates that moving the break forward would exceed capacity.
	ErrOverflow = errors.New("arena: break would exceed capacity")

	// ErrUnderflow indicates that retracting the break would move it below zero.
	ErrUnderflow = errors.New("arena: break would drop below zero")

	// ErrReleased indicates the arena buffer has already been released.
	ErrReleased = errors.New("arena: released")

	// ErrTooLarge indicates a capacity that block offsets and sizes cannot
	// address. Header fields and references are 32 bits wide.
	ErrTooLarge = errors.New("arena: capacity exceeds 32-bit offsets")
)

// Arena is a fixed-size buffer plus a break offset.
//
// NOT thread-safe.
type Arena struct {
	data []byte
	brk  int
}

// New creates an arena of the given capacity. Capacity must be a positive
// multiple of format.MinBlockSize so every block boundary stays aligned, and
// at most math.MaxUint32.
func New(capacity int) (*Arena, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("arena: capacity must be positive, got %d", capacity)
	}
	if uint64(capacity) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrTooLarge, capacity)
	}
	if !format.IsAligned(capacity) {
		return nil, fmt.Errorf(
			"arena: capacity %d is not a multiple of %d",
			capacity,
			format.MinBlockSize,
		)
	}
	return &Arena{data: make([]byte, capacity)}, nil
}

// Bytes returns the whole buffer, including the unmanaged tail past the break.
func (a *Arena) Bytes() []byte { return a.data }

// Used returns the carved region [0, Break()).
func (a *Arena) Used() []byte { return a.data[:a.brk] }

// Cap returns the arena capacity in bytes.
func (a *Arena) Cap() int { return len(a.data) }

// Break returns the current break offset.
func (a *Arena) Break() int { return a.brk }

// Remaining returns the bytes still available past the break.
func (a *Arena) Remaining() int { return len(a.data) - a.brk }

// Released reports whether Release has been called.
func (a *Arena) Released() bool { return a.data == nil }

// Grow advances the break by n bytes and returns the offset where the new
// region starts. The arena is unchanged on error.
func (a *Arena) Grow(n int) (int, error) {
	if a.data == nil {
		return 0, ErrReleased
	}
	if n < 0 {
		return 0, fmt.Errorf("arena: negative grow %d", n)
	}
	if n > len(a.data)-a.brk {
		return 0, fmt.Errorf("%w (break=%d, grow=%d, cap=%d)", ErrOverflow, a.brk, n, len(a.data))
	}
	off := a.brk
	a.brk += n
	return off, nil
}

// Retract moves the break back by n bytes.
func (a *Arena) Retract(n int) error {
	if a.data == nil {
		return ErrReleased
	}
	if n < 0 || n > a.brk {
		return fmt.Errorf("%w (break=%d, retract=%d)", ErrUnderflow, a.brk, n)
	}
	a.brk -= n
	return nil
}

// Reset zeroes the buffer and moves the break back to 0.
func (a *Arena) Reset() error {
	if a.data == nil {
		return ErrReleased
	}
	clear(a.data)
	a.brk = 0
	return nil
}

// Snapshot copies the carved region into a fresh buffer that does not alias
// the arena.
func (a *Arena) Snapshot() []byte {
	if a.brk == 0 {
		return nil
	}
	// Every byte is overwritten by copy, so the zeroing make would do is wasted.
	out := dirtmake.Bytes(a.brk, a.brk)
	copy(out, a.data[:a.brk])
	return out
}

// Release drops the buffer. Every later mutating call returns ErrReleased.
func (a *Arena) Release() {
	a.data = nil
	a.brk = 0
}
