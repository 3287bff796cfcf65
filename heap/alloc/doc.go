// Package alloc implements a first-fit heap allocator over a single
// fixed-capacity arena.
//
// # Overview
//
// Every block, free or allocated, is a 24-byte header followed by its
// payload. Free blocks are chained into an intrusive doubly-linked free list
// whose links are arena offsets stored in the headers themselves. There is
// no side table: the arena bytes are the whole allocator state apart from
// the list head and the arena break.
//
// # Allocator Interface
//
//   - Init(): reset the arena and seed the free list with one block
//   - Alloc(n): first-fit over the free list, falling back to growing the break
//   - Free(ref): push onto the free list, coalesce, then shrink
//   - Coalesce(): merge list neighbours that touch in the arena
//
// # Usage Example
//
//	a, err := arena.New(format.HeapMaxSize)
//	if err != nil {
//	    return err
//	}
//	al, err := alloc.New(a, nil, nil)
//	if err != nil {
//	    return err
//	}
//	defer al.Close()
//
//	ref, buf, err := al.Alloc(100)
//	if err != nil {
//	    return err // alloc.ErrNoSpace when the arena is exhausted
//	}
//	copy(buf, payload)
//
//	_ = al.Free(ref)
//
// # Allocation
//
// Requests are rounded up to a multiple of 8. The free list is scanned from
// the head and the first block that is large enough wins. If the leftover is
// at least one header plus 8 bytes, the block is split and the tail takes the
// original block's place in the list; otherwise the whole block is handed out
// and the slack stays with it for its lifetime. When nothing fits, a new
// block is carved at the break, or ErrNoSpace is returned with the arena
// untouched.
//
// # Free, Coalescing and Shrink
//
// A freed block is pushed at the head. Coalescing then walks the list and
// merges each block with its list successor when the successor begins where
// the block ends. Physically adjacent free blocks that are not list
// neighbours are left alone, so the result depends on free order:
//
//	A, B adjacent, A below B
//	Free(B); Free(A)  -> list A,B    -> merged
//	Free(A); Free(B)  -> list B,A    -> not merged
//
// Finally, if the head block is the topmost block, its footprint is at least
// 400 bytes and the break would stay at or above header+400, the break is
// retracted over it. Only the head is considered.
//
// # Errors
//
// Free(NilRef) and freeing an already-free block are silent no-ops.
// References that cannot name a block return ErrBadRef without touching
// the arena.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Wrap one in Locked to share it
// between goroutines.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap/arena: The backing buffer and break
//   - github.com/joshuapare/heapkit/heap/dirty: Tracks header writes for image flushes
//   - github.com/joshuapare/heapkit/heap/verify: Checks arena invariants
//   - github.com/joshuapare/heapkit/internal/format: Header layout and constants
package alloc
