package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants runs every check in order and returns the first failure.
func AllInvariants(data []byte, brk, head int) error {
	if err := BlockTiling(data, brk); err != nil {
		return err
	}
	if err := FreeListLinks(data, brk, head); err != nil {
		return err
	}
	return AllocationFlags(data, brk, head)
}

// BlockTiling checks that the blocks in [0, brk) tile the region exactly:
// summing header plus payload over every block from offset 0 reaches brk
// with no gap or overlap, and every header is well formed.
func BlockTiling(data []byte, brk int) error {
	if brk < 0 || brk > len(data) {
		return &ValidationError{
			Type:    "BlockTiling",
			Message: fmt.Sprintf("break %d outside buffer of %d bytes", brk, len(data)),
			Offset:  -1,
		}
	}
	if !format.IsAligned(brk) {
		return &ValidationError{
			Type:    "BlockTiling",
			Message: fmt.Sprintf("break %d is not %d-byte aligned", brk, format.MinBlockSize),
			Offset:  -1,
		}
	}

	used := data[:brk]
	off := 0
	for off < brk {
		h, err := format.ReadHeader(used, off)
		if err != nil {
			return &ValidationError{
				Type:    "BlockTiling",
				Message: fmt.Sprintf("unreadable header: %v", err),
				Offset:  off,
			}
		}
		if h.Size <= 0 || !format.IsAligned(h.Size) {
			return &ValidationError{
				Type:    "BlockTiling",
				Message: fmt.Sprintf("payload size %d is not a positive multiple of %d", h.Size, format.MinBlockSize),
				Offset:  off,
			}
		}
		end := h.End(off)
		if end > brk {
			return &ValidationError{
				Type:    "BlockTiling",
				Message: fmt.Sprintf("block ends at %d past break %d", end, brk),
				Offset:  off,
				Details: map[string]interface{}{"size": h.Size, "break": brk},
			}
		}
		if h.Allocated && (h.Prev != format.NoBlock || h.Next != format.NoBlock) {
			return &ValidationError{
				Type:    "BlockTiling",
				Message: "allocated block carries free-list links",
				Offset:  off,
				Details: map[string]interface{}{"prev": h.Prev, "next": h.Next},
			}
		}
		off = end
	}
	return nil
}

// FreeListLinks walks the list from head and checks that it terminates,
// every node is a free block below brk, each back link names the node
// before it, and no node appears twice.
func FreeListLinks(data []byte, brk, head int) error {
	if brk < 0 || brk > len(data) {
		return &ValidationError{Type: "FreeListLinks", Message: "break outside buffer", Offset: -1}
	}
	used := data[:brk]
	seen := make(map[int]struct{})
	prev := format.NoBlock

	for cur := head; cur != format.NoBlock; {
		if _, dup := seen[cur]; dup {
			return &ValidationError{
				Type:    "FreeListLinks",
				Message: "free list revisits a block (cycle)",
				Offset:  cur,
			}
		}
		seen[cur] = struct{}{}

		h, err := format.ReadHeader(used, cur)
		if err != nil {
			return &ValidationError{
				Type:    "FreeListLinks",
				Message: fmt.Sprintf("list node is not a block header: %v", err),
				Offset:  cur,
			}
		}
		if h.Allocated {
			return &ValidationError{
				Type:    "FreeListLinks",
				Message: "allocated block on the free list",
				Offset:  cur,
			}
		}
		if h.Prev != prev {
			return &ValidationError{
				Type:    "FreeListLinks",
				Message: fmt.Sprintf("back link %d, expected %d", h.Prev, prev),
				Offset:  cur,
			}
		}
		prev = cur
		cur = h.Next
	}
	return nil
}

// AllocationFlags checks that the blocks met by an address-order walk with
// the free flag are exactly the blocks on the free list.
func AllocationFlags(data []byte, brk, head int) error {
	if brk < 0 || brk > len(data) {
		return &ValidationError{Type: "AllocationFlags", Message: "break outside buffer", Offset: -1}
	}
	used := data[:brk]

	listed := make(map[int]struct{})
	for cur := head; cur != format.NoBlock; {
		if _, dup := listed[cur]; dup {
			break
		}
		listed[cur] = struct{}{}
		h, err := format.ReadHeader(used, cur)
		if err != nil {
			break
		}
		cur = h.Next
	}

	freeSeen := 0
	for off := 0; off < brk; {
		h, err := format.ReadHeader(used, off)
		if err != nil || h.Size <= 0 {
			return &ValidationError{
				Type:    "AllocationFlags",
				Message: "cannot walk blocks; run BlockTiling first",
				Offset:  off,
			}
		}
		_, onList := listed[off]
		switch {
		case !h.Allocated && !onList:
			return &ValidationError{
				Type:    "AllocationFlags",
				Message: "free block missing from the free list",
				Offset:  off,
			}
		case h.Allocated && onList:
			return &ValidationError{
				Type:    "AllocationFlags",
				Message: "allocated block on the free list",
				Offset:  off,
			}
		}
		if !h.Allocated {
			freeSeen++
		}
		off = h.End(off)
	}

	if freeSeen != len(listed) {
		return &ValidationError{
			Type:    "AllocationFlags",
			Message: fmt.Sprintf("free list has %d nodes but %d free blocks tile the arena", len(listed), freeSeen),
			Offset:  -1,
			Details: map[string]interface{}{"listed": len(listed), "free": freeSeen},
		}
	}
	return nil
}
