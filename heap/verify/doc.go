// Package verify checks the structural invariants of a heap arena image.
//
// # Overview
//
// The checks work on raw bytes plus the two values that live outside the
// arena (the break and the free-list head), so they apply equally to a live
// allocator (alloc.Allocator.Bytes) and to an image written by heap/dirty.
// They are primarily used in tests after every mutation.
//
// Validation categories:
//   - Block tiling: headers chained from offset 0 land exactly on the break
//   - Free-list links: the list terminates, back links match, no repeats
//   - Allocation flags: the free list holds exactly the blocks marked free
//
// # Quick Start
//
//	if err := verify.AllInvariants(al.Bytes(), al.Break(), al.Head()); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string                 // Check that failed (e.g., "BlockTiling")
//	    Message string                 // Human-readable description
//	    Offset  int                    // Arena offset where it failed (-1 if N/A)
//	    Details map[string]interface{} // Additional context
//	}
package verify
