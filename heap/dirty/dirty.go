// Package dirty tracks which byte ranges of a heap arena have been written
// since the last flush and writes just those ranges into an arena image file.
//
// The tracker maintains a list of dirty byte ranges, coalesces them into
// granule-aligned ranges, and writes them at their arena offsets before
// syncing the file (fdatasync on Linux/FreeBSD, F_FULLFSYNC on macOS,
// File.Sync elsewhere).
package dirty

import (
	"context"
	"fmt"
	"os"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// defaultGranule is the write granularity for image flushes (one disk sector).
	defaultGranule = 512
)

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Arena offset
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them to an image file.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges  []Range
	granule int64
}

// NewTracker creates a dirty tracker with the default 512-byte granule.
func NewTracker() *Tracker {
	return NewTrackerWithGranule(defaultGranule)
}

// NewTrackerWithGranule creates a tracker that aligns ranges to granule bytes.
// Non-positive values fall back to the default.
func NewTrackerWithGranule(granule int) *Tracker {
	if granule <= 0 {
		granule = defaultGranule
	}
	return &Tracker{
		ranges:  make([]Range, 0, defaultRangeCapacity),
		granule: int64(granule),
	}
}

// Add records a dirty range. Zero or negative lengths are ignored.
func (t *Tracker) Add(off, length int) {
	if length <= 0 || off < 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Len returns the number of raw (uncoalesced) ranges.
func (t *Tracker) Len() int { return len(t.ranges) }

// Flush writes every dirty range of data into f at the same offsets, truncates
// f to len(data) so a retracted break shrinks the image, and syncs the file.
//
// data is normally the carved arena region (arena.Used()). Ranges past
// len(data) are clipped. The context is checked between ranges; on
// cancellation some ranges may have been written and the tracker keeps its
// state so the flush can be retried.
func (t *Tracker) Flush(ctx context.Context, f *os.File, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := r.Off
		end := min(r.Off+r.Len, int64(len(data)))
		if start >= end {
			continue
		}
		if _, err := f.WriteAt(data[start:end], start); err != nil {
			return fmt.Errorf("dirty: write range [%d,%d): %w", start, end, err)
		}
	}

	if err := f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("dirty: truncate image: %w", err)
	}
	if err := syncFile(f); err != nil {
		return fmt.Errorf("dirty: sync image: %w", err)
	}

	t.ranges = t.ranges[:0]
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the current raw ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the granule-aligned, sorted, merged ranges a
// flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce aligns all ranges to the granule, sorts them, and merges
// overlapping or adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.granule) * t.granule

		end := r.Off + r.Len
		if end%t.granule != 0 {
			end = ((end / t.granule) + 1) * t.granule
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}
