package alloc

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	// seedBreak is the break right after Init with the default margin:
	// Align8(24 + 400).
	seedBreak = 424

	// seedSize is the payload of the seed block.
	seedSize = seedBreak - format.HeaderSize
)

// newTestAllocator creates an allocator with the default config over a fresh arena.
func newTestAllocator(t testing.TB, capacity int) *Allocator {
	t.Helper()
	a, err := arena.New(capacity)
	require.NoError(t, err)
	al, err := New(a, nil, nil)
	require.NoError(t, err)
	return al
}

// newConfiguredAllocator creates an allocator with cfg over a fresh arena.
func newConfiguredAllocator(t testing.TB, capacity int, cfg *Config) *Allocator {
	t.Helper()
	a, err := arena.New(capacity)
	require.NoError(t, err)
	al, err := New(a, nil, cfg)
	require.NoError(t, err)
	return al
}

// requireInvariants fails the test if the arena image is inconsistent.
func requireInvariants(t testing.TB, al *Allocator) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(al.Bytes(), al.Break(), al.Head()))
	require.LessOrEqual(t, al.Break(), al.Cap())
}

// freeSizes returns the payload sizes on the free list in list order.
func freeSizes(al *Allocator) []int {
	var sizes []int
	for b := range al.FreeList() {
		sizes = append(sizes, b.Size)
	}
	return sizes
}

// freeOffsets returns the header offsets on the free list in list order.
func freeOffsets(al *Allocator) []int {
	var offs []int
	for b := range al.FreeList() {
		offs = append(offs, b.Offset)
	}
	return offs
}

// mustAlloc allocates n bytes or fails the test.
func mustAlloc(t testing.TB, al *Allocator, n uint32) Ref {
	t.Helper()
	ref, buf, err := al.Alloc(n)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.GreaterOrEqual(t, len(buf), int(n))
	return ref
}

// consumeSeed allocates the whole seed block so later requests grow the break.
func consumeSeed(t testing.TB, al *Allocator) Ref {
	t.Helper()
	ref := mustAlloc(t, al, seedSize)
	require.Equal(t, Ref(format.HeaderSize), ref)
	require.Equal(t, 0, al.FreeLen())
	return ref
}

// newJSONLogger returns a logger writing JSON records to w at debug level.
func newJSONLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
