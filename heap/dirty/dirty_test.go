package dirty

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DirtyTracker_GranuleAlignment(t *testing.T) {
	tracker := NewTrackerWithGranule(64)
	tracker.Add(100, 20)

	coalesced := tracker.DebugCoalescedRanges()
	require.Equal(t, []Range{{Off: 64, Len: 64}}, coalesced)
}

func Test_DirtyTracker_MergesAdjacentAndOverlapping(t *testing.T) {
	tracker := NewTrackerWithGranule(8)
	tracker.Add(48, 8)
	tracker.Add(0, 24)
	tracker.Add(24, 8) // adjacent to the first
	tracker.Add(16, 4) // inside the first
	tracker.Add(40, 8) // adjacent to [48,56)

	require.Equal(t, 5, tracker.Len())
	require.Equal(t, []Range{{Off: 0, Len: 32}, {Off: 40, Len: 16}}, tracker.DebugCoalescedRanges())

	raw := tracker.DebugRanges()
	raw[0].Off = 999
	require.Equal(t, int64(48), tracker.DebugRanges()[0].Off, "DebugRanges must return a copy")
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(10, 0)
	tracker.Add(-1, 8)
	require.Equal(t, 0, tracker.Len())
	require.Nil(t, tracker.DebugCoalescedRanges())
}

func Test_DirtyTracker_FlushWritesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.img")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := make([]byte, 96)
	for i := range data {
		data[i] = byte(i)
	}

	tracker := NewTrackerWithGranule(8)
	tracker.Add(0, 8)
	tracker.Add(80, 100) // clipped to len(data)

	require.NoError(t, tracker.Flush(context.Background(), f, data))
	require.Equal(t, 0, tracker.Len())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 96)
	require.Equal(t, data[:8], got[:8])
	require.Equal(t, make([]byte, 72), got[8:80], "clean ranges are not written")
	require.Equal(t, data[80:], got[80:])

	// A shorter image truncates the file.
	tracker.Add(0, 8)
	require.NoError(t, tracker.Flush(context.Background(), f, data[:40]))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 40)
}

func Test_DirtyTracker_FlushCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.img")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	tracker := NewTracker()
	tracker.Add(0, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tracker.Flush(ctx, f, make([]byte, 16)), context.Canceled)
	require.Equal(t, 1, tracker.Len(), "cancelled flush keeps pending ranges")

	tracker.Reset()
	require.Equal(t, 0, tracker.Len())
}
