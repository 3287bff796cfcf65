package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/verify"
)

const workload = `# two allocations, free the first
alloc a 100
alloc b 16
free a
check
`

func TestInitCommand(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, runInit)
	require.NoError(t, err)
	require.Contains(t, out, "Heap size: 10,000 bytes, 9.8 KiB (1,250 granules)")
	require.Contains(t, out, "Header size: 24 bytes (3 granules)")
	require.Contains(t, out, "Program break: 424")
	require.Contains(t, out, "Initial free block: 400 bytes (50 granules)")
	require.Contains(t, out, "Free list head: 0")
}

func TestInitCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	capacity = 4096

	out, err := captureOutput(t, runInit)
	require.NoError(t, err)

	var sum initSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Equal(t, initSummary{
		Capacity:    4096,
		Granules:    512,
		HeaderSize:  24,
		Break:       424,
		InitialFree: 400,
		Head:        0,
	}, sum)
}

func TestInitCommand_BadCapacity(t *testing.T) {
	resetFlags(t)
	capacity = 1001

	_, err := captureOutput(t, runInit)
	require.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	resetFlags(t)
	path := writeScript(t, workload)

	out, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{path})
	})
	require.NoError(t, err)
	require.Contains(t, out, "alloc a 100")
	require.Contains(t, out, "-> ref 24 (104 bytes), break 424")
	require.Contains(t, out, "-> freed ref 24, break 424")
	require.Contains(t, out, "=== Heap Statistics ===")
	require.Contains(t, out, "Alloc: 2 calls, 2 from list, 0 from break")
}

func TestRunCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeScript(t, workload)

	out, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{path})
	})
	require.NoError(t, err)

	var report struct {
		Results []opResult
		Stats   struct{ AllocCalls, FreeCalls int }
		Usage   struct{ Break, FreeBlocks int }
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 4)
	require.Equal(t, 2, report.Stats.AllocCalls)
	require.Equal(t, 1, report.Stats.FreeCalls)
	require.Equal(t, 424, report.Usage.Break)
	require.Equal(t, 2, report.Usage.FreeBlocks)
}

func TestRunCommand_Image(t *testing.T) {
	resetFlags(t)
	quiet = true
	runImage = filepath.Join(t.TempDir(), "heap.img")
	path := writeScript(t, workload)

	_, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{path})
	})
	require.NoError(t, err)

	img, err := os.ReadFile(runImage)
	require.NoError(t, err)
	require.Len(t, img, 424)
	require.NoError(t, verify.AllInvariants(img, len(img), 0))
}

func TestRunCommand_ScriptError(t *testing.T) {
	resetFlags(t)
	path := writeScript(t, "alloc a 8\nfree nope\nalloc b 8\n")

	out, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{path})
	})
	require.ErrorContains(t, err, `line 2: free of unknown name "nope"`)
	require.Contains(t, out, "alloc a 8")
	require.NotContains(t, out, "alloc b 8")
}

func TestRunCommand_MissingScript(t *testing.T) {
	resetFlags(t)
	_, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{filepath.Join(t.TempDir(), "absent.hmm")})
	})
	require.ErrorContains(t, err, "failed to open script")
}

func TestBlocksCommand(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeScript(t, workload)

	out, err := captureOutput(t, func() error { return runBlocks([]string{path}) })
	require.NoError(t, err)

	var got struct {
		Break  int
		Head   int
		Blocks []blockRow
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 424, got.Break)
	require.Equal(t, 0, got.Head)
	require.Equal(t, []blockRow{
		{Offset: 0, Ref: 24, Size: 104, Prev: -1, Next: 168},
		{Offset: 128, Ref: 152, Size: 16, Allocated: true, Prev: -1, Next: -1},
		{Offset: 168, Ref: 192, Size: 232, Prev: 0, Next: -1},
	}, got.Blocks)
}

func TestBlocksCommand_Table(t *testing.T) {
	resetFlags(t)
	blocksFreeOnly = true
	path := writeScript(t, workload)

	out, err := captureOutput(t, func() error { return runBlocks([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "OFFSET")
	require.Contains(t, out, "2 blocks, break 424, head 0")
	require.NotContains(t, out, "used")
}

func TestVerifyCommand(t *testing.T) {
	resetFlags(t)
	path := writeScript(t, workload)

	out, err := captureOutput(t, func() error { return runVerify([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "Result: ✓ VALID")
	require.Contains(t, out, "(4 operations)")
}

func TestVersionCommand(t *testing.T) {
	out, err := captureOutput(t, func() error {
		versionCmd.Run(versionCmd, nil)
		return nil
	})
	require.NoError(t, err)
	require.Contains(t, out, "hmmctl dev")
}

func TestCompareImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.img")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	require.NoError(t, compareImage(path, []byte{1, 2, 3, 4}))
	require.ErrorContains(t, compareImage(path, []byte{1, 2, 9, 4}), "differs from the arena at offset 2")
	require.ErrorContains(t, compareImage(path, []byte{1, 2}), "is 4 bytes, arena break is 2")
}
