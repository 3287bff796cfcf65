package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestParseScript(t *testing.T) {
	ops, err := parseScript(strings.NewReader(`
# warm up
alloc a 100
ALLOC b 0x10

free a
coalesce
check
`))
	require.NoError(t, err)
	require.Equal(t, []scriptOp{
		{Line: 3, Kind: opAlloc, Name: "a", Size: 100},
		{Line: 4, Kind: opAlloc, Name: "b", Size: 16},
		{Line: 6, Kind: opFree, Name: "a"},
		{Line: 7, Kind: opCoalesce},
		{Line: 8, Kind: opCheck},
	}, ops)
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{"unknown op", "alloc a 8\nrealloc a 16\n", `line 2: unknown operation "realloc"`},
		{"alloc arity", "alloc a\n", "line 1: usage: alloc <name> <size>"},
		{"free arity", "free\n", "line 1: usage: free <name>"},
		{"bad size", "alloc a lots\n", `line 1: bad size "lots"`},
		{"size overflow", "alloc a 4294967296\n", `line 1: bad size "4294967296"`},
		{"negative size", "alloc a -8\n", `line 1: bad size "-8"`},
		{"check args", "check now\n", "line 1: check takes no arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript(strings.NewReader(tt.script))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScript_ByteOrderMark(t *testing.T) {
	ops, err := parseScript(strings.NewReader("\xEF\xBB\xBFalloc a 8\n"))
	require.NoError(t, err)
	require.Equal(t, []scriptOp{{Line: 1, Kind: opAlloc, Name: "a", Size: 8}}, ops)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().
		String("alloc x 8\r\nfree x\r\n")
	require.NoError(t, err)
	ops, err = parseScript(strings.NewReader(utf16))
	require.NoError(t, err)
	require.Equal(t, []scriptOp{
		{Line: 1, Kind: opAlloc, Name: "x", Size: 8},
		{Line: 2, Kind: opFree, Name: "x"},
	}, ops)
}

func TestSession_Exec(t *testing.T) {
	resetFlags(t)
	s, err := newSession(capacity, logger)
	require.NoError(t, err)
	defer s.al.Close()

	ops, err := parseScript(strings.NewReader(`
alloc a 100
alloc b 16
alloc z 0
alloc huge 20000
free a
coalesce
check
`))
	require.NoError(t, err)

	results, err := s.run(ops)
	require.NoError(t, err)
	require.Len(t, results, 7)

	require.Equal(t, opResult{Line: 2, Op: opAlloc, Name: "a", Size: 100, Ref: 24, Block: 104, Break: 424}, results[0])
	require.Equal(t, opResult{Line: 3, Op: opAlloc, Name: "b", Size: 16, Ref: 152, Block: 16, Break: 424}, results[1])
	require.Contains(t, results[2].Error, "zero")
	require.Contains(t, results[3].Error, "out of memory")
	require.Equal(t, opResult{Line: 6, Op: opFree, Name: "a", Ref: 24, Break: 424}, results[4])
	require.Equal(t, 0, results[5].Merges)
	require.Empty(t, results[6].Error)

	_, bound := s.names["z"]
	require.False(t, bound, "failed allocations bind nothing")
}

func TestSession_FreeUnknownName(t *testing.T) {
	resetFlags(t)
	s, err := newSession(capacity, logger)
	require.NoError(t, err)
	defer s.al.Close()

	results, err := s.run([]scriptOp{
		{Line: 1, Kind: opAlloc, Name: "a", Size: 8},
		{Line: 2, Kind: opFree, Name: "b"},
		{Line: 3, Kind: opCheck},
	})
	require.ErrorContains(t, err, `line 2: free of unknown name "b"`)
	require.Len(t, results, 2, "execution stops at the failing line")
}
