package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// session is one allocator plus the names a script has bound to references.
type session struct {
	al    *alloc.Allocator
	dt    *dirty.Tracker
	names map[string]alloc.Ref
}

// opResult is the outcome of one script operation.
type opResult struct {
	Line   int       `json:"line"`
	Op     string    `json:"op"`
	Name   string    `json:"name,omitempty"`
	Size   uint32    `json:"size,omitempty"`
	Ref    alloc.Ref `json:"ref,omitempty"`
	Block  int       `json:"block,omitempty"`
	Merges int       `json:"merges,omitempty"`
	Break  int       `json:"break"`
	Error  string    `json:"error,omitempty"`
}

func newSession(capacity int, log *slog.Logger) (*session, error) {
	a, err := arena.New(capacity)
	if err != nil {
		return nil, err
	}
	dt := dirty.NewTrackerWithGranule(format.MinBlockSize)
	cfg := alloc.DefaultConfig
	cfg.Logger = log
	al, err := alloc.New(a, dt, &cfg)
	if err != nil {
		return nil, err
	}
	return &session{al: al, dt: dt, names: make(map[string]alloc.Ref)}, nil
}

// exec applies one operation. Allocator refusals (zero size, out of memory)
// are reported in the result; script mistakes and broken invariants are
// returned as errors.
func (s *session) exec(op scriptOp) (opResult, error) {
	res := opResult{Line: op.Line, Op: op.Kind, Name: op.Name}

	switch op.Kind {
	case opAlloc:
		res.Size = op.Size
		ref, buf, err := s.al.Alloc(op.Size)
		if err != nil {
			if !errors.Is(err, alloc.ErrZeroSize) && !errors.Is(err, alloc.ErrNoSpace) {
				return res, fmt.Errorf("line %d: %w", op.Line, err)
			}
			res.Error = err.Error()
			break
		}
		s.names[op.Name] = ref
		res.Ref = ref
		res.Block = len(buf)

	case opFree:
		ref, ok := s.names[op.Name]
		if !ok {
			return res, fmt.Errorf("line %d: free of unknown name %q", op.Line, op.Name)
		}
		res.Ref = ref
		if err := s.al.Free(ref); err != nil {
			return res, fmt.Errorf("line %d: %w", op.Line, err)
		}

	case opCoalesce:
		res.Merges = s.al.Coalesce()

	case opCheck:
		if err := s.check(); err != nil {
			return res, fmt.Errorf("line %d: %w", op.Line, err)
		}

	default:
		return res, fmt.Errorf("line %d: unknown operation %q", op.Line, op.Kind)
	}

	res.Break = s.al.Break()
	return res, nil
}

// run executes ops in order and stops at the first error.
func (s *session) run(ops []scriptOp) ([]opResult, error) {
	results := make([]opResult, 0, len(ops))
	for _, op := range ops {
		res, err := s.exec(op)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *session) check() error {
	return verify.AllInvariants(s.al.Bytes(), s.al.Break(), s.al.Head())
}

// flushImage writes every byte the allocator touched since the last flush to
// the image at path, trims the file to the current break, and reads it back
// to confirm it matches the arena.
func (s *session) flushImage(ctx context.Context, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := s.dt.Flush(ctx, f, s.al.Bytes()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return compareImage(path, s.al.Snapshot())
}

// compareImage reports the first offset where the file at path differs from want.
func compareImage(path string, want []byte) error {
	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read back image: %w", err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("image %s is %d bytes, arena break is %d", path, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("image %s differs from the arena at offset %d", path, i)
		}
	}
	return nil
}

// runScriptFile loads the script at path and replays it in a fresh session.
func runScriptFile(path string) (*session, []opResult, error) {
	ops, err := loadScript(path)
	if err != nil {
		return nil, nil, err
	}
	printVerbose("Loaded %d operations from %s\n", len(ops), path)

	s, err := newSession(capacity, logger)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.run(ops)
	return s, results, err
}
