package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Script operations.
const (
	opAlloc    = "alloc"
	opFree     = "free"
	opCoalesce = "coalesce"
	opCheck    = "check"
)

// scriptOp is one parsed script line.
type scriptOp struct {
	Line int
	Kind string
	Name string
	Size uint32
}

func (op scriptOp) String() string {
	switch op.Kind {
	case opAlloc:
		return fmt.Sprintf("alloc %s %d", op.Name, op.Size)
	case opFree:
		return "free " + op.Name
	default:
		return op.Kind
	}
}

// parseScript reads one operation per line:
//
//	alloc <name> <size>
//	free <name>
//	coalesce
//	check
//
// Blank lines and lines starting with '#' are skipped. A leading byte order
// mark is stripped and UTF-16 scripts are decoded.
func parseScript(r io.Reader) ([]scriptOp, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	sc := bufio.NewScanner(transform.NewReader(r, dec))

	var ops []scriptOp
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		op := scriptOp{Line: line, Kind: strings.ToLower(fields[0])}
		switch op.Kind {
		case opAlloc:
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: usage: alloc <name> <size>", line)
			}
			size, err := strconv.ParseUint(fields[2], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size %q: %w", line, fields[2], err)
			}
			op.Name = fields[1]
			op.Size = uint32(size)
		case opFree:
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: usage: free <name>", line)
			}
			op.Name = fields[1]
		case opCoalesce, opCheck:
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: %s takes no arguments", line, op.Kind)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", line, fields[0])
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ops, nil
}

// loadScript parses the script at path; "-" reads stdin.
func loadScript(path string) ([]scriptOp, error) {
	if path == "-" {
		return parseScript(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return parseScript(f)
}
