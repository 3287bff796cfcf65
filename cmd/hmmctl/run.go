package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var runImage string

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runImage, "image", "", "Write the final arena image to this file")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command replays a script against a fresh arena and prints the
outcome of every operation followed by the allocator counters.

Script lines:
  alloc <name> <size>   allocate size bytes and bind the reference to name
  free <name>           free the block bound to name
  coalesce              run a coalescing pass
  check                 verify the arena invariants
  # ...                 comment

Example:
  hmmctl run workload.hmm
  hmmctl run workload.hmm --image heap.img
  hmmctl run - --json < workload.hmm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args)
		},
	}
	return cmd
}

// runReport is the JSON form of a replayed script.
type runReport struct {
	Script  string      `json:"script"`
	Results []opResult  `json:"results"`
	Stats   alloc.Stats `json:"stats"`
	Usage   alloc.Usage `json:"usage"`
	Image   string      `json:"image,omitempty"`
}

func runRun(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	s, results, err := runScriptFile(path)
	if s == nil {
		return err
	}
	defer s.al.Close()

	if !jsonOut {
		for _, res := range results {
			printResult(res)
		}
	}
	if err != nil {
		return err
	}

	if runImage != "" {
		if err := s.flushImage(ctx, runImage); err != nil {
			return err
		}
		printVerbose("Wrote %s image to %s\n", humanize.IBytes(uint64(s.al.Break())), runImage)
	}

	if jsonOut {
		return printJSON(runReport{
			Script:  path,
			Results: results,
			Stats:   s.al.Stats(),
			Usage:   s.al.Usage(),
			Image:   runImage,
		})
	}

	if !quiet {
		fmt.Fprintln(os.Stdout)
		s.al.PrintStats(os.Stdout)
	}
	return nil
}

func printResult(res opResult) {
	prefix := fmt.Sprintf("%4d  %-24s", res.Line, scriptOp{Kind: res.Op, Name: res.Name, Size: res.Size})
	switch {
	case res.Error != "":
		printInfo("%s failed: %s\n", prefix, res.Error)
	case res.Op == opAlloc:
		printInfo("%s -> ref %d (%d bytes), break %d\n", prefix, res.Ref, res.Block, res.Break)
	case res.Op == opFree:
		printInfo("%s -> freed ref %d, break %d\n", prefix, res.Ref, res.Break)
	case res.Op == opCoalesce:
		printInfo("%s -> %d merges\n", prefix, res.Merges)
	case res.Op == opCheck:
		printInfo("%s -> ok\n", prefix)
	}
}
