package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

var blocksFreeOnly bool

func init() {
	cmd := newBlocksCmd()
	cmd.Flags().BoolVar(&blocksFreeOnly, "free", false, "List the free list in list order instead of every block")
	rootCmd.AddCommand(cmd)
}

func newBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks <script>",
		Short: "Replay a script and print the block table",
		Long: `The blocks command replays a script and prints every block in address
order with its size, state and free-list links.

Example:
  hmmctl blocks workload.hmm
  hmmctl blocks workload.hmm --free
  hmmctl blocks workload.hmm --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(args)
		},
	}
	return cmd
}

// blockRow is the printable form of alloc.BlockInfo. Links are -1 when absent.
type blockRow struct {
	Offset    int       `json:"offset"`
	Ref       alloc.Ref `json:"ref"`
	Size      int       `json:"size"`
	Allocated bool      `json:"allocated"`
	Prev      int       `json:"prev"`
	Next      int       `json:"next"`
}

func runBlocks(args []string) error {
	s, _, err := runScriptFile(args[0])
	if err != nil {
		return err
	}
	defer s.al.Close()

	walk := s.al.Blocks()
	if blocksFreeOnly {
		walk = s.al.FreeList()
	}
	var rows []blockRow
	for b := range walk {
		rows = append(rows, blockRow{
			Offset:    b.Offset,
			Ref:       b.Ref,
			Size:      b.Size,
			Allocated: b.Allocated,
			Prev:      b.Prev,
			Next:      b.Next,
		})
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"break":  s.al.Break(),
			"head":   s.al.Head(),
			"blocks": rows,
		})
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "OFFSET\tREF\tSIZE\tSTATE\tPREV\tNEXT\t")
	for _, r := range rows {
		state := "free"
		if r.Allocated {
			state = "used"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t\n",
			r.Offset, r.Ref, r.Size, state, link(r.Prev), link(r.Next))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printInfo("\n%d blocks, break %d, head %s\n", len(rows), s.al.Break(), link(s.al.Head()))
	return nil
}

func link(off int) string {
	if off == format.NoBlock {
		return "-"
	}
	return fmt.Sprint(off)
}
