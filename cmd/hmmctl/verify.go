package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <script>",
		Short: "Replay a script and check the arena invariants",
		Long: `The verify command replays a script and checks that the blocks tile the
arena up to the break, that the free list is well linked, and that the free
list holds exactly the free blocks.

Example:
  hmmctl verify workload.hmm
  hmmctl verify workload.hmm --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

func runVerify(args []string) error {
	path := args[0]

	printVerbose("Replaying script: %s\n", path)

	s, results, err := runScriptFile(path)
	if s == nil {
		return err
	}
	defer s.al.Close()
	if err == nil {
		err = s.check()
	}

	result := map[string]interface{}{
		"script":     path,
		"operations": len(results),
		"break":      s.al.Break(),
		"valid":      err == nil,
	}
	var verr *verify.ValidationError
	if errors.As(err, &verr) {
		result["type"] = verr.Type
		result["offset"] = verr.Offset
	}
	if err != nil {
		result["error"] = err.Error()
	}

	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	printInfo("\nVerifying %s (%d operations)...\n\n", path, len(results))
	if err != nil {
		printInfo("  ✗ %v\n", err)
		printInfo("\nResult: ✗ INVALID\n")
		return err
	}
	printInfo("  ✓ Blocks tile [0, %d)\n", s.al.Break())
	printInfo("  ✓ Free list links consistent\n")
	printInfo("  ✓ Free list matches free blocks\n")
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
