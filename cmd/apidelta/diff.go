package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"apidelta/internal/change"
)

var (
	diffAgainst string
	diffFormat  string
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new> | diff <new> --against <label>",
	Short: "Report structural changes between two declaration surfaces",
	Long: `Compare two versions of a declaration surface and report every
structural change: removed, added, renamed, moved, and modified declarations,
with member-level changes nested under their parents.

Inputs are TypeScript declaration files or SCIP indexes. With --against,
the old surface comes from a stored baseline instead of a file.

Examples:
  apidelta diff old/api.d.ts new/api.d.ts
  apidelta diff api.d.ts --against v1.2.0
  apidelta diff old.scip new.scip --format=json`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffAgainst, "against", "", "Baseline label for the old surface")
	diffCmd.Flags().StringVar(&diffFormat, "format", "", "Output format (json, human)")

	rootCmd.AddCommand(diffCmd)
}

// DiffResponseCLI is the CLI response format for a plain structural diff
type DiffResponseCLI struct {
	OldRef  string             `json:"oldRef"`
	NewRef  string             `json:"newRef"`
	Changes []change.APIChange `json:"changes"`
}

func runDiff(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "diff")

	oldMod, newMod, oldRef, newRef := resolveSurfacePair(args, diffAgainst, cfg, logger)

	changes := newDiffer(cfg, logger).Diff(oldMod, newMod)

	resp := &DiffResponseCLI{
		OldRef:  oldRef,
		NewRef:  newRef,
		Changes: changes,
	}

	output, err := FormatResponse(resp, outputFormat(diffFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Diff completed", map[string]interface{}{
		"changes":  len(changes),
		"duration": time.Since(start).Milliseconds(),
	})
}
