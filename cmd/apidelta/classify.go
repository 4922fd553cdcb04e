package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"apidelta/internal/policy"
)

var (
	classifyAgainst string
	classifyFormat  string
	classifyPolicy  string
	classifySave    bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <old> <new> | classify <new> --against <label>",
	Short: "Classify API changes into a semver verdict",
	Long: `Compare two declaration surfaces and classify every change against the
release policy, producing a per-change release type and an aggregate verdict.

The verdict is the most severe release type across all changes. The command
exits non-zero when the verdict is a major release, for CI gating.

Examples:
  apidelta classify old/api.d.ts new/api.d.ts
  apidelta classify api.d.ts --against v1.2.0
  apidelta classify old.d.ts new.d.ts --policy=policies/internal.yaml
  apidelta classify old.d.ts new.d.ts --format=json`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyAgainst, "against", "", "Baseline label for the old surface")
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "", "Output format (json, human)")
	classifyCmd.Flags().StringVar(&classifyPolicy, "policy", "", "Policy file or builtin policy name")
	classifyCmd.Flags().BoolVar(&classifySave, "save", false, "Record the report in the local store")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := mustLoadConfig()
	if classifyPolicy != "" {
		applyPolicyFlag(cfg, classifyPolicy)
	}
	logger := commandLogger(cfg, "classify")

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading policy: %v\n", err)
		os.Exit(1)
	}

	oldMod, newMod, oldRef, newRef := resolveSurfacePair(args, classifyAgainst, cfg, logger)

	changes := newDiffer(cfg, logger).Diff(oldMod, newMod)
	report := policy.NewReport(engine, changeRefs(changes), oldRef, newRef)

	if classifySave {
		s := mustOpenStore(cfg, logger)
		if err := s.SaveReport(report); err != nil {
			s.Close()
			fmt.Fprintf(os.Stderr, "Error saving report: %v\n", err)
			os.Exit(1)
		}
		s.Close()
	}

	output, err := FormatResponse(report, outputFormat(classifyFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Classification completed", map[string]interface{}{
		"changes":  len(report.Changes),
		"verdict":  string(report.Verdict),
		"duration": time.Since(start).Milliseconds(),
	})

	// Exit with code 1 on a breaking verdict (for CI)
	if report.Breaking() {
		os.Exit(1)
	}
}
