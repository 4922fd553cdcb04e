package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apidelta/internal/config"
	"apidelta/internal/logging"
	"apidelta/internal/store"
)

var (
	baselineListFormat string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage stored surface baselines",
	Long: `Record, list, and delete named snapshots of declaration surfaces.
A recorded baseline can serve as the old side of a later diff or classify
run via --against.`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <label> <file>",
	Short: "Record a declaration surface under a label",
	Long: `Parse a declaration input and store its surface under a label.
Saving an existing label replaces its snapshot.

Examples:
  apidelta baseline save v1.2.0 dist/api.d.ts
  apidelta baseline save latest index.scip`,
	Args: cobra.ExactArgs(2),
	Run:  runBaselineSave,
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines",
	Args:  cobra.NoArgs,
	Run:   runBaselineList,
}

var baselineDeleteCmd = &cobra.Command{
	Use:   "delete <label>",
	Short: "Delete a stored baseline",
	Args:  cobra.ExactArgs(1),
	Run:   runBaselineDelete,
}

func init() {
	baselineListCmd.Flags().StringVar(&baselineListFormat, "format", "", "Output format (json, human)")

	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineListCmd)
	baselineCmd.AddCommand(baselineDeleteCmd)
	rootCmd.AddCommand(baselineCmd)
}

// BaselineListResponseCLI is the CLI response format for baseline listing
type BaselineListResponseCLI struct {
	Baselines []store.Baseline `json:"baselines"`
}

func runBaselineSave(cmd *cobra.Command, args []string) {
	label, path := args[0], args[1]
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "baseline save")

	mod, err := loadSurface(path, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}

	s := mustOpenStore(cfg, logger)
	defer s.Close()

	baseline, err := s.Save(label, mod)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving baseline: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved baseline %q: %d declarations (%d exported) from %s\n",
		baseline.Label, baseline.NodeCount, baseline.ExportCount, baseline.Source)
}

func runBaselineList(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "baseline list")

	s := mustOpenStore(cfg, logger)
	defer s.Close()

	baselines, err := s.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing baselines: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(&BaselineListResponseCLI{Baselines: baselines},
		outputFormat(baselineListFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(output)
}

func runBaselineDelete(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "baseline delete")

	s := mustOpenStore(cfg, logger)
	defer s.Close()

	if err := s.Delete(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting baseline: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted baseline %q\n", args[0])
}

// mustOpenStore opens the baseline store or exits
func mustOpenStore(cfg *config.Config, logger *logging.Logger) *store.Store {
	s, err := store.Open(cfg.Store.Root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening baseline store: %v\n", err)
		os.Exit(1)
	}
	return s
}
