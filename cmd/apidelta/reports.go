package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apidelta/internal/store"
)

var (
	reportsListLimit  int
	reportsListFormat string
	reportsShowFormat string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Review recorded classification reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded reports, newest first",
	Args:  cobra.NoArgs,
	Run:   runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded report",
	Args:  cobra.ExactArgs(1),
	Run:   runReportsShow,
}

func init() {
	reportsListCmd.Flags().IntVar(&reportsListLimit, "limit", 20, "Maximum reports to list (0 for all)")
	reportsListCmd.Flags().StringVar(&reportsListFormat, "format", "", "Output format (json, human)")
	reportsShowCmd.Flags().StringVar(&reportsShowFormat, "format", "", "Output format (json, human)")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	rootCmd.AddCommand(reportsCmd)
}

// ReportListResponseCLI is the CLI response format for report listing
type ReportListResponseCLI struct {
	Reports []store.ReportSummary `json:"reports"`
}

func runReportsList(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "reports list")

	s := mustOpenStore(cfg, logger)
	defer s.Close()

	summaries, err := s.ListReports(reportsListLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing reports: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(&ReportListResponseCLI{Reports: summaries},
		outputFormat(reportsListFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(output)
}

func runReportsShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	logger := commandLogger(cfg, "reports show")

	s := mustOpenStore(cfg, logger)
	defer s.Close()

	report, err := s.LoadReport(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(report, outputFormat(reportsShowFormat, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
