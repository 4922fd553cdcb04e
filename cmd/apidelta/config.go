package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apidelta/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Args:  cobra.NoArgs,
	Run:   runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .apidelta/config.json",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	output, err := formatJSON(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.Save(rootFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default configuration under %s/.apidelta/config.json\n", rootFlag)
}
