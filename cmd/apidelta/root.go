package main

import (
	"github.com/spf13/cobra"

	"apidelta/internal/version"
)

var (
	// rootFlag is the --root flag: the directory holding .apidelta/ and
	// the repo-local override file
	rootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "apidelta",
	Short: "apidelta - semver impact analysis for declaration surfaces",
	Long: `apidelta compares two versions of a typed API declaration surface,
reports every structural change between them, and classifies the changes
against a release policy to produce a semver verdict (major, minor, patch).

Surfaces come from TypeScript declaration files or SCIP indexes; baselines
can be recorded locally and diffed against later.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("apidelta version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root holding the .apidelta directory")
}
