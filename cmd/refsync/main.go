// Package main provides the refsync CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refsync",
	Short: "Personal arXiv reference library with citation sync",
	Long: `refsync manages a personal library of arXiv papers.

Papers are stored in a local SQLite database with stable BibTeX cite
keys. The sync command reconciles the library against NASA ADS,
upgrading preprint records to published ones as journals pick them up.
All commands output JSON by default for easy scripting; pass --human
for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
