package main

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <arxiv-id>",
	Short: "Get a single paper by arXiv ID",
	Long: `Get a single paper by its arXiv ID.

Example:
  refsync get 2401.07041`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	id := arxiv.NormalizeID(arxiv.ParseID(args[0]))
	if id == "" {
		exitWithError(ExitError, "unrecognized arXiv ID: %s", args[0])
	}

	p, err := db.GetPaper(id)
	if err != nil {
		exitWithError(ExitError, "getting paper: %v", err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	if humanOutput {
		printPaperDetail(*p)
	} else {
		outputJSON(p)
	}
	return nil
}
