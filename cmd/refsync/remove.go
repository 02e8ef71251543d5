package main

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/pdf"
)

var removeKeepPDF bool

func init() {
	removeCmd.Flags().BoolVar(&removeKeepPDF, "keep-pdf", false, "Keep the downloaded PDF on disk")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <arxiv-id>",
	Short: "Remove a paper from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
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

	if _, err := db.DeletePaper(id); err != nil {
		exitWithError(ExitError, "removing paper: %v", err)
	}

	if !removeKeepPDF {
		store := pdf.NewStore(config.ResolvePDFDir())
		if name, err := store.FindByArxivID(id); err == nil && name != "" {
			store.Delete(name)
		}
	}

	if humanOutput {
		outputHuman("Removed %s\n", id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "removed", ArxivID: id})
}
