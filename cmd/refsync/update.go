package main

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/paper"
)

var (
	updateStatus  string
	updateNotes   string
	updateCover   string
	updateStarred bool
	updateUnstar  bool
)

func init() {
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "Set reading status (read, to-read)")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "Set notes")
	updateCmd.Flags().StringVar(&updateCover, "cover", "", "Set a cover image path")
	updateCmd.Flags().BoolVar(&updateStarred, "star", false, "Star the paper")
	updateCmd.Flags().BoolVar(&updateUnstar, "unstar", false, "Unstar the paper")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <arxiv-id>",
	Short: "Update a paper's reading status, notes, cover, or star",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	id := arxiv.NormalizeID(arxiv.ParseID(args[0]))
	if id == "" {
		exitWithError(ExitError, "unrecognized arXiv ID: %s", args[0])
	}

	var upd paper.Update
	if cmd.Flags().Changed("status") {
		status := paper.ReadingStatus(updateStatus)
		if status != paper.StatusRead && status != paper.StatusToRead && status != paper.StatusUnset {
			exitWithError(ExitError, "invalid status: %s (valid: read, to-read)", updateStatus)
		}
		upd.Status = &status
	}
	if cmd.Flags().Changed("notes") {
		upd.Notes = &updateNotes
	}
	if updateStarred && updateUnstar {
		exitWithError(ExitError, "--star and --unstar are mutually exclusive")
	}
	if updateStarred || updateUnstar {
		upd.Starred = &updateStarred
	}

	p, err := db.UpdatePaper(id, upd)
	if err != nil {
		exitWithError(ExitError, "updating paper: %v", err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	if cmd.Flags().Changed("cover") {
		p, err = db.SetCover(id, updateCover)
		if err != nil {
			exitWithError(ExitError, "setting cover: %v", err)
		}
	}

	if humanOutput {
		printPaperDetail(*p)
		return nil
	}
	return outputJSON(p)
}
