package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/paper"
	"github.com/refsync/refsync/internal/storage"
)

var shelfDescription string

func init() {
	shelfCreateCmd.Flags().StringVar(&shelfDescription, "description", "", "Shelf description")

	shelfCmd.AddCommand(shelfCreateCmd)
	shelfCmd.AddCommand(shelfListCmd)
	shelfCmd.AddCommand(shelfDeleteCmd)
	shelfCmd.AddCommand(shelfAddCmd)
	shelfCmd.AddCommand(shelfRemoveCmd)
	shelfCmd.AddCommand(shelfPapersCmd)
	rootCmd.AddCommand(shelfCmd)
}

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Manage shelves (named collections of papers)",
}

var shelfCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a shelf",
	Args:  cobra.ExactArgs(1),
	RunE:  runShelfCreate,
}

var shelfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shelves with paper counts",
	RunE:  runShelfList,
}

var shelfDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a shelf (papers stay in the library)",
	Args:  cobra.ExactArgs(1),
	RunE:  runShelfDelete,
}

var shelfAddCmd = &cobra.Command{
	Use:   "add <name> <arxiv-id>",
	Short: "Put a paper on a shelf",
	Args:  cobra.ExactArgs(2),
	RunE:  runShelfAdd,
}

var shelfRemoveCmd = &cobra.Command{
	Use:   "remove <name> <arxiv-id>",
	Short: "Take a paper off a shelf",
	Args:  cobra.ExactArgs(2),
	RunE:  runShelfRemove,
}

var shelfPapersCmd = &cobra.Command{
	Use:   "papers <name>",
	Short: "List the papers on a shelf",
	Args:  cobra.ExactArgs(1),
	RunE:  runShelfPapers,
}

func runShelfCreate(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	shelf, err := db.CreateShelf(args[0], shelfDescription)
	if err != nil {
		if errors.Is(err, storage.ErrShelfExists) {
			exitWithError(ExitError, "shelf already exists: %s", args[0])
		}
		exitWithError(ExitError, "creating shelf: %v", err)
	}
	if humanOutput {
		outputHuman("Created shelf %s\n", shelf.Name)
		return nil
	}
	return outputJSON(shelf)
}

func runShelfList(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	shelves, err := db.ListShelves()
	if err != nil {
		exitWithError(ExitError, "listing shelves: %v", err)
	}
	if humanOutput {
		if len(shelves) == 0 {
			outputHuman("No shelves.\n")
			return nil
		}
		for _, s := range shelves {
			outputHuman("%-20s %d papers", s.Name, s.PaperCount)
			if s.Description != "" {
				outputHuman("  (%s)", s.Description)
			}
			outputHuman("\n")
		}
		return nil
	}
	return outputJSON(shelves)
}

func runShelfDelete(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	deleted, err := db.DeleteShelf(args[0])
	if err != nil {
		exitWithError(ExitError, "deleting shelf: %v", err)
	}
	if !deleted {
		exitWithError(ExitNotFound, "shelf not found: %s", args[0])
	}
	if humanOutput {
		outputHuman("Deleted shelf %s\n", args[0])
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted"})
}

func runShelfAdd(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	name := args[0]
	shelf, err := db.GetShelfByName(name)
	if err != nil {
		exitWithError(ExitError, "getting shelf: %v", err)
	}
	if shelf == nil {
		exitWithError(ExitNotFound, "shelf not found: %s (create it with 'refsync shelf create')", name)
	}

	p := mustChangeShelfMembership(db, args[1], name, true)
	if humanOutput {
		outputHuman("Added %s to %s\n", p.ArxivID, name)
		return nil
	}
	return outputJSON(p)
}

func runShelfRemove(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	p := mustChangeShelfMembership(db, args[1], args[0], false)
	if humanOutput {
		outputHuman("Removed %s from %s\n", p.ArxivID, args[0])
		return nil
	}
	return outputJSON(p)
}

func runShelfPapers(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	name := args[0]
	shelf, err := db.GetShelfByName(name)
	if err != nil {
		exitWithError(ExitError, "getting shelf: %v", err)
	}
	if shelf == nil {
		exitWithError(ExitNotFound, "shelf not found: %s", name)
	}

	result, err := db.SearchPapers(paper.SearchQuery{Shelves: []string{name}, Limit: -1})
	if err != nil {
		exitWithError(ExitError, "listing shelf papers: %v", err)
	}
	if humanOutput {
		if result.Total == 0 {
			outputHuman("No papers on %s.\n", name)
			return nil
		}
		for _, p := range result.Papers {
			printPaperLine(p)
		}
		return nil
	}
	return outputJSON(result.Papers)
}

// mustChangeShelfMembership adds or removes a shelf name on a paper's
// shelf list and returns the updated paper. Exits on failure.
func mustChangeShelfMembership(db *storage.DB, rawID, shelfName string, add bool) *paper.Paper {
	id := arxiv.NormalizeID(arxiv.ParseID(rawID))
	if id == "" {
		exitWithError(ExitError, "unrecognized arXiv ID: %s", rawID)
	}

	p, err := db.GetPaper(id)
	if err != nil {
		exitWithError(ExitError, "getting paper: %v", err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	shelves := make([]string, 0, len(p.Shelves)+1)
	for _, s := range p.Shelves {
		if s != shelfName {
			shelves = append(shelves, s)
		}
	}
	if add {
		shelves = append(shelves, shelfName)
	}

	updated, err := db.UpdatePaper(id, paper.Update{Shelves: &shelves})
	if err != nil {
		exitWithError(ExitError, "updating paper: %v", err)
	}
	return updated
}
