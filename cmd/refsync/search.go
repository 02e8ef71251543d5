package main

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/paper"
)

var (
	searchShelves []string
	searchTags    []string
	searchStatus  string
	searchLimit   int
	searchOffset  int
)

func init() {
	searchCmd.Flags().StringSliceVar(&searchShelves, "shelf", nil, "Filter by shelf (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "Filter by tag (repeatable)")
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "Filter by reading status (read, to-read)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultListLimit, "Maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Number of results to skip")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search papers by text and filters",
	Long: `Search papers with full-text search over title, authors,
abstract, and notes, optionally filtered by shelf, tag, or reading
status. With no query, filters alone select the papers.

Examples:
  refsync search "dark matter"
  refsync search --tag cosmology --status to-read`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	q := paper.SearchQuery{
		Shelves: searchShelves,
		Tags:    searchTags,
		Limit:   searchLimit,
		Offset:  searchOffset,
	}
	if len(args) == 1 {
		q.Text = args[0]
	}
	if searchStatus != "" {
		status := paper.ReadingStatus(searchStatus)
		if status != paper.StatusRead && status != paper.StatusToRead {
			exitWithError(ExitError, "invalid status: %s (valid: read, to-read)", searchStatus)
		}
		q.Status = &status
	}

	result, err := db.SearchPapers(q)
	if err != nil {
		exitWithError(ExitError, "searching papers: %v", err)
	}

	if humanOutput {
		if result.Total == 0 {
			outputHuman("No matches.\n")
			return nil
		}
		for _, p := range result.Papers {
			printPaperLine(p)
		}
		outputHuman("\n%d of %d matches shown\n", len(result.Papers), result.Total)
		return nil
	}
	return outputJSON(result)
}
