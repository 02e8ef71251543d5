package main

import (
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int
)

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", DefaultListLimit, "Maximum number of papers to show")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of papers to skip")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers, newest first",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	papers, err := db.ListPapers(listLimit, listOffset)
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	if humanOutput {
		if len(papers) == 0 {
			outputHuman("No papers in library.\n")
			return nil
		}
		for _, p := range papers {
			printPaperLine(p)
		}
		if total, err := db.CountPapers(); err == nil && total > len(papers) {
			outputHuman("\n%d of %d papers shown\n", len(papers), total)
		}
		return nil
	}
	return outputJSON(papers)
}
