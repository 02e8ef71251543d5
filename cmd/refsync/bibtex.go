package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/bibtex"
	"github.com/refsync/refsync/internal/paper"
)

var (
	bibtexRegenerate bool
	bibtexOutput     string
)

func init() {
	bibtexCmd.Flags().BoolVar(&bibtexRegenerate, "regenerate", false,
		"Regenerate entries from arXiv metadata, discarding ADS records")
	bibtexCmd.Flags().StringVarP(&bibtexOutput, "output", "o", "",
		"Write records to a .bib file instead of stdout")
	rootCmd.AddCommand(bibtexCmd)
}

var bibtexCmd = &cobra.Command{
	Use:   "bibtex [arxiv-id...]",
	Short: "Print BibTeX records",
	Long: `Print BibTeX records for the given papers, or the whole
library when no IDs are given. Output is plain BibTeX regardless of
--human.

Examples:
  refsync bibtex 2401.07041
  refsync bibtex -o library.bib`,
	RunE: runBibtex,
}

func runBibtex(cmd *cobra.Command, args []string) error {
	db := openLibrary()
	defer db.Close()

	var papers []paper.Paper
	if len(args) == 0 {
		all, err := db.ListPapers(-1, 0)
		if err != nil {
			exitWithError(ExitError, "listing papers: %v", err)
		}
		papers = all
	} else {
		for _, arg := range args {
			id := arxiv.NormalizeID(arxiv.ParseID(arg))
			if id == "" {
				exitWithError(ExitError, "unrecognized arXiv ID: %s", arg)
			}
			p, err := db.GetPaper(id)
			if err != nil {
				exitWithError(ExitError, "getting paper: %v", err)
			}
			if p == nil {
				exitWithError(ExitNotFound, "paper not found: %s", id)
			}
			papers = append(papers, *p)
		}
	}

	var out strings.Builder
	for i, p := range papers {
		entry := p.Bibtex
		if bibtexRegenerate || entry == "" {
			key := p.CiteKey
			if key == "" {
				key = p.ArxivID
			}
			entry = bibtex.Generate(p, key)
			if bibtexRegenerate {
				source := paper.SourceArxiv
				if _, err := db.UpdatePaper(p.ArxivID, paper.Update{
					Bibtex:       &entry,
					BibtexSource: &source,
				}); err != nil {
					exitWithError(ExitError, "saving regenerated record: %v", err)
				}
			}
		}
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(entry)
		out.WriteString("\n")
	}

	if bibtexOutput != "" {
		if err := os.WriteFile(bibtexOutput, []byte(out.String()), 0o644); err != nil {
			exitWithError(ExitError, "writing %s: %v", bibtexOutput, err)
		}
		if humanOutput {
			outputHuman("Wrote %d records to %s\n", len(papers), bibtexOutput)
			return nil
		}
		return outputJSON(StatusResponse{Status: "written", Path: bibtexOutput})
	}
	fmt.Print(out.String())
	return nil
}
