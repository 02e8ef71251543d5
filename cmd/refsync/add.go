package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/bibtex"
	"github.com/refsync/refsync/internal/citekey"
	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/paper"
	"github.com/refsync/refsync/internal/pdf"
)

var (
	addShelves     []string
	addTags        []string
	addDownloadPDF bool
)

func init() {
	addCmd.Flags().StringSliceVar(&addShelves, "shelf", nil, "Add the paper to a shelf (repeatable)")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag the paper (repeatable)")
	addCmd.Flags().BoolVar(&addDownloadPDF, "pdf", false, "Also download the PDF")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <arxiv-id-or-url>",
	Short: "Add a paper to the library",
	Long: `Add a paper to the library by arXiv ID or URL.

Metadata is fetched from the arXiv API. A cite key of the form
Surname:Year is assigned, with an alphabetic suffix when taken, and a
BibTeX record is generated from the metadata.

Examples:
  refsync add 2401.07041
  refsync add https://arxiv.org/abs/2401.07041
  refsync add astro-ph/0601001 --shelf reading --tag galaxies`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	arxivID := arxiv.ParseID(args[0])
	if arxivID == "" {
		exitWithError(ExitError, "unrecognized arXiv ID or URL: %s", args[0])
	}
	baseID := arxiv.NormalizeID(arxivID)

	db := openLibrary()
	defer db.Close()

	exists, err := db.PaperExists(baseID)
	if err != nil {
		exitWithError(ExitError, "checking library: %v", err)
	}
	if exists {
		exitWithError(ExitError, "paper already in library: %s", baseID)
	}

	var clientOpts []arxiv.ClientOption
	if base := config.GetArxivAPIBase(); base != "" {
		clientOpts = append(clientOpts, arxiv.WithBaseURL(base))
	}
	client := arxiv.NewClient(clientOpts...)

	p, err := client.Fetch(ctx, arxivID)
	if err != nil {
		switch {
		case errors.Is(err, arxiv.ErrNotFound):
			exitWithError(ExitNotFound, "%v", err)
		case errors.Is(err, arxiv.ErrBadID):
			exitWithError(ExitError, "%v", err)
		default:
			exitWithError(ExitError, "fetching from arXiv: %v", err)
		}
	}

	existing, err := db.AllCiteKeys()
	if err != nil {
		exitWithError(ExitError, "reading cite keys: %v", err)
	}
	surname := citekey.SurnameToken(p.Authors)
	p.CiteKey = citekey.Allocate(surname, p.Published.Year(), p.ArxivID, existing)
	p.Bibtex = bibtex.Generate(*p, p.CiteKey)
	p.BibtexSource = paper.SourceArxiv

	p.Shelves = addShelves
	p.Tags = addTags
	p.Status = paper.StatusToRead
	p.AddedAt = time.Now().UTC()

	if err := db.CreatePaper(*p); err != nil {
		exitWithError(ExitError, "saving paper: %v", err)
	}

	if addDownloadPDF {
		store := pdf.NewStore(config.ResolvePDFDir())
		if _, err := store.Download(ctx, *p); err != nil {
			// The paper is saved; a PDF failure is a warning, not a rollback.
			outputHuman("warning: downloading PDF: %v\n", err)
		}
	}

	if humanOutput {
		outputHuman("Added %s [%s]\n", p.ArxivID, p.CiteKey)
		printPaperDetail(*p)
	} else {
		outputJSON(p)
	}
	return nil
}
