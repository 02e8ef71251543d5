package main

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/paper"
	"github.com/refsync/refsync/internal/pdf"
	"github.com/refsync/refsync/internal/storage"
)

var pdfReader string

func init() {
	pdfOpenCmd.Flags().StringVar(&pdfReader, "reader", "", "PDF reader (system, skim, zathura, evince, okular)")

	pdfCmd.AddCommand(pdfDownloadCmd)
	pdfCmd.AddCommand(pdfOpenCmd)
	pdfCmd.AddCommand(pdfPathCmd)
	pdfCmd.AddCommand(pdfDOICmd)
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Manage local PDF copies",
}

var pdfDownloadCmd = &cobra.Command{
	Use:   "download <arxiv-id>",
	Short: "Download a paper's PDF from arXiv",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDFDownload,
}

var pdfOpenCmd = &cobra.Command{
	Use:   "open <arxiv-id>",
	Short: "Open a paper's PDF in a reader",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDFOpen,
}

var pdfPathCmd = &cobra.Command{
	Use:   "path <arxiv-id>",
	Short: "Print the local path of a paper's PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDFPath,
}

var pdfDOICmd = &cobra.Command{
	Use:   "doi <arxiv-id>",
	Short: "Extract a DOI from a paper's stored PDF",
	Long: `Extract a DOI from the first pages of a paper's stored PDF
and save it on the paper. Useful when ADS has no record yet but the
publisher's version is in hand.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDFDOI,
}

// mustGetPaper looks up a paper by raw ID input, exiting on bad IDs or
// missing papers. The caller closes the returned database.
func mustGetPaper(rawID string) (*paper.Paper, *storage.DB) {
	db := openLibrary()

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
	return p, db
}

func runPDFDownload(cmd *cobra.Command, args []string) error {
	p, db := mustGetPaper(args[0])
	defer db.Close()

	store := pdf.NewStore(config.ResolvePDFDir())
	filename, err := store.Download(context.Background(), *p)
	if err != nil {
		exitWithError(ExitError, "downloading PDF: %v", err)
	}

	path := store.Path(filename)
	if humanOutput {
		outputHuman("Saved %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "downloaded", ArxivID: p.ArxivID, Path: path})
}

func runPDFOpen(cmd *cobra.Command, args []string) error {
	if pdfReader != "" && !slices.Contains(pdf.ValidReaders, pdfReader) {
		exitWithError(ExitError, "invalid reader: %s (valid: %v)", pdfReader, pdf.ValidReaders)
	}

	p, db := mustGetPaper(args[0])
	defer db.Close()

	store := pdf.NewStore(config.ResolvePDFDir())
	name, err := store.FindByArxivID(p.ArxivID)
	if err != nil {
		exitWithError(ExitError, "finding PDF: %v", err)
	}
	if name == "" {
		exitWithError(ExitNotFound, "no PDF for %s (download it with 'refsync pdf download')", p.ArxivID)
	}

	if err := pdf.Open(store.Path(name), pdfReader); err != nil {
		exitWithError(ExitError, "opening PDF: %v", err)
	}
	if humanOutput {
		outputHuman("Opened %s\n", name)
		return nil
	}
	return outputJSON(StatusResponse{Status: "opened", ArxivID: p.ArxivID, Path: store.Path(name)})
}

func runPDFPath(cmd *cobra.Command, args []string) error {
	p, db := mustGetPaper(args[0])
	defer db.Close()

	store := pdf.NewStore(config.ResolvePDFDir())
	name, err := store.FindByArxivID(p.ArxivID)
	if err != nil {
		exitWithError(ExitError, "finding PDF: %v", err)
	}
	if name == "" {
		exitWithError(ExitNotFound, "no PDF for %s", p.ArxivID)
	}

	if humanOutput {
		outputHuman("%s\n", store.Path(name))
		return nil
	}
	return outputJSON(StatusResponse{Status: "ok", ArxivID: p.ArxivID, Path: store.Path(name)})
}

func runPDFDOI(cmd *cobra.Command, args []string) error {
	p, db := mustGetPaper(args[0])
	defer db.Close()

	store := pdf.NewStore(config.ResolvePDFDir())
	name, err := store.FindByArxivID(p.ArxivID)
	if err != nil {
		exitWithError(ExitError, "finding PDF: %v", err)
	}
	if name == "" {
		exitWithError(ExitNotFound, "no PDF for %s", p.ArxivID)
	}

	doi, err := pdf.ExtractDOI(store.Path(name))
	if err != nil {
		exitWithError(ExitError, "reading PDF: %v", err)
	}
	if doi == "" {
		exitWithError(ExitNotFound, "no DOI found in %s", name)
	}

	if _, err := db.UpdatePaper(p.ArxivID, paper.Update{DOI: &doi}); err != nil {
		exitWithError(ExitError, "saving DOI: %v", err)
	}

	if humanOutput {
		outputHuman("%s\n", doi)
		return nil
	}
	return outputJSON(map[string]string{"arxiv_id": p.ArxivID, "doi": doi})
}
