package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/ads"
	"github.com/refsync/refsync/internal/arxiv"
	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/paper"
)

var syncAll bool

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Resync every paper, including already-published ones")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [arxiv-id...]",
	Short: "Reconcile citation data against NASA ADS",
	Long: `Reconcile the library against NASA ADS.

Papers found in ADS get their bibcode, DOI, and publication status
merged in. Papers classified as published also receive a journal
reference and the ADS BibTeX record, rewritten to keep the local cite
key. By default only papers not yet marked published (or never synced)
are checked; --all rechecks everything.

Requires an ADS API key ('refsync key set', the ADS_API_KEY
environment variable, or ads_api_key in the config file).

Examples:
  refsync sync
  refsync sync --all
  refsync sync 2401.07041`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	apiKey := resolveADSKey()
	if apiKey == "" {
		exitWithError(ExitAuthError, "no ADS API key configured (set one with 'refsync key set')")
	}

	db := openLibrary()
	defer db.Close()

	var papers []paper.Paper
	var err error
	switch {
	case len(args) > 0:
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
	case syncAll:
		papers, err = db.ListPapers(-1, 0)
		if err != nil {
			exitWithError(ExitError, "listing papers: %v", err)
		}
	default:
		papers, err = db.ListUnsynced()
		if err != nil {
			exitWithError(ExitError, "listing unsynced papers: %v", err)
		}
	}

	client, err := ads.NewClient(apiKey)
	if err != nil {
		exitWithError(ExitAuthError, "%v", err)
	}

	classifier := ads.NewClassifier(config.GetJournalHints()...)
	engine := ads.NewEngine(client, ads.WithClassifier(classifier))

	apply := func(ctx context.Context, arxivID string, upd paper.Update) error {
		_, err := db.UpdatePaper(arxivID, upd)
		return err
	}

	stats, err := engine.Sync(ctx, papers, apply)
	if err != nil {
		switch {
		case ads.IsAuthError(err):
			exitWithError(ExitAuthError, "%v", err)
		case ads.IsRateLimited(err):
			exitWithError(ExitRateLimited, "%v", err)
		default:
			exitWithError(ExitError, "syncing: %v", err)
		}
	}

	if humanOutput {
		outputHuman("Checked %d papers: %d synced (%d published), %d not in ADS, %d errors\n",
			len(papers), stats.Synced, stats.Published, stats.NotFound, stats.Errors)
		return nil
	}
	return outputJSON(stats)
}
