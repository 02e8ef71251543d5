package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/config"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change global configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective configuration",
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in ` + "~" + `/.config/refsync/config.yml.

Keys:
  data_dir        Library location (default ~/.refsync)
  pdf_dir         PDF directory (default <data_dir>/pdfs)
  ads_api_key     ADS API key (prefer 'refsync key set' for encrypted storage)
  arxiv_api_base  Override the arXiv API endpoint
  journal_hints   Comma-separated journal name fragments for the
                  publication classifier`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runConfigPath,
}

// ConfigResponse is the response for config get.
type ConfigResponse struct {
	DataDir      string   `json:"data_dir"`
	PDFDir       string   `json:"pdf_dir"`
	DatabasePath string   `json:"database_path"`
	ArxivAPIBase string   `json:"arxiv_api_base,omitempty"`
	JournalHints []string `json:"journal_hints,omitempty"`
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	resp := ConfigResponse{
		DataDir:      config.ResolveDataDir(),
		PDFDir:       config.ResolvePDFDir(),
		DatabasePath: config.DatabasePath(),
		ArxivAPIBase: config.GetArxivAPIBase(),
		JournalHints: config.GetJournalHints(),
	}
	if humanOutput {
		outputHuman("data_dir:       %s\n", resp.DataDir)
		outputHuman("pdf_dir:        %s\n", resp.PDFDir)
		outputHuman("database:       %s\n", resp.DatabasePath)
		if resp.ArxivAPIBase != "" {
			outputHuman("arxiv_api_base: %s\n", resp.ArxivAPIBase)
		}
		if len(resp.JournalHints) > 0 {
			outputHuman("journal_hints:  %s\n", strings.Join(resp.JournalHints, ", "))
		}
		return nil
	}
	return outputJSON(resp)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	updated := *cfg

	switch key {
	case "data_dir":
		updated.DataDir = value
	case "pdf_dir":
		updated.PDFDir = value
	case "ads_api_key":
		updated.ADSAPIKey = value
	case "arxiv_api_base":
		updated.ArxivAPIBase = value
	case "journal_hints":
		var hints []string
		for _, h := range strings.Split(value, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hints = append(hints, strings.ToLower(h))
			}
		}
		updated.JournalHints = hints
	default:
		exitWithError(ExitConfigError, "unknown config key: %s", key)
	}

	if err := updated.Save(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Set %s\n", key)
		return nil
	}
	return outputJSON(map[string]string{"status": "updated", "key": key, "value": value})
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := config.GlobalConfigPath()
	if humanOutput {
		outputHuman("%s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "ok", Path: path})
}
