package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/ads"
	"github.com/refsync/refsync/internal/settings"
)

var keySkipValidation bool

func init() {
	keySetCmd.Flags().BoolVar(&keySkipValidation, "no-validate", false, "Store the key without checking it against ADS")

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyStatusCmd)
	keyCmd.AddCommand(keyDeleteCmd)
	keyCmd.AddCommand(keyValidateCmd)
	rootCmd.AddCommand(keyCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the ADS API key",
	Long: `Manage the NASA ADS API key used by 'refsync sync'.

The key is stored encrypted in the data directory. Get a key at
https://ui.adsabs.harvard.edu/user/settings/token`,
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Validate and store the ADS API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an ADS API key is configured",
	RunE:  runKeyStatus,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored ADS API key",
	RunE:  runKeyDelete,
}

var keyValidateCmd = &cobra.Command{
	Use:   "validate [api-key]",
	Short: "Check a key against ADS without storing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeyValidate,
}

// KeyStatusResponse reports key configuration state.
type KeyStatusResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
	Valid      *bool  `json:"valid,omitempty"`
	Message    string `json:"message,omitempty"`
}

func runKeySet(cmd *cobra.Command, args []string) error {
	apiKey := args[0]

	resp := KeyStatusResponse{Configured: true, Masked: settings.MaskKey(apiKey)}
	if !keySkipValidation {
		ok, msg := ads.ValidateKey(context.Background(), apiKey)
		if !ok {
			exitWithError(ExitAuthError, "%s", msg)
		}
		valid := true
		resp.Valid = &valid
		resp.Message = msg
	}

	if err := settingsStore().SetADSAPIKey(apiKey); err != nil {
		exitWithError(ExitError, "storing key: %v", err)
	}

	if humanOutput {
		outputHuman("Stored ADS API key (%s)\n", resp.Masked)
		return nil
	}
	return outputJSON(resp)
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	key, err := settingsStore().ADSAPIKey()
	if err != nil && !errors.Is(err, settings.ErrCorruptValue) {
		exitWithError(ExitError, "reading key: %v", err)
	}

	resp := KeyStatusResponse{Configured: key != ""}
	if key != "" {
		resp.Masked = settings.MaskKey(key)
	}
	if humanOutput {
		if resp.Configured {
			outputHuman("ADS API key configured (%s)\n", resp.Masked)
		} else {
			outputHuman("No ADS API key configured.\n")
		}
		return nil
	}
	return outputJSON(resp)
}

func runKeyDelete(cmd *cobra.Command, args []string) error {
	if err := settingsStore().SetADSAPIKey(""); err != nil {
		exitWithError(ExitError, "removing key: %v", err)
	}
	if humanOutput {
		outputHuman("Removed ADS API key.\n")
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted"})
}

func runKeyValidate(cmd *cobra.Command, args []string) error {
	var apiKey string
	if len(args) == 1 {
		apiKey = args[0]
	} else {
		apiKey = resolveADSKey()
		if apiKey == "" {
			exitWithError(ExitAuthError, "no ADS API key to validate")
		}
	}

	ok, msg := ads.ValidateKey(context.Background(), apiKey)
	if humanOutput {
		outputHuman("%s\n", msg)
	} else {
		outputJSON(map[string]any{"valid": ok, "message": msg})
	}
	if !ok {
		os.Exit(ExitAuthError)
	}
	return nil
}
