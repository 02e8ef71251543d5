package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/settings"
	"github.com/refsync/refsync/internal/storage"
)

func init() {
	// Load .env file if present (for ADS_API_KEY, REFSYNC_DATA_DIR)
	_ = godotenv.Load()
}

// openLibrary opens the library database, creating the data directories
// on first use. Exits on failure.
func openLibrary() *storage.DB {
	if err := config.EnsureDirs(); err != nil {
		exitWithError(ExitConfigError, "preparing data directory: %v", err)
	}
	db, err := storage.OpenDB(config.DatabasePath())
	if err != nil {
		exitWithError(ExitError, "opening library: %v", err)
	}
	return db
}

// settingsStore returns the settings store rooted at the data directory.
func settingsStore() *settings.Store {
	return settings.NewStore(config.ResolveDataDir())
}

// resolveADSKey returns the ADS API key, in precedence order: the
// ADS_API_KEY environment variable (including .env), the encrypted
// settings store, then the global config file. Returns "" if unset.
func resolveADSKey() string {
	if key := os.Getenv("ADS_API_KEY"); key != "" {
		return key
	}
	if key, err := settingsStore().ADSAPIKey(); err == nil && key != "" {
		return key
	}
	return config.GetADSAPIKey()
}
