// Package config handles global configuration and data directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/refsync/config.yml.
type GlobalConfig struct {
	DataDir      string   `yaml:"data_dir,omitempty"`
	PDFDir       string   `yaml:"pdf_dir,omitempty"`
	ADSAPIKey    string   `yaml:"ads_api_key,omitempty"`
	ArxivAPIBase string   `yaml:"arxiv_api_base,omitempty"`
	JournalHints []string `yaml:"journal_hints,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "refsync"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultDataDirName is the data directory created under $HOME when
	// nothing else is configured.
	DefaultDataDirName = ".refsync"

	// DataDirEnv overrides the data directory location.
	DataDirEnv = "REFSYNC_DATA_DIR"

	// DBFile is the SQLite database file name inside the data directory.
	DBFile = "library.db"
	// PDFSubdir is the default PDF directory name inside the data directory.
	PDFSubdir = "pdfs"
	// CoversSubdir holds downloaded cover images inside the data directory.
	CoversSubdir = "covers"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refsync/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.DataDir = ExpandPath(cfg.DataDir)
	cfg.PDFDir = ExpandPath(cfg.PDFDir)

	globalConfigCache = &cfg
	return &cfg, nil
}

// Save writes the global configuration file, creating its directory.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	globalConfigCache = nil
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ResolveDataDir returns the data directory, in precedence order:
// REFSYNC_DATA_DIR, the config file's data_dir, then ~/.refsync.
func ResolveDataDir() string {
	if envDir := os.Getenv(DataDirEnv); envDir != "" {
		return ExpandPath(envDir)
	}
	cfg, _ := LoadGlobalConfig()
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// DatabasePath returns the SQLite database path under the data directory.
func DatabasePath() string {
	return filepath.Join(ResolveDataDir(), DBFile)
}

// ResolvePDFDir returns the PDF directory, preferring the configured
// pdf_dir over the default inside the data directory.
func ResolvePDFDir() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.PDFDir != "" {
		return cfg.PDFDir
	}
	return filepath.Join(ResolveDataDir(), PDFSubdir)
}

// CoversDir returns the cover image directory under the data directory.
func CoversDir() string {
	return filepath.Join(ResolveDataDir(), CoversSubdir)
}

// EnsureDirs creates the data, PDF, and covers directories.
func EnsureDirs() error {
	for _, dir := range []string{ResolveDataDir(), ResolvePDFDir(), CoversDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// GetADSAPIKey returns the ADS API key from the global config, or "".
func GetADSAPIKey() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.ADSAPIKey
}

// GetJournalHints returns extra journal name fragments from the global
// config, used when classifying ADS records as published.
func GetJournalHints() []string {
	cfg, _ := LoadGlobalConfig()
	return cfg.JournalHints
}

// GetArxivAPIBase returns the configured arXiv API base URL, or "".
func GetArxivAPIBase() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.ArxivAPIBase
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
