package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pushchain/candy-machine-client/candyClient/constant"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	var defaults Config
	if err := json.Unmarshal(defaultConfigJSON, &defaults); err != nil {
		return fmt.Errorf("failed to unmarshal default config: %w", err)
	}

	// Ledger defaults
	if len(cfg.RPCURLs) == 0 {
		cfg.RPCURLs = defaults.RPCURLs
	}
	if cfg.Commitment == "" {
		cfg.Commitment = defaults.Commitment
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("commitment must be 'processed', 'confirmed' or 'finalized'")
	}
	if cfg.ConfirmTimeoutSeconds == 0 {
		cfg.ConfirmTimeoutSeconds = 60
	}
	if cfg.ConfirmPollIntervalMillis == 0 {
		cfg.ConfirmPollIntervalMillis = 500
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 10
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoffMillis == 0 {
		cfg.RetryBackoffMillis = 500
	}

	// Program ids fall back to the pinned deployment
	if cfg.Programs.CandyMachine == "" {
		cfg.Programs.CandyMachine = defaults.Programs.CandyMachine
	}
	if cfg.Programs.TokenMetadata == "" {
		cfg.Programs.TokenMetadata = defaults.Programs.TokenMetadata
	}
	if cfg.Programs.Token == "" {
		cfg.Programs.Token = defaults.Programs.Token
	}
	if cfg.Programs.AssociatedToken == "" {
		cfg.Programs.AssociatedToken = defaults.Programs.AssociatedToken
	}
	if _, err := cfg.ProgramIDs(); err != nil {
		return err
	}

	// Distributor defaults
	if cfg.Symbol == "" {
		cfg.Symbol = defaults.Symbol
	}
	if len(cfg.Symbol) > layout.SymbolWidth {
		return fmt.Errorf("symbol must be at most %d bytes", layout.SymbolWidth)
	}
	if cfg.SellerFeeBasisPoints > layout.MaxBasisPoints {
		return fmt.Errorf("seller fee basis points must be at most %d", layout.MaxBasisPoints)
	}
	if cfg.AuthorityFundingLamports == 0 {
		cfg.AuthorityFundingLamports = defaults.AuthorityFundingLamports
	}

	// Catalog defaults
	if cfg.Catalog.NameWidth == 0 {
		cfg.Catalog.NameWidth = defaults.Catalog.NameWidth
	}
	if cfg.Catalog.URIWidth == 0 {
		cfg.Catalog.URIWidth = defaults.Catalog.URIWidth
	}
	if _, err := cfg.EntryLayout(); err != nil {
		return err
	}
	if cfg.LinesPerTransaction <= 0 {
		cfg.LinesPerTransaction = 10
	}

	// Set defaults for query server
	if cfg.QueryServerPort == 0 {
		cfg.QueryServerPort = 8080
	}

	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = defaults.DatabaseFile
	}

	return nil
}

// EntryLayout returns the validated catalog line layout.
func (c *Config) EntryLayout() (layout.EntryLayout, error) {
	return layout.NewEntryLayout(c.Catalog.NameWidth, c.Catalog.URIWidth)
}

// Save writes the given config to <NodeDir>/config/pcandy_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, constant.ConfigSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, constant.ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads, validates and returns the config from <BasePath>/config/pcandy_config.json.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config under basePath, falling back to the embedded
// defaults when no config file has been written yet.
func LoadOrDefault(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		cfg, err := LoadDefaultConfig()
		if err != nil {
			return Config{}, err
		}
		cfg.NodeHome = basePath
		return *cfg, nil
	}
	return Load(basePath)
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid default config: %w", err)
	}
	return &cfg, nil
}
