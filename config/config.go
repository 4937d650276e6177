package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tendermint/nftauction/libs/log"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultAuctionDir = ".auctiond"
	defaultConfigDir  = "config"
	defaultDataDir    = "data"

	defaultConfigFileName = "config.toml"
	defaultEnvFileName    = ".env"

	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
)

// Config defines the top level configuration of the auction daemon.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for the read side
	Query           *QueryConfig           `mapstructure:"query"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Query:           DefaultQueryConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing.
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Query:           TestQueryConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Query.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [query] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration of the auction daemon.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Chain the auction state belongs to
	ChainID string `mapstructure:"chain-id"`

	// Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
	DBBackend string `mapstructure:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`

	// Optional dotenv file loaded before flags are parsed
	EnvFile string `mapstructure:"env-file"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		ChainID:   "auction",
		DBBackend: "goleveldb",
		DBPath:    defaultDataDir,
		LogLevel:  log.LogLevelInfo,
		LogFormat: log.LogFormatPlain,
		EnvFile:   defaultEnvFileName,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.ChainID = "auction_test"
	cfg.DBBackend = "memdb"
	cfg.LogLevel = log.LogLevelDebug
	return cfg
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// EnvFilePath returns the full path to the dotenv file
func (cfg BaseConfig) EnvFilePath() string {
	return rootify(cfg.EnvFile, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case log.LogFormatPlain, log.LogFormatText, log.LogFormatJSON:
	default:
		return errors.New("unknown log-format (must be 'plain', 'text' or 'json')")
	}
	switch cfg.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("unknown log-level %q", cfg.LogLevel)
	}
	if cfg.ChainID == "" {
		return errors.New("chain-id can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// QueryConfig

// QueryConfig bounds paginated reads of bids and auction summaries.
type QueryConfig struct {
	// Page size used when a request names no limit
	DefaultLimit uint64 `mapstructure:"default-limit"`

	// Largest page size a request may ask for. Larger limits are lowered to
	// this value.
	MaxLimit uint64 `mapstructure:"max-limit"`
}

// DefaultQueryConfig returns a default configuration for queries.
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		DefaultLimit: 10,
		MaxLimit:     30,
	}
}

// TestQueryConfig returns a configuration for queries used in tests.
func TestQueryConfig() *QueryConfig {
	return DefaultQueryConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *QueryConfig) ValidateBasic() error {
	if cfg.MaxLimit == 0 {
		return errors.New("max-limit must be positive")
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		return fmt.Errorf("default-limit (%d) can't exceed max-limit (%d)", cfg.DefaultLimit, cfg.MaxLimit)
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are collected and, if Textfile is set,
	// written there after every command.
	Prometheus bool `mapstructure:"prometheus"`

	// Path of the Prometheus textfile collector output
	Textfile string `mapstructure:"textfile"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus: false,
		Textfile:   "",
		Namespace:  "nftauction",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.Namespace == "" {
		return errors.New("namespace can't be empty when prometheus is enabled")
	}
	return nil
}

// TextfilePath returns the full path of the metrics textfile, or "" when
// metrics are not written out.
func (cfg *Config) TextfilePath() string {
	if !cfg.Instrumentation.Prometheus || cfg.Instrumentation.Textfile == "" {
		return ""
	}
	return rootify(cfg.Instrumentation.Textfile, cfg.RootDir)
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
