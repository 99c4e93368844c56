package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/greywatch/srev/internal/model"
	"github.com/greywatch/srev/internal/review"
)

// Config holds all srev configuration.
type Config struct {
	General     GeneralConfig         `toml:"general"`
	Budget      BudgetConfig          `toml:"budget"`
	Reliability ReliabilityConfig     `toml:"reliability"`
	Thresholds  map[string]Thresholds `toml:"thresholds,omitempty"`
	Appearance  AppearanceConfig      `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LedgerRoot     string `toml:"ledger_root,omitempty"`
	DefaultRunType string `toml:"default_run_type"`
	DefaultSource  string `toml:"default_source,omitempty"`
	DefaultProject string `toml:"default_project,omitempty"`
}

// BudgetConfig holds default budget constraints applied when a review
// does not pass explicit limits. Unset fields declare no constraint.
type BudgetConfig struct {
	MaxTokens      *int64   `toml:"max_tokens,omitempty"`
	MaxCostUSD     *float64 `toml:"max_cost_usd,omitempty"`
	TimeboxMinutes *float64 `toml:"timebox_minutes,omitempty"`
}

// ReliabilityConfig holds per-source trust weights.
type ReliabilityConfig struct {
	TrustWeights map[string]float64 `toml:"trust_weights,omitempty"`
}

// Thresholds holds per-run-type threshold overrides. Zero values fall
// back to the built-in table for that run type.
type Thresholds struct {
	UncachedTokensWarn int64   `toml:"uncached_tokens_warn,omitempty"`
	UncachedTokensFail int64   `toml:"uncached_tokens_fail,omitempty"`
	CostUSDWarn        float64 `toml:"cost_usd_warn,omitempty"`
	CostUSDFail        float64 `toml:"cost_usd_fail,omitempty"`
	RetryLoopsWarn     int64   `toml:"retry_loops_warn,omitempty"`
	RetryLoopsFail     int64   `toml:"retry_loops_fail,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultRunType: string(model.RunWorkflow),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "srev")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "srev")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LedgerRoot resolves the trend ledger root: the configured path if
// set, otherwise an XDG data directory.
func LedgerRoot(cfg Config) string {
	if cfg.General.LedgerRoot != "" {
		return cfg.General.LedgerRoot
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "srev", "trends")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "srev", "trends")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// ThresholdTables returns the built-in threshold tables with any
// config overrides applied on top. Unknown run-type keys are ignored.
func ThresholdTables(cfg Config) map[model.RunType]review.ThresholdTable {
	tables := review.DefaultTables()
	for key, over := range cfg.Thresholds {
		runType, err := model.ParseRunType(key)
		if err != nil {
			continue
		}
		table := tables[runType]
		if over.UncachedTokensWarn > 0 {
			table.UncachedTokens.Warn = float64(over.UncachedTokensWarn)
		}
		if over.UncachedTokensFail > 0 {
			table.UncachedTokens.Fail = float64(over.UncachedTokensFail)
		}
		if over.CostUSDWarn > 0 {
			table.CostUSD.Warn = over.CostUSDWarn
		}
		if over.CostUSDFail > 0 {
			table.CostUSD.Fail = over.CostUSDFail
		}
		if over.RetryLoopsWarn > 0 {
			table.RetryLoops.Warn = float64(over.RetryLoopsWarn)
		}
		if over.RetryLoopsFail > 0 {
			table.RetryLoops.Fail = float64(over.RetryLoopsFail)
		}
		tables[runType] = table
	}
	return tables
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
