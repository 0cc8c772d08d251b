// Package config loads and validates fraudlens configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all fraudlens configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration for the analysis agents
	LLM LLMConfig `yaml:"llm"`

	// Analysis thresholds for the transaction checks
	Analysis AnalysisConfig `yaml:"analysis"`

	// SQLite storage
	Store StoreConfig `yaml:"store"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the model backing the analysis agents.
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // openai, zai, gemini, offline
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	Timeout           string  `yaml:"timeout"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// AnalysisConfig carries the tunable thresholds the transaction checks use.
type AnalysisConfig struct {
	// History window for customer transactions, in days.
	LookbackDays int `yaml:"lookback_days"`

	// Average time gap (minutes) below which activity counts as rapid fire.
	AvgTimeGapMinutes float64 `yaml:"avg_time_gap_minutes"`

	// Relative tolerance when matching amounts against history.
	AmountVariability float64 `yaml:"amount_variability"`

	// Amount considered high regardless of history.
	AbsoluteAmountLimit float64 `yaml:"absolute_amount_limit"`

	// Velocity windows (minutes) and the max transaction count per window.
	VelocityThresholds map[int]int `yaml:"velocity_thresholds"`

	RiskyMerchantCategories []string `yaml:"risky_merchant_categories"`
	RiskyMCCs               []string `yaml:"risky_mccs"`
	RiskyCountries          []string `yaml:"risky_countries"`
	RiskyCurrencies         []string `yaml:"risky_currencies"`
}

// Lookback returns the history window as a duration.
func (a AnalysisConfig) Lookback() time.Duration {
	days := a.LookbackDays
	if days <= 0 {
		days = 60
	}
	return time.Duration(days) * 24 * time.Hour
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	SentryDSN    string `yaml:"sentry_dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration. Threshold defaults match
// the tuned values shipped with the sample dataset.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fraudlens",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:          "offline",
			Model:             "gpt-4o-mini",
			BaseURL:           "https://api.openai.com/v1",
			Timeout:           "120s",
			MaxTokens:         4096,
			Temperature:       0.1,
			RequestsPerMinute: 30,
		},

		Analysis: AnalysisConfig{
			LookbackDays:        60,
			AvgTimeGapMinutes:   2.0,
			AmountVariability:   0.10,
			AbsoluteAmountLimit: 10000,
			VelocityThresholds: map[int]int{
				1: 2, 2: 3, 3: 4, 5: 5, 10: 7,
				15: 10, 20: 12, 60: 20, 360: 60, 1440: 150,
			},
			RiskyMerchantCategories: []string{
				"Gambling", "Cryptocurrency", "Money Transfer",
			},
			RiskyMCCs:       []string{"7995", "6051", "4829", "5967"},
			RiskyCountries:  []string{"NG", "RU", "KP", "IR"},
			RiskyCurrencies: []string{"BTC", "XRP"},
		},

		Store: StoreConfig{
			DatabasePath: "data/fraudlens.db",
		},

		Server: ServerConfig{
			ListenAddr:   ":8090",
			ReadTimeout:  "30s",
			WriteTimeout: "60s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Analysis.LookbackDays < 0 {
		return fmt.Errorf("analysis.lookback_days must be >= 0, got %d", c.Analysis.LookbackDays)
	}
	if c.Analysis.AmountVariability < 0 || c.Analysis.AmountVariability > 1 {
		return fmt.Errorf("analysis.amount_variability must be in [0,1], got %v", c.Analysis.AmountVariability)
	}
	for window, limit := range c.Analysis.VelocityThresholds {
		if window <= 0 || limit <= 0 {
			return fmt.Errorf("analysis.velocity_thresholds: invalid entry %d:%d", window, limit)
		}
	}
	switch c.LLM.Provider {
	case "openai", "zai", "gemini", "offline", "":
	default:
		return fmt.Errorf("llm.provider %q not supported", c.LLM.Provider)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. API keys are
// checked in priority order so the most specific provider wins.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ZAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "zai"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if provider := os.Getenv("FRAUDLENS_LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if model := os.Getenv("FRAUDLENS_LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("FRAUDLENS_DB_PATH"); path != "" {
		c.Store.DatabasePath = path
	}
	if addr := os.Getenv("FRAUDLENS_LISTEN_ADDR"); addr != "" {
		c.Server.ListenAddr = addr
	}
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		c.Server.SentryDSN = dsn
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.WriteTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
