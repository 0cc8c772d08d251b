package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.LookbackDays != 60 {
		t.Errorf("LookbackDays = %d, want 60", cfg.Analysis.LookbackDays)
	}
	if cfg.Analysis.AbsoluteAmountLimit != 10000 {
		t.Errorf("AbsoluteAmountLimit = %v, want 10000", cfg.Analysis.AbsoluteAmountLimit)
	}
	if got := cfg.Analysis.VelocityThresholds[1]; got != 2 {
		t.Errorf("VelocityThresholds[1] = %d, want 2", got)
	}
	if got := cfg.Analysis.VelocityThresholds[1440]; got != 150 {
		t.Errorf("VelocityThresholds[1440] = %d, want 150", got)
	}
	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", cfg.LLM.MaxTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "fraudlens" {
		t.Errorf("Name = %q, want fraudlens", cfg.Name)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.LookbackDays = 90
	cfg.Analysis.RiskyCountries = []string{"ZZ"}
	cfg.Server.ListenAddr = ":9999"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Analysis.LookbackDays != 90 {
		t.Errorf("LookbackDays = %d, want 90", loaded.Analysis.LookbackDays)
	}
	if len(loaded.Analysis.RiskyCountries) != 1 || loaded.Analysis.RiskyCountries[0] != "ZZ" {
		t.Errorf("RiskyCountries = %v, want [ZZ]", loaded.Analysis.RiskyCountries)
	}
	if loaded.Server.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", loaded.Server.ListenAddr)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("llm: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FRAUDLENS_DB_PATH", "/tmp/override.db")
	t.Setenv("FRAUDLENS_LISTEN_ADDR", ":7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.LLM.Provider)
	}
	if cfg.Store.DatabasePath != "/tmp/override.db" {
		t.Errorf("DatabasePath = %q, want /tmp/override.db", cfg.Store.DatabasePath)
	}
	if cfg.Server.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, want :7070", cfg.Server.ListenAddr)
	}
}

func TestProviderEnvOverridesKeyDetection(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FRAUDLENS_LLM_PROVIDER", "offline")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Provider != "offline" {
		t.Errorf("Provider = %q, want offline", cfg.LLM.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative lookback", func(c *Config) { c.Analysis.LookbackDays = -1 }, true},
		{"variability over 1", func(c *Config) { c.Analysis.AmountVariability = 1.5 }, true},
		{"bad velocity window", func(c *Config) { c.Analysis.VelocityThresholds = map[int]int{0: 5} }, true},
		{"bad provider", func(c *Config) { c.LLM.Provider = "cohere" }, true},
		{"empty provider ok", func(c *Config) { c.LLM.Provider = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
