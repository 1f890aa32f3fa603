package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.RateLimit.MinDelaySeconds != 3 || cfg.RateLimit.MaxDelaySeconds != 7 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Providers.AlphaVantage.IntervalSeconds != 12.5 {
		t.Errorf("alpha vantage interval default: %v", cfg.Providers.AlphaVantage.IntervalSeconds)
	}
	if cfg.Providers.AlphaVantage.CooldownSeconds != 70 {
		t.Errorf("alpha vantage cooldown default: %v", cfg.Providers.AlphaVantage.CooldownSeconds)
	}
	if cfg.Estimate.BaseGrowth != 0.10 || cfg.Estimate.HighGrowth != 0.15 || cfg.Estimate.Band != 0.15 {
		t.Errorf("unexpected estimate defaults: %+v", cfg.Estimate)
	}
	if cfg.Batch.CheckpointInterval != 10 {
		t.Errorf("checkpoint interval default: %v", cfg.Batch.CheckpointInterval)
	}
	if got := cfg.MinDelay(); got != 3*time.Second {
		t.Errorf("MinDelay() = %v", got)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
rate_limit:
  min_delay_seconds: 1.5
  max_delay_seconds: 2.5
providers:
  priority: [fmp, yahoo]
  fmp:
    api_key: from-file
batch:
  delay_seconds: 2
`)
	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("BATCH_DELAY_SECONDS", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateLimit.MinDelaySeconds != 1.5 {
		t.Errorf("file value not applied: %v", cfg.RateLimit.MinDelaySeconds)
	}
	if cfg.Providers.FMP.APIKey != "from-env" {
		t.Errorf("env override not applied: %q", cfg.Providers.FMP.APIKey)
	}
	if cfg.Batch.DelaySeconds != 9 {
		t.Errorf("env delay override not applied: %v", cfg.Batch.DelaySeconds)
	}
	if len(cfg.Providers.Priority) != 2 || cfg.Providers.Priority[0] != "fmp" {
		t.Errorf("priority not applied: %v", cfg.Providers.Priority)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Providers.Priority = []string{"alpha_vantage"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("expected missing key error, got %v", err)
	}

	cfg.Providers.Priority = []string{"bloomberg"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("expected unknown provider error, got %v", err)
	}

	cfg.Providers.Priority = []string{"yahoo"}
	cfg.RateLimit.MaxDelaySeconds = 1
	cfg.RateLimit.MinDelaySeconds = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected rate limit ordering error")
	}
}

func TestSymbolSet(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Symbols = map[string][]string{"watchlist": {"AAPL", "XOM"}}

	sets, ok := cfg.SymbolSet("all")
	if !ok || len(sets) != 7 {
		t.Fatalf("all should expand to 7 sectors, got %d", len(sets))
	}
	if sets[0].Name != "tech" || sets[6].Name != "utilities" {
		t.Errorf("sector order wrong: %s .. %s", sets[0].Name, sets[6].Name)
	}

	sets, ok = cfg.SymbolSet("watchlist")
	if !ok || len(sets) != 1 || len(sets[0].Symbols) != 2 {
		t.Fatalf("user set lookup failed: %v %v", ok, sets)
	}

	if _, ok := cfg.SymbolSet("nope"); ok {
		t.Error("unknown set should not resolve")
	}

	names := cfg.SetNames()
	if names[0] != "all" || names[len(names)-1] != "watchlist" {
		t.Errorf("unexpected set names: %v", names)
	}
}
