// Package cmd implements the CLI subcommands: wiring config, providers,
// the batch runner and the report layer together.
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yo1233/stock-forecast-analyzer/internal/config"
	"github.com/yo1233/stock-forecast-analyzer/internal/normalize"
	"github.com/yo1233/stock-forecast-analyzer/internal/provider"
	"github.com/yo1233/stock-forecast-analyzer/internal/ratelimit"
	"github.com/yo1233/stock-forecast-analyzer/internal/store"
)

func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// buildChain assembles the provider fallback chain in configured priority
// order, all sharing one rate limiter.
func buildChain(cfg *config.Config) (*normalize.Chain, error) {
	limiter := ratelimit.New(cfg.MinDelay(), cfg.MaxDelay())

	providers := make([]provider.Provider, 0, len(cfg.Providers.Priority))
	for _, name := range cfg.Providers.Priority {
		switch name {
		case "alpha_vantage":
			av := provider.NewAlphaVantage(cfg.Providers.AlphaVantage.APIKey, limiter)
			av.Cooldown = config.Seconds(cfg.Providers.AlphaVantage.CooldownSeconds)
			limiter.SetMinInterval(av.Name(), config.Seconds(cfg.Providers.AlphaVantage.IntervalSeconds))
			providers = append(providers, av)
		case "yahoo":
			y := provider.NewYahoo(limiter)
			if len(cfg.Providers.Yahoo.Hosts) > 0 {
				y.Hosts = cfg.Providers.Yahoo.Hosts
			}
			y.Cooldown = config.Seconds(cfg.Providers.Yahoo.CooldownSeconds)
			providers = append(providers, y)
		case "fmp":
			f := provider.NewFMP(cfg.Providers.FMP.APIKey, limiter)
			f.Cooldown = config.Seconds(cfg.Providers.FMP.CooldownSeconds)
			providers = append(providers, f)
		case "scrape":
			s := provider.NewScraper(limiter)
			if ua := cfg.Providers.Scrape.UserAgent; ua != "" {
				s.UserAgent = ua
			}
			providers = append(providers, s)
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	norm := normalize.New(normalize.Config{
		BaseGrowth:        cfg.Estimate.BaseGrowth,
		HighGrowth:        cfg.Estimate.HighGrowth,
		HighGrowthSymbols: cfg.Estimate.HighGrowthSymbols,
		Band:              cfg.Estimate.Band,
	})
	return normalize.NewChain(providers, norm), nil
}

// newRecorder opens the SQLite run history, falling back to a noop recorder
// when the database cannot be opened.
func newRecorder(cfg *config.Config) store.Recorder {
	if cfg.Database.SQLitePath == "" {
		return store.NewNoopRecorder()
	}
	rec, err := store.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return store.NewNoopRecorder()
	}
	return rec
}

// parseSymbols normalizes a free-form symbol listing: comma, space or
// newline separated, case-insensitive.
func parseSymbols(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, s := range strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t'
		}) {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
