package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	RateLimit struct {
		MinDelaySeconds float64 `yaml:"min_delay_seconds"`
		MaxDelaySeconds float64 `yaml:"max_delay_seconds"`
	} `yaml:"rate_limit"`
	Providers struct {
		// Priority lists adapter names in fallback order. Known names:
		// alpha_vantage, yahoo, fmp, scrape.
		Priority     []string `yaml:"priority"`
		AlphaVantage struct {
			APIKey          string  `yaml:"api_key"`
			IntervalSeconds float64 `yaml:"interval_seconds"`
			CooldownSeconds float64 `yaml:"cooldown_seconds"`
		} `yaml:"alpha_vantage"`
		Yahoo struct {
			Hosts           []string `yaml:"hosts"`
			CooldownSeconds float64  `yaml:"cooldown_seconds"`
		} `yaml:"yahoo"`
		FMP struct {
			APIKey          string  `yaml:"api_key"`
			CooldownSeconds float64 `yaml:"cooldown_seconds"`
		} `yaml:"fmp"`
		Scrape struct {
			UserAgent string `yaml:"user_agent"`
		} `yaml:"scrape"`
	} `yaml:"providers"`
	Estimate struct {
		BaseGrowth        float64  `yaml:"base_growth"`
		HighGrowth        float64  `yaml:"high_growth"`
		HighGrowthSymbols []string `yaml:"high_growth_symbols"`
		Band              float64  `yaml:"band"`
	} `yaml:"estimate"`
	Batch struct {
		DelaySeconds       float64 `yaml:"delay_seconds"`
		CheckpointInterval int     `yaml:"checkpoint_interval"`
		GroupPauseSeconds  float64 `yaml:"group_pause_seconds"`
		OutputDir          string  `yaml:"output_dir"`
	} `yaml:"batch"`
	Screen struct {
		MinForecast float64 `yaml:"min_forecast"`
	} `yaml:"screen"`
	// Symbols maps set names to symbol lists, merged over the built-in
	// sector sets.
	Symbols  map[string][]string `yaml:"symbols"`
	Schedule struct {
		Cron string `yaml:"cron"`
		Set  string `yaml:"set"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.Providers.FMP.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Batch.OutputDir = v
	}
	if v := os.Getenv("BATCH_DELAY_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Batch.DelaySeconds = f
		}
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}

	// Defaults
	if cfg.RateLimit.MinDelaySeconds == 0 {
		cfg.RateLimit.MinDelaySeconds = 3
	}
	if cfg.RateLimit.MaxDelaySeconds == 0 {
		cfg.RateLimit.MaxDelaySeconds = 7
	}
	// Keyed providers join the chain only when configured explicitly.
	if len(cfg.Providers.Priority) == 0 {
		cfg.Providers.Priority = []string{"yahoo", "scrape"}
	}
	if cfg.Providers.AlphaVantage.IntervalSeconds == 0 {
		// Free tier allows 5 requests per minute.
		cfg.Providers.AlphaVantage.IntervalSeconds = 12.5
	}
	if cfg.Providers.AlphaVantage.CooldownSeconds == 0 {
		cfg.Providers.AlphaVantage.CooldownSeconds = 70
	}
	if cfg.Providers.Yahoo.CooldownSeconds == 0 {
		cfg.Providers.Yahoo.CooldownSeconds = 60
	}
	if cfg.Providers.FMP.CooldownSeconds == 0 {
		cfg.Providers.FMP.CooldownSeconds = 60
	}
	if cfg.Estimate.BaseGrowth == 0 {
		cfg.Estimate.BaseGrowth = 0.10
	}
	if cfg.Estimate.HighGrowth == 0 {
		cfg.Estimate.HighGrowth = 0.15
	}
	if len(cfg.Estimate.HighGrowthSymbols) == 0 {
		cfg.Estimate.HighGrowthSymbols = defaultHighGrowthSymbols()
	}
	if cfg.Estimate.Band == 0 {
		cfg.Estimate.Band = 0.15
	}
	if cfg.Batch.DelaySeconds == 0 {
		cfg.Batch.DelaySeconds = 5
	}
	if cfg.Batch.CheckpointInterval == 0 {
		cfg.Batch.CheckpointInterval = 10
	}
	if cfg.Batch.GroupPauseSeconds == 0 {
		cfg.Batch.GroupPauseSeconds = 30
	}
	if cfg.Batch.OutputDir == "" {
		cfg.Batch.OutputDir = "data"
	}
	if cfg.Screen.MinForecast == 0 {
		cfg.Screen.MinForecast = 15
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 22 * * 1-5"
	}
	if cfg.Schedule.Set == "" {
		cfg.Schedule.Set = "all"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/forecasts.db"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.RateLimit.MinDelaySeconds < 0 || c.RateLimit.MaxDelaySeconds < c.RateLimit.MinDelaySeconds {
		return fmt.Errorf("rate_limit: max_delay_seconds must be >= min_delay_seconds >= 0")
	}
	for _, name := range c.Providers.Priority {
		switch name {
		case "alpha_vantage", "yahoo", "fmp", "scrape":
		default:
			return fmt.Errorf("providers.priority: unknown provider %q", name)
		}
		if name == "alpha_vantage" && c.Providers.AlphaVantage.APIKey == "" {
			return fmt.Errorf("providers.alpha_vantage.api_key is required when alpha_vantage is enabled")
		}
		if name == "fmp" && c.Providers.FMP.APIKey == "" {
			return fmt.Errorf("providers.fmp.api_key is required when fmp is enabled")
		}
	}
	if c.Batch.CheckpointInterval < 0 {
		return fmt.Errorf("batch.checkpoint_interval must not be negative")
	}
	if c.Estimate.BaseGrowth <= -1 || c.Estimate.HighGrowth <= -1 {
		return fmt.Errorf("estimate: growth rates must be greater than -1")
	}
	return nil
}

// MinDelay returns the rate limiter floor as a duration.
func (c *Config) MinDelay() time.Duration { return Seconds(c.RateLimit.MinDelaySeconds) }

// MaxDelay returns the rate limiter ceiling as a duration.
func (c *Config) MaxDelay() time.Duration { return Seconds(c.RateLimit.MaxDelaySeconds) }

// Seconds converts a float seconds config value to a duration.
func Seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
