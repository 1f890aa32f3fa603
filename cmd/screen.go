package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yo1233/stock-forecast-analyzer/internal/report"
	"github.com/yo1233/stock-forecast-analyzer/internal/store"
)

// Screen analyzes the named symbol set and keeps only records whose forecast
// percentage meets the minimum. minOverride, when non-nil, replaces the
// configured threshold.
func Screen(cfgPath, set string, minOverride *float64, csvOut string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	min := cfg.Screen.MinForecast
	if minOverride != nil {
		min = *minOverride
	}

	groups, ok := symbolGroups(cfg, set)
	if !ok {
		return fmt.Errorf("unknown symbol set %q (known: %v)", set, cfg.SetNames())
	}

	chain, err := buildChain(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, runErr := analyze(ctx, cfg, chain, groups)

	kept := report.SortByForecast(report.FilterMin(results, min))
	fmt.Printf("\n%d of %d symbols at or above %+.1f%% forecast\n", len(kept), len(results), min)
	report.RenderTable(os.Stdout, kept)

	if csvOut != "" {
		if err := store.WriteCSV(csvOut, kept); err != nil {
			log.Printf("[ERROR] csv export: %v", err)
		} else {
			log.Printf("[INFO] csv exported to %s", csvOut)
		}
	}

	recordRun(cfg, fmt.Sprintf("screen:%s", set), results)
	return runErr
}
