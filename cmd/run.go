package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yo1233/stock-forecast-analyzer/internal/batch"
	"github.com/yo1233/stock-forecast-analyzer/internal/config"
	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/normalize"
	"github.com/yo1233/stock-forecast-analyzer/internal/report"
	"github.com/yo1233/stock-forecast-analyzer/internal/store"
)

// Run executes a full batch analysis of the named symbol set and renders the
// results. csvOut, when set, additionally exports the ranked results as CSV.
func Run(cfgPath, set, csvOut string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
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

	report.RenderTable(os.Stdout, results)
	report.RenderExtremes(os.Stdout, results)

	if csvOut != "" {
		if err := store.WriteCSV(csvOut, report.SortByForecast(results)); err != nil {
			log.Printf("[ERROR] csv export: %v", err)
		} else {
			log.Printf("[INFO] csv exported to %s", csvOut)
		}
	}

	recordRun(cfg, set, results)
	return runErr
}

// analyze runs the groups through an already-built chain. The chain is
// constructed once per command so provider state (robots policies, limiter
// history) survives across scheduled runs.
func analyze(ctx context.Context, cfg *config.Config, chain *normalize.Chain, groups []batch.Group) ([]model.StockForecast, error) {
	runner := &batch.Runner{
		Resolver:           chain,
		Store:              store.NewJSONStore(cfg.Batch.OutputDir, "stock_analysis"),
		CheckpointInterval: cfg.Batch.CheckpointInterval,
		Delay:              config.Seconds(cfg.Batch.DelaySeconds),
		GroupPause:         config.Seconds(cfg.Batch.GroupPauseSeconds),
	}
	return runner.Run(ctx, groups)
}

func symbolGroups(cfg *config.Config, set string) ([]batch.Group, bool) {
	sets, ok := cfg.SymbolSet(set)
	if !ok {
		return nil, false
	}
	groups := make([]batch.Group, len(sets))
	for i, s := range sets {
		groups[i] = batch.Group{Name: s.Name, Symbols: s.Symbols}
	}
	return groups, true
}

func recordRun(cfg *config.Config, label string, results []model.StockForecast) {
	if len(results) == 0 {
		return
	}
	rec := newRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordRun(label, results); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}
