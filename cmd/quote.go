package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yo1233/stock-forecast-analyzer/internal/batch"
	"github.com/yo1233/stock-forecast-analyzer/internal/report"
)

// Quote analyzes the explicitly listed symbols and renders the results.
func Quote(cfgPath string, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	symbols := parseSymbols(args)
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given")
	}

	chain, err := buildChain(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, runErr := analyze(ctx, cfg, chain, []batch.Group{{Name: "quote", Symbols: symbols}})

	report.RenderTable(os.Stdout, results)
	if len(symbols) > 1 {
		report.RenderExtremes(os.Stdout, results)
	}
	return runErr
}
