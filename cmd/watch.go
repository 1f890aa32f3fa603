package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yo1233/stock-forecast-analyzer/internal/report"
	"github.com/yo1233/stock-forecast-analyzer/internal/scheduler"
)

// Watch runs the configured symbol set on a cron schedule until interrupted.
func Watch(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	groups, ok := symbolGroups(cfg, cfg.Schedule.Set)
	if !ok {
		return fmt.Errorf("unknown symbol set %q (known: %v)", cfg.Schedule.Set, cfg.SetNames())
	}

	// One chain for the process lifetime: robots policies and rate limiter
	// history carry over between scheduled runs.
	chain, err := buildChain(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New()
	err = sched.Register(cfg.Schedule.Cron, func() {
		log.Printf("[INFO] scheduled run: set %q", cfg.Schedule.Set)
		results, err := analyze(ctx, cfg, chain, groups)
		if err != nil {
			log.Printf("[ERROR] scheduled run: %v", err)
		}
		report.RenderTable(os.Stdout, results)
		recordRun(cfg, cfg.Schedule.Set, results)
	})
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	log.Printf("[INFO] watching on schedule %q, press Ctrl+C to stop", cfg.Schedule.Cron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}
