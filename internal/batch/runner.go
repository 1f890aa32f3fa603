// Package batch drives the sequential analysis loop: one symbol at a time
// through the provider chain, with periodic checkpoints so a long run can be
// interrupted without losing everything.
package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/store"
)

// Resolver produces one normalized record per symbol. Satisfied by
// normalize.Chain.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) model.StockForecast
}

// Group is a named batch of symbols, typically a sector.
type Group struct {
	Name    string
	Symbols []string
}

// Runner executes groups of symbols strictly in order. No concurrency: the
// per-provider call ceilings are derived for a single in-flight request.
type Runner struct {
	Resolver Resolver
	Store    store.Snapshotter

	// CheckpointInterval persists accumulated results every N symbols.
	// Zero disables interval checkpoints; the final persist always runs.
	CheckpointInterval int
	// Delay is the pause between consecutive symbols.
	Delay time.Duration
	// GroupPause is the pause between groups.
	GroupPause time.Duration
}

// Run processes every group sequentially and returns the accumulated results.
// Results gathered so far are persisted before returning on cancellation, and
// a best-effort final persist is attempted even when a checkpoint write has
// already failed.
func (r *Runner) Run(ctx context.Context, groups []Group) ([]model.StockForecast, error) {
	total := 0
	for _, g := range groups {
		total += len(g.Symbols)
	}
	results := make([]model.StockForecast, 0, total)

	log.Printf("[INFO] processing %d symbols across %d groups", total, len(groups))

	done := 0
	for gi, g := range groups {
		if len(groups) > 1 {
			log.Printf("[INFO] group %d/%d: %s (%d symbols)", gi+1, len(groups), g.Name, len(g.Symbols))
		}

		for _, symbol := range g.Symbols {
			if err := ctx.Err(); err != nil {
				return results, r.finish(results, fmt.Errorf("run interrupted: %w", err))
			}

			done++
			log.Printf("[INFO] [%d/%d] processing %s", done, total, symbol)

			rec := r.Resolver.Resolve(ctx, symbol)
			results = append(results, rec)
			logResult(rec)

			if done%10 == 0 && done < total {
				ok := 0
				for _, res := range results {
					if res.Status == model.StatusSuccess {
						ok++
					}
				}
				log.Printf("[INFO] progress: %d/%d done, %d ok, %d failed", done, total, ok, done-ok)
			}

			if r.CheckpointInterval > 0 && done%r.CheckpointInterval == 0 && done < total {
				if err := r.checkpoint(results); err != nil {
					return results, r.finish(results, err)
				}
			}

			if r.Delay > 0 && done < total {
				if err := sleepCtx(ctx, r.Delay); err != nil {
					return results, r.finish(results, fmt.Errorf("run interrupted: %w", err))
				}
			}
		}

		if gi < len(groups)-1 {
			if err := r.checkpoint(results); err != nil {
				return results, r.finish(results, err)
			}
			if r.GroupPause > 0 {
				if err := sleepCtx(ctx, r.GroupPause); err != nil {
					return results, r.finish(results, fmt.Errorf("run interrupted: %w", err))
				}
			}
		}
	}

	return results, r.finish(results, nil)
}

// finish persists the accumulated results and folds any persist error into
// the run error. The original cause wins when both are set.
func (r *Runner) finish(results []model.StockForecast, cause error) error {
	if len(results) == 0 {
		return cause
	}
	path, err := r.Store.Snapshot(results)
	if err != nil {
		log.Printf("[ERROR] final persist failed: %v", err)
		if cause != nil {
			return cause
		}
		return fmt.Errorf("final persist: %w", err)
	}
	log.Printf("[INFO] results saved to %s", path)
	return cause
}

func (r *Runner) checkpoint(results []model.StockForecast) error {
	path, err := r.Store.Snapshot(results)
	if err != nil {
		return fmt.Errorf("checkpoint after %d symbols: %w", len(results), err)
	}
	log.Printf("[INFO] progress saved to %s (%d records)", path, len(results))
	return nil
}

func logResult(rec model.StockForecast) {
	switch {
	case rec.Status == model.StatusError:
		log.Printf("[WARN]   %s: %s", rec.Symbol, rec.ErrorMessage)
	case rec.CurrentPrice.Valid && rec.TargetLow.Valid && rec.TargetHigh.Valid:
		log.Printf("[INFO]   %s: $%.2f | target $%.2f-$%.2f (mean $%.2f) [%s]",
			rec.Symbol, rec.CurrentPrice.Float64, rec.TargetLow.Float64,
			rec.TargetHigh.Float64, rec.TargetMean.Float64, rec.Source)
	case rec.CurrentPrice.Valid && rec.TargetMean.Valid:
		log.Printf("[INFO]   %s: $%.2f -> $%.2f (%+.1f%%) [%s]",
			rec.Symbol, rec.CurrentPrice.Float64, rec.TargetMean.Float64,
			rec.ForecastPercentage.Float64, rec.Source)
	default:
		log.Printf("[INFO]   %s: data retrieved [%s]", rec.Symbol, rec.Source)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
