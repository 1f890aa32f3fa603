package normalize

import (
	"context"
	"log"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/provider"
)

// Chain resolves one symbol by trying providers in priority order, then
// normalizing whatever they returned. Resolution short-circuits on the
// first provider that yields analyst targets; providers after it are never
// invoked. Price-only records seen on the way are kept as estimation input.
type Chain struct {
	Providers  []provider.Provider
	Normalizer *Normalizer
}

// NewChain creates a resolution chain over the given adapters.
func NewChain(providers []provider.Provider, n *Normalizer) *Chain {
	return &Chain{Providers: providers, Normalizer: n}
}

// Resolve produces the canonical record for symbol. Provider failures are
// logged and skipped; only context cancellation stops the chain early.
func (c *Chain) Resolve(ctx context.Context, symbol string) model.StockForecast {
	var raws []*model.RawQuote
	for _, p := range c.Providers {
		if ctx.Err() != nil {
			break
		}
		rec, err := p.Fetch(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] %s unavailable for %s: %v", p.Name(), symbol, err)
			continue
		}
		raws = append(raws, rec)
		if rec.HasTargets() {
			break
		}
	}
	return c.Normalizer.Normalize(symbol, raws)
}
