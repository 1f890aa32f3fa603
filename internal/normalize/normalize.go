package normalize

import (
	"strings"

	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

// Estimation tuning. The heuristics were never specified upstream, so all
// of them are knobs rather than fixed truths.
const (
	// DefaultBaseGrowth is the assumed one-year growth when no analyst
	// target exists.
	DefaultBaseGrowth = 0.10

	// DefaultHighGrowth replaces the base growth for symbols in the
	// configured high-growth set.
	DefaultHighGrowth = 0.15

	// DefaultBand widens a lone mean target into a high/low range.
	DefaultBand = 0.15

	// Offsets applied around the growth rate when synthesizing a range
	// from a bare price.
	estimateHighOffset = 0.10
	estimateLowOffset  = -0.05
)

// Config tunes the estimation fallback.
type Config struct {
	BaseGrowth        float64
	HighGrowth        float64
	HighGrowthSymbols []string
	Band              float64
}

// Normalizer converts raw provider records into canonical forecasts.
type Normalizer struct {
	baseGrowth float64
	highGrowth float64
	highSet    map[string]bool
	band       float64
}

// New creates a Normalizer, filling zero config fields with defaults.
func New(cfg Config) *Normalizer {
	n := &Normalizer{
		baseGrowth: cfg.BaseGrowth,
		highGrowth: cfg.HighGrowth,
		band:       cfg.Band,
		highSet:    make(map[string]bool, len(cfg.HighGrowthSymbols)),
	}
	if n.baseGrowth == 0 {
		n.baseGrowth = DefaultBaseGrowth
	}
	if n.highGrowth == 0 {
		n.highGrowth = DefaultHighGrowth
	}
	if n.band == 0 {
		n.band = DefaultBand
	}
	for _, s := range cfg.HighGrowthSymbols {
		n.highSet[strings.ToUpper(s)] = true
	}
	return n
}

// Normalize folds provider records, already ordered by priority, into one
// canonical record. The first record with analyst targets wins; a record
// with only a price feeds the growth estimate; nothing at all yields an
// error record. The same inputs always produce the same output.
func (n *Normalizer) Normalize(symbol string, raws []*model.RawQuote) model.StockForecast {
	symbol = strings.ToUpper(symbol)

	var chosen *model.RawQuote
	var price null.Float
	var priceSource model.Source
	for _, r := range raws {
		if r == nil {
			continue
		}
		if !price.Valid && r.HasPrice() {
			price = r.CurrentPrice
			priceSource = r.Source
		}
		if chosen == nil && r.HasTargets() {
			chosen = r
		}
	}

	switch {
	case chosen != nil:
		if chosen.HasPrice() {
			price = chosen.CurrentPrice
		}
		mean := chosen.TargetMean.Float64
		high, low := n.bounds(chosen, mean)
		return n.build(symbol, price, mean, high, low, chosen.Source)

	case price.Valid:
		growth := n.baseGrowth
		if n.highSet[symbol] {
			growth = n.highGrowth
		}
		p := price.Float64
		mean := p * (1 + growth)
		high := p * (1 + growth + estimateHighOffset)
		low := p * (1 + growth + estimateLowOffset)
		return n.build(symbol, price, mean, high, low, priceSource.Estimated())

	default:
		return model.ErrorRecord(symbol, "no provider returned price or target data")
	}
}

// bounds returns the high/low pair for a record with a mean target,
// synthesizing the band when the source omitted or inverted the range.
func (n *Normalizer) bounds(r *model.RawQuote, mean float64) (high, low float64) {
	high = mean * (1 + n.band)
	low = mean * (1 - n.band)
	if r.TargetHigh.Valid && r.TargetHigh.Float64 >= mean {
		high = r.TargetHigh.Float64
	}
	if r.TargetLow.Valid && r.TargetLow.Float64 > 0 && r.TargetLow.Float64 <= mean {
		low = r.TargetLow.Float64
	}
	return high, low
}

func (n *Normalizer) build(symbol string, price null.Float, mean, high, low float64, source model.Source) model.StockForecast {
	f := model.StockForecast{
		Symbol:     symbol,
		TargetMean: null.FloatFrom(mean),
		TargetHigh: null.FloatFrom(high),
		TargetLow:  null.FloatFrom(low),
		Source:     source,
		Status:     model.StatusSuccess,
	}
	if price.Valid && price.Float64 > 0 {
		p := price.Float64
		f.CurrentPrice = price
		f.ForecastPercentage = null.FloatFrom(model.ForecastPercentage(p, mean))
		f.MaxUpside = null.FloatFrom(model.ForecastPercentage(p, high))
		f.DownsideRisk = null.FloatFrom(model.ForecastPercentage(p, low))
	}
	return f
}
