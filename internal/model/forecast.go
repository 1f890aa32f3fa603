package model

import (
	"strings"

	"github.com/guregu/null/v6"
)

// Status marks a forecast record as usable or failed.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Source identifies where a forecast's numbers came from. Callers rely on
// the tag to tell real analyst consensus apart from synthesized estimates.
type Source string

const (
	SourceAlphaVantage Source = "Alpha_Vantage"
	SourceYahoo        Source = "Yahoo"
	SourceFMP          Source = "FMP"
	SourceYahooScraped Source = "Yahoo_Scraped"

	// SourceConservative tags estimates synthesized from a price of
	// unknown provenance.
	SourceConservative Source = "Conservative_Estimate"
)

// Estimated returns the estimation variant of a provider tag, used when
// the provider supplied a price but the targets were synthesized from it.
func (s Source) Estimated() Source {
	if s == "" {
		return SourceConservative
	}
	return s + "_Estimated"
}

// StockForecast is the canonical normalized record emitted once per symbol
// per run. It is immutable after the normalizer returns it.
type StockForecast struct {
	Symbol             string     `json:"symbol"`
	CurrentPrice       null.Float `json:"current_price"`
	TargetMean         null.Float `json:"target_mean"`
	TargetHigh         null.Float `json:"target_high"`
	TargetLow          null.Float `json:"target_low"`
	ForecastPercentage null.Float `json:"forecast_percentage"`
	DownsideRisk       null.Float `json:"downside_risk"`
	MaxUpside          null.Float `json:"max_upside"`
	Source             Source     `json:"source,omitempty"`
	Status             Status     `json:"status"`
	ErrorMessage       string     `json:"error_message,omitempty"`
}

// ForecastPercentage computes the naive projected return from current
// price to target price. current must be positive.
func ForecastPercentage(current, target float64) float64 {
	return (target - current) / current * 100
}

// ErrorRecord builds a failed record carrying only the symbol and cause.
func ErrorRecord(symbol, msg string) StockForecast {
	return StockForecast{
		Symbol:       strings.ToUpper(symbol),
		Status:       StatusError,
		ErrorMessage: msg,
	}
}
