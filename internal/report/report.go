// Package report renders and filters accumulated forecast results. Everything
// here is a pure function over the result slice; no network or storage.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

// Summary counts outcomes in a result set.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

func Summarize(results []model.StockForecast) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Status == model.StatusSuccess {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// FilterMin keeps successful records whose forecast percentage is at least
// min. Records without a forecast value are dropped.
func FilterMin(results []model.StockForecast, min float64) []model.StockForecast {
	out := make([]model.StockForecast, 0, len(results))
	for _, r := range results {
		if r.Status != model.StatusSuccess || !r.ForecastPercentage.Valid {
			continue
		}
		if r.ForecastPercentage.Float64 >= min {
			out = append(out, r)
		}
	}
	return out
}

// SortByForecast returns a copy sorted by forecast percentage, highest first.
// Records without a forecast sort last; ties keep their original order.
func SortByForecast(results []model.StockForecast) []model.StockForecast {
	out := make([]model.StockForecast, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ForecastPercentage, out[j].ForecastPercentage
		if a.Valid != b.Valid {
			return a.Valid
		}
		if !a.Valid {
			return false
		}
		return a.Float64 > b.Float64
	})
	return out
}

// RenderTable writes the ranked opportunity table plus a failure listing,
// mirroring the interactive output of the batch analyzer.
func RenderTable(w io.Writer, results []model.StockForecast) {
	sum := Summarize(results)

	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "BATCH PROCESSING RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "\nSUMMARY: %d successful, %d failed\n", sum.Succeeded, sum.Failed)

	var ok []model.StockForecast
	for _, r := range results {
		if r.Status == model.StatusSuccess && r.ForecastPercentage.Valid {
			ok = append(ok, r)
		}
	}
	ranked := SortByForecast(ok)
	if len(ranked) > 0 {
		fmt.Fprintln(w, "\nTOP OPPORTUNITIES (by average upside potential):")
		fmt.Fprintln(w, "Rank | Symbol | Current  | Avg Forecast | Low-High Range     | Range %            | Source")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for i, r := range ranked {
			fmt.Fprintf(w, "%2d   | %-6s | $%7.2f | %+7.1f%%     | %-18s | %-18s | %s\n",
				i+1, r.Symbol, r.CurrentPrice.Float64, r.ForecastPercentage.Float64,
				priceRange(r), percentRange(r), r.Source)
		}
	}

	failed := failures(results)
	if len(failed) > 0 {
		fmt.Fprintf(w, "\nFAILED STOCKS (%d):\n", len(failed))
		for _, r := range failed {
			fmt.Fprintf(w, "  %s: %s\n", r.Symbol, r.ErrorMessage)
		}
	}
}

// RenderExtremes writes the top five records by maximum upside and the top
// five by downside risk.
func RenderExtremes(w io.Writer, results []model.StockForecast) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "EXTREME FORECASTS:")

	byUpside := pick(results, func(r model.StockForecast) (float64, bool) {
		return r.MaxUpside.Float64, r.MaxUpside.Valid
	}, true)
	if len(byUpside) > 0 {
		fmt.Fprintln(w, "\nHIGHEST MAXIMUM UPSIDE POTENTIAL:")
		for i, r := range byUpside {
			fmt.Fprintf(w, "%d. %-6s: $%7.2f -> $%7.2f (%+5.1f%%)\n",
				i+1, r.Symbol, r.CurrentPrice.Float64, r.TargetHigh.Float64, r.MaxUpside.Float64)
		}
	}

	byDownside := pick(results, func(r model.StockForecast) (float64, bool) {
		return r.DownsideRisk.Float64, r.DownsideRisk.Valid
	}, false)
	if len(byDownside) > 0 {
		fmt.Fprintln(w, "\nHIGHEST DOWNSIDE RISK:")
		for i, r := range byDownside {
			fmt.Fprintf(w, "%d. %-6s: $%7.2f -> $%7.2f (%+5.1f%%)\n",
				i+1, r.Symbol, r.CurrentPrice.Float64, r.TargetLow.Float64, r.DownsideRisk.Float64)
		}
	}
}

const extremesLimit = 5

// pick returns up to extremesLimit successful records ranked by the keyed
// value, descending when desc is set.
func pick(results []model.StockForecast, key func(model.StockForecast) (float64, bool), desc bool) []model.StockForecast {
	var out []model.StockForecast
	for _, r := range results {
		if r.Status != model.StatusSuccess {
			continue
		}
		if _, ok := key(r); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := key(out[i])
		b, _ := key(out[j])
		if desc {
			return a > b
		}
		return a < b
	})
	if len(out) > extremesLimit {
		out = out[:extremesLimit]
	}
	return out
}

func failures(results []model.StockForecast) []model.StockForecast {
	var out []model.StockForecast
	for _, r := range results {
		if r.Status == model.StatusError {
			out = append(out, r)
		}
	}
	return out
}

func priceRange(r model.StockForecast) string {
	if !r.TargetLow.Valid || !r.TargetHigh.Valid {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f-$%.2f", r.TargetLow.Float64, r.TargetHigh.Float64)
}

func percentRange(r model.StockForecast) string {
	if !r.DownsideRisk.Valid || !r.MaxUpside.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%% to %+.1f%%", r.DownsideRisk.Float64, r.MaxUpside.Float64)
}
