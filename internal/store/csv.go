package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
)

var csvHeader = []string{
	"symbol", "current_price", "target_low", "target_mean", "target_high",
	"forecast_percentage", "downside_risk", "max_upside", "source", "status", "error",
}

// WriteCSV exports results to a CSV file at path. Null fields become empty
// cells. Callers sort beforehand if they want ranked output.
func WriteCSV(path string, results []model.StockForecast) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Symbol,
			cell(r.CurrentPrice),
			cell(r.TargetLow),
			cell(r.TargetMean),
			cell(r.TargetHigh),
			cell(r.ForecastPercentage),
			cell(r.DownsideRisk),
			cell(r.MaxUpside),
			string(r.Source),
			string(r.Status),
			r.ErrorMessage,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func cell(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', 2, 64)
}
