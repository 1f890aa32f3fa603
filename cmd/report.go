package cmd

import (
	"fmt"
	"os"

	"github.com/yo1233/stock-forecast-analyzer/internal/report"
	"github.com/yo1233/stock-forecast-analyzer/internal/store"
)

// Report renders a previously saved snapshot (a checkpoint or final persist)
// without refetching anything. csvOut, when set, additionally exports the
// ranked results as CSV.
func Report(path, csvOut string) error {
	results, err := store.Load(path)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("snapshot %s holds no records", path)
	}

	report.RenderTable(os.Stdout, results)
	report.RenderExtremes(os.Stdout, results)

	if csvOut != "" {
		if err := store.WriteCSV(csvOut, report.SortByForecast(results)); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	return nil
}
