package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/ratelimit"
)

// DefaultYahooHosts are tried in order; query2 mirrors query1.
var DefaultYahooHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

// Yahoo fetches analyst targets from the quoteSummary financialData module
// and falls back to the chart API for the current price. No API key.
type Yahoo struct {
	Hosts    []string
	Cooldown time.Duration
	Client   *http.Client
	Limiter  *ratelimit.Limiter
}

// NewYahoo creates a Yahoo Finance adapter sharing the given limiter.
func NewYahoo(limiter *ratelimit.Limiter) *Yahoo {
	return &Yahoo{
		Hosts:    DefaultYahooHosts,
		Cooldown: 60 * time.Second,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Limiter:  limiter,
	}
}

func (f *Yahoo) Name() string { return "yahoo" }

// yahooValue is Yahoo's {"raw": 123.45, "fmt": "123.45"} number wrapper.
type yahooValue struct {
	Raw null.Float `json:"raw"`
}

type yahooFinancialData struct {
	CurrentPrice    yahooValue `json:"currentPrice"`
	TargetMeanPrice yahooValue `json:"targetMeanPrice"`
	TargetHighPrice yahooValue `json:"targetHighPrice"`
	TargetLowPrice  yahooValue `json:"targetLowPrice"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData yahooFinancialData `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice null.Float `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch tries each host's quoteSummary endpoint for targets, then the chart
// API when no current price came with them.
func (f *Yahoo) Fetch(ctx context.Context, symbol string) (*model.RawQuote, error) {
	rec := &model.RawQuote{Symbol: symbol, Source: model.SourceYahoo}

	var lastErr error
	for _, host := range f.Hosts {
		summary, err := f.fetchSummary(ctx, host, symbol)
		if err != nil {
			lastErr = err
			log.Printf("[WARN] yahoo quoteSummary via %s for %s: %v", host, symbol, err)
			continue
		}
		rec.CurrentPrice = summary.CurrentPrice.Raw
		rec.TargetMean = summary.TargetMeanPrice.Raw
		rec.TargetHigh = summary.TargetHighPrice.Raw
		rec.TargetLow = summary.TargetLowPrice.Raw
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, lastErr)
	}

	if !rec.HasPrice() {
		if price, err := f.fetchChartPrice(ctx, symbol); err != nil {
			log.Printf("[WARN] yahoo chart price for %s: %v", symbol, err)
		} else {
			rec.CurrentPrice = null.FloatFrom(price)
		}
	}

	if !rec.HasPrice() && !rec.HasTargets() {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}
	return rec, nil
}

func (f *Yahoo) fetchSummary(ctx context.Context, host, symbol string) (*yahooFinancialData, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData",
		host, url.PathEscape(symbol))

	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var parsed quoteSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if e := parsed.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("api error %s: %s", e.Code, e.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}
	return &parsed.QuoteSummary.Result[0].FinancialData, nil
}

func (f *Yahoo) fetchChartPrice(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		f.Hosts[0], url.PathEscape(symbol))

	body, err := f.get(ctx, u)
	if err != nil {
		return 0, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	if e := parsed.Chart.Error; e != nil {
		return 0, fmt.Errorf("api error: %s", e.Description)
	}
	if len(parsed.Chart.Result) == 0 || !parsed.Chart.Result[0].Meta.RegularMarketPrice.Valid {
		return 0, ErrNoData
	}
	return parsed.Chart.Result[0].Meta.RegularMarketPrice.Float64, nil
}

// get performs one rate-limited GET. HTTP 429 triggers a single cooldown
// retry before giving up with ErrThrottled.
func (f *Yahoo) get(ctx context.Context, u string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := f.Limiter.Wait(ctx, f.Name()); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := f.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= 1 {
				return nil, ErrThrottled
			}
			log.Printf("[WARN] yahoo throttled, cooling down %s", f.Cooldown)
			if err := sleepCtx(ctx, f.Cooldown); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	}
}
