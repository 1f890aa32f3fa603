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

// DefaultFMPURL is the Financial Modeling Prep v3 API base.
const DefaultFMPURL = "https://financialmodelingprep.com/api/v3"

// FMP fetches quotes and recent analyst price targets from Financial
// Modeling Prep. The demo key covers basic quote requests.
type FMP struct {
	BaseURL  string
	APIKey   string
	Cooldown time.Duration
	Client   *http.Client
	Limiter  *ratelimit.Limiter
}

// NewFMP creates a Financial Modeling Prep adapter sharing the given limiter.
func NewFMP(apiKey string, limiter *ratelimit.Limiter) *FMP {
	return &FMP{
		BaseURL:  DefaultFMPURL,
		APIKey:   apiKey,
		Cooldown: 60 * time.Second,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Limiter:  limiter,
	}
}

func (f *FMP) Name() string { return "fmp" }

// Fetch retrieves the quote plus the recent analyst targets list, folding
// the individual targets into mean/high/low.
func (f *FMP) Fetch(ctx context.Context, symbol string) (*model.RawQuote, error) {
	rec := &model.RawQuote{Symbol: symbol, Source: model.SourceFMP}

	var quotes []struct {
		Price null.Float `json:"price"`
	}
	if err := f.get(ctx, "/quote/"+url.PathEscape(symbol), &quotes); err != nil {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, err)
	}
	if len(quotes) > 0 && quotes[0].Price.Valid && quotes[0].Price.Float64 > 0 {
		rec.CurrentPrice = quotes[0].Price
	}

	var targets []fmpTarget
	if err := f.get(ctx, "/price-target/"+url.PathEscape(symbol), &targets); err != nil {
		// Targets need a paid key on some plans; a price-only record is
		// still useful to the normalizer.
		log.Printf("[WARN] fmp price targets for %s: %v", symbol, err)
	} else {
		mean, high, low, n := foldTargets(targets)
		if n > 0 {
			rec.TargetMean = null.FloatFrom(mean)
			rec.TargetHigh = null.FloatFrom(high)
			rec.TargetLow = null.FloatFrom(low)
		}
	}

	if !rec.HasPrice() && !rec.HasTargets() {
		return nil, fmt.Errorf("fmp %s: %w", symbol, ErrNoData)
	}
	return rec, nil
}

type fmpTarget struct {
	PriceTarget null.Float `json:"priceTarget"`
}

// foldTargets reduces the per-analyst target list to mean, max, and min.
func foldTargets(targets []fmpTarget) (mean, high, low float64, n int) {
	var sum float64
	for _, t := range targets {
		if !t.PriceTarget.Valid || t.PriceTarget.Float64 <= 0 {
			continue
		}
		v := t.PriceTarget.Float64
		if n == 0 {
			high, low = v, v
		}
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
		sum += v
		n++
	}
	if n > 0 {
		mean = sum / float64(n)
	}
	return mean, high, low, n
}

// get performs one rate-limited GET and decodes JSON. HTTP 429 triggers a
// single cooldown retry before giving up with ErrThrottled.
func (f *FMP) get(ctx context.Context, path string, out any) error {
	u := fmt.Sprintf("%s%s?apikey=%s", f.BaseURL, path, url.QueryEscape(f.APIKey))

	for attempt := 0; ; attempt++ {
		if err := f.Limiter.Wait(ctx, f.Name()); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("read body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= 1 {
				return ErrThrottled
			}
			log.Printf("[WARN] fmp throttled, cooling down %s", f.Cooldown)
			if err := sleepCtx(ctx, f.Cooldown); err != nil {
				return err
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
