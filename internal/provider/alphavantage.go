package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/ratelimit"
)

const (
	// DefaultAlphaVantageURL is the query endpoint shared by all functions.
	DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

	// DefaultAlphaVantageCooldown is how long to back off after the API
	// reports call-frequency throttling. The free tier window is a minute;
	// 70s keeps a margin past it.
	DefaultAlphaVantageCooldown = 70 * time.Second
)

// AlphaVantage fetches quotes (GLOBAL_QUOTE) and analyst target prices
// (OVERVIEW) from the Alpha Vantage REST API. Requires an API key.
type AlphaVantage struct {
	BaseURL  string
	APIKey   string
	Cooldown time.Duration
	Client   *http.Client
	Limiter  *ratelimit.Limiter
}

// NewAlphaVantage creates an Alpha Vantage adapter sharing the given limiter.
func NewAlphaVantage(apiKey string, limiter *ratelimit.Limiter) *AlphaVantage {
	return &AlphaVantage{
		BaseURL:  DefaultAlphaVantageURL,
		APIKey:   apiKey,
		Cooldown: DefaultAlphaVantageCooldown,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Limiter:  limiter,
	}
}

func (f *AlphaVantage) Name() string { return "alpha_vantage" }

// Fetch retrieves current price and analyst mean target. Alpha Vantage only
// publishes a mean target, so high/low are left null for the normalizer to
// band.
func (f *AlphaVantage) Fetch(ctx context.Context, symbol string) (*model.RawQuote, error) {
	rec := &model.RawQuote{Symbol: symbol, Source: model.SourceAlphaVantage}

	var quote struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
	}
	if err := f.query(ctx, "GLOBAL_QUOTE", symbol, &quote); err != nil {
		return nil, fmt.Errorf("alpha_vantage quote %s: %w", symbol, err)
	}
	if p, err := strconv.ParseFloat(quote.GlobalQuote.Price, 64); err == nil && p > 0 {
		rec.CurrentPrice = null.FloatFrom(p)
	}

	var overview struct {
		AnalystTargetPrice string `json:"AnalystTargetPrice"`
	}
	if err := f.query(ctx, "OVERVIEW", symbol, &overview); err != nil {
		return nil, fmt.Errorf("alpha_vantage overview %s: %w", symbol, err)
	}
	// "None" and "-" mean no analyst coverage; ParseFloat rejects both.
	if t, err := strconv.ParseFloat(overview.AnalystTargetPrice, 64); err == nil && t > 0 {
		rec.TargetMean = null.FloatFrom(t)
	}

	if !rec.HasPrice() && !rec.HasTargets() {
		return nil, fmt.Errorf("alpha_vantage %s: %w", symbol, ErrNoData)
	}
	return rec, nil
}

// query performs one rate-limited API call. A throttle note triggers a
// single cooldown-and-retry; a second throttle yields ErrThrottled.
func (f *AlphaVantage) query(ctx context.Context, function, symbol string, out any) error {
	for attempt := 0; ; attempt++ {
		if err := f.Limiter.Wait(ctx, f.Name()); err != nil {
			return err
		}

		body, err := f.get(ctx, function, symbol)
		if err != nil {
			return err
		}

		var probe struct {
			ErrorMessage string `json:"Error Message"`
			Note         string `json:"Note"`
			Information  string `json:"Information"`
		}
		if err := json.Unmarshal(body, &probe); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if probe.ErrorMessage != "" {
			return fmt.Errorf("api error: %s", probe.ErrorMessage)
		}
		if note := probe.Note + probe.Information; isThrottleNote(note) {
			if attempt >= 1 {
				return ErrThrottled
			}
			log.Printf("[WARN] alpha_vantage throttled, cooling down %s: %s", f.Cooldown, note)
			if err := sleepCtx(ctx, f.Cooldown); err != nil {
				return err
			}
			continue
		}

		return json.Unmarshal(body, out)
	}
}

func (f *AlphaVantage) get(ctx context.Context, function, symbol string) ([]byte, error) {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// isThrottleNote reports whether an API note/information payload signals
// call-frequency throttling rather than a data problem.
func isThrottleNote(note string) bool {
	if note == "" {
		return false
	}
	n := strings.ToLower(note)
	return strings.Contains(n, "call frequency") || strings.Contains(n, "rate limit")
}
