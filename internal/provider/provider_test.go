package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yo1233/stock-forecast-analyzer/internal/ratelimit"
	"github.com/yo1233/stock-forecast-analyzer/internal/robots"
)

func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(0, 0)
}

func TestAlphaVantage_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			fmt.Fprint(w, `{"Global Quote": {"01. symbol": "AAPL", "05. price": "150.00"}}`)
		case "OVERVIEW":
			fmt.Fprint(w, `{"Symbol": "AAPL", "AnalystTargetPrice": "180.50"}`)
		default:
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
	}))
	defer srv.Close()

	f := NewAlphaVantage("testkey", testLimiter())
	f.BaseURL = srv.URL

	rec, err := f.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !rec.HasPrice() || rec.CurrentPrice.Float64 != 150.00 {
		t.Errorf("expected price 150.00, got %+v", rec.CurrentPrice)
	}
	if !rec.HasTargets() || rec.TargetMean.Float64 != 180.50 {
		t.Errorf("expected target 180.50, got %+v", rec.TargetMean)
	}
	if rec.TargetHigh.Valid || rec.TargetLow.Valid {
		t.Error("alpha vantage supplies only a mean target, high/low must stay null")
	}
}

func TestAlphaVantage_NoAnalystCoverage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			fmt.Fprint(w, `{"Global Quote": {"05. price": "42.00"}}`)
		case "OVERVIEW":
			fmt.Fprint(w, `{"AnalystTargetPrice": "None"}`)
		}
	}))
	defer srv.Close()

	f := NewAlphaVantage("testkey", testLimiter())
	f.BaseURL = srv.URL

	rec, err := f.Fetch(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !rec.HasPrice() {
		t.Error("expected price despite missing coverage")
	}
	if rec.HasTargets() {
		t.Error("'None' target must not parse to a value")
	}
}

func TestAlphaVantage_ThrottleCooldownSingleRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"Note": "Thank you! Our standard API call frequency is 5 calls per minute."}`)
			return
		}
		fmt.Fprint(w, `{"Global Quote": {"05. price": "99.00"}}`)
	}))
	defer srv.Close()

	f := NewAlphaVantage("testkey", testLimiter())
	f.BaseURL = srv.URL
	f.Cooldown = 10 * time.Millisecond

	var quote struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
	}
	if err := f.query(context.Background(), "GLOBAL_QUOTE", "AAPL", &quote); err != nil {
		t.Fatalf("query after cooldown retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls (original + one retry), got %d", calls)
	}
	if quote.GlobalQuote.Price != "99.00" {
		t.Errorf("retry result not used, got %q", quote.GlobalQuote.Price)
	}
}

func TestAlphaVantage_SecondThrottleGivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"Note": "call frequency exceeded"}`)
	}))
	defer srv.Close()

	f := NewAlphaVantage("testkey", testLimiter())
	f.BaseURL = srv.URL
	f.Cooldown = 10 * time.Millisecond

	_, err := f.Fetch(context.Background(), "AAPL")
	if !errors.Is(err, ErrThrottled) {
		t.Errorf("expected ErrThrottled, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 attempts before giving up, got %d", calls)
	}
}

func TestYahoo_FetchTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary": {"result": [{"financialData": {
			"currentPrice": {"raw": 150.0},
			"targetMeanPrice": {"raw": 180.0},
			"targetHighPrice": {"raw": 210.0},
			"targetLowPrice": {"raw": 140.0}
		}}], "error": null}}`)
	}))
	defer srv.Close()

	f := NewYahoo(testLimiter())
	f.Hosts = []string{srv.URL}

	rec, err := f.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.TargetMean.Float64 != 180.0 || rec.TargetHigh.Float64 != 210.0 || rec.TargetLow.Float64 != 140.0 {
		t.Errorf("targets not parsed: %+v", rec)
	}
	if rec.CurrentPrice.Float64 != 150.0 {
		t.Errorf("price not parsed: %+v", rec.CurrentPrice)
	}
}

func TestYahoo_HostFallback(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary": {"result": [{"financialData": {
			"currentPrice": {"raw": 55.0},
			"targetMeanPrice": {"raw": 66.0}
		}}], "error": null}}`)
	}))
	defer good.Close()

	f := NewYahoo(testLimiter())
	f.Hosts = []string{bad.URL, good.URL}

	rec, err := f.Fetch(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.TargetMean.Float64 != 66.0 {
		t.Errorf("second host result not used: %+v", rec)
	}
}

func TestYahoo_ChartPriceFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/TSLA" {
			fmt.Fprint(w, `{"chart": {"result": [{"meta": {"regularMarketPrice": 250.5}}], "error": null}}`)
			return
		}
		fmt.Fprint(w, `{"quoteSummary": {"result": [{"financialData": {
			"targetMeanPrice": {"raw": 300.0}
		}}], "error": null}}`)
	}))
	defer srv.Close()

	f := NewYahoo(testLimiter())
	f.Hosts = []string{srv.URL}

	rec, err := f.Fetch(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !rec.HasPrice() || rec.CurrentPrice.Float64 != 250.5 {
		t.Errorf("chart price fallback not applied: %+v", rec.CurrentPrice)
	}
}

func TestFMP_FoldTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote/NVDA":
			fmt.Fprint(w, `[{"symbol": "NVDA", "price": 500.0}]`)
		case "/price-target/NVDA":
			fmt.Fprint(w, `[{"priceTarget": 600.0}, {"priceTarget": 700.0}, {"priceTarget": 500.0}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	f := NewFMP("testkey", testLimiter())
	f.BaseURL = srv.URL

	rec, err := f.Fetch(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.TargetMean.Float64 != 600.0 {
		t.Errorf("expected mean 600, got %v", rec.TargetMean.Float64)
	}
	if rec.TargetHigh.Float64 != 700.0 || rec.TargetLow.Float64 != 500.0 {
		t.Errorf("expected high 700 low 500, got %v / %v", rec.TargetHigh.Float64, rec.TargetLow.Float64)
	}
}

func TestScraper_RobotsDenialSkipsContentFetch(t *testing.T) {
	contentFetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /quote/\n")
			return
		}
		contentFetches++
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	s := NewScraper(testLimiter())
	s.BaseURL = srv.URL
	s.Robots = robots.NewCache(s.UserAgent)

	_, err := s.Fetch(context.Background(), "AAPL")
	if !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("expected ErrPolicyDenied, got %v", err)
	}
	if contentFetches != 0 {
		t.Errorf("content was fetched despite robots denial (%d requests)", contentFetches)
	}
}

func TestScraper_ExtractsEmbeddedValues(t *testing.T) {
	page := `<html><body>
		<fin-streamer data-symbol="AAPL" data-field="regularMarketPrice" data-value="150.25">150.25</fin-streamer>
		<script>{"financialData":{"targetMeanPrice":{"raw":180.0,"fmt":"180.00"},"targetHighPrice":{"raw":210.0},"targetLowPrice":{"raw":140.0}}}</script>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nAllow: /\n")
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := NewScraper(testLimiter())
	s.BaseURL = srv.URL
	s.Robots = robots.NewCache(s.UserAgent)

	rec, err := s.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.CurrentPrice.Float64 != 150.25 {
		t.Errorf("expected streamer price 150.25, got %v", rec.CurrentPrice.Float64)
	}
	if rec.TargetMean.Float64 != 180.0 {
		t.Errorf("expected embedded mean 180, got %v", rec.TargetMean.Float64)
	}
	if rec.TargetHigh.Float64 != 210.0 || rec.TargetLow.Float64 != 140.0 {
		t.Errorf("bounds not extracted: %+v", rec)
	}
}
