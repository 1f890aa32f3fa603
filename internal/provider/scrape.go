package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/guregu/null/v6"

	"github.com/yo1233/stock-forecast-analyzer/internal/model"
	"github.com/yo1233/stock-forecast-analyzer/internal/ratelimit"
	"github.com/yo1233/stock-forecast-analyzer/internal/robots"
)

// DefaultScrapeURL is the quote page host scraped when API sources fail.
const DefaultScrapeURL = "https://finance.yahoo.com"

// DefaultScrapeUserAgent identifies the scraper to robots.txt and servers.
const DefaultScrapeUserAgent = "stock-forecast-analyzer/1.0"

// Scraper extracts price and target data from finance quote pages. It is a
// last-resort source: every fetch is gated on the domain's robots policy
// and the shared rate limiter, keyed by domain.
type Scraper struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Limiter   *ratelimit.Limiter
	Robots    *robots.Cache
}

// NewScraper creates a scraping adapter sharing the given limiter.
func NewScraper(limiter *ratelimit.Limiter) *Scraper {
	return &Scraper{
		BaseURL:   DefaultScrapeURL,
		UserAgent: DefaultScrapeUserAgent,
		Client:    &http.Client{Timeout: 30 * time.Second},
		Limiter:   limiter,
		Robots:    robots.NewCache(DefaultScrapeUserAgent),
	}
}

func (s *Scraper) Name() string { return "yahoo_scrape" }

// Price and target values embedded as JSON in the quote page markup.
var (
	scrapePricePattern = regexp.MustCompile(`"regularMarketPrice"\s*:\s*\{\s*"raw"\s*:\s*([\d.]+)`)
	scrapeMeanPattern  = regexp.MustCompile(`"targetMeanPrice"\s*:\s*\{\s*"raw"\s*:\s*([\d.]+)`)
	scrapeHighPattern  = regexp.MustCompile(`"targetHighPrice"\s*:\s*\{\s*"raw"\s*:\s*([\d.]+)`)
	scrapeLowPattern   = regexp.MustCompile(`"targetLowPrice"\s*:\s*\{\s*"raw"\s*:\s*([\d.]+)`)
)

// Fetch scrapes the symbol's quote page. Robots denial returns an error
// wrapping ErrPolicyDenied without any content request being made.
func (s *Scraper) Fetch(ctx context.Context, symbol string) (*model.RawQuote, error) {
	pageURL := fmt.Sprintf("%s/quote/%s", s.BaseURL, url.PathEscape(symbol))

	if !s.Robots.Allowed(pageURL) {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, ErrPolicyDenied)
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if err := s.Limiter.Wait(ctx, u.Host); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", symbol, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: parse page: %w", symbol, err)
	}

	rec := &model.RawQuote{Symbol: symbol, Source: model.SourceYahooScraped}

	// Streamer elements carry the live price; the embedded JSON blob is
	// the fallback and the only place targets appear.
	if v, ok := streamerValue(doc, symbol, "regularMarketPrice"); ok {
		rec.CurrentPrice = null.FloatFrom(v)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("scrape %s: render page: %w", symbol, err)
	}
	if !rec.HasPrice() {
		if v, ok := matchValue(scrapePricePattern, html); ok {
			rec.CurrentPrice = null.FloatFrom(v)
		}
	}
	if v, ok := matchValue(scrapeMeanPattern, html); ok {
		rec.TargetMean = null.FloatFrom(v)
	}
	if v, ok := matchValue(scrapeHighPattern, html); ok {
		rec.TargetHigh = null.FloatFrom(v)
	}
	if v, ok := matchValue(scrapeLowPattern, html); ok {
		rec.TargetLow = null.FloatFrom(v)
	}

	if !rec.HasPrice() && !rec.HasTargets() {
		return nil, fmt.Errorf("scrape %s: %w", symbol, ErrNoData)
	}
	return rec, nil
}

// streamerValue reads a fin-streamer element's data-value for the symbol.
func streamerValue(doc *goquery.Document, symbol, field string) (float64, bool) {
	sel := fmt.Sprintf(`fin-streamer[data-symbol=%q][data-field=%q]`, symbol, field)
	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return 0, false
	}
	raw, ok := node.Attr("data-value")
	if !ok {
		raw = node.Text()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func matchValue(re *regexp.Regexp, html string) (float64, bool) {
	m := re.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
