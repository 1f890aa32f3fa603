package robots

import (
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Cache fetches robots.txt once per host and holds the parsed policy for
// the process lifetime. A host whose policy cannot be fetched or parsed is
// treated as disallowed.
type Cache struct {
	Client    *http.Client
	UserAgent string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData // nil entry = policy unknown, deny
}

// NewCache creates a robots policy cache for the given user agent.
func NewCache(userAgent string) *Cache {
	return &Cache{
		Client:    &http.Client{Timeout: 15 * time.Second},
		UserAgent: userAgent,
		hosts:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched under its host's robots
// policy. The policy is fetched on first use of a host and cached.
func (c *Cache) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	c.mu.Lock()
	data, seen := c.hosts[u.Host]
	c.mu.Unlock()

	if !seen {
		data = c.fetch(u.Scheme + "://" + u.Host)
		c.mu.Lock()
		c.hosts[u.Host] = data
		c.mu.Unlock()
	}

	if data == nil {
		return false
	}
	group := data.FindGroup(c.UserAgent)
	return group.Test(u.RequestURI())
}

func (c *Cache) fetch(base string) *robotstxt.RobotsData {
	resp, err := c.Client.Get(base + "/robots.txt")
	if err != nil {
		log.Printf("[WARN] fetch robots.txt for %s: %v", base, err)
		return nil
	}
	defer resp.Body.Close()

	// FromResponse applies standard status semantics: 404 means no policy
	// (allow all), 401/403 mean deny all.
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.Printf("[WARN] parse robots.txt for %s: %v", base, err)
		return nil
	}
	return data
}
