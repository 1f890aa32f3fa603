package robots

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowed_DisallowedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /quote/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewCache("forecast-bot")
	if c.Allowed(srv.URL + "/quote/AAPL") {
		t.Error("expected /quote/ to be disallowed")
	}
	if !c.Allowed(srv.URL + "/other") {
		t.Error("expected /other to be allowed")
	}
}

func TestAllowed_MissingPolicyAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	c := NewCache("forecast-bot")
	if !c.Allowed(srv.URL + "/quote/AAPL") {
		t.Error("404 robots.txt should allow all paths")
	}
}

func TestAllowed_UnreachableHostDenies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	srv.Close() // shut down before use

	c := NewCache("forecast-bot")
	if c.Allowed(srv.URL + "/quote/AAPL") {
		t.Error("unknown policy should deny")
	}
}

func TestAllowed_PolicyCachedPerHost(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches++
			w.Write([]byte("User-agent: *\nAllow: /\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewCache("forecast-bot")
	for i := 0; i < 5; i++ {
		c.Allowed(srv.URL + "/quote/MSFT")
	}
	if fetches != 1 {
		t.Errorf("expected 1 robots.txt fetch, got %d", fetches)
	}
}
