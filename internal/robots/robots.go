// Package robots decides whether a URL may be fetched under a host's
// robots.txt, caching parsed results for the lifetime of one crawl cycle.
package robots

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// Fetcher is the subset of the HTTP fetcher the gate needs: one GET that
// returns a status code and body, or an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// Gate answers CanFetch for a single crawl cycle, caching parsed robots.txt
// data per host so repeated URLs on the same host don't refetch it.
type Gate struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// New creates a Gate backed by fetcher. A nil logger falls back to
// slog.Default().
func New(fetcher Fetcher, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// CanFetch reports whether userAgent may fetch targetURL. Any failure to
// fetch or parse robots.txt defaults to allowed, and is logged at WARN.
func (g *Gate) CanFetch(ctx context.Context, userAgent, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		g.logger.Warn("robots: invalid url, defaulting to allowed", "url", targetURL, "err", err)
		return true
	}

	host := u.Scheme + "://" + u.Host
	data, err := g.getOrFetch(ctx, host)
	if err != nil {
		g.logger.Warn("robots: fetch/parse failed, defaulting to allowed", "host", host, "err", err)
		return true
	}
	if data == nil {
		return true
	}

	group := data.FindGroup(userAgent)
	return group.Test(u.Path)
}

// Sitemaps returns the Sitemap: entries declared in host's robots.txt,
// fetching and caching that robots.txt if this Gate has not seen the host
// yet. Used by the optional sitemap-seeding crawler extension.
func (g *Gate) Sitemaps(ctx context.Context, host string) []string {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	data, err := g.getOrFetch(ctx, host)
	if err != nil || data == nil {
		return nil
	}
	return data.Sitemaps
}

func (g *Gate) getOrFetch(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if data, ok := g.cache[host]; ok {
		return data, nil
	}

	robotsURL := host + "/robots.txt"
	status, body, err := g.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		g.cache[host] = nil
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	if status >= 400 {
		g.cache[host] = nil
		return nil, nil
	}

	parsed, err := robotstxt.FromBytes(body)
	if err != nil {
		g.cache[host] = nil
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}

	g.cache[host] = parsed
	return parsed, nil
}
