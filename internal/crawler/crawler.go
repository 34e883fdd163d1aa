// Package crawler implements a polite, bounded breadth-first crawl of a
// single start URL: robots.txt compliance, a per-page politeness delay, and
// depth/page caps. One Crawl call is sequential -- the politeness delay is
// only meaningful in a serial context -- parallelism across distinct start
// URLs lives one level up, in the orchestrator.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/rohinmanvi/documentation-harvester/internal/linkextract"
	"github.com/rohinmanvi/documentation-harvester/internal/robots"
	"github.com/rohinmanvi/documentation-harvester/pkg/ratelimit"
)

// Fetcher is the subset of fetcher.Fetcher the crawler needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// FetchResult mirrors fetcher.Result, kept minimal so crawler does not
// import the fetcher package directly (it depends only on this shape).
type FetchResult struct {
	Status int
	Text   string
}

// SitemapSource resolves a host's declared sitemap URLs, used only when
// Config.UseSitemap is set.
type SitemapSource interface {
	Sitemaps(ctx context.Context, host string) []string
}

// Config parameterizes one Crawl invocation.
type Config struct {
	UserAgent     string
	MaxDepth      int           // default 1
	MaxPages      int           // default 10
	RequestDelay  time.Duration // default 1s
	RespectRobots bool
	UseSitemap    bool
}

// Crawler runs bounded BFS crawls. A single Crawler value may run multiple
// Crawl calls; each call gets its own visited set and politeness limiter,
// while the robots gate and its per-host cache are shared by all calls.
type Crawler struct {
	cfg     Config
	fetcher Fetcher
	robots  *robots.Gate
	sitemap SitemapSource
	logger  *slog.Logger
}

// New builds a Crawler. gate may be nil if cfg.RespectRobots is false.
// RequestDelay of zero means no politeness delay (used by tests); config.Load
// supplies the real 1-second default for production use.
func New(cfg Config, fetcher Fetcher, gate *robots.Gate, logger *slog.Logger) *Crawler {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 1
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "DocumentationHarvesterBot/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		robots:  gate,
		logger:  logger,
	}
	if gate != nil {
		c.sitemap = gate
	}
	return c
}

type queueItem struct {
	url   string
	depth int
}

// Crawl runs a bounded BFS from startURL and returns every successfully
// fetched page's text, keyed by URL. It never returns an error: every
// per-URL failure is logged and skipped.
func (c *Crawler) Crawl(ctx context.Context, startURL string) map[string]string {
	result := make(map[string]string)
	visited := make(map[string]struct{})
	queue := []queueItem{{url: startURL, depth: 0}}
	for _, seed := range c.seedFromSitemap(ctx, startURL) {
		queue = append(queue, queueItem{url: seed, depth: 1})
	}

	limiter := ratelimit.NewLimiter(politenessRPS(c.cfg.RequestDelay))
	defer limiter.Stop()

	pagesExplored := 0

	for len(queue) > 0 && pagesExplored < c.cfg.MaxPages {
		item := queue[0]
		queue = queue[1:]

		if _, seen := visited[item.url]; seen || item.depth > c.cfg.MaxDepth {
			continue
		}

		pagesExplored++
		visited[item.url] = struct{}{}

		if ctx.Err() != nil {
			c.logger.Warn("crawl: context cancelled", "url", item.url, "err", ctx.Err())
			return result
		}

		if c.cfg.RespectRobots && c.robots != nil && !c.robots.CanFetch(ctx, c.cfg.UserAgent, item.url) {
			c.logger.Info("crawl: disallowed by robots.txt", "url", item.url)
			continue
		}

		c.logger.Debug("crawl: fetching", "url", item.url, "depth", item.depth)

		fr, err := c.fetcher.Fetch(ctx, item.url)
		if err != nil {
			c.logger.Error("crawl: fetch error", "url", item.url, "err", err)
			continue
		}
		if fr.Status != 200 {
			c.logger.Warn("crawl: non-200 response", "url", item.url, "status", fr.Status)
			continue
		}

		result[item.url] = fr.Text

		if err := limiter.Wait(ctx); err != nil {
			c.logger.Warn("crawl: politeness delay interrupted", "url", item.url, "err", err)
			return result
		}

		if item.depth < c.cfg.MaxDepth {
			for _, link := range linkextract.Extract(item.url, fr.Text) {
				if _, already := result[link]; !already {
					queue = append(queue, queueItem{url: link, depth: item.depth + 1})
				}
			}
		}
	}

	return result
}

// politenessRPS converts a per-request delay into the rate ratelimit.Limiter
// expects. A non-positive delay disables pacing entirely.
func politenessRPS(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return 1 / d.Seconds()
}
