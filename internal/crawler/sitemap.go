package crawler

import (
	"bytes"
	"context"
	"net/url"

	"github.com/oxffaa/gopher-parse-sitemap"
)

// seedFromSitemap is an optional coverage extension: when enabled, same-host
// URLs declared in a sitemap.xml referenced by robots.txt are added to the
// BFS queue at depth 1, widening coverage beyond what a single start URL's
// outbound links would reach.
func (c *Crawler) seedFromSitemap(ctx context.Context, startURL string) []string {
	if !c.cfg.UseSitemap || c.sitemap == nil {
		return nil
	}

	u, err := url.Parse(startURL)
	if err != nil {
		return nil
	}
	host := u.Scheme + "://" + u.Host

	var seeds []string
	for _, sitemapURL := range c.sitemap.Sitemaps(ctx, host) {
		for _, loc := range c.fetchSitemapURLs(ctx, sitemapURL) {
			if lu, err := url.Parse(loc); err == nil && lu.Host == u.Host {
				seeds = append(seeds, loc)
			}
		}
	}
	return seeds
}

func (c *Crawler) fetchSitemapURLs(ctx context.Context, sitemapURL string) []string {
	fr, err := c.fetcher.Fetch(ctx, sitemapURL)
	if err != nil || fr.Status != 200 {
		c.logger.Warn("crawl: failed to fetch sitemap", "url", sitemapURL, "err", err)
		return nil
	}

	var urls []string
	parseErr := sitemap.Parse(bytes.NewReader([]byte(fr.Text)), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if parseErr != nil {
		c.logger.Warn("crawl: failed to parse sitemap", "url", sitemapURL, "err", parseErr)
		return nil
	}
	return urls
}
