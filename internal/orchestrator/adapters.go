package orchestrator

import (
	"context"

	"github.com/rohinmanvi/documentation-harvester/internal/crawler"
	"github.com/rohinmanvi/documentation-harvester/internal/fetcher"
)

// httpFetcher adapts *fetcher.Fetcher to the narrower shapes that crawler
// and robots each depend on, so neither package needs to import fetcher
// directly.
type httpFetcher struct {
	f *fetcher.Fetcher
}

func newHTTPFetcher(f *fetcher.Fetcher) *httpFetcher {
	return &httpFetcher{f: f}
}

// Fetch satisfies crawler.Fetcher.
func (h *httpFetcher) Fetch(ctx context.Context, url string) (*crawler.FetchResult, error) {
	res, err := h.f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &crawler.FetchResult{Status: res.Status, Text: res.Text}, nil
}

// robotsFetcher adapts *fetcher.Fetcher to robots.Fetcher, whose Fetch
// signature returns (status, body, err) rather than crawler.Fetcher's
// (*FetchResult, err), so a single type cannot implement both interfaces.
type robotsFetcher struct {
	f *fetcher.Fetcher
}

func newRobotsFetcher(f *fetcher.Fetcher) *robotsFetcher {
	return &robotsFetcher{f: f}
}

// Fetch satisfies robots.Fetcher.
func (r *robotsFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	res, err := r.f.Fetch(ctx, url)
	if err != nil {
		return 0, nil, err
	}
	return res.Status, res.Body, nil
}
