package robots

import (
	"context"
	"testing"
)

// fakeFetcher serves canned robots.txt bodies per host, and counts fetches
// so tests can assert on per-cycle caching.
type fakeFetcher struct {
	bodies map[string]string
	status map[string]int
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string]string),
		status: make(map[string]int),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (int, []byte, error) {
	f.calls[rawURL]++
	if status, ok := f.status[rawURL]; ok && status != 200 {
		return status, nil, nil
	}
	return 200, []byte(f.bodies[rawURL]), nil
}

func TestCanFetchObeysDisallow(t *testing.T) {
	f := newFakeFetcher()
	f.bodies["http://example.test/robots.txt"] = "User-agent: *\nDisallow: /admin/\nAllow: /admin/public/\n"

	g := New(f, nil)
	ctx := context.Background()

	if !g.CanFetch(ctx, "TestBot", "http://example.test/public-page") {
		t.Error("expected /public-page to be allowed")
	}
	if g.CanFetch(ctx, "TestBot", "http://example.test/admin/secret") {
		t.Error("expected /admin/secret to be disallowed")
	}
	if !g.CanFetch(ctx, "TestBot", "http://example.test/admin/public/index.html") {
		t.Error("expected /admin/public/index.html to be allowed")
	}
}

func TestCanFetchCachesPerHost(t *testing.T) {
	f := newFakeFetcher()
	f.bodies["http://example.test/robots.txt"] = "User-agent: *\nDisallow:\n"

	g := New(f, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		g.CanFetch(ctx, "TestBot", "http://example.test/page")
	}

	if got := f.calls["http://example.test/robots.txt"]; got != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d fetches", got)
	}
}

func TestCanFetchDefaultsAllowedOnMissingRobots(t *testing.T) {
	f := newFakeFetcher()
	f.status["http://example.test/robots.txt"] = 404

	g := New(f, nil)
	if !g.CanFetch(context.Background(), "TestBot", "http://example.test/anything") {
		t.Error("missing robots.txt should default to allowed")
	}
}

func TestCanFetchDefaultsAllowedOnServerError(t *testing.T) {
	f := newFakeFetcher()
	f.status["http://example.test/robots.txt"] = 500

	g := New(f, nil)
	if !g.CanFetch(context.Background(), "TestBot", "http://example.test/anything") {
		t.Error("unfetchable robots.txt should default to allowed")
	}
}

func TestCanFetchDisallowsSpecificUserAgent(t *testing.T) {
	f := newFakeFetcher()
	f.bodies["http://example.test/robots.txt"] = "User-agent: BadBot\nDisallow: /\n"

	g := New(f, nil)
	ctx := context.Background()

	if !g.CanFetch(ctx, "GoodBot", "http://example.test/page") {
		t.Error("GoodBot should not be affected by BadBot's rule")
	}
	if g.CanFetch(ctx, "BadBot", "http://example.test/page") {
		t.Error("BadBot should be disallowed everywhere")
	}
}
