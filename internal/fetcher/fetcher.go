// Package fetcher performs single-shot HTTP GETs on behalf of the crawler
// and robots gate: one timeout, one User-Agent, no retries.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// maxRedirects caps the redirect chain a single Fetch will follow.
const maxRedirects = 10

// Config configures the Fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration // default 10s
}

// Fetcher performs one GET per call using a shared *http.Client for
// connection pooling.
type Fetcher struct {
	userAgent string
	client    *http.Client
}

// New builds a Fetcher. Timeout defaults to 10 seconds, matching the "10
// second total timeout" requirement. Redirects are capped at maxRedirects;
// no cookie jar, since one GET per URL needs no session state.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("fetcher: stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Result is the outcome of one Fetch.
type Result struct {
	Status int
	Body   []byte // raw bytes as received over the wire
	Text   string // body decoded per the server-declared charset, else as UTF-8 with replacement
	Header http.Header
}

// Fetch performs a GET against targetURL. Non-200 responses are returned
// (not an error) so the caller can decide to skip and log; transport errors
// (timeout, connection refused, DNS failure) are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}

	// Without a server-declared charset (or when it cannot be decoded), the
	// raw bytes are read as UTF-8 with replacement.
	text := toValidUTF8(body)
	contentType := resp.Header.Get("Content-Type")
	if _, params, perr := mime.ParseMediaType(contentType); perr == nil && params["charset"] != "" {
		if decoded, derr := decodeUTF8(body, contentType); derr == nil {
			text = decoded
		}
	}

	return &Result{
		Status: resp.StatusCode,
		Body:   body,
		Text:   text,
		Header: resp.Header,
	}, nil
}

// decodeUTF8 decodes body to a UTF-8 string using the server-declared or
// content-sniffed charset.
func decodeUTF8(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// toValidUTF8 replaces invalid byte sequences with the Unicode replacement
// character rather than failing outright.
func toValidUTF8(body []byte) string {
	return string(bytes.ToValidUTF8(body, []byte("�")))
}
