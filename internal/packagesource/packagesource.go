// Package packagesource resolves a list of popular packages and, for each,
// the set of candidate documentation URLs drawn from its PyPI metadata.
package packagesource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// pypiIndexURL is the metadata endpoint queried per package; PyPI itself is
// the only recognized index regardless of where the top-packages list is
// served from.
const pypiIndexURL = "https://pypi.org/pypi"

// HTTPGetter is the subset of http.Client the adapter needs.
type HTTPGetter interface {
	Get(url string) (*http.Response, error)
}

// Source enumerates top packages and their candidate documentation URLs.
type Source struct {
	client         HTTPGetter
	topPackagesURL string
	indexURL       string
	topN           int
	logger         *slog.Logger
}

// Config parameterizes a Source.
type Config struct {
	TopPackagesURL string
	// IndexURL overrides the per-package metadata index, defaulting to
	// PyPI itself; only ever overridden in tests.
	IndexURL string
	TopN     int
}

// New builds a Source. A nil client defaults to http.DefaultClient; a nil
// logger falls back to slog.Default().
func New(cfg Config, client HTTPGetter, logger *slog.Logger) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	indexURL := cfg.IndexURL
	if indexURL == "" {
		indexURL = pypiIndexURL
	}
	return &Source{client: client, topPackagesURL: cfg.TopPackagesURL, indexURL: indexURL, topN: cfg.TopN, logger: logger}
}

type topPackagesResponse struct {
	Rows []struct {
		Project string `json:"project"`
	} `json:"rows"`
}

// TopPackages returns the first TopN project names from the configured
// top-packages listing. A fetch or parse failure is logged and yields an
// empty list rather than aborting the cycle.
func (s *Source) TopPackages(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.topPackagesURL, nil)
	if err != nil {
		s.logger.Error("packagesource: build top packages request", "err", err)
		return nil
	}

	resp, err := s.client.Get(req.URL.String())
	if err != nil {
		s.logger.Error("packagesource: fetch top packages", "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("packagesource: fetch top packages", "status", resp.StatusCode)
		return nil
	}

	var parsed topPackagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Error("packagesource: parse top packages", "err", err)
		return nil
	}

	n := s.topN
	if n <= 0 || n > len(parsed.Rows) {
		n = len(parsed.Rows)
	}

	names := make([]string, 0, n)
	for _, row := range parsed.Rows[:n] {
		names = append(names, row.Project)
	}
	s.logger.Info("packagesource: retrieved top packages", "count", len(names))
	return names
}

type packageMetadataResponse struct {
	Info struct {
		DocsURL     string            `json:"docs_url"`
		HomePage    string            `json:"home_page"`
		ProjectURLs map[string]string `json:"project_urls"`
	} `json:"info"`
}

// DocumentationURLs fetches one package's PyPI metadata and extracts the
// candidate documentation URLs from it, deduplicated. An unreachable or
// malformed response yields an empty set and a logged warning.
func (s *Source) DocumentationURLs(ctx context.Context, pkg string) []string {
	metadataURL := fmt.Sprintf("%s/%s/json", s.indexURL, pkg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		s.logger.Warn("packagesource: build metadata request", "package", pkg, "err", err)
		return nil
	}

	resp, err := s.client.Get(req.URL.String())
	if err != nil {
		s.logger.Warn("packagesource: fetch package metadata", "package", pkg, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("packagesource: fetch package metadata", "package", pkg, "status", resp.StatusCode)
		return nil
	}

	var parsed packageMetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Warn("packagesource: parse package metadata", "package", pkg, "err", err)
		return nil
	}

	return extractDocURLs(parsed)
}

func extractDocURLs(meta packageMetadataResponse) []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	add(meta.Info.DocsURL)

	for key, url := range meta.Info.ProjectURLs {
		if strings.Contains(strings.ToLower(key), "doc") || strings.Contains(strings.ToLower(url), "readthedocs") {
			add(url)
		}
	}

	home := meta.Info.HomePage
	if home != "" {
		lower := strings.ToLower(home)
		if strings.Contains(lower, "docs") || strings.Contains(lower, "readthedocs") {
			add(home)
		}
	}

	return urls
}
