// Package linkextract pulls outbound links from an HTML page, resolving
// relative URLs and rejecting common non-HTML download targets.
package linkextract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rejectedSuffixes are path endings (case-insensitive) that are never
// followed: binary downloads, not documentation pages.
var rejectedSuffixes = []string{
	".zip", ".pdf", ".exe", ".tar.gz", ".tgz", ".dmg", ".rar", ".7z",
}

// Extract parses html (relative to baseURL) and returns the deduplicated
// set of absolute http(s) links, excluding rejected download extensions.
// Parse errors yield an empty, non-error result: link extraction is
// best-effort over possibly malformed HTML.
func Extract(baseURL string, html string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if isRejected(resolved.Path) {
			return
		}

		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func isRejected(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range rejectedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
