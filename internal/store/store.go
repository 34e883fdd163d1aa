// Package store persists packages, doc URLs, page versions, and processed
// text behind a driver-agnostic Backend interface, backed by either sqlite
// or postgres.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Package is a globally-unique named documentation source.
type Package struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocURL is one crawl entry point belonging to a Package.
type DocURL struct {
	ID        int64
	PackageID int64
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PageVersion is one fetched-and-changed snapshot of a page.
type PageVersion struct {
	ID            int64
	DocURLID      int64
	PageURL       string
	Version       int
	RawBytes      []byte // gzip-compressed UTF-8 HTML
	ContentHash   string // SHA-1 hex of the decompressed UTF-8 text
	RetrievedAt   time.Time
	ChangeSummary string
}

// ProcessedDoc is the extracted, quality-filtered, deduplicated text derived
// from a PageVersion. At most one per PageVersion.
type ProcessedDoc struct {
	ID            int64
	PageVersionID int64
	ProcessedText []byte // gzip-compressed UTF-8 plain text
	ProcessedAt   time.Time
}

// Backend is the storage contract every driver implements. All operations
// are synchronous. The sqlite backend runs on a single connection, so its
// operations never overlap; the postgres backend does not serialize writes,
// and concurrent RecordPageVersion calls for the same page can fail on the
// (doc_url_id, page_url, version) unique constraint.
type Backend interface {
	EnsureSchema(ctx context.Context) error

	UpsertPackage(ctx context.Context, name string) (packageID int64, err error)
	UpsertDocURL(ctx context.Context, packageID int64, url string) (docURLID int64, err error)

	// RecordPageVersion hashes rawText and compares it against the most
	// recent stored version for (docURLID, pageURL); if unchanged it is a
	// no-op. Otherwise a new version row is inserted and returned.
	RecordPageVersion(ctx context.Context, docURLID int64, pageURL string, rawText string) (*PageVersion, error)

	RecordProcessed(ctx context.Context, pageVersionID int64, text string) error

	// IterAllPageVersions streams every stored version's id and compressed
	// bytes to fn. Iteration stops early if fn returns an error. Order is
	// unspecified but stable within a single call.
	IterAllPageVersions(ctx context.Context, fn func(id int64, rawBytes []byte) error) error

	Close() error
}

const (
	changeSummaryInitial = "Initial version"
	changeSummaryChanged = "Content changed"
)

// ContentHash is the SHA-1 hex digest of the decompressed UTF-8 text, the
// invariant every driver's RecordPageVersion compares against.
func ContentHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Compress gzips a UTF-8 string for storage as raw_bytes/processed_text.
func Compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("store: gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("store: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses compress, exposed for callers of IterAllPageVersions.
func Decompress(raw []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("store: gzip reader: %w", err)
	}
	defer r.Close()
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("store: gzip read: %w", err)
	}
	return string(text), nil
}

// ChangeSummaryFor returns the fixed change_summary text for a page version
// given the version number it is superseding (0 if there is none).
func ChangeSummaryFor(priorVersion int) string {
	if priorVersion == 0 {
		return changeSummaryInitial
	}
	return changeSummaryChanged
}
