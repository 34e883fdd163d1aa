// Package sqlite implements store.Backend on top of modernc.org/sqlite, a
// pure-Go driver requiring no cgo toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rohinmanvi/documentation-harvester/internal/store"
	_ "modernc.org/sqlite"
)

var _ store.Backend = (*Backend)(nil)

// Backend is a sqlite-backed store.Backend. A single *sql.DB is shared
// across callers; sqlite itself serializes writes.
type Backend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS packages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS doc_urls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	package_id INTEGER NOT NULL REFERENCES packages(id),
	url TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(package_id, url)
);

CREATE TABLE IF NOT EXISTS page_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_url_id INTEGER NOT NULL REFERENCES doc_urls(id),
	page_url TEXT NOT NULL,
	version INTEGER NOT NULL,
	raw_bytes BLOB NOT NULL,
	content_hash TEXT NOT NULL,
	retrieved_at DATETIME NOT NULL,
	change_summary TEXT NOT NULL,
	UNIQUE(doc_url_id, page_url, version)
);

CREATE TABLE IF NOT EXISTS processed_docs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	page_version_id INTEGER NOT NULL UNIQUE REFERENCES page_versions(id),
	processed_text BLOB NOT NULL,
	processed_at DATETIME NOT NULL
);
`

// New opens (creating if necessary) a sqlite database at dsn and ensures the
// schema exists.
func New(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer at a time

	b := &Backend{db: db}
	if err := b.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

func (b *Backend) UpsertPackage(ctx context.Context, name string) (int64, error) {
	now := time.Now().UTC()
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO packages (name, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, now, now)
	if err != nil {
		return 0, fmt.Errorf("sqlite: upsert package: %w", err)
	}

	var id int64
	if err := b.db.QueryRowContext(ctx, `SELECT id FROM packages WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlite: read package id: %w", err)
	}
	return id, nil
}

func (b *Backend) UpsertDocURL(ctx context.Context, packageID int64, url string) (int64, error) {
	now := time.Now().UTC()
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO doc_urls (package_id, url, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(package_id, url) DO UPDATE SET updated_at = excluded.updated_at`,
		packageID, url, now, now)
	if err != nil {
		return 0, fmt.Errorf("sqlite: upsert doc url: %w", err)
	}

	var id int64
	if err := b.db.QueryRowContext(ctx,
		`SELECT id FROM doc_urls WHERE package_id = ? AND url = ?`, packageID, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlite: read doc url id: %w", err)
	}
	return id, nil
}

func (b *Backend) RecordPageVersion(ctx context.Context, docURLID int64, pageURL, rawText string) (*store.PageVersion, error) {
	hash := store.ContentHash(rawText)

	var priorVersion int
	var priorHash string
	err := b.db.QueryRowContext(ctx,
		`SELECT version, content_hash FROM page_versions
		 WHERE doc_url_id = ? AND page_url = ? ORDER BY version DESC LIMIT 1`,
		docURLID, pageURL).Scan(&priorVersion, &priorHash)
	switch {
	case err == nil:
		if priorHash == hash {
			return nil, nil // unchanged fetches are silent no-ops
		}
	case errors.Is(err, sql.ErrNoRows):
		priorVersion = 0
	default:
		return nil, fmt.Errorf("sqlite: read prior version: %w", err)
	}

	compressed, err := store.Compress(rawText)
	if err != nil {
		return nil, err
	}

	version := priorVersion + 1
	summary := store.ChangeSummaryFor(priorVersion)
	now := time.Now().UTC()

	res, err := b.db.ExecContext(ctx,
		`INSERT INTO page_versions (doc_url_id, page_url, version, raw_bytes, content_hash, retrieved_at, change_summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		docURLID, pageURL, version, compressed, hash, now, summary)
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert page version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: last insert id: %w", err)
	}

	return &store.PageVersion{
		ID:            id,
		DocURLID:      docURLID,
		PageURL:       pageURL,
		Version:       version,
		RawBytes:      compressed,
		ContentHash:   hash,
		RetrievedAt:   now,
		ChangeSummary: summary,
	}, nil
}

func (b *Backend) RecordProcessed(ctx context.Context, pageVersionID int64, text string) error {
	compressed, err := store.Compress(text)
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx,
		`INSERT INTO processed_docs (page_version_id, processed_text, processed_at) VALUES (?, ?, ?)
		 ON CONFLICT(page_version_id) DO UPDATE SET processed_text = excluded.processed_text, processed_at = excluded.processed_at`,
		pageVersionID, compressed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: record processed: %w", err)
	}
	return nil
}

func (b *Backend) IterAllPageVersions(ctx context.Context, fn func(id int64, rawBytes []byte) error) error {
	rows, err := b.db.QueryContext(ctx, `SELECT id, raw_bytes FROM page_versions`)
	if err != nil {
		return fmt.Errorf("sqlite: iter page versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("sqlite: scan page version: %w", err)
		}
		if err := fn(id, raw); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (b *Backend) Close() error {
	return b.db.Close()
}
