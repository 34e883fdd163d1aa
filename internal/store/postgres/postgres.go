// Package postgres implements store.Backend on top of jackc/pgx/v5, for
// deployments that outgrow sqlite's single-writer model.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohinmanvi/documentation-harvester/internal/store"
)

var _ store.Backend = (*Backend)(nil)

// Backend is a postgres-backed store.Backend.
type Backend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS packages (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS doc_urls (
	id BIGSERIAL PRIMARY KEY,
	package_id BIGINT NOT NULL REFERENCES packages(id),
	url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE(package_id, url)
);

CREATE TABLE IF NOT EXISTS page_versions (
	id BIGSERIAL PRIMARY KEY,
	doc_url_id BIGINT NOT NULL REFERENCES doc_urls(id),
	page_url TEXT NOT NULL,
	version INTEGER NOT NULL,
	raw_bytes BYTEA NOT NULL,
	content_hash TEXT NOT NULL,
	retrieved_at TIMESTAMPTZ NOT NULL,
	change_summary TEXT NOT NULL,
	UNIQUE(doc_url_id, page_url, version)
);

CREATE TABLE IF NOT EXISTS processed_docs (
	id BIGSERIAL PRIMARY KEY,
	page_version_id BIGINT NOT NULL UNIQUE REFERENCES page_versions(id),
	processed_text BYTEA NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL
);
`

// New connects to dsn and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	b := &Backend{pool: pool}
	if err := b.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (b *Backend) UpsertPackage(ctx context.Context, name string) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := b.pool.QueryRow(ctx,
		`INSERT INTO packages (name, created_at, updated_at) VALUES ($1, $2, $2)
		 ON CONFLICT (name) DO UPDATE SET updated_at = $2
		 RETURNING id`,
		name, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: upsert package: %w", err)
	}
	return id, nil
}

func (b *Backend) UpsertDocURL(ctx context.Context, packageID int64, url string) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := b.pool.QueryRow(ctx,
		`INSERT INTO doc_urls (package_id, url, created_at, updated_at) VALUES ($1, $2, $3, $3)
		 ON CONFLICT (package_id, url) DO UPDATE SET updated_at = $3
		 RETURNING id`,
		packageID, url, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: upsert doc url: %w", err)
	}
	return id, nil
}

func (b *Backend) RecordPageVersion(ctx context.Context, docURLID int64, pageURL, rawText string) (*store.PageVersion, error) {
	hash := store.ContentHash(rawText)

	var priorVersion int
	var priorHash string
	err := b.pool.QueryRow(ctx,
		`SELECT version, content_hash FROM page_versions
		 WHERE doc_url_id = $1 AND page_url = $2 ORDER BY version DESC LIMIT 1`,
		docURLID, pageURL).Scan(&priorVersion, &priorHash)
	switch {
	case err == nil:
		if priorHash == hash {
			return nil, nil
		}
	case errors.Is(err, pgx.ErrNoRows):
		priorVersion = 0
	default:
		return nil, fmt.Errorf("postgres: read prior version: %w", err)
	}

	compressed, err := store.Compress(rawText)
	if err != nil {
		return nil, err
	}

	version := priorVersion + 1
	summary := store.ChangeSummaryFor(priorVersion)
	now := time.Now().UTC()

	var id int64
	err = b.pool.QueryRow(ctx,
		`INSERT INTO page_versions (doc_url_id, page_url, version, raw_bytes, content_hash, retrieved_at, change_summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		docURLID, pageURL, version, compressed, hash, now, summary).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert page version: %w", err)
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

	_, err = b.pool.Exec(ctx,
		`INSERT INTO processed_docs (page_version_id, processed_text, processed_at) VALUES ($1, $2, $3)
		 ON CONFLICT (page_version_id) DO UPDATE SET processed_text = $2, processed_at = $3`,
		pageVersionID, compressed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres: record processed: %w", err)
	}
	return nil
}

func (b *Backend) IterAllPageVersions(ctx context.Context, fn func(id int64, rawBytes []byte) error) error {
	rows, err := b.pool.Query(ctx, `SELECT id, raw_bytes FROM page_versions`)
	if err != nil {
		return fmt.Errorf("postgres: iter page versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("postgres: scan page version: %w", err)
		}
		if err := fn(id, raw); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
