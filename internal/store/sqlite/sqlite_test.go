package sqlite

import (
	"context"
	"testing"

	"github.com/rohinmanvi/documentation-harvester/internal/store"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(context.Background(), "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite backend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestUpsertPackageIsIdempotent(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	id1, err := b.UpsertPackage(ctx, "requests")
	if err != nil {
		t.Fatalf("upsert package: %v", err)
	}
	id2, err := b.UpsertPackage(ctx, "requests")
	if err != nil {
		t.Fatalf("upsert package again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected same package id on repeat upsert, got %d and %d", id1, id2)
	}
}

func TestUpsertDocURLScopedByPackage(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	pkgA, _ := b.UpsertPackage(ctx, "requests")
	pkgB, _ := b.UpsertPackage(ctx, "flask")

	urlA, err := b.UpsertDocURL(ctx, pkgA, "https://docs.example.test/requests")
	if err != nil {
		t.Fatalf("upsert doc url A: %v", err)
	}
	urlB, err := b.UpsertDocURL(ctx, pkgB, "https://docs.example.test/requests")
	if err != nil {
		t.Fatalf("upsert doc url B: %v", err)
	}
	if urlA == urlB {
		t.Error("expected the same URL under different packages to get distinct doc_url ids")
	}
}

func TestRecordPageVersionFirstInsertIsVersionOne(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	pkg, _ := b.UpsertPackage(ctx, "requests")
	docURL, _ := b.UpsertDocURL(ctx, pkg, "https://docs.example.test/requests")

	pv, err := b.RecordPageVersion(ctx, docURL, "https://docs.example.test/requests", "hello world")
	if err != nil {
		t.Fatalf("record page version: %v", err)
	}
	if pv == nil {
		t.Fatal("expected a new page version for the first fetch")
	}
	if pv.Version != 1 {
		t.Errorf("expected version 1, got %d", pv.Version)
	}
	if pv.ChangeSummary != "Initial version" {
		t.Errorf("expected 'Initial version', got %q", pv.ChangeSummary)
	}
}

func TestRecordPageVersionUnchangedContentIsNoOp(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	pkg, _ := b.UpsertPackage(ctx, "requests")
	docURL, _ := b.UpsertDocURL(ctx, pkg, "https://docs.example.test/requests")
	pageURL := "https://docs.example.test/requests"

	if _, err := b.RecordPageVersion(ctx, docURL, pageURL, "hello world"); err != nil {
		t.Fatalf("record page version: %v", err)
	}
	pv, err := b.RecordPageVersion(ctx, docURL, pageURL, "hello world")
	if err != nil {
		t.Fatalf("record unchanged page version: %v", err)
	}
	if pv != nil {
		t.Errorf("expected nil for an unchanged fetch, got %+v", pv)
	}
}

func TestRecordPageVersionChangedContentIncrementsVersion(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	pkg, _ := b.UpsertPackage(ctx, "requests")
	docURL, _ := b.UpsertDocURL(ctx, pkg, "https://docs.example.test/requests")
	pageURL := "https://docs.example.test/requests"

	if _, err := b.RecordPageVersion(ctx, docURL, pageURL, "hello world"); err != nil {
		t.Fatalf("record page version: %v", err)
	}
	pv, err := b.RecordPageVersion(ctx, docURL, pageURL, "hello updated world")
	if err != nil {
		t.Fatalf("record changed page version: %v", err)
	}
	if pv == nil {
		t.Fatal("expected a new row for changed content")
	}
	if pv.Version != 2 {
		t.Errorf("expected version 2, got %d", pv.Version)
	}
	if pv.ChangeSummary != "Content changed" {
		t.Errorf("expected 'Content changed', got %q", pv.ChangeSummary)
	}
}

func TestRecordProcessedAndIterAllPageVersions(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	pkg, _ := b.UpsertPackage(ctx, "requests")
	docURL, _ := b.UpsertDocURL(ctx, pkg, "https://docs.example.test/requests")
	pv, err := b.RecordPageVersion(ctx, docURL, "https://docs.example.test/requests", "hello world")
	if err != nil {
		t.Fatalf("record page version: %v", err)
	}

	if err := b.RecordProcessed(ctx, pv.ID, "hello world"); err != nil {
		t.Fatalf("record processed: %v", err)
	}

	var seen int
	err = b.IterAllPageVersions(ctx, func(id int64, rawBytes []byte) error {
		seen++
		text, decErr := store.Decompress(rawBytes)
		if decErr != nil {
			return decErr
		}
		if text != "hello world" {
			t.Errorf("expected decompressed text 'hello world', got %q", text)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("iter all page versions: %v", err)
	}
	if seen != 1 {
		t.Errorf("expected to iterate exactly 1 page version, got %d", seen)
	}
}
