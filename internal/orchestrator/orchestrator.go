// Package orchestrator wires the crawler, store, package source, and text
// pipeline together into complete harvest cycles.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohinmanvi/documentation-harvester/internal/config"
	"github.com/rohinmanvi/documentation-harvester/internal/crawler"
	"github.com/rohinmanvi/documentation-harvester/internal/dedup"
	"github.com/rohinmanvi/documentation-harvester/internal/fetcher"
	"github.com/rohinmanvi/documentation-harvester/internal/htmltext"
	"github.com/rohinmanvi/documentation-harvester/internal/metrics"
	"github.com/rohinmanvi/documentation-harvester/internal/packagesource"
	"github.com/rohinmanvi/documentation-harvester/internal/quality"
	"github.com/rohinmanvi/documentation-harvester/internal/report"
	"github.com/rohinmanvi/documentation-harvester/internal/robots"
	"github.com/rohinmanvi/documentation-harvester/internal/store"
)

// defaultConcurrency is the recommended bounded worker pool size for
// parallelizing crawls across distinct doc URLs within one cycle.
const defaultConcurrency = 8

// Orchestrator runs harvest cycles against a Store, a package source, and a
// crawler built per cycle (robots.txt caching is scoped to one cycle).
type Orchestrator struct {
	cfg           config.Settings
	store         store.Backend
	packageSource *packagesource.Source
	logger        *slog.Logger
	concurrency   int
}

// New builds an Orchestrator from validated settings.
func New(cfg config.Settings, backend store.Backend, source *packagesource.Source, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:           cfg,
		store:         backend,
		packageSource: source,
		logger:        logger,
		concurrency:   defaultConcurrency,
	}
}

type docURLWork struct {
	packageName string
	docURLID    int64
	url         string
}

// HarvestOnce runs exactly one complete cycle: schema, package discovery,
// crawling, and the extraction/quality/dedup processing pass.
func (o *Orchestrator) HarvestOnce(ctx context.Context) (report.Summary, error) {
	summary := report.NewSummary()
	start := time.Now()

	if err := o.store.EnsureSchema(ctx); err != nil {
		return summary, err
	}

	httpClient := fetcher.New(fetcher.Config{UserAgent: o.cfg.Crawler.UserAgent})
	gate := robots.New(newRobotsFetcher(httpClient), o.logger)
	crawl := crawler.New(crawler.Config{
		UserAgent:     o.cfg.Crawler.UserAgent,
		MaxDepth:      o.cfg.Crawler.MaxDepth,
		MaxPages:      o.cfg.Crawler.MaxPages,
		RequestDelay:  o.cfg.Crawler.RequestDelay,
		RespectRobots: true,
		UseSitemap:    o.cfg.Crawler.UseSitemap,
	}, newHTTPFetcher(httpClient), gate, o.logger)

	work := o.discoverWork(ctx, &summary)

	o.crawlAndStore(ctx, crawl, work, &summary)

	if err := o.processAll(ctx, &summary); err != nil {
		o.logger.Error("harvest: processing pass failed", "err", err)
	}

	summary.Finish(start, time.Now())
	metrics.HarvestCycleDuration.Observe(summary.Duration.Seconds())
	return summary, nil
}

// discoverWork pulls the top-N packages, resolves their candidate doc URLs,
// and upserts both packages and doc URLs. Sequential: one JSON GET per
// package, cheap relative to crawling.
func (o *Orchestrator) discoverWork(ctx context.Context, summary *report.Summary) []docURLWork {
	names := o.packageSource.TopPackages(ctx)

	var work []docURLWork
	for _, name := range names {
		packageID, err := o.store.UpsertPackage(ctx, name)
		if err != nil {
			o.logger.Error("harvest: upsert package failed", "package", name, "err", err)
			continue
		}
		summary.PackagesProcessed++

		for _, docURL := range o.packageSource.DocumentationURLs(ctx, name) {
			docURLID, err := o.store.UpsertDocURL(ctx, packageID, docURL)
			if err != nil {
				o.logger.Error("harvest: upsert doc url failed", "package", name, "url", docURL, "err", err)
				continue
			}
			summary.DocURLsDiscovered++
			work = append(work, docURLWork{packageName: name, docURLID: docURLID, url: docURL})
		}
	}
	return work
}

// crawlAndStore runs crawls across doc URLs with a bounded worker pool and
// passes every captured page to RecordPageVersion, which stores a new
// version only when the page's content changed.
func (o *Orchestrator) crawlAndStore(ctx context.Context, crawl *crawler.Crawler, work []docURLWork, summary *report.Summary) {
	if len(work) == 0 {
		return
	}

	var mu sync.Mutex
	sem := make(chan struct{}, o.concurrency)
	g, gCtx := errgroup.WithContext(ctx)

	for _, item := range work {
		item := item
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			pages := crawl.Crawl(gCtx, item.url)

			mu.Lock()
			defer mu.Unlock()
			for pageURL, rawText := range pages {
				summary.PagesCrawled++
				summary.StatusCodes[200]++
				metrics.RecordFetch("200")

				pv, err := o.store.RecordPageVersion(gCtx, item.docURLID, pageURL, rawText)
				if err != nil {
					o.logger.Error("harvest: record page version failed", "url", pageURL, "err", err)
					continue
				}
				if pv != nil {
					summary.PageVersionsStored++
					metrics.PageVersionsStoredTotal.Inc()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Warn("harvest: crawl pass ended early", "err", err)
	}
}

// processAll loads every stored page version, extracts and quality-filters
// its text, deduplicates the surviving batch, and records the processed
// text for every survivor.
func (o *Orchestrator) processAll(ctx context.Context, summary *report.Summary) error {
	type candidate struct {
		pageVersionID int64
		text          string
	}
	var candidates []candidate

	err := o.store.IterAllPageVersions(ctx, func(id int64, rawBytes []byte) error {
		html, err := store.Decompress(rawBytes)
		if err != nil {
			o.logger.Error("harvest: decompress page version failed", "id", id, "err", err)
			return nil
		}

		text := htmltext.Extract(html)
		if !quality.Accept(text) {
			summary.QualityRejections++
			metrics.QualityRejectionsTotal.Inc()
			return nil
		}

		candidates = append(candidates, candidate{pageVersionID: id, text: text})
		return nil
	})
	if err != nil {
		return err
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.text
	}
	survivingIndices := dedup.SurvivingIndices(texts, dedup.DefaultParams())
	removed := len(candidates) - len(survivingIndices)
	summary.DedupRemovals += removed
	metrics.DedupRemovalsTotal.Add(float64(removed))

	for _, i := range survivingIndices {
		c := candidates[i]
		if err := o.store.RecordProcessed(ctx, c.pageVersionID, c.text); err != nil {
			o.logger.Error("harvest: record processed failed", "page_version_id", c.pageVersionID, "err", err)
			continue
		}
		summary.ProcessedDocs++
	}
	return nil
}

// RunForever runs HarvestOnce on a fixed interval until ctx is cancelled.
func (o *Orchestrator) RunForever(ctx context.Context) error {
	interval := time.Duration(o.cfg.Scheduler.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		summary, err := o.HarvestOnce(ctx)
		if err != nil {
			o.logger.Error("harvest: cycle failed", "err", err)
		} else {
			o.logger.Info("harvest: cycle complete",
				"packages", summary.PackagesProcessed,
				"pages_crawled", summary.PagesCrawled,
				"processed_docs", summary.ProcessedDocs,
				"duration", summary.Duration)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
