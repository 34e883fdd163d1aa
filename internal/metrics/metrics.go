package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesCrawledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_pages_crawled_total",
			Help: "Total number of pages successfully fetched by the crawler",
		},
		[]string{"status"},
	)

	PageVersionsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_page_versions_stored_total",
			Help: "Total number of new page version rows written to the store",
		},
	)

	QualityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_quality_rejections_total",
			Help: "Total number of extracted pages rejected by the Gopher quality filter",
		},
	)

	DedupRemovalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_dedup_removals_total",
			Help: "Total number of near-duplicate documents removed by the deduper",
		},
	)

	HarvestCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_cycle_duration_seconds",
			Help:    "Duration of a complete harvest cycle in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600},
		},
	)
)

// RecordFetch records one crawler fetch outcome. status is "200", "404",
// "error", etc.
func RecordFetch(status string) {
	PagesCrawledTotal.WithLabelValues(status).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics. The
// server runs in a background goroutine and must be stopped via Server.Stop()
// to release resources and avoid leaks.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
