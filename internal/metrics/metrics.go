package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of repository reads served from the cache.",
		},
		[]string{"entity"},
	)
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of repository reads that fell through to the primary store.",
		},
		[]string{"entity"},
	)

	CacheDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_degraded_total",
			Help: "Total number of cache backend failures absorbed by falling back to the primary store.",
		},
		[]string{"entity"},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// Handler exposes the default registry for the ops server.
func Handler() http.Handler {
	return promhttp.Handler()
}
