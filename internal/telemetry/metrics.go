// Package telemetry exposes Prometheus metrics for the analysis pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// cache kinds used for the hit-ratio gauge
var cacheKinds = []string{"coin_details", "holders", "peer_ranks"}

// MetricsRegistry holds all Prometheus metrics for coinsight
type MetricsRegistry struct {
	registry *prometheus.Registry

	// Analysis pipeline metrics
	AnalysisDuration *prometheus.HistogramVec
	AnalysisErrors   *prometheus.CounterVec
	ActiveAnalyses   prometheus.Gauge
	TotalAnalyses    prometheus.Counter

	// Fetch layer metrics
	FetchAttempts *prometheus.CounterVec
	FetchRetries  *prometheus.CounterVec

	// Cache performance metrics
	CacheHitRatio prometheus.Gauge
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	// Verdict metrics
	Recommendations *prometheus.CounterVec
	RiskRatings     *prometheus.CounterVec
	RugPullAlerts   *prometheus.CounterVec

	// Stream metrics
	StreamUpdates    prometheus.Counter
	StreamReanalyses prometheus.Counter
}

// NewMetricsRegistry creates a metrics registry with all coinsight metrics
// registered on a private registry, exposed via Handler.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsight_analysis_duration_seconds",
				Help:    "Duration of a full coin analysis in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"result"},
		),

		AnalysisErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_analysis_errors_total",
				Help: "Total number of failed analyses by stage",
			},
			[]string{"stage"},
		),

		ActiveAnalyses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinsight_active_analyses",
				Help: "Number of currently running analyses",
			},
		),

		TotalAnalyses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coinsight_analyses_total",
				Help: "Total number of analyses initiated",
			},
		),

		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_fetch_attempts_total",
				Help: "Total provider fetch attempts by operation and status",
			},
			[]string{"op", "status"},
		),

		FetchRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_fetch_retries_total",
				Help: "Total provider fetch retries by operation",
			},
			[]string{"op"},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinsight_cache_hit_ratio",
				Help: "Current cache hit ratio (0.0 to 1.0)",
			},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_cache_hits_total",
				Help: "Total number of cache hits by cache type",
			},
			[]string{"cache_type"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_cache_misses_total",
				Help: "Total number of cache misses by cache type",
			},
			[]string{"cache_type"},
		),

		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_recommendations_total",
				Help: "Total recommendations issued by action",
			},
			[]string{"recommendation"},
		),

		RiskRatings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_risk_ratings_total",
				Help: "Total risk ratings issued by band",
			},
			[]string{"rating"},
		),

		RugPullAlerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_rugpull_alerts_total",
				Help: "Total rug-pull assessments at high or critical level",
			},
			[]string{"level"},
		),

		StreamUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coinsight_stream_updates_total",
				Help: "Total live price updates received",
			},
		),

		StreamReanalyses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coinsight_stream_reanalyses_total",
				Help: "Total re-analyses triggered by large live moves",
			},
		),
	}

	m.registry.MustRegister(
		m.AnalysisDuration,
		m.AnalysisErrors,
		m.ActiveAnalyses,
		m.TotalAnalyses,
		m.FetchAttempts,
		m.FetchRetries,
		m.CacheHitRatio,
		m.CacheHits,
		m.CacheMisses,
		m.Recommendations,
		m.RiskRatings,
		m.RugPullAlerts,
		m.StreamUpdates,
		m.StreamReanalyses,
	)

	return m
}

// AnalysisTimer tracks execution time of one analysis
type AnalysisTimer struct {
	metrics *MetricsRegistry
	symbol  string
	start   time.Time
}

// StartAnalysis begins timing an analysis pass
func (m *MetricsRegistry) StartAnalysis(symbol string) *AnalysisTimer {
	m.ActiveAnalyses.Inc()
	m.TotalAnalyses.Inc()
	return &AnalysisTimer{metrics: m, symbol: symbol, start: time.Now()}
}

// Stop completes the timing and records the metric
func (t *AnalysisTimer) Stop(result string) {
	duration := time.Since(t.start)
	t.metrics.ActiveAnalyses.Dec()
	t.metrics.AnalysisDuration.WithLabelValues(result).Observe(duration.Seconds())

	log.Debug().
		Str("symbol", t.symbol).
		Str("result", result).
		Dur("duration", duration).
		Msg("Analysis completed")
}

// ObserveFetch records one fetch attempt; attempts past the first count
// as retries. The signature matches the provider's RetryObserver.
func (m *MetricsRegistry) ObserveFetch(op string, attempt int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FetchAttempts.WithLabelValues(op, status).Inc()
	if attempt > 1 {
		m.FetchRetries.WithLabelValues(op).Inc()
	}
}

// ObserveCache records a cache lookup. The signature matches the cache's
// HitObserver.
func (m *MetricsRegistry) ObserveCache(kind string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(kind).Inc()
	} else {
		m.CacheMisses.WithLabelValues(kind).Inc()
	}
	m.updateCacheHitRatio()
}

// RecordVerdict counts the recommendation and risk rating of a finished
// analysis, plus a rug-pull alert when the level warrants one.
func (m *MetricsRegistry) RecordVerdict(recommendation, rating, rugLevel string) {
	m.Recommendations.WithLabelValues(recommendation).Inc()
	m.RiskRatings.WithLabelValues(rating).Inc()
	if rugLevel == "high" || rugLevel == "critical" {
		m.RugPullAlerts.WithLabelValues(rugLevel).Inc()
	}
}

// updateCacheHitRatio recomputes the aggregate hit ratio from the
// per-kind counters.
func (m *MetricsRegistry) updateCacheHitRatio() {
	hitMetric := &io_prometheus_client.Metric{}
	missMetric := &io_prometheus_client.Metric{}

	totalHits := 0.0
	totalMisses := 0.0
	for _, kind := range cacheKinds {
		if c, err := m.CacheHits.GetMetricWithLabelValues(kind); err == nil {
			if err := c.Write(hitMetric); err == nil {
				totalHits += hitMetric.GetCounter().GetValue()
			}
		}
		if c, err := m.CacheMisses.GetMetricWithLabelValues(kind); err == nil {
			if err := c.Write(missMetric); err == nil {
				totalMisses += missMetric.GetCounter().GetValue()
			}
		}
	}

	if total := totalHits + totalMisses; total > 0 {
		m.CacheHitRatio.Set(totalHits / total)
	}
}

// Handler returns the Prometheus scrape handler for this registry
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
