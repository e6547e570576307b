package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/icetimehq/icetime-api/internal/models"
)

// MetricsService owns the Prometheus registry. It instruments the HTTP
// surface, the cache, and every ingestion run.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	eventsCreated   *prometheus.CounterVec
	eventsDeleted   *prometheus.CounterVec
	eventsFailed    *prometheus.CounterVec
	staleActiveRows *prometheus.GaugeVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_job_runs_total",
		Help: "Total ingestion job invocations by outcome",
	}, []string{"job", "status"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingestion_job_duration_seconds",
		Help:    "Duration of ingestion job runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"job"})

	eventsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_events_created_total",
		Help: "Rows inserted by reconciliation per rink",
	}, []string{"rink"})

	eventsDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_events_soft_deleted_total",
		Help: "Rows soft-deleted by reconciliation per rink",
	}, []string{"rink"})

	eventsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_events_failed_total",
		Help: "Records that failed to normalize or insert per rink",
	}, []string{"rink"})

	staleActiveRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ingestion_stale_active_rows",
		Help: "Active rows older than the latest batch, observed after each replace",
	}, []string{"rink"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		jobRuns, jobDuration, eventsCreated, eventsDeleted, eventsFailed, staleActiveRows, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		jobRuns:         jobRuns,
		jobDuration:     jobDuration,
		eventsCreated:   eventsCreated,
		eventsDeleted:   eventsDeleted,
		eventsFailed:    eventsFailed,
		staleActiveRows: staleActiveRows,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveJobRun records the outcome and duration of one ingestion run.
func (m *MetricsService) ObserveJobRun(job string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// ObserveReplace records the reconciliation counters for one run.
func (m *MetricsService) ObserveReplace(rink string, summary models.ReplaceSummary) {
	if m == nil {
		return
	}
	m.eventsCreated.WithLabelValues(rink).Add(float64(summary.Created))
	m.eventsDeleted.WithLabelValues(rink).Add(float64(summary.SoftDeleted))
	m.eventsFailed.WithLabelValues(rink).Add(float64(summary.Failed))
	m.staleActiveRows.WithLabelValues(rink).Set(float64(summary.StaleActiveRows))
}
