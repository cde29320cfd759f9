package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the store.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	catalogRefreshTotal  *prometheus.CounterVec
	catalogProjects      prometheus.Gauge
	catalogSkippedRows   prometheus.Gauge
	purchaseOutcomes     *prometheus.CounterVec
	verificationOutcomes *prometheus.CounterVec
	deliveriesDispatched prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
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

	catalogRefreshTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refresh_total",
		Help: "Catalog refresh attempts by result",
	}, []string{"result"})

	catalogProjects := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_projects",
		Help: "Number of active projects in the current snapshot",
	})

	catalogSkippedRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_skipped_rows",
		Help: "Rows dropped during the last catalog normalization",
	})

	purchaseOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_outcomes_total",
		Help: "Purchase attempts by terminal outcome",
	}, []string{"outcome"})

	verificationOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Server-side payment verifications by result",
	}, []string{"result"})

	deliveriesDispatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deliveries_dispatched_total",
		Help: "Download dispatches triggered",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, catalogRefreshTotal, catalogProjects,
		catalogSkippedRows, purchaseOutcomes, verificationOutcomes, deliveriesDispatched, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		catalogRefreshTotal:  catalogRefreshTotal,
		catalogProjects:      catalogProjects,
		catalogSkippedRows:   catalogSkippedRows,
		purchaseOutcomes:     purchaseOutcomes,
		verificationOutcomes: verificationOutcomes,
		deliveriesDispatched: deliveriesDispatched,
	}
}

// Handler exposes the Prometheus HTTP handler.
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

// ObserveCatalogRefresh records a refresh attempt and, on success, the
// snapshot size and skipped-row count.
func (m *MetricsService) ObserveCatalogRefresh(projects, skipped int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.catalogRefreshTotal.WithLabelValues("error").Inc()
		return
	}
	m.catalogRefreshTotal.WithLabelValues("ok").Inc()
	m.catalogProjects.Set(float64(projects))
	m.catalogSkippedRows.Set(float64(skipped))
}

// ObservePurchase records a terminal purchase outcome.
func (m *MetricsService) ObservePurchase(outcome string) {
	if m == nil {
		return
	}
	m.purchaseOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveVerification records a server-side verification result.
func (m *MetricsService) ObserveVerification(verified bool) {
	if m == nil {
		return
	}
	result := "failed"
	if verified {
		result = "verified"
	}
	m.verificationOutcomes.WithLabelValues(result).Inc()
}

// ObserveDelivery counts a dispatched download.
func (m *MetricsService) ObserveDelivery() {
	if m == nil {
		return
	}
	m.deliveriesDispatched.Inc()
}
