// Package telemetry métricas Prometheus y trazas OpenTelemetry.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ ports.Recorder = (*Metrics)(nil)

// Nombres de métricas.
const (
	MetricHTTPRequestDuration = "erp_http_request_duration_seconds"
	MetricReceiptsTotal       = "erp_goods_receipts_total"
	MetricAllocationsTotal    = "erp_batch_allocations_total"
	MetricShortagesTotal      = "erp_allocation_shortages_total"
)

// Metrics registro propio (no el global) con las métricas de la API.
type Metrics struct {
	registry     *prometheus.Registry
	httpDuration *prometheus.HistogramVec
	receipts     *prometheus.CounterVec
	allocations  *prometheus.CounterVec
	shortages    prometheus.Counter
}

// NewMetrics registra las métricas y los colectores de proceso y runtime.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "Duración de las peticiones HTTP por método, ruta y estado.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		receipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricReceiptsTotal,
			Help: "Recepciones procesadas por resultado (posted, rejected, error).",
		}, []string{"outcome"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricAllocationsTotal,
			Help: "Asignaciones de lotes por estrategia.",
		}, []string{"strategy"}),
		shortages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricShortagesTotal,
			Help: "Asignaciones que no cubrieron la cantidad pedida.",
		}),
	}
	m.registry.MustRegister(
		m.httpDuration, m.receipts, m.allocations, m.shortages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveHTTP registra una petición terminada.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ReceiptPosted cuenta una recepción por resultado.
func (m *Metrics) ReceiptPosted(outcome string) {
	m.receipts.WithLabelValues(outcome).Inc()
}

// AllocationDone cuenta una asignación y, si quedó faltante, el quiebre.
func (m *Metrics) AllocationDone(strategy string, shortage bool) {
	m.allocations.WithLabelValues(strategy).Inc()
	if shortage {
		m.shortages.Inc()
	}
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para pruebas.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
