// Package telemetry métricas Prometheus y trazas OpenTelemetry del servicio.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

// Nombres de métricas.
const (
	MetricMovementsTotal       = "stock_movements_recorded_total"
	MetricTransferTransitions  = "stock_transfer_transitions_total"
	MetricTxRetriesTotal       = "stock_tx_retries_total"
	MetricHTTPRequestsDuration = "stock_http_request_duration_seconds"
)

var (
	_ inventory.Metrics      = (*Metrics)(nil)
	_ postgres.RetryObserver = (*Metrics)(nil)
)

// Metrics contadores de negocio y de infraestructura sobre un registry propio.
type Metrics struct {
	registry  *prometheus.Registry
	movements *prometheus.CounterVec
	transfers *prometheus.CounterVec
	retries   prometheus.Counter
	requests  *prometheus.HistogramVec
}

// NewMetrics registra las métricas (más las de proceso y runtime de Go).
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMovementsTotal,
			Help: "Movimientos escritos en el libro, por tipo.",
		}, []string{"type"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricTransferTransitions,
			Help: "Transiciones de estado de traslados.",
		}, []string{"from", "to"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricTxRetriesTotal,
			Help: "Reintentos de transacción por serialización o deadlock.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestsDuration,
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.movements, m.transfers, m.retries, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) MovementRecorded(t entity.MovementType) {
	m.movements.WithLabelValues(string(t)).Inc()
}

// TransferTransition from vacío = creación.
func (m *Metrics) TransferTransition(from, to entity.TransferStatus) {
	f := string(from)
	if f == "" {
		f = "none"
	}
	m.transfers.WithLabelValues(f, string(to)).Inc()
}

func (m *Metrics) TxRetried() {
	m.retries.Inc()
}

// ObserveRequest registra la duración de una petición; route es la plantilla, no la URL.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para tests y colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
