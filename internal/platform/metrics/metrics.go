// Package metrics expone los collectors de prometheus del servicio.
package metrics

import (
	"net/http"
	"time"

	"foster-tracker/internal/domain/listing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foster_tracker"

// Metrics implementa listing.Observer y visibility.CascadeObserver.
type Metrics struct {
	registry *prometheus.Registry

	listings       *prometheus.CounterVec
	listingLatency *prometheus.HistogramVec
	listingErrors  *prometheus.CounterVec

	cascades       prometheus.Counter
	cascadeUpdated prometheus.Counter
	cascadeFailed  prometheus.Counter
}

// New registra los collectors en un registry propio (no el global), así
// cada test puede crear el suyo.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "requests_total",
			Help:      "Listados resueltos por listado y camino de ejecución.",
		}, []string{"listing", "path"}),
		listingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "duration_seconds",
			Help:      "Latencia de resolución de un listado.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"listing", "path"}),
		listingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "errors_total",
			Help:      "Listados fallidos; retryable indica un fallo de conectividad.",
		}, []string{"listing", "retryable"}),
		cascades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visibility",
			Name:      "cascades_total",
			Help:      "Cascadas de visibilidad confirmadas.",
		}),
		cascadeUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visibility",
			Name:      "cascade_members_updated_total",
			Help:      "Miembros actualizados por una cascada.",
		}),
		cascadeFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visibility",
			Name:      "cascade_members_failed_total",
			Help:      "Miembros que no se pudieron actualizar en una cascada.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.listings,
		m.listingLatency,
		m.listingErrors,
		m.cascades,
		m.cascadeUpdated,
		m.cascadeFailed,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveListing(name string, path listing.Path, elapsed time.Duration, err error) {
	m.listings.WithLabelValues(name, string(path)).Inc()
	m.listingLatency.WithLabelValues(name, string(path)).Observe(elapsed.Seconds())
	if err == nil {
		return
	}

	retryable := "false"
	if fe, ok := err.(interface{ Retryable() bool }); ok && fe.Retryable() {
		retryable = "true"
	}
	m.listingErrors.WithLabelValues(name, retryable).Inc()
}

func (m *Metrics) ObserveCascade(updated, failed int) {
	m.cascades.Inc()
	m.cascadeUpdated.Add(float64(updated))
	m.cascadeFailed.Add(float64(failed))
}
