package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verdantia/storefront-backend/internal/cart"
)

const namespace = "storefront"

// CartMetrics records cart command outcomes. It implements cart.Observer.
type CartMetrics struct {
	registry            *prometheus.Registry
	commands            *prometheus.CounterVec
	persistenceFailures prometheus.Counter
	evictions           prometheus.Counter
	purgedBlobs         prometheus.Counter
}

func NewCartMetrics() *CartMetrics {
	m := &CartMetrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "commands_total",
			Help:      "Cart commands by name and outcome.",
		}, []string{"command", "result"}),
		persistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "persistence_failures_total",
			Help:      "Cart snapshots that could not be written.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "engine_evictions_total",
			Help:      "Idle cart engines dropped from memory.",
		}),
		purgedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "purged_blobs_total",
			Help:      "Stale persisted carts deleted by maintenance.",
		}),
	}
	m.registry.MustRegister(
		m.commands,
		m.persistenceFailures,
		m.evictions,
		m.purgedBlobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *CartMetrics) CommandApplied(command string, err error) {
	m.commands.WithLabelValues(command, resultLabel(err)).Inc()
}

func (m *CartMetrics) PersistenceFailed(error) {
	m.persistenceFailures.Inc()
}

func (m *CartMetrics) EnginesEvicted(n int) {
	m.evictions.Add(float64(n))
}

func (m *CartMetrics) BlobsPurged(n int64) {
	m.purgedBlobs.Add(float64(n))
}

// Handler serves this registry in the Prometheus text format
func (m *CartMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cart.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, cart.ErrInvalidCoupon):
		return "invalid_coupon"
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidProduct):
		return "invalid_input"
	case errors.Is(err, cart.ErrLineNotFound):
		return "line_not_found"
	}
	return "error"
}
