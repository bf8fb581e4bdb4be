// Package metrics exports journey engine counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	events          *prometheus.CounterVec
	rejected        prometheus.Counter
	persistWrites   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	persistDropped  prometheus.Counter
	openJourneys    prometheus.Gauge
}

// New registers the engine metrics under namespace on reg. Collectors that
// are already registered are reused.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "journey"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Journey events applied to sessions, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_rejected_total",
			Help:      "Response submissions rejected by the input gate.",
		}),
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Successful persistence writes, by target.",
		}, []string{"target"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed persistence writes, by target.",
		}, []string{"target"}),
		persistDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_dropped_events_total",
			Help:      "Event log entries dropped because the write queue was full.",
		}),
		openJourneys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_journeys",
			Help:      "Journeys currently held by the registry.",
		}),
	}

	var err error
	if m.events, err = register(reg, m.events); err != nil {
		return nil, err
	}
	if m.rejected, err = register(reg, m.rejected); err != nil {
		return nil, err
	}
	if m.persistWrites, err = register(reg, m.persistWrites); err != nil {
		return nil, err
	}
	if m.persistFailures, err = register(reg, m.persistFailures); err != nil {
		return nil, err
	}
	if m.persistDropped, err = register(reg, m.persistDropped); err != nil {
		return nil, err
	}
	if m.openJourneys, err = register(reg, m.openJourneys); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register journey metric: %w", err)
	}
	return c, nil
}

// Event counts one applied journey event.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// Rejected counts a gate rejection.
func (m *Metrics) Rejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// PersistResult records the outcome of a write to target ("session" or "event").
func (m *Metrics) PersistResult(target string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.persistFailures.WithLabelValues(target).Inc()
		return
	}
	m.persistWrites.WithLabelValues(target).Inc()
}

// Dropped counts event entries discarded on a full queue.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.persistDropped.Inc()
}

// SetOpen sets the number of open journeys.
func (m *Metrics) SetOpen(n int) {
	if m == nil {
		return
	}
	m.openJourneys.Set(float64(n))
}
