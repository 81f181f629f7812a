package location

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Propagation directions used as the "direction" label.
const (
	directionToURL    = "to_url"
	directionToTarget = "to_target"
)

// Metrics holds the Prometheus collectors for locations. One Metrics can be
// shared by every Location of a process. All methods are safe on nil.
type Metrics struct {
	syncs        prometheus.Counter
	unsyncs      prometheus.Counter
	bindings     prometheus.Gauge
	propagations *prometheus.CounterVec
	suppressed   *prometheus.CounterVec
	patches      prometheus.Counter
}

// NewMetrics registers the location collectors with reg under namespace.
// An empty namespace defaults to "querysync".
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "querysync"
	}
	factory := promauto.With(reg)

	return &Metrics{
		syncs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Total number of objects synced with a location",
		}),
		unsyncs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unsyncs_total",
			Help:      "Total number of objects unsynced from a location",
		}),
		bindings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bindings",
			Help:      "Number of active query bindings",
		}),
		propagations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagations_total",
			Help:      "Total number of value propagations between URL and bound objects",
		}, []string{"direction"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suppressed_total",
			Help:      "Total number of reentrant propagations suppressed by the sync guard",
		}, []string{"handler"}),
		patches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "url_patches_total",
			Help:      "Total number of URL patches sent to the browser",
		}),
	}
}

func (m *Metrics) synced() {
	if m == nil {
		return
	}
	m.syncs.Inc()
	m.bindings.Inc()
}

func (m *Metrics) unsynced() {
	if m == nil {
		return
	}
	m.unsyncs.Inc()
	m.bindings.Dec()
}

// dropped reverses synced for a binding that never took effect.
func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.bindings.Dec()
}

func (m *Metrics) propagated(direction string) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(direction).Inc()
}

func (m *Metrics) suppress(handler string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(handler).Inc()
}

func (m *Metrics) patched() {
	if m == nil {
		return
	}
	m.patches.Inc()
}
