package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "kahawai"
	subsystem = "transport"
)

// Failure reasons.
const (
	reasonInvalidArgument = "invalid_argument"
	reasonConstruct       = "construct"
	reasonUnderflow       = "release_underflow"
	reasonTeardown        = "teardown"
)

type metrics struct {
	sessions      prometheus.Gauge
	constructions prometheus.Counter
	teardowns     prometheus.Counter
	failures      *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// newMetrics creates the manager collectors. A nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Sessions currently holding the shared transport",
		}),
		constructions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "constructions_total",
			Help:      "Transports built by the manager",
		}),
		teardowns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "teardowns_total",
			Help:      "Transports closed by explicit teardown",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Rejected acquire, release and teardown calls by reason",
		}, []string{"reason"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "State machine transitions by event",
		}, []string{"event"}),
	}
}
