package replay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for txengine_operations_total.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Metrics counts what a replay did. A nil Registerer yields unregistered
// collectors, which is what tests use.
type Metrics struct {
	operations *prometheus.CounterVec
	malformed  prometheus.Counter
	accounts   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "txengine",
				Name:      "operations_total",
				Help:      "Operations applied to the ledger store, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		malformed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "txengine",
			Name:      "malformed_records_total",
			Help:      "Input rows that could not be decoded into an operation",
		}),
		accounts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "txengine",
			Name:      "accounts",
			Help:      "Client accounts registered in the store",
		}),
	}
}
