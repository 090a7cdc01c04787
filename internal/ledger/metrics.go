package ledger

import "github.com/prometheus/client_golang/prometheus"

var affectationsPosted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_affectations_posted_total",
		Help: "How many affectations have been fully applied.",
	},
)

var affectationsPartial = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_affectations_partial_total",
		Help: "How many affectation postings stopped before all balances were updated, partitioned by the failed step.",
	},
	[]string{"step"},
)

var affectationsResumed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_affectations_resumed_total",
		Help: "How many pending affectations have been completed by reconciliation or a retry.",
	},
)

// Collectors returns the Prometheus metrics of the ledger.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		affectationsPosted,
		affectationsPartial,
		affectationsResumed,
	}
}
