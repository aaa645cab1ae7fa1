package learning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var materializedEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "grl_storage_materialized_total",
	Help: "Number of storage entries created by reading a missing key",
}, []string{"kind"})

var purgedBranches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "grl_storage_purged_branches_total",
	Help: "Number of empty branches removed by purge cascades",
})

var defaultDraws = promauto.NewCounter(prometheus.CounterOpts{
	Name: "grl_storage_default_draws_total",
	Help: "Number of default values drawn from the configured range",
})
