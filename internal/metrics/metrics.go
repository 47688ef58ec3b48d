// Package metrics exposes counters for the weekly engine runs. Values only
// ever grow; convergence is visible as rescued/corrected counters flattening
// out between sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsCloned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guias_records_cloned_total",
		Help: "Weekly history records cloned from the prior week.",
	})
	SyncSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guias_sync_skipped_total",
		Help: "Synchronizer runs that found the current week already initialized.",
	})
	DriversAssigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guias_drivers_assigned_total",
		Help: "Drivers assigned to a guide by the distributor.",
	})
	RecordsRescued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guias_records_rescued_total",
		Help: "Missing current-week records inserted by the rescue pass.",
	})
	EarningsCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guias_earnings_corrections_total",
		Help: "Weekly records whose earnings were corrected against the feed.",
	})
)
