// Package metrics holds the Prometheus instruments shared by the form engine.
// All collectors are registered with the global registry, so a host that
// exposes the default /metrics handler picks them up without extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for OptionFetchTotal.
const (
	OutcomeFetched = "fetched"
	OutcomeCached  = "cached"
	OutcomeFailed  = "failed"
)

// Result labels for StepTransitionsTotal.
const (
	ResultAdvanced  = "advanced"
	ResultBlocked   = "blocked"
	ResultSubmitted = "submitted"
	ResultBack      = "back"
)

var (
	FieldUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formsteward_field_updates_total",
			Help: "Cumulative number of field value and validity updates.",
		})

	ValidationTriggersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formsteward_validation_triggers_total",
			Help: "Cumulative number of step validation triggers dispatched.",
		})

	StepTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formsteward_step_transitions_total",
			Help: "Step navigation attempts by result.",
		}, []string{"result"})

	OptionFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formsteward_option_fetch_total",
			Help: "Option list fetches by outcome.",
		}, []string{"outcome"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "formsteward_active_sessions",
			Help: "Number of form sessions currently open.",
		})
)

func init() {
	prometheus.MustRegister(
		FieldUpdatesTotal,
		ValidationTriggersTotal,
		StepTransitionsTotal,
		OptionFetchTotal,
		ActiveSessions,
	)
}
