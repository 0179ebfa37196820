// Package metrics holds the agent pipeline counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_events_total",
			Help: "Total number of platform events handled by the processor",
		},
		[]string{"type"},
	)

	actionsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_actions_total",
			Help: "Total number of agent action runs by outcome",
		},
		[]string{"action", "outcome"},
	)

	decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_decisions_total",
			Help: "Decisions taken by actions, split by provenance (AI, RULE, TEMPLATE)",
		},
		[]string{"action", "source"},
	)

	breakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_breaker_state_changes_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"key", "to"},
	)
)

// UnknownEventType labels events outside the platform's known types.
const UnknownEventType = "unknown"

func RecordEvent(eventType string) {
	eventsProcessed.WithLabelValues(eventType).Inc()
}

func RecordAction(action, outcome string) {
	actionsExecuted.WithLabelValues(action, outcome).Inc()
}

func RecordDecision(action, source string) {
	decisions.WithLabelValues(action, source).Inc()
}

func RecordBreakerTransition(key, to string) {
	breakerTransitions.WithLabelValues(key, to).Inc()
}
