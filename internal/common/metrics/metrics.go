// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgentTurnsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Total number of completed interactive turns by action kind",
		},
		[]string{"action"},
	)

	AgentTurnFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turn_failures_total",
			Help: "Total number of failed turns by action kind and error code",
		},
		[]string{"action", "error_code"},
	)

	AgentModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_model_calls_total",
			Help: "Total number of hosted-model calls by kind",
		},
		[]string{"kind"},
	)

	AgentModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_model_call_duration_seconds",
			Help: "Duration of hosted-model calls in seconds",
		},
		[]string{"kind"},
	)

	AgentDatabaseCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_db_calls_total",
			Help: "Total number of database calls by operation",
		},
		[]string{"operation"},
	)
)
