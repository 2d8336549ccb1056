package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_webhook_events_received_total",
		Help: "Total number of authenticated webhook deliveries, labelled by provider.",
	}, []string{"provider"})

	DuplicateDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_webhook_duplicate_deliveries_total",
		Help: "Total number of deliveries short-circuited by the idempotency ledger.",
	}, []string{"provider"})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_webhook_events_processed_total",
		Help: "Total number of events whose ledger entry completed without error.",
	}, []string{"provider"})

	EventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_webhook_events_failed_total",
		Help: "Total number of events completed with an error message.",
	}, []string{"provider"})

	// NoopTransitions separates benign re-delivery from events for
	// subscriptions this system never tracked; the no-op behavior is the
	// same either way, the counter is the only distinction.
	NoopTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_entitlement_noop_transitions_total",
		Help: "Total number of state machine no-ops, labelled by reason.",
	}, []string{"reason"})

	EffectorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docobo_role_effector_calls_total",
		Help: "Total number of Discord role grant/revoke calls, labelled by action and status.",
	}, []string{"action", "status"})
)
