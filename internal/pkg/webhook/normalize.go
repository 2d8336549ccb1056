package webhook

// polarEventTypes maps Polar's raw event vocabulary onto the internal
// one.
var polarEventTypes = map[string]EventType{
	"subscription.created":    EventSubscriptionCreated,
	"subscription.updated":    EventSubscriptionUpdated,
	"subscription.active":     EventSubscriptionActive,
	"subscription.canceled":   EventSubscriptionCanceled,
	"subscription.uncanceled": EventSubscriptionUncanceled,
	"subscription.revoked":    EventSubscriptionRevoked,
	"order.created":           EventOrderCreated,
	"order.updated":           EventOrderUpdated,
	"order.paid":              EventOrderPaid,
	"order.refunded":          EventOrderRefunded,
}

// NormalizePolarEventType maps a raw Polar type string to the internal
// event type. Unknown types land in the generic updated bucket so they
// are still recorded.
func NormalizePolarEventType(polarType string) EventType {
	if t, ok := polarEventTypes[polarType]; ok {
		return t
	}
	return EventSubscriptionUpdated
}
