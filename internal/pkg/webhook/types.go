package webhook

import "strconv"

// EventType is the internal entitlement event vocabulary both providers
// are normalized into.
type EventType string

const (
	EventSubscriptionCreated    EventType = "SUBSCRIPTION_CREATED"
	EventSubscriptionUpdated    EventType = "SUBSCRIPTION_UPDATED"
	EventSubscriptionActive     EventType = "SUBSCRIPTION_ACTIVE"
	EventSubscriptionCanceled   EventType = "SUBSCRIPTION_CANCELED"
	EventSubscriptionUncanceled EventType = "SUBSCRIPTION_UNCANCELED"
	EventSubscriptionRevoked    EventType = "SUBSCRIPTION_REVOKED"
	EventOrderCreated           EventType = "ORDER_CREATED"
	EventOrderUpdated           EventType = "ORDER_UPDATED"
	EventOrderPaid              EventType = "ORDER_PAID"
	EventOrderRefunded          EventType = "ORDER_REFUNDED"
	EventPaymentIn              EventType = "PAYMENT_IN"
)

// PolarEvent is the envelope Polar posts to the webhook endpoint.
type PolarEvent struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data PolarEventData `json:"data"`
}

// PolarEventData carries the subject of a Polar event. Only the id is
// needed by the state machine; the full payload is kept verbatim in the
// webhook event ledger.
type PolarEventData struct {
	ID string `json:"id"`
}

// SepayTransaction is the bank transaction SePay posts for every
// account movement, incoming and outgoing.
type SepayTransaction struct {
	ID                 int64   `json:"id" validate:"required"`
	Gateway            string  `json:"gateway"`
	TransactionDate    string  `json:"transactionDate"`
	AccountNumber      string  `json:"accountNumber"`
	SubAccount         string  `json:"subAccount"`
	TransferType       string  `json:"transferType" validate:"required"`
	TransferAmount     float64 `json:"transferAmount" validate:"gte=0"`
	Accumulated        float64 `json:"accumulated"`
	Code               string  `json:"code"`
	TransactionContent string  `json:"transactionContent"`
	ReferenceCode      string  `json:"referenceCode"`
	Description        string  `json:"description"`
}

// ExternalEventID returns the transaction id in the string form used as
// the ledger's dedup key.
func (t *SepayTransaction) ExternalEventID() string {
	return strconv.FormatInt(t.ID, 10)
}

// IsIncoming reports whether the transaction moves money into the
// account. Outgoing transfers are not entitlement events.
func (t *SepayTransaction) IsIncoming() bool {
	return t.TransferType == "in"
}
