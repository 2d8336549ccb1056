package jobqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mrgoonie/docobo/internal/pkg/webhook"
)

// Job is one unit of webhook processing handed off by an ingress
// controller after the transport call was acknowledged. The raw payload
// travels verbatim so the worker records exactly what the provider sent.
type Job struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	RawPayload json.RawMessage `json:"raw_payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Enqueuer is the controller-facing side of the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, provider string, rawPayload []byte) (string, error)
}

// Processor owns the record -> normalize -> transition -> effect
// pipeline for a single event, including ledger completion.
type Processor interface {
	ProcessPolarEvent(ctx context.Context, rawPayload []byte, event webhook.PolarEvent) error
	ProcessSepayTransaction(ctx context.Context, rawPayload []byte, txn webhook.SepayTransaction) error
}
