package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mrgoonie/docobo/app/models"
	"github.com/mrgoonie/docobo/internal/pkg/webhook"
)

type recordingProcessor struct {
	polarEvents []webhook.PolarEvent
	sepayTxns   []webhook.SepayTransaction
	err         error
	panicMsg    string
}

func (p *recordingProcessor) ProcessPolarEvent(_ context.Context, _ []byte, event webhook.PolarEvent) error {
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	p.polarEvents = append(p.polarEvents, event)
	return p.err
}

func (p *recordingProcessor) ProcessSepayTransaction(_ context.Context, _ []byte, txn webhook.SepayTransaction) error {
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	p.sepayTxns = append(p.sepayTxns, txn)
	return p.err
}

func newJob(t *testing.T, provider string, payload any) Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Job{ID: "job-1", Provider: provider, RawPayload: raw}
}

func TestProcess_DispatchesPolar(t *testing.T) {
	p := &recordingProcessor{}
	q := NewQueue(nil, p, 1)

	job := newJob(t, models.PaymentProviderPolar, webhook.PolarEvent{
		ID: "evt_1", Type: "subscription.active",
		Data: webhook.PolarEventData{ID: "sub_1"},
	})
	q.process(context.Background(), 0, job)

	if len(p.polarEvents) != 1 || p.polarEvents[0].ID != "evt_1" {
		t.Fatalf("polar event not dispatched: %+v", p.polarEvents)
	}
	if len(p.sepayTxns) != 0 {
		t.Fatalf("unexpected sepay dispatch: %+v", p.sepayTxns)
	}
}

func TestProcess_DispatchesSepay(t *testing.T) {
	p := &recordingProcessor{}
	q := NewQueue(nil, p, 1)

	job := newJob(t, models.PaymentProviderSepay, webhook.SepayTransaction{
		ID: 42, TransferType: "in", TransferAmount: 5,
	})
	q.process(context.Background(), 0, job)

	if len(p.sepayTxns) != 1 || p.sepayTxns[0].ID != 42 {
		t.Fatalf("sepay transaction not dispatched: %+v", p.sepayTxns)
	}
}

func TestProcess_UnknownProviderIsDropped(t *testing.T) {
	p := &recordingProcessor{}
	q := NewQueue(nil, p, 1)

	q.process(context.Background(), 0, Job{ID: "job-1", Provider: "STRIPE", RawPayload: []byte(`{}`)})

	if len(p.polarEvents)+len(p.sepayTxns) != 0 {
		t.Fatal("unknown providers must not be dispatched")
	}
}

func TestProcess_RecoversFromPanic(t *testing.T) {
	p := &recordingProcessor{panicMsg: "boom"}
	q := NewQueue(nil, p, 1)

	job := newJob(t, models.PaymentProviderPolar, webhook.PolarEvent{ID: "evt_1"})
	q.process(context.Background(), 0, job) // must not crash the worker

	if len(p.polarEvents) != 0 {
		t.Fatalf("panicking processor recorded events: %+v", p.polarEvents)
	}
}

func TestProcess_ProcessorErrorIsContained(t *testing.T) {
	p := &recordingProcessor{err: errors.New("db down")}
	q := NewQueue(nil, p, 1)

	job := newJob(t, models.PaymentProviderPolar, webhook.PolarEvent{ID: "evt_1"})
	q.process(context.Background(), 0, job) // error is logged, never propagated

	if len(p.polarEvents) != 1 {
		t.Fatal("processor should still have been invoked")
	}
}
