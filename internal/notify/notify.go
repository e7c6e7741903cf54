package notify

import (
	"context"
	"log"
)

// Event is what the core hands to the notifications sink; delivery and
// contents are someone else's problem.
type Event struct {
	Kind    string         `json:"kind"`
	LoanID  string         `json:"loan_id"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Sink interface {
	Notify(ctx context.Context, e Event)
}

// LogSink writes events to the process log; the default wiring.
type LogSink struct{}

func (LogSink) Notify(_ context.Context, e Event) {
	log.Printf("notify: kind=%s loan=%s payload=%v", e.Kind, e.LoanID, e.Payload)
}

// NopSink swallows events; used in tests.
type NopSink struct{}

func (NopSink) Notify(context.Context, Event) {}
