// README: Notification sink contract. Delivery is fire-and-forget; a failed
// send must never fail the workflow operation that triggered it.
package notify

import (
	"context"

	"fleetline/internal/types"
)

type Message struct {
	RecipientID types.ID `json:"recipient_id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
}

type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// NopSink discards every message.
type NopSink struct{}

func (NopSink) Send(context.Context, Message) error { return nil }
