// Package notify delivers side-channel notifications on lifecycle and status
// events. Dispatch is fire-and-forget: a full buffer drops the message and a
// sender failure is logged and counted, never surfaced to the request that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campushq/labops/internal/metrics"
)

// Message is one notification to fan out. UserID 0 broadcasts to the campus.
type Message struct {
	UUID     string `json:"uuid"`
	CampusID int    `json:"campus_id"`
	UserID   int    `json:"user_id,omitempty"`
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Sender is one delivery channel (store sink, email, WhatsApp webhook).
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher feeds a buffered channel consumed by a single background worker.
type Dispatcher struct {
	inbox   chan Message
	senders []Sender
	log     *slog.Logger
}

func NewDispatcher(buffer int, log *slog.Logger, senders ...Sender) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		inbox:   make(chan Message, buffer),
		senders: senders,
		log:     log,
	}
}

// Dispatch queues msg without blocking. When the buffer is full the message
// is dropped and counted; the caller never waits on delivery.
func (d *Dispatcher) Dispatch(msg Message) {
	if msg.UUID == "" {
		msg.UUID = uuid.NewString()
	}
	select {
	case d.inbox <- msg:
		metrics.IncNotifications("queued")
	default:
		metrics.IncNotifications("dropped")
		d.log.Warn("notification dropped, buffer full",
			"kind", msg.Kind, "campus_id", msg.CampusID)
	}
}

// Run consumes the inbox until ctx is cancelled. Sender errors are logged and
// counted; delivery continues with the remaining senders.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.inbox:
			for _, s := range d.senders {
				if err := s.Send(ctx, msg); err != nil {
					metrics.IncNotifications("failed")
					d.log.Error("notification send failed",
						"sender", s.Name(), "kind", msg.Kind, "uuid", msg.UUID, "err", err)
					continue
				}
				metrics.IncNotifications("sent")
			}
		}
	}
}
