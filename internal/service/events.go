package service

import "github.com/google/uuid"

// Realtime event names pushed to connected clients
const (
	EventLeadStatusChanged = "lead.status_changed"
	EventSaleConfirmed     = "sale.confirmed"
	EventQuoteSent         = "quote.sent"
)

// EventPublisher fans domain events out to realtime subscribers. owner is
// the representative the record belongs to; only that representative and
// admins receive the event. Publishing is fire-and-forget.
type EventPublisher interface {
	Publish(owner uuid.UUID, event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
