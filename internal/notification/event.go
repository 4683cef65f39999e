// Package notification delivers customer-facing messages for engine events.
// Dispatch is fire-and-forget: the triggering operation never waits on, or
// fails because of, a notification.
package notification

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type EventKind string

const (
	EventOrderCreated    EventKind = "order_created"
	EventStatusChanged   EventKind = "status_changed"
	EventOrderCancelled  EventKind = "cancelled"
	EventInvoiceSent     EventKind = "invoice_sent"
	EventPaymentReceived EventKind = "payment_received"
)

// Event is the payload handed to providers. Payload keys are a bounded,
// documented set per kind (order_number, invoice_number, customer_email,
// customer_name, total, amount, status, reason).
type Event struct {
	ID         string
	Kind       EventKind
	OwnerID    snowflake.ID
	OccurredAt time.Time
	Payload    map[string]any
}

// NewEvent stamps a fresh event with a unique ID.
func NewEvent(kind EventKind, ownerID snowflake.ID, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
