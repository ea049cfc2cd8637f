package notifications

import (
	"encoding/json"
	"time"
)

// BookingEvent is the plain payload published after each booking mutation.
// Consumers (SMS/email senders) live outside this service.
type BookingEvent struct {
	TenantID      string    `json:"tenant_id"`
	BookingID     string    `json:"booking_id"`
	TicketNumber  int64     `json:"ticket_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Status        string    `json:"status"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for the wire.
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one tenant's booking to the same
// partition so consumers see them in order.
func (e *BookingEvent) PartitionKey() string {
	return e.TenantID + ":" + e.BookingID
}
