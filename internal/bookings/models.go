package bookings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"spotly/internal/shared/apperror"

	"github.com/google/uuid"
)

// Booking is the aggregate root for one parking reservation.
type Booking struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID     string    `gorm:"type:varchar(64);index:idx_bookings_tenant;not null" json:"tenant_id"`
	TicketNumber int64     `gorm:"not null;index:idx_bookings_ticket" json:"ticket_number"`
	Status       Status    `gorm:"type:varchar(20);not null;default:'NEW'" json:"status"`

	CustomerName  string `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(32)" json:"customer_phone"`
	VehiclePlate  string `gorm:"type:varchar(20);not null" json:"vehicle_plate"`

	// Spot assignment; nil until a spot is bound during check-in.
	LocationID *uuid.UUID `gorm:"type:uuid" json:"location_id,omitempty"`
	SpotID     *uuid.UUID `gorm:"type:uuid;index" json:"spot_id,omitempty"`

	PaymentMethod string  `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentAmount float64 `json:"payment_amount"`
	PaymentStatus string  `gorm:"type:varchar(10);not null;default:'PENDING'" json:"payment_status"`

	// History is append-only: each transition rebuilds the slice with one new
	// element; entries are never mutated or reordered.
	History HistoryEntries `gorm:"type:jsonb" json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry records a single status transition on a booking.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// HistoryEntries is stored as a jsonb column.
type HistoryEntries []HistoryEntry

func (h HistoryEntries) Value() (driver.Value, error) {
	if h == nil {
		h = HistoryEntries{}
	}
	return json.Marshal(h)
}

func (h *HistoryEntries) Scan(value interface{}) error {
	if value == nil {
		*h = HistoryEntries{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("unsupported history column type %T", value)
	}
}

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

// TicketCounter is one shard of the per-tenant ticket-number counter. Each
// shard only ever produces values congruent to its index modulo the shard
// count, so shards never collide and never need to coordinate.
type TicketCounter struct {
	TenantID string `gorm:"type:varchar(64);primaryKey"`
	Shard    int    `gorm:"primaryKey"`
	Value    int64  `gorm:"not null"`
}

// DailyStat is the per-tenant, per-day completion aggregate. Rows are
// merge-incremented inside the same transaction that completes a booking.
type DailyStat struct {
	TenantID       string  `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	Date           string  `gorm:"type:varchar(10);primaryKey" json:"date"`
	CompletedCount int64   `gorm:"not null;default:0" json:"completed_count"`
	TotalRevenue   float64 `gorm:"not null;default:0" json:"total_revenue"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for TicketCounter
func (TicketCounter) TableName() string {
	return "ticket_counters"
}

// TableName sets the table name for DailyStat
func (DailyStat) TableName() string {
	return "booking_daily_stats"
}

// HasSpot reports whether the booking currently references a spot.
func (b *Booking) HasSpot() bool {
	return b.SpotID != nil
}

// ClearSpot drops the spot reference; the spot row itself is released by the
// repository inside the same transaction.
func (b *Booking) ClearSpot() {
	b.LocationID = nil
	b.SpotID = nil
}

// takeSpotForRelease clears the spot reference once the booking has reached
// a terminal status and returns the spot that must be freed in the same
// transaction. A booking that keeps running, or never held a spot, releases
// nothing.
func (b *Booking) takeSpotForRelease() (uuid.UUID, bool) {
	if !b.Status.IsTerminal() || !b.HasSpot() {
		return uuid.Nil, false
	}
	spotID := *b.SpotID
	b.ClearSpot()
	return spotID, true
}

// ApplyTransition validates the edge against the state machine and appends a
// history entry. It mutates only the in-memory aggregate; persistence and the
// coupled spot release happen in the enclosing transaction.
func (b *Booking) ApplyTransition(newStatus Status, actor, note string) error {
	if !b.Status.CanTransitionTo(newStatus) {
		return apperror.InvalidTransition(
			"cannot transition booking from %s to %s (allowed: %v)",
			b.Status, newStatus, b.Status.AllowedNext(),
		).
			WithDetail("current_status", b.Status).
			WithDetail("requested_status", newStatus).
			WithDetail("allowed_statuses", b.Status.AllowedNext())
	}

	now := time.Now().UTC()
	b.Status = newStatus
	b.UpdatedAt = now
	b.History = append(append(HistoryEntries{}, b.History...), HistoryEntry{
		Status:    newStatus,
		Timestamp: now,
		Actor:     actor,
		Note:      note,
	})
	return nil
}

// ApplyCompletion is the payment-capturing variant of ApplyTransition.
// Completion is deliberately not driven by the generic edge table: it is only
// legal from ACTIVE because it also records payment.
func (b *Booking) ApplyCompletion(method string, amount float64, actor string) error {
	if b.Status != StatusActive {
		return apperror.InvalidTransition("Only ACTIVE bookings can be completed (current status: %s)", b.Status).
			WithDetail("current_status", b.Status).
			WithDetail("requested_status", StatusCompleted)
	}

	now := time.Now().UTC()
	b.Status = StatusCompleted
	b.PaymentMethod = method
	b.PaymentAmount = amount
	b.PaymentStatus = PaymentStatusPaid
	b.UpdatedAt = now
	b.History = append(append(HistoryEntries{}, b.History...), HistoryEntry{
		Status:    StatusCompleted,
		Timestamp: now,
		Actor:     actor,
		Note:      fmt.Sprintf("payment %s %.2f captured", method, amount),
	})
	return nil
}
