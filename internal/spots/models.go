package spots

import (
	"time"

	"spotly/internal/shared/apperror"
	"spotly/internal/users"

	"github.com/google/uuid"
)

type SpotStatus string

const (
	SpotStatusAvailable SpotStatus = "AVAILABLE"
	SpotStatusOccupied  SpotStatus = "OCCUPIED"
)

// IsValid checks if the spot status is valid
func (s SpotStatus) IsValid() bool {
	return s == SpotStatusAvailable || s == SpotStatusOccupied
}

// Location is a physical site (garage, lot) holding spots.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(64);index;not null" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255)" json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Spot is one physical parking space. It carries both the persistent
// occupancy state (Status + BookingRef) and the transient soft lock
// (LockOwner + LockedAt). A lock older than the configured timeout is
// treated as absent regardless of what is stored - expiry is lazy, no
// background writer is required for correctness.
type Spot struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID   string     `gorm:"type:varchar(64);index:idx_spots_tenant;not null" json:"tenant_id"`
	LocationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"location_id"`
	Code       string     `gorm:"type:varchar(16);not null" json:"code"`
	Status     SpotStatus `gorm:"type:varchar(12);not null;default:'AVAILABLE'" json:"status"`
	BookingRef *uuid.UUID `gorm:"type:uuid" json:"booking_ref,omitempty"`
	LockOwner  string     `gorm:"type:varchar(64)" json:"lock_owner,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Location
func (Location) TableName() string {
	return "locations"
}

// TableName sets the table name for Spot
func (Spot) TableName() string {
	return "spots"
}

// LockActive reports whether the spot carries an unexpired soft lock.
func (s *Spot) LockActive(now time.Time, timeout time.Duration) bool {
	if s.LockOwner == "" || s.LockedAt == nil {
		return false
	}
	return now.Sub(*s.LockedAt) < timeout
}

// CheckLockable enforces the soft-lock protocol for a caller trying to lock
// or assign the spot: occupied spots are refused outright; a foreign,
// unexpired lock is refused; an expired lock is silently taken over.
// Re-locking one's own spot is always allowed.
func (s *Spot) CheckLockable(actor string, now time.Time, timeout time.Duration) error {
	if s.Status == SpotStatusOccupied {
		err := apperror.Occupied("spot %s is occupied", s.Code)
		if s.BookingRef != nil {
			err.WithDetail("booking_ref", s.BookingRef.String())
		}
		return err
	}
	if s.LockActive(now, timeout) && s.LockOwner != actor {
		return apperror.Locked("spot %s is locked by another operator", s.Code).
			WithDetail("lock_owner", s.LockOwner).
			WithDetail("locked_at", s.LockedAt)
	}
	return nil
}

// CheckAssignable is CheckLockable relaxed for assignment: a spot already
// occupied by the same booking is fine (retries are no-op successes).
func (s *Spot) CheckAssignable(actor string, bookingID uuid.UUID, now time.Time, timeout time.Duration) error {
	if s.Status == SpotStatusOccupied {
		if s.BookingRef != nil && *s.BookingRef == bookingID {
			return nil
		}
		err := apperror.Occupied("spot %s is occupied by a different booking", s.Code)
		if s.BookingRef != nil {
			err.WithDetail("booking_ref", s.BookingRef.String())
		}
		return err
	}
	if s.LockActive(now, timeout) && s.LockOwner != actor {
		return apperror.Locked("spot %s is locked by another operator", s.Code).
			WithDetail("lock_owner", s.LockOwner).
			WithDetail("locked_at", s.LockedAt)
	}
	return nil
}

// CheckReleasable authorizes clearing the soft lock: permitted when the lock
// is absent, owned by the actor, or the actor holds the admin role.
func (s *Spot) CheckReleasable(actor string, role users.Role) error {
	if s.LockOwner == "" || s.LockOwner == actor || role == users.RoleAdmin {
		return nil
	}
	return apperror.PermissionDenied("spot %s is locked by another operator", s.Code).
		WithDetail("lock_owner", s.LockOwner)
}

// Lock stamps the soft lock for actor.
func (s *Spot) Lock(actor string, now time.Time) {
	s.LockOwner = actor
	s.LockedAt = &now
	s.UpdatedAt = now
}

// ClearLock drops the soft lock fields.
func (s *Spot) ClearLock(now time.Time) {
	s.LockOwner = ""
	s.LockedAt = nil
	s.UpdatedAt = now
}

// Occupy binds the spot to a booking and clears any soft lock.
func (s *Spot) Occupy(bookingID uuid.UUID, now time.Time) {
	s.Status = SpotStatusOccupied
	s.BookingRef = &bookingID
	s.ClearLock(now)
}

// Free returns the spot to the available pool, clearing occupancy and lock.
func (s *Spot) Free(now time.Time) {
	s.Status = SpotStatusAvailable
	s.BookingRef = nil
	s.ClearLock(now)
}
