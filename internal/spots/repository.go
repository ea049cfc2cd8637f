package spots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spotly/internal/shared/apperror"
	"spotly/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Locking protocol; each call is one atomic transaction.
	LockSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID, actor string) (*Spot, error)
	AssignSpot(ctx context.Context, tenantID string, bookingID, locationID, spotID uuid.UUID, actor string) (*Spot, error)
	ReleaseSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID, actor string, role users.Role) (*Spot, error)

	// Provisioning and reads
	CreateLocation(ctx context.Context, location *Location) error
	CreateSpot(ctx context.Context, spot *Spot) error
	GetSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID) (*Spot, error)
	ListSpots(ctx context.Context, tenantID string, locationID uuid.UUID) ([]Spot, error)

	// Hygiene: clears lock fields the lazy-expiry check already ignores.
	ClearExpiredLocks(ctx context.Context) (int64, error)
}

type repository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewRepository(db *gorm.DB, lockTimeout time.Duration) Repository {
	return &repository{db: db, lockTimeout: lockTimeout}
}

// LockSpot takes (or renews) the soft lock on a spot. An expired foreign
// lock is taken over silently - there is no separate steal operation,
// takeover is implicit in the expiry check.
func (r *repository) LockSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID, actor string) (*Spot, error) {
	var locked *Spot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spot, err := r.getSpotForUpdate(tx, tenantID, locationID, spotID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := spot.CheckLockable(actor, now, r.lockTimeout); err != nil {
			return err
		}

		spot.Lock(actor, now)
		if err := tx.Save(spot).Error; err != nil {
			return fmt.Errorf("failed to persist spot lock: %w", err)
		}
		locked = spot
		return nil
	})
	return locked, err
}

// bookingAssignRow is the slice of the bookings row the assignment
// transaction locks and inspects.
type bookingAssignRow struct {
	ID     uuid.UUID
	Status string
	SpotID *uuid.UUID
}

// checkAssignable rejects assignment unless the booking is in a status that
// may hold a spot and does not already hold a different one. A booking holds
// at most one spot; the old spot must be released (cancel or complete)
// before a new one can be bound, otherwise the old row would stay OCCUPIED
// with no booking left to free it.
func (b bookingAssignRow) checkAssignable(target uuid.UUID) error {
	switch b.Status {
	case "CHECKED_IN", "PARKED", "ACTIVE":
		// These are the only statuses that may hold a spot.
	default:
		return apperror.ValidationFailed("booking in status %s cannot be assigned a spot", b.Status)
	}

	if b.SpotID != nil && *b.SpotID != target {
		return apperror.Occupied("booking %s already holds a spot", b.ID).
			WithDetail("current_spot_id", b.SpotID.String())
	}
	return nil
}

// AssignSpot binds a spot to a booking in a single transaction spanning both
// rows. Re-assigning the spot to the booking that already holds it is a
// no-op success so retried requests converge.
func (r *repository) AssignSpot(ctx context.Context, tenantID string, bookingID, locationID, spotID uuid.UUID, actor string) (*Spot, error) {
	var assigned *Spot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spot, err := r.getSpotForUpdate(tx, tenantID, locationID, spotID)
		if err != nil {
			return err
		}

		// The booking side lives in the bookings table; touched here raw to
		// keep both writes inside one transaction.
		var booking bookingAssignRow
		err = tx.Table("bookings").
			Select("id, status, spot_id").
			Where("tenant_id = ? AND id = ?", tenantID, bookingID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("booking %s not found", bookingID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		now := time.Now().UTC()
		if spot.Status == SpotStatusOccupied && spot.BookingRef != nil && *spot.BookingRef == bookingID {
			// Already assigned to this booking; succeed without writing.
			assigned = spot
			return nil
		}

		if err := spot.CheckAssignable(actor, bookingID, now, r.lockTimeout); err != nil {
			return err
		}
		if err := booking.checkAssignable(spotID); err != nil {
			return err
		}

		spot.Occupy(bookingID, now)
		if err := tx.Save(spot).Error; err != nil {
			return fmt.Errorf("failed to persist spot assignment: %w", err)
		}

		err = tx.Table("bookings").
			Where("tenant_id = ? AND id = ?", tenantID, bookingID).
			Updates(map[string]interface{}{
				"location_id": locationID,
				"spot_id":     spotID,
				"updated_at":  now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to set booking spot reference: %w", err)
		}

		assigned = spot
		return nil
	})
	return assigned, err
}

// ReleaseSpot clears the soft lock only; occupancy is untouched. Releasing
// an already-unlocked spot succeeds.
func (r *repository) ReleaseSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID, actor string, role users.Role) (*Spot, error) {
	var released *Spot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spot, err := r.getSpotForUpdate(tx, tenantID, locationID, spotID)
		if err != nil {
			return err
		}

		if err := spot.CheckReleasable(actor, role); err != nil {
			return err
		}

		spot.ClearLock(time.Now().UTC())
		if err := tx.Save(spot).Error; err != nil {
			return fmt.Errorf("failed to persist spot release: %w", err)
		}
		released = spot
		return nil
	})
	return released, err
}

func (r *repository) CreateLocation(ctx context.Context, location *Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) CreateSpot(ctx context.Context, spot *Spot) error {
	return r.db.WithContext(ctx).Create(spot).Error
}

func (r *repository) GetSpot(ctx context.Context, tenantID string, locationID, spotID uuid.UUID) (*Spot, error) {
	var spot Spot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ? AND id = ?", tenantID, locationID, spotID).
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("spot %s not found", spotID)
	}
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) ListSpots(ctx context.Context, tenantID string, locationID uuid.UUID) ([]Spot, error) {
	var result []Spot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Order("code ASC").
		Find(&result).Error
	return result, err
}

// ClearExpiredLocks wipes lock fields older than the timeout. Correctness
// never depends on this running; it only keeps the rows tidy.
func (r *repository) ClearExpiredLocks(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-r.lockTimeout)
	result := r.db.WithContext(ctx).
		Model(&Spot{}).
		Where("lock_owner <> '' AND locked_at < ?", cutoff).
		Updates(map[string]interface{}{
			"lock_owner": "",
			"locked_at":  nil,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) getSpotForUpdate(tx *gorm.DB, tenantID string, locationID, spotID uuid.UUID) (*Spot, error) {
	var spot Spot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND location_id = ? AND id = ?", tenantID, locationID, spotID).
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("spot %s not found", spotID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock spot: %w", err)
	}
	return &spot, nil
}
