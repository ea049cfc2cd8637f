package bookings

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"spotly/internal/shared/apperror"
	"spotly/internal/spots"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Core lifecycle operations; each runs as one atomic transaction.
	CreateBooking(ctx context.Context, booking *Booking) error
	TransitionBooking(ctx context.Context, tenantID string, id uuid.UUID, newStatus Status, actor, note string) (*Booking, error)
	CompleteBooking(ctx context.Context, tenantID string, id uuid.UUID, method string, amount float64, actor string) (*Booking, error)

	// Reads
	GetBookingByID(ctx context.Context, tenantID string, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, tenantID string, query ListQuery) ([]Booking, bool, error)
	GetDailyStats(ctx context.Context, tenantID string, from, to string) ([]DailyStat, error)
}

type repository struct {
	db         *gorm.DB
	shardCount int
}

func NewRepository(db *gorm.DB, shardCount int) Repository {
	if shardCount <= 0 {
		shardCount = 1
	}
	return &repository{db: db, shardCount: shardCount}
}

// CreateBooking allocates a ticket number from a random counter shard and
// persists the new booking in one transaction.
//
// Ticket numbers are unique per tenant but NOT globally monotonic: each of
// the N shards hands out its own residue class modulo N, so two creates that
// land on different shards can commit out of numeric order. That is the
// price of avoiding a single hot counter row under write contention.
func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := r.allocateTicketNumber(tx, booking.TenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate ticket number: %w", err)
		}
		booking.TicketNumber = ticket

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

// allocateTicketNumber picks one shard uniformly at random, locks only that
// row, and advances it by the shard count.
func (r *repository) allocateTicketNumber(tx *gorm.DB, tenantID string) (int64, error) {
	shard := rand.Intn(r.shardCount)

	var counter TicketCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND shard = ?", tenantID, shard).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Seed the shard lazily; shard i starts at i so it only ever emits
		// values congruent to i modulo shardCount.
		counter = TicketCounter{TenantID: tenantID, Shard: shard, Value: int64(shard)}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, fmt.Errorf("failed to seed counter shard: %w", err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("failed to lock counter shard: %w", err)
	}

	next := counter.Value + int64(r.shardCount)
	err = tx.Model(&TicketCounter{}).
		Where("tenant_id = ? AND shard = ?", tenantID, shard).
		Update("value", next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter shard: %w", err)
	}
	return next, nil
}

// TransitionBooking moves a booking along the state machine. If the target
// is terminal and a spot is assigned, the spot is freed inside the same
// transaction so occupancy and lifecycle state can never diverge.
func (r *repository) TransitionBooking(ctx context.Context, tenantID string, id uuid.UUID, newStatus Status, actor, note string) (*Booking, error) {
	var booking *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := r.getForUpdate(tx, tenantID, id)
		if err != nil {
			return err
		}

		if err := b.ApplyTransition(newStatus, actor, note); err != nil {
			return err
		}

		if spotID, release := b.takeSpotForRelease(); release {
			if err := r.freeSpot(tx, spotID); err != nil {
				return err
			}
		}

		if err := r.save(tx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	return booking, err
}

// CompleteBooking captures payment, frees the spot, and merge-increments the
// per-day aggregate - all in one transaction. Different callers usually touch
// different day rows, so the aggregate write adds little contention.
func (r *repository) CompleteBooking(ctx context.Context, tenantID string, id uuid.UUID, method string, amount float64, actor string) (*Booking, error) {
	var booking *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := r.getForUpdate(tx, tenantID, id)
		if err != nil {
			return err
		}

		if err := b.ApplyCompletion(method, amount, actor); err != nil {
			return err
		}

		if spotID, release := b.takeSpotForRelease(); release {
			if err := r.freeSpot(tx, spotID); err != nil {
				return err
			}
		}

		if err := r.save(tx, b); err != nil {
			return err
		}

		stat := DailyStat{
			TenantID:       tenantID,
			Date:           time.Now().UTC().Format("2006-01-02"),
			CompletedCount: 1,
			TotalRevenue:   amount,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"completed_count": gorm.Expr("booking_daily_stats.completed_count + 1"),
				"total_revenue":   gorm.Expr("booking_daily_stats.total_revenue + ?", amount),
			}),
		}).Create(&stat).Error
		if err != nil {
			return fmt.Errorf("failed to update daily stats: %w", err)
		}

		booking = b
		return nil
	})
	return booking, err
}

func (r *repository) GetBookingByID(ctx context.Context, tenantID string, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("booking %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// sortableColumns is the whitelist of list orderings; anything else is
// rejected before it reaches SQL.
var sortableColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"ticket_number": true,
}

// ListBookings fetches limit+1 rows to detect a next page without a count
// query; callers never see more than limit items.
func (r *repository) ListBookings(ctx context.Context, tenantID string, query ListQuery) ([]Booking, bool, error) {
	q := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("tenant_id = ?", tenantID)

	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !sortableColumns[sortBy] {
		return nil, false, apperror.ValidationFailed("cannot sort by %q", query.SortBy)
	}
	direction := "DESC"
	if query.Order == "asc" {
		direction = "ASC"
	}

	var bookings []Booking
	err := q.Order(sortBy + " " + direction).
		Offset(query.Offset).
		Limit(query.Limit + 1).
		Find(&bookings).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(bookings) > query.Limit
	if hasMore {
		bookings = bookings[:query.Limit]
	}
	return bookings, hasMore, nil
}

func (r *repository) GetDailyStats(ctx context.Context, tenantID string, from, to string) ([]DailyStat, error) {
	var stats []DailyStat
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	err := q.Order("date ASC").Find(&stats).Error
	return stats, err
}

// getForUpdate row-locks the booking so concurrent transitions serialize;
// the loser of two racing transitions observes the winner's terminal state.
func (r *repository) getForUpdate(tx *gorm.DB, tenantID string, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) save(tx *gorm.DB, b *Booking) error {
	if err := tx.Save(b).Error; err != nil {
		return fmt.Errorf("failed to persist booking: %w", err)
	}
	return nil
}

// freeSpot returns the spot to the available pool inside the caller's
// transaction. A dangling reference (spot row already gone) is not an error;
// the booking side is the source of truth for the release.
func (r *repository) freeSpot(tx *gorm.DB, spotID uuid.UUID) error {
	var spot spots.Spot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", spotID).
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to lock spot for release: %w", err)
	}

	spot.Free(time.Now().UTC())
	if err := tx.Save(&spot).Error; err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}
	return nil
}
