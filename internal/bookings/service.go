package bookings

import (
	"context"
	"log/slog"
	"time"

	"spotly/internal/audit"
	"spotly/internal/idempotency"
	"spotly/internal/notifications"
	"spotly/internal/shared/apperror"
	"spotly/internal/users"
	"spotly/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for the booking lifecycle
type Service interface {
	CreateBooking(ctx context.Context, actor users.Actor, req CreateBookingRequest, idempotencyKey string) (*CreateBookingResponse, error)
	TransitionBooking(ctx context.Context, actor users.Actor, bookingID string, req TransitionRequest) (*Booking, error)
	CompleteBooking(ctx context.Context, actor users.Actor, bookingID string, req CompleteRequest) (*Booking, error)
	CancelBooking(ctx context.Context, actor users.Actor, bookingID string, req CancelRequest) (*Booking, error)
	GetBooking(ctx context.Context, actor users.Actor, bookingID string) (*Booking, error)
	ListBookings(ctx context.Context, actor users.Actor, query ListQuery) (*ListBookingsResponse, error)
	GetDailyStats(ctx context.Context, actor users.Actor, from, to string) ([]DailyStat, error)
}

type service struct {
	repo     Repository
	idem     idempotency.Store
	auditor  audit.Sink
	notifier notifications.Producer
	logger   *logger.Logger
}

// NewService creates a new booking lifecycle service
func NewService(repo Repository, idem idempotency.Store, auditor audit.Sink, notifier notifications.Producer) Service {
	return &service{
		repo:     repo,
		idem:     idem,
		auditor:  auditor,
		notifier: notifier,
		logger:   logger.GetDefault(),
	}
}

// CreateBooking creates a new booking with status NEW.
//
// The idempotency check runs outside the creation transaction, so two
// duplicate submissions racing through the tiny check-then-allocate window
// can each burn a ticket number. That bounded, rare cost is accepted in
// exchange for keeping the counter shards out of the idempotency path; a
// global lock here would defeat the sharding entirely.
func (s *service) CreateBooking(ctx context.Context, actor users.Actor, req CreateBookingRequest, idempotencyKey string) (*CreateBookingResponse, error) {
	if idempotencyKey != "" {
		var cached CreateBookingResponse
		hit, err := s.idem.Check(ctx, actor.TenantID, idempotencyKey, &cached)
		if err != nil {
			// Best-effort: a broken cache must not block creation.
			s.logger.Warn("idempotency check failed",
				slog.String("tenant_id", actor.TenantID), slog.Any("error", err))
		} else if hit {
			return &cached, nil
		}
	}

	now := time.Now().UTC()
	booking := &Booking{
		TenantID:      actor.TenantID,
		Status:        StatusNew,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		VehiclePlate:  req.VehiclePlate,
		PaymentStatus: PaymentStatusPending,
		History: HistoryEntries{{
			Status:    StatusNew,
			Timestamp: now,
			Actor:     actor.ID,
			Note:      "booking created",
		}},
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	result := &CreateBookingResponse{
		ID:           booking.ID.String(),
		TicketNumber: booking.TicketNumber,
	}

	// Cache only after the transaction committed, so a replayed key can
	// never point at a booking that was rolled back.
	if idempotencyKey != "" {
		if err := s.idem.Save(ctx, actor.TenantID, idempotencyKey, result); err != nil {
			s.logger.Warn("idempotency save failed",
				slog.String("tenant_id", actor.TenantID), slog.Any("error", err))
		}
	}

	s.audit(actor, "booking.create", booking.ID.String(), audit.Details{
		"ticket_number": booking.TicketNumber,
		"vehicle_plate": booking.VehiclePlate,
	})
	s.notify(booking, "booking created")

	return result, nil
}

// TransitionBooking moves a booking along the state machine.
func (s *service) TransitionBooking(ctx context.Context, actor users.Actor, bookingID string, req TransitionRequest) (*Booking, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.TransitionBooking(ctx, actor.TenantID, id, Status(req.Status), actor.ID, req.Note)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "booking.transition", bookingID, audit.Details{
		"new_status": booking.Status,
		"note":       req.Note,
	})
	s.notify(booking, req.Note)
	return booking, nil
}

// CompleteBooking captures payment and finishes the booking.
func (s *service) CompleteBooking(ctx context.Context, actor users.Actor, bookingID string, req CompleteRequest) (*Booking, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.CompleteBooking(ctx, actor.TenantID, id, req.PaymentMethod, req.PaymentAmount, actor.ID)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "booking.complete", bookingID, audit.Details{
		"payment_method": req.PaymentMethod,
		"payment_amount": req.PaymentAmount,
	})
	s.notify(booking, "booking completed")
	return booking, nil
}

// CancelBooking is the named cancellation entry point; it shares every
// invariant with a generic transition to CANCELLED.
func (s *service) CancelBooking(ctx context.Context, actor users.Actor, bookingID string, req CancelRequest) (*Booking, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.TransitionBooking(ctx, actor.TenantID, id, StatusCancelled, actor.ID, req.Reason)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "booking.cancel", bookingID, audit.Details{"reason": req.Reason})
	s.notify(booking, req.Reason)
	return booking, nil
}

// GetBooking retrieves a single booking within the caller's tenant.
func (s *service) GetBooking(ctx context.Context, actor users.Actor, bookingID string) (*Booking, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookingByID(ctx, actor.TenantID, id)
}

// ListBookings returns one page plus a has-more flag.
func (s *service) ListBookings(ctx context.Context, actor users.Actor, query ListQuery) (*ListBookingsResponse, error) {
	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	bookings, hasMore, err := s.repo.ListBookings(ctx, actor.TenantID, query)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []Booking{}
	}

	return &ListBookingsResponse{
		Bookings: bookings,
		HasMore:  hasMore,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}, nil
}

// GetDailyStats reads the per-day completion aggregates.
func (s *service) GetDailyStats(ctx context.Context, actor users.Actor, from, to string) ([]DailyStat, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, apperror.ValidationFailed("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	return s.repo.GetDailyStats(ctx, actor.TenantID, from, to)
}

func (s *service) audit(actor users.Actor, action, resource string, details audit.Details) {
	s.auditor.Append(actor.TenantID, audit.Entry{
		Actor:         actor.ID,
		Action:        action,
		Resource:      resource,
		CorrelationID: uuid.New().String(),
		Details:       details,
	})
}

// notify publishes fire-and-forget; a failed publish is logged and swallowed
// so it can never convert a committed mutation into a caller-visible failure.
func (s *service) notify(booking *Booking, note string) {
	event := &notifications.BookingEvent{
		TenantID:      booking.TenantID,
		BookingID:     booking.ID.String(),
		TicketNumber:  booking.TicketNumber,
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		Status:        booking.Status.String(),
		Note:          note,
		OccurredAt:    time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.PublishBookingEvent(ctx, event); err != nil {
			s.logger.Warn("booking notification failed",
				slog.String("booking_id", event.BookingID),
				slog.String("status", event.Status),
				slog.Any("error", err),
			)
		}
	}()
}

func parseBookingID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ValidationFailed("invalid booking ID %q", raw)
	}
	return id, nil
}
