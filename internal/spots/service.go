package spots

import (
	"context"
	"time"

	"spotly/internal/audit"
	"spotly/internal/shared/apperror"
	"spotly/internal/users"

	"github.com/google/uuid"
)

// Service interface defines the contract for spot locking and provisioning
type Service interface {
	LockSpot(ctx context.Context, actor users.Actor, locationID, spotID string) (*Spot, error)
	AssignSpot(ctx context.Context, actor users.Actor, locationID, spotID string, req AssignSpotRequest) (*Spot, error)
	ReleaseSpot(ctx context.Context, actor users.Actor, locationID, spotID string) (*Spot, error)

	CreateLocation(ctx context.Context, actor users.Actor, req CreateLocationRequest) (*Location, error)
	CreateSpot(ctx context.Context, actor users.Actor, locationID string, req CreateSpotRequest) (*Spot, error)
	ListSpots(ctx context.Context, actor users.Actor, locationID string) ([]Spot, error)
}

type service struct {
	repo    Repository
	auditor audit.Sink
}

// NewService creates a new spot service
func NewService(repo Repository, auditor audit.Sink) Service {
	return &service{repo: repo, auditor: auditor}
}

func (s *service) LockSpot(ctx context.Context, actor users.Actor, locationID, spotID string) (*Spot, error) {
	locID, sID, err := parseSpotRef(locationID, spotID)
	if err != nil {
		return nil, err
	}

	spot, err := s.repo.LockSpot(ctx, actor.TenantID, locID, sID, actor.ID)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "spot.lock", spotID, audit.Details{"code": spot.Code})
	return spot, nil
}

func (s *service) AssignSpot(ctx context.Context, actor users.Actor, locationID, spotID string, req AssignSpotRequest) (*Spot, error) {
	locID, sID, err := parseSpotRef(locationID, spotID)
	if err != nil {
		return nil, err
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperror.ValidationFailed("invalid booking ID %q", req.BookingID)
	}

	spot, err := s.repo.AssignSpot(ctx, actor.TenantID, bookingID, locID, sID, actor.ID)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "spot.assign", spotID, audit.Details{
		"code":       spot.Code,
		"booking_id": req.BookingID,
	})
	return spot, nil
}

func (s *service) ReleaseSpot(ctx context.Context, actor users.Actor, locationID, spotID string) (*Spot, error) {
	locID, sID, err := parseSpotRef(locationID, spotID)
	if err != nil {
		return nil, err
	}

	spot, err := s.repo.ReleaseSpot(ctx, actor.TenantID, locID, sID, actor.ID, actor.Role)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "spot.release", spotID, audit.Details{"code": spot.Code})
	return spot, nil
}

func (s *service) CreateLocation(ctx context.Context, actor users.Actor, req CreateLocationRequest) (*Location, error) {
	now := time.Now().UTC()
	location := &Location{
		TenantID:  actor.TenantID,
		Name:      req.Name,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, err
	}

	s.audit(actor, "location.create", location.ID.String(), audit.Details{"name": req.Name})
	return location, nil
}

func (s *service) CreateSpot(ctx context.Context, actor users.Actor, locationID string, req CreateSpotRequest) (*Spot, error) {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return nil, apperror.ValidationFailed("invalid location ID %q", locationID)
	}

	now := time.Now().UTC()
	spot := &Spot{
		TenantID:   actor.TenantID,
		LocationID: locID,
		Code:       req.Code,
		Status:     SpotStatusAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateSpot(ctx, spot); err != nil {
		return nil, err
	}

	s.audit(actor, "spot.create", spot.ID.String(), audit.Details{"code": req.Code})
	return spot, nil
}

func (s *service) ListSpots(ctx context.Context, actor users.Actor, locationID string) ([]Spot, error) {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return nil, apperror.ValidationFailed("invalid location ID %q", locationID)
	}
	result, err := s.repo.ListSpots(ctx, actor.TenantID, locID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []Spot{}
	}
	return result, nil
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

func parseSpotRef(locationID, spotID string) (uuid.UUID, uuid.UUID, error) {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.ValidationFailed("invalid location ID %q", locationID)
	}
	sID, err := uuid.Parse(spotID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.ValidationFailed("invalid spot ID %q", spotID)
	}
	return locID, sID, nil
}
