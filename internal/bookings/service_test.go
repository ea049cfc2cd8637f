package bookings

import (
	"context"
	"encoding/json"
	"testing"

	"spotly/internal/audit"
	"spotly/internal/notifications"
	"spotly/internal/shared/apperror"
	"spotly/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository records calls and plays back canned results.
type mockRepository struct {
	createCalls     int
	transitionCalls int
	completeCalls   int

	createErr      error
	lastTransition Status

	booking *Booking
}

func (m *mockRepository) CreateBooking(_ context.Context, booking *Booking) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	booking.ID = uuid.New()
	booking.TicketNumber = int64(1000 + m.createCalls)
	return nil
}

func (m *mockRepository) TransitionBooking(_ context.Context, _ string, _ uuid.UUID, newStatus Status, actor, note string) (*Booking, error) {
	m.transitionCalls++
	m.lastTransition = newStatus
	if m.booking == nil {
		return nil, apperror.NotFound("booking not found")
	}
	if err := m.booking.ApplyTransition(newStatus, actor, note); err != nil {
		return nil, err
	}
	return m.booking, nil
}

func (m *mockRepository) CompleteBooking(_ context.Context, _ string, _ uuid.UUID, method string, amount float64, actor string) (*Booking, error) {
	m.completeCalls++
	if m.booking == nil {
		return nil, apperror.NotFound("booking not found")
	}
	if err := m.booking.ApplyCompletion(method, amount, actor); err != nil {
		return nil, err
	}
	return m.booking, nil
}

func (m *mockRepository) GetBookingByID(_ context.Context, _ string, _ uuid.UUID) (*Booking, error) {
	if m.booking == nil {
		return nil, apperror.NotFound("booking not found")
	}
	return m.booking, nil
}

func (m *mockRepository) ListBookings(_ context.Context, _ string, query ListQuery) ([]Booking, bool, error) {
	if m.booking == nil {
		return nil, false, nil
	}
	return []Booking{*m.booking}, false, nil
}

func (m *mockRepository) GetDailyStats(_ context.Context, tenantID string, _, _ string) ([]DailyStat, error) {
	return []DailyStat{{TenantID: tenantID, Date: "2026-08-27", CompletedCount: 3, TotalRevenue: 450}}, nil
}

// mockIdemStore is an in-memory stand-in for the Redis idempotency store.
type mockIdemStore struct {
	records map[string][]byte
}

func newMockIdemStore() *mockIdemStore {
	return &mockIdemStore{records: make(map[string][]byte)}
}

func (m *mockIdemStore) Check(_ context.Context, tenantID, key string, dest interface{}) (bool, error) {
	if key == "" {
		return false, nil
	}
	raw, ok := m.records[tenantID+":"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockIdemStore) Save(_ context.Context, tenantID, key string, result interface{}) error {
	if key == "" {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	m.records[tenantID+":"+key] = raw
	return nil
}

var testActor = users.Actor{ID: "op-1", Role: users.RoleOperator, TenantID: "tenant-1"}

func newTestService(repo *mockRepository, idem *mockIdemStore) Service {
	return NewService(repo, idem, audit.NopSink{}, notifications.NopProducer{})
}

func TestCreateBooking(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())

	result, err := svc.CreateBooking(context.Background(), testActor, CreateBookingRequest{
		CustomerName: "Asha Rao",
		VehiclePlate: "KA01AB1234",
	}, "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, int64(1001), result.TicketNumber)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCreateBookingIdempotentReplay(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())
	req := CreateBookingRequest{CustomerName: "Asha Rao", VehiclePlate: "KA01AB1234"}

	first, err := svc.CreateBooking(context.Background(), testActor, req, "retry-key-1")
	require.NoError(t, err)

	second, err := svc.CreateBooking(context.Background(), testActor, req, "retry-key-1")
	require.NoError(t, err)

	// Replay returns the stored result without touching the repository again.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TicketNumber, second.TicketNumber)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCreateBookingDistinctKeysAllocateSeparately(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())
	req := CreateBookingRequest{CustomerName: "Asha Rao", VehiclePlate: "KA01AB1234"}

	first, err := svc.CreateBooking(context.Background(), testActor, req, "key-a")
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), testActor, req, "key-b")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.createCalls)
}

func TestCreateBookingNoKeySkipsDedupe(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())
	req := CreateBookingRequest{CustomerName: "Asha Rao", VehiclePlate: "KA01AB1234"}

	_, err := svc.CreateBooking(context.Background(), testActor, req, "")
	require.NoError(t, err)
	_, err = svc.CreateBooking(context.Background(), testActor, req, "")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.createCalls)
}

func TestCreateBookingFailureIsNotCached(t *testing.T) {
	repo := &mockRepository{createErr: apperror.ValidationFailed("boom")}
	idem := newMockIdemStore()
	svc := newTestService(repo, idem)
	req := CreateBookingRequest{CustomerName: "Asha Rao", VehiclePlate: "KA01AB1234"}

	_, err := svc.CreateBooking(context.Background(), testActor, req, "retry-key-1")
	require.Error(t, err)
	assert.Empty(t, idem.records)

	// After the fault clears, the same key must be honored as a fresh create.
	repo.createErr = nil
	result, err := svc.CreateBooking(context.Background(), testActor, req, "retry-key-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 2, repo.createCalls)
}

func TestCancelBookingDelegatesToTransition(t *testing.T) {
	repo := &mockRepository{booking: newTestBooking(StatusBooked)}
	svc := newTestService(repo, newMockIdemStore())

	booking, err := svc.CancelBooking(context.Background(), testActor, uuid.New().String(), CancelRequest{Reason: "customer no-show"})
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, booking.Status)
	assert.Equal(t, StatusCancelled, repo.lastTransition)
	assert.Equal(t, 1, repo.transitionCalls)
}

func TestTransitionBookingInvalidID(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())

	_, err := svc.TransitionBooking(context.Background(), testActor, "not-a-uuid", TransitionRequest{Status: "BOOKED"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(err))
	assert.Equal(t, 0, repo.transitionCalls)
}

func TestCompleteBookingOnlyFromActive(t *testing.T) {
	repo := &mockRepository{booking: newTestBooking(StatusParked)}
	svc := newTestService(repo, newMockIdemStore())

	_, err := svc.CompleteBooking(context.Background(), testActor, uuid.New().String(), CompleteRequest{
		PaymentMethod: "CASH",
		PaymentAmount: 120,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestListBookingsDefaultsAndEmptyPage(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())

	page, err := svc.ListBookings(context.Background(), testActor, ListQuery{})
	require.NoError(t, err)

	assert.NotNil(t, page.Bookings)
	assert.Empty(t, page.Bookings)
	assert.False(t, page.HasMore)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestGetDailyStatsValidatesDates(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockIdemStore())

	_, err := svc.GetDailyStats(context.Background(), testActor, "27-08-2026", "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(err))

	stats, err := svc.GetDailyStats(context.Background(), testActor, "2026-08-01", "2026-08-27")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].CompletedCount)
}
