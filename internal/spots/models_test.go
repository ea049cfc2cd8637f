package spots

import (
	"testing"
	"time"

	"spotly/internal/shared/apperror"
	"spotly/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockTimeout = 45 * time.Second

func availableSpot() *Spot {
	return &Spot{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		LocationID: uuid.New(),
		Code:       "A-12",
		Status:     SpotStatusAvailable,
	}
}

func lockedSpot(owner string, age time.Duration) *Spot {
	s := availableSpot()
	lockedAt := time.Now().UTC().Add(-age)
	s.LockOwner = owner
	s.LockedAt = &lockedAt
	return s
}

func TestCheckLockableFreeSpot(t *testing.T) {
	s := availableSpot()
	assert.NoError(t, s.CheckLockable("op-1", time.Now().UTC(), lockTimeout))
}

func TestCheckLockableForeignFreshLock(t *testing.T) {
	s := lockedSpot("op-2", 10*time.Second)

	err := s.CheckLockable("op-1", time.Now().UTC(), lockTimeout)
	require.Error(t, err)
	assert.Equal(t, apperror.KindLocked, apperror.KindOf(err))
	assert.Equal(t, "op-2", apperror.DetailsOf(err)["lock_owner"])
}

func TestCheckLockableExpiredLockTakenOver(t *testing.T) {
	// A lock older than the timeout is treated as absent, so the new caller
	// may take over without any separate steal operation.
	s := lockedSpot("op-2", lockTimeout+time.Second)
	assert.NoError(t, s.CheckLockable("op-1", time.Now().UTC(), lockTimeout))
}

func TestCheckLockableOwnLockRenewable(t *testing.T) {
	s := lockedSpot("op-1", 10*time.Second)
	assert.NoError(t, s.CheckLockable("op-1", time.Now().UTC(), lockTimeout))
}

func TestCheckLockableOccupied(t *testing.T) {
	bookingID := uuid.New()
	s := availableSpot()
	s.Occupy(bookingID, time.Now().UTC())

	err := s.CheckLockable("op-1", time.Now().UTC(), lockTimeout)
	require.Error(t, err)
	assert.Equal(t, apperror.KindOccupied, apperror.KindOf(err))
	assert.Equal(t, bookingID.String(), apperror.DetailsOf(err)["booking_ref"])
}

func TestCheckAssignableSameBookingIsNoop(t *testing.T) {
	bookingID := uuid.New()
	s := availableSpot()
	s.Occupy(bookingID, time.Now().UTC())

	assert.NoError(t, s.CheckAssignable("op-1", bookingID, time.Now().UTC(), lockTimeout))
}

func TestCheckAssignableDifferentBookingRejected(t *testing.T) {
	s := availableSpot()
	s.Occupy(uuid.New(), time.Now().UTC())

	err := s.CheckAssignable("op-1", uuid.New(), time.Now().UTC(), lockTimeout)
	require.Error(t, err)
	assert.Equal(t, apperror.KindOccupied, apperror.KindOf(err))
}

func TestCheckAssignableForeignLockRejected(t *testing.T) {
	s := lockedSpot("op-2", 5*time.Second)

	err := s.CheckAssignable("op-1", uuid.New(), time.Now().UTC(), lockTimeout)
	require.Error(t, err)
	assert.Equal(t, apperror.KindLocked, apperror.KindOf(err))
}

func TestCheckReleasable(t *testing.T) {
	cases := []struct {
		name    string
		owner   string
		actor   string
		role    users.Role
		allowed bool
	}{
		{"unlocked spot", "", "op-1", users.RoleOperator, true},
		{"own lock", "op-1", "op-1", users.RoleOperator, true},
		{"foreign lock", "op-2", "op-1", users.RoleOperator, false},
		{"foreign lock as admin", "op-2", "admin-1", users.RoleAdmin, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := availableSpot()
			if tc.owner != "" {
				now := time.Now().UTC()
				s.Lock(tc.owner, now)
			}

			err := s.CheckReleasable(tc.actor, tc.role)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, apperror.KindPermissionDenied, apperror.KindOf(err))
			}
		})
	}
}

func TestOccupyClearsLock(t *testing.T) {
	s := lockedSpot("op-1", 5*time.Second)
	bookingID := uuid.New()

	s.Occupy(bookingID, time.Now().UTC())

	assert.Equal(t, SpotStatusOccupied, s.Status)
	require.NotNil(t, s.BookingRef)
	assert.Equal(t, bookingID, *s.BookingRef)
	assert.Empty(t, s.LockOwner)
	assert.Nil(t, s.LockedAt)
}

func TestFreeResetsSpot(t *testing.T) {
	s := availableSpot()
	s.Occupy(uuid.New(), time.Now().UTC())

	s.Free(time.Now().UTC())

	assert.Equal(t, SpotStatusAvailable, s.Status)
	assert.Nil(t, s.BookingRef)
	assert.Empty(t, s.LockOwner)
}

func TestLockActive(t *testing.T) {
	s := availableSpot()
	now := time.Now().UTC()
	assert.False(t, s.LockActive(now, lockTimeout))

	s.Lock("op-1", now)
	assert.True(t, s.LockActive(now.Add(lockTimeout-time.Second), lockTimeout))
	assert.False(t, s.LockActive(now.Add(lockTimeout), lockTimeout))
}
