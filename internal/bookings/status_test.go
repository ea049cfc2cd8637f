package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusBooked, StatusCheckedIn, StatusParked, StatusActive, StatusCompleted, StatusCancelled} {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, Status("PENDING").IsValid())
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("new").IsValid())
}

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusNew, StatusBooked, StatusCheckedIn, StatusParked, StatusActive, StatusCompleted, StatusCancelled}

	// Full expected edge set; everything else must be rejected.
	allowed := map[Status]map[Status]bool{
		StatusNew:       {StatusBooked: true, StatusCheckedIn: true, StatusCancelled: true},
		StatusBooked:    {StatusCheckedIn: true, StatusCancelled: true},
		StatusCheckedIn: {StatusParked: true, StatusCancelled: true},
		StatusParked:    {StatusActive: true, StatusCancelled: true},
		StatusActive:    {StatusCompleted: true, StatusCancelled: true},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestStatusSelfTransitionRejected(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusBooked, StatusCheckedIn, StatusParked, StatusActive, StatusCompleted, StatusCancelled} {
		assert.False(t, s.CanTransitionTo(s), "self transition on %s", s)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	for _, s := range []Status{StatusNew, StatusBooked, StatusCheckedIn, StatusParked, StatusActive} {
		assert.False(t, s.IsTerminal(), "expected %s to be non-terminal", s)
	}
}

func TestStatusCanBeCancelled(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusBooked, StatusCheckedIn, StatusParked, StatusActive} {
		assert.True(t, s.CanBeCancelled(), "expected %s to be cancellable", s)
	}
	assert.False(t, StatusCompleted.CanBeCancelled())
	assert.False(t, StatusCancelled.CanBeCancelled())
}

func TestStatusHoldsSpot(t *testing.T) {
	assert.True(t, StatusCheckedIn.HoldsSpot())
	assert.True(t, StatusParked.HoldsSpot())
	assert.True(t, StatusActive.HoldsSpot())

	for _, s := range []Status{StatusNew, StatusBooked, StatusCompleted, StatusCancelled} {
		assert.False(t, s.HoldsSpot(), "expected %s to not hold a spot", s)
	}
}
