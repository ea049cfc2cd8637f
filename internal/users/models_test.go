package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleOperator.IsValid())
	assert.True(t, RoleViewer.IsValid())
	assert.False(t, Role("SUPERUSER").IsValid())
	assert.False(t, Role("admin").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestHasCapability(t *testing.T) {
	cases := []struct {
		role    Role
		cap     Capability
		allowed bool
	}{
		{RoleAdmin, CapBookingCreate, true},
		{RoleOperator, CapBookingCreate, true},
		{RoleViewer, CapBookingCreate, false},

		{RoleViewer, CapBookingList, true},
		{RoleViewer, CapBookingCancel, false},

		{RoleAdmin, CapSpotProvision, true},
		{RoleOperator, CapSpotProvision, false},

		{RoleAdmin, CapStatsRead, true},
		{RoleViewer, CapStatsRead, true},
		{RoleOperator, CapStatsRead, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, HasCapability(tc.role, tc.cap),
			"role %s capability %s", tc.role, tc.cap)
	}
}

func TestHasCapabilityUnknownInputs(t *testing.T) {
	assert.False(t, HasCapability(Role("GHOST"), CapBookingCreate))
	assert.False(t, HasCapability(RoleAdmin, Capability("booking:unknown")))
}
