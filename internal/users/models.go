package users

// Role is the closed set of caller roles the API recognizes. Tokens carrying
// anything else are rejected at the boundary; operator identities themselves
// live in the external auth provider.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// IsValid checks if the role is a recognized value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Capability names one operation the API exposes. Authorization is a static
// capability -> roles table checked once in middleware, never inside services.
type Capability string

const (
	CapBookingCreate     Capability = "booking:create"
	CapBookingTransition Capability = "booking:transition"
	CapBookingComplete   Capability = "booking:complete"
	CapBookingCancel     Capability = "booking:cancel"
	CapBookingList       Capability = "booking:list"
	CapSpotLock          Capability = "spot:lock"
	CapSpotAssign        Capability = "spot:assign"
	CapSpotRelease       Capability = "spot:release"
	CapSpotProvision     Capability = "spot:provision"
	CapStatsRead         Capability = "stats:read"
)

var capabilityRoles = map[Capability][]Role{
	CapBookingCreate:     {RoleAdmin, RoleOperator},
	CapBookingTransition: {RoleAdmin, RoleOperator},
	CapBookingComplete:   {RoleAdmin, RoleOperator},
	CapBookingCancel:     {RoleAdmin, RoleOperator},
	CapBookingList:       {RoleAdmin, RoleOperator, RoleViewer},
	CapSpotLock:          {RoleAdmin, RoleOperator},
	CapSpotAssign:        {RoleAdmin, RoleOperator},
	CapSpotRelease:       {RoleAdmin, RoleOperator},
	CapSpotProvision:     {RoleAdmin},
	CapStatsRead:         {RoleAdmin, RoleViewer},
}

// HasCapability reports whether the role may perform the operation.
func HasCapability(role Role, cap Capability) bool {
	for _, allowed := range capabilityRoles[cap] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as supplied by the auth middleware.
// The core trusts these values unconditionally; issuing and verifying the
// token is the auth provider's job.
type Actor struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id"`
}
