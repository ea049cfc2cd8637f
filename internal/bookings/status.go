package bookings

type Status string

const (
	StatusNew       Status = "NEW"
	StatusBooked    Status = "BOOKED"
	StatusCheckedIn Status = "CHECKED_IN"
	StatusParked    Status = "PARKED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// validTransitions is the full lifecycle state machine. Every non-terminal
// state can cancel directly; COMPLETED and CANCELLED are terminal.
// The table is static configuration, never computed at runtime.
var validTransitions = map[Status][]Status{
	StatusNew:       {StatusBooked, StatusCheckedIn, StatusCancelled},
	StatusBooked:    {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusParked, StatusCancelled},
	StatusParked:    {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid checks if the booking status is a recognized value
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// AllowedNext returns the statuses reachable from s in one transition.
func (s Status) AllowedNext() []Status {
	return validTransitions[s]
}

// CanTransitionTo reports whether the edge s -> target exists in the table.
// Self-transitions are never allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanBeCancelled checks if a booking with this status can still be cancelled
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// HoldsSpot reports whether a booking in this status may keep a spot assigned.
func (s Status) HoldsSpot() bool {
	return s == StatusCheckedIn || s == StatusParked || s == StatusActive
}
