package bookings

// CreateBookingResponse is the result of a successful (or deduplicated)
// creation; this exact value is what the idempotency cache replays.
type CreateBookingResponse struct {
	ID           string `json:"id"`
	TicketNumber int64  `json:"ticket_number"`
}

// ListBookingsResponse is one page of bookings.
type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	HasMore  bool      `json:"has_more"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
