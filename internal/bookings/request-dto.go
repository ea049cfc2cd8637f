package bookings

// CreateBookingRequest is the payload for creating a new booking. All
// constraints are enforced by binding before any transaction begins.
type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required,min=1,max=120"`
	CustomerPhone string `json:"customer_phone" binding:"omitempty,max=32"`
	VehiclePlate  string `json:"vehicle_plate" binding:"required,min=2,max=20"`
}

// TransitionRequest moves a booking to a new lifecycle status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=NEW BOOKED CHECKED_IN PARKED ACTIVE COMPLETED CANCELLED"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// CompleteRequest captures payment while completing a booking.
type CompleteRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=CASH CARD UPI"`
	PaymentAmount float64 `json:"payment_amount" binding:"required,gt=0,lte=100000"`
}

// CancelRequest cancels a booking with an optional reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ListQuery holds list filters and pagination, bound from query params.
type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=NEW BOOKED CHECKED_IN PARKED ACTIVE COMPLETED CANCELLED"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=created_at updated_at ticket_number"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}
