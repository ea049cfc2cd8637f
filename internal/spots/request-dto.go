package spots

// CreateLocationRequest provisions a new location.
type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=120"`
	Address string `json:"address" binding:"omitempty,max=255"`
}

// CreateSpotRequest provisions a new spot inside a location.
type CreateSpotRequest struct {
	Code string `json:"code" binding:"required,min=1,max=16"`
}

// AssignSpotRequest binds a spot to a booking.
type AssignSpotRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}
