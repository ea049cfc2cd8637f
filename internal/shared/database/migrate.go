package database

import (
	"spotly/internal/audit"
	"spotly/internal/bookings"
	"spotly/internal/spots"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&spots.Location{},
		&spots.Spot{},
		&bookings.Booking{},
		&bookings.TicketCounter{},
		&bookings.DailyStat{},
		&audit.Entry{},
	)
}
