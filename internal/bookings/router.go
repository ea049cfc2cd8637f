package bookings

import (
	"spotly/internal/shared/config"
	"spotly/internal/shared/middleware"
	"spotly/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes. Extra
// middleware (rate limiting) runs after authentication so it can key on
// the caller.
func SetupBookingRoutes(rg *gin.RouterGroup, cfg *config.Config, controller *Controller, extra ...gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg))
	bookings.Use(extra...)
	{
		bookings.POST("", middleware.RequireCapability(users.CapBookingCreate), controller.CreateBooking)
		bookings.GET("", middleware.RequireCapability(users.CapBookingList), controller.ListBookings)
		bookings.GET("/stats/daily", middleware.RequireCapability(users.CapStatsRead), controller.GetDailyStats)
		bookings.GET("/:id", middleware.RequireCapability(users.CapBookingList), controller.GetBooking)
		bookings.POST("/:id/transition", middleware.RequireCapability(users.CapBookingTransition), controller.TransitionBooking)
		bookings.POST("/:id/complete", middleware.RequireCapability(users.CapBookingComplete), controller.CompleteBooking)
		bookings.POST("/:id/cancel", middleware.RequireCapability(users.CapBookingCancel), controller.CancelBooking)
	}
}
