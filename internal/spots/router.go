package spots

import (
	"spotly/internal/shared/config"
	"spotly/internal/shared/middleware"
	"spotly/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupSpotRoutes configures location and spot routes. Extra middleware
// (rate limiting) runs after authentication so it can key on the caller.
func SetupSpotRoutes(rg *gin.RouterGroup, cfg *config.Config, controller *Controller, extra ...gin.HandlerFunc) {
	locations := rg.Group("/locations")
	locations.Use(middleware.JWTAuthWithConfig(cfg))
	locations.Use(extra...)
	{
		locations.POST("", middleware.RequireCapability(users.CapSpotProvision), controller.CreateLocation)
		locations.POST("/:locationId/spots", middleware.RequireCapability(users.CapSpotProvision), controller.CreateSpot)
		locations.GET("/:locationId/spots", middleware.RequireCapability(users.CapBookingList), controller.ListSpots)

		locations.POST("/:locationId/spots/:spotId/lock", middleware.RequireCapability(users.CapSpotLock), controller.LockSpot)
		locations.POST("/:locationId/spots/:spotId/assign", middleware.RequireCapability(users.CapSpotAssign), controller.AssignSpot)
		locations.POST("/:locationId/spots/:spotId/release", middleware.RequireCapability(users.CapSpotRelease), controller.ReleaseSpot)
	}
}
