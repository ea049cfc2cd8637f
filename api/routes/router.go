// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"spotly/internal/audit"
	"spotly/internal/bookings"
	"spotly/internal/idempotency"
	"spotly/internal/notifications"
	"spotly/internal/shared/config"
	"spotly/internal/shared/database"
	"spotly/internal/spots"
	"spotly/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.Producer
	limiter  gin.HandlerFunc
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// SetRateLimiter installs the per-caller rate limit middleware. It runs
// inside the authenticated route groups, after JWT auth.
func (r *Router) SetRateLimiter(limiter gin.HandlerFunc) {
	r.limiter = limiter
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupBookingRoutes(api)
		r.setupSpotRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "spotly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "spotly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupBookingRoutes configures booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	cacheService := cache.NewService(r.db.GetRedisClient())
	idemStore := idempotency.NewStore(cacheService, r.config.Redis.IdempotencyTTL)
	auditor := audit.NewGormSink(r.db.GetPostgreSQL())

	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL(), r.config.Booking.TicketShards)
	bookingService := bookings.NewService(bookingRepo, idemStore, auditor, r.notifier)
	bookingController := bookings.NewController(bookingService)

	bookings.SetupBookingRoutes(rg, r.config, bookingController, r.extraMiddleware()...)
}

// setupSpotRoutes configures location and spot routes
func (r *Router) setupSpotRoutes(rg *gin.RouterGroup) {
	auditor := audit.NewGormSink(r.db.GetPostgreSQL())

	spotRepo := spots.NewRepository(r.db.GetPostgreSQL(), r.config.Spot.LockTimeout)
	spotService := spots.NewService(spotRepo, auditor)
	spotController := spots.NewController(spotService)

	spots.SetupSpotRoutes(rg, r.config, spotController, r.extraMiddleware()...)
}

func (r *Router) extraMiddleware() []gin.HandlerFunc {
	if r.limiter == nil {
		return nil
	}
	return []gin.HandlerFunc{r.limiter}
}
