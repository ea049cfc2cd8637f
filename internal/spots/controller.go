package spots

import (
	"net/http"

	"spotly/internal/shared/middleware"
	"spotly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// LockSpot handles POST /api/v1/locations/:locationId/spots/:spotId/lock
func (c *Controller) LockSpot(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	spot, err := c.service.LockSpot(ctx.Request.Context(), actor, ctx.Param("locationId"), ctx.Param("spotId"))
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spot locked successfully", spot, nil)
}

// AssignSpot handles POST /api/v1/locations/:locationId/spots/:spotId/assign
func (c *Controller) AssignSpot(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	var req AssignSpotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	spot, err := c.service.AssignSpot(ctx.Request.Context(), actor, ctx.Param("locationId"), ctx.Param("spotId"), req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spot assigned successfully", spot, nil)
}

// ReleaseSpot handles POST /api/v1/locations/:locationId/spots/:spotId/release
func (c *Controller) ReleaseSpot(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	spot, err := c.service.ReleaseSpot(ctx.Request.Context(), actor, ctx.Param("locationId"), ctx.Param("spotId"))
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spot released successfully", spot, nil)
}

// CreateLocation handles POST /api/v1/locations
func (c *Controller) CreateLocation(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	var req CreateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	location, err := c.service.CreateLocation(ctx.Request.Context(), actor, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Location created successfully", location, nil)
}

// CreateSpot handles POST /api/v1/locations/:locationId/spots
func (c *Controller) CreateSpot(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	var req CreateSpotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	spot, err := c.service.CreateSpot(ctx.Request.Context(), actor, ctx.Param("locationId"), req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Spot created successfully", spot, nil)
}

// ListSpots handles GET /api/v1/locations/:locationId/spots
func (c *Controller) ListSpots(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "caller not authenticated", nil, nil)
		return
	}

	result, err := c.service.ListSpots(ctx.Request.Context(), actor, ctx.Param("locationId"))
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spots retrieved successfully", result, nil)
}
