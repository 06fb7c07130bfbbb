package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agent_shopping/internal/service"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type TripHandler struct {
	tripService service.TripService
	log         logger.Logger
}

func NewTripHandler(tripService service.TripService, log logger.Logger) *TripHandler {
	return &TripHandler{
		tripService: tripService,
		log:         log,
	}
}

type SaveTripRequest struct {
	TravelAt  time.Time `json:"travel_at" binding:"required"`
	Location  string    `json:"location" binding:"required"`
	Itinerary string    `json:"itinerary"`
}

func (h *TripHandler) Save(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Save(c.Request.Context(), userID.(uuid.UUID), req.TravelAt, req.Location, req.Itinerary)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) GetMine(c *gin.Context) {
	userID, _ := c.Get("user_id")

	trip, err := h.tripService.Get(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) Publish(c *gin.Context) {
	userID, _ := c.Get("user_id")

	if err := h.tripService.Publish(c.Request.Context(), userID.(uuid.UUID)); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "trip published"})
}

func (h *TripHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("user_id")

	removed, err := h.tripService.Delete(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "trip deleted", "bindings_removed": removed})
}

func (h *TripHandler) ListPublished(c *gin.Context) {
	trips, err := h.tripService.ListPublished(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trips)
}
