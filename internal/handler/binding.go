package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agent_shopping/internal/service"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type BindingHandler struct {
	bindingService service.BindingService
	log            logger.Logger
}

func NewBindingHandler(bindingService service.BindingService, log logger.Logger) *BindingHandler {
	return &BindingHandler{
		bindingService: bindingService,
		log:            log,
	}
}

type BindingRequest struct {
	CounterpartyID uuid.UUID `json:"counterparty_id" binding:"required"`
}

// bindingResponse содержит флаг already_bound: повторный запрос той же пары
// возвращает существующую запись как идемпотентный успех
type bindingResponse struct {
	Binding      any  `json:"binding"`
	AlreadyBound bool `json:"already_bound"`
}

func (h *BindingHandler) Request(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req BindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, already, err := h.bindingService.Request(c.Request.Context(), userID.(uuid.UUID), req.CounterpartyID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if already {
		status = http.StatusOK
	}
	c.JSON(status, bindingResponse{Binding: binding, AlreadyBound: already})
}

type DirectBindingRequest struct {
	BuyerID uuid.UUID `json:"buyer_id" binding:"required"`
}

func (h *BindingHandler) RequestDirect(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req DirectBindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, already, err := h.bindingService.RequestDirect(c.Request.Context(), userID.(uuid.UUID), req.BuyerID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if already {
		status = http.StatusOK
	}
	c.JSON(status, bindingResponse{Binding: binding, AlreadyBound: already})
}

func (h *BindingHandler) Confirm(c *gin.Context) {
	userID, _ := c.Get("user_id")

	bindingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid binding ID"})
		return
	}

	binding, already, err := h.bindingService.Confirm(c.Request.Context(), userID.(uuid.UUID), bindingID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"binding": binding, "already_confirmed": already})
}

func (h *BindingHandler) Unbind(c *gin.Context) {
	userID, _ := c.Get("user_id")

	bindingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid binding ID"})
		return
	}

	if err := h.bindingService.Unbind(c.Request.Context(), userID.(uuid.UUID), bindingID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "binding removed"})
}

func (h *BindingHandler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	bindings, err := h.bindingService.ListForUser(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bindings)
}

func (h *BindingHandler) GetByID(c *gin.Context) {
	userID, _ := c.Get("user_id")

	bindingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid binding ID"})
		return
	}

	binding, err := h.bindingService.Get(c.Request.Context(), userID.(uuid.UUID), bindingID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, binding)
}
