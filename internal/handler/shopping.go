package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agent_shopping/internal/service"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type ShoppingHandler struct {
	shoppingService service.ShoppingService
	log             logger.Logger
}

func NewShoppingHandler(shoppingService service.ShoppingService, log logger.Logger) *ShoppingHandler {
	return &ShoppingHandler{
		shoppingService: shoppingService,
		log:             log,
	}
}

type AddItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Link     *string `json:"link,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (h *ShoppingHandler) AddItem(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.shoppingService.AddItem(c.Request.Context(), userID.(uuid.UUID), req.Name, req.Link, req.Price, req.Quantity)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ShoppingHandler) ListItems(c *gin.Context) {
	userID, _ := c.Get("user_id")

	items, err := h.shoppingService.ListItems(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	userID, _ := c.Get("user_id")

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	if err := h.shoppingService.DeleteItem(c.Request.Context(), userID.(uuid.UUID), itemID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

type SaveCircleRequest struct {
	Remark  string `json:"remark"`
	Publish bool   `json:"publish"`
}

func (h *ShoppingHandler) SaveCircle(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req SaveCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circle, err := h.shoppingService.SaveCircle(c.Request.Context(), userID.(uuid.UUID), req.Remark, req.Publish)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, circle)
}

func (h *ShoppingHandler) GetCircle(c *gin.Context) {
	userID, _ := c.Get("user_id")

	circle, err := h.shoppingService.GetCircle(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, circle)
}

func (h *ShoppingHandler) ListCircles(c *gin.Context) {
	userID, _ := c.Get("user_id")

	circles, err := h.shoppingService.ListCircles(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, circles)
}
