package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agent_shopping/internal/service"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

// GetHistory возвращает все сообщения комнаты по возрастанию времени
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomID := c.Param("id")

	messages, err := h.chatService.History(c.Request.Context(), roomID, userID.(uuid.UUID))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}
