package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"agent_shopping/internal/service"
	"agent_shopping/internal/ws"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	hub         *ws.Hub
	authService service.AuthService
	chatService service.ChatService
	log         logger.Logger
}

func NewWebSocketHandler(hub *ws.Hub, authService service.AuthService, chatService service.ChatService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		chatService: chatService,
		log:         log,
	}
}

// HandleChat поднимает websocket-соединение чат-комнаты привязки.
// Токен передаётся query-параметром: браузер не выставляет заголовок
// Authorization при upgrade.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	roomID := c.Param("id")

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	// Допуск проверяется по живому состоянию привязки до входа в комнату
	if err := h.chatService.Authorize(c.Request.Context(), roomID, user.ID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err, "room_id", roomID)
		return
	}

	client := ws.NewClient(h.hub, h.chatService, conn, roomID, user.ID, user.Username, h.log)
	if !h.hub.Join(roomID, user.Username, client) {
		// Комната закрыта между авторизацией и входом
		_ = conn.Close()
		return
	}

	client.Run(c.Request.Context())
}
