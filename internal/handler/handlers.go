package handler

import (
	"agent_shopping/internal/config"
	"agent_shopping/internal/service"
	"agent_shopping/internal/ws"
	"agent_shopping/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Binding   *BindingHandler
	Chat      *ChatHandler
	Trip      *TripHandler
	Shopping  *ShoppingHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *ws.Hub, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		User:      NewUserHandler(services.User, log),
		Binding:   NewBindingHandler(services.Binding, log),
		Chat:      NewChatHandler(services.Chat, log),
		Trip:      NewTripHandler(services.Trip, log),
		Shopping:  NewShoppingHandler(services.Shopping, log),
		WebSocket: NewWebSocketHandler(hub, services.Auth, services.Chat, log),
	}
}
