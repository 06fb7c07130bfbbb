package service

import (
	"agent_shopping/internal/config"
	"agent_shopping/internal/repository"
	"agent_shopping/pkg/logger"
)

// RoomHub — живой реестр чат-комнат (internal/ws.Hub)
type RoomHub interface {
	Broadcaster
	RoomEvictor
}

type Services struct {
	Auth      AuthService
	User      UserService
	Binding   BindingService
	Chat      ChatService
	Trip      TripService
	Shopping  ShoppingService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, rooms RoomHub, log logger.Logger) *Services {
	sms := NewLogSMSSender(log)

	binding := NewBindingService(repos.Binding, repos.User, rooms, log)

	return &Services{
		Auth:      NewAuthService(repos.User, repos.VerifyCode, sms, cfg.JWT, cfg.SMS, log),
		User:      NewUserService(repos.User, log),
		Binding:   binding,
		Chat:      NewChatService(repos.Chat, repos.User, binding, rooms, log),
		Trip:      NewTripService(repos.Trip, repos.User, binding, log),
		Shopping:  NewShoppingService(repos.Shopping, repos.User, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
