package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agent_shopping/pkg/logger"
)

type Repositories struct {
	User       UserRepository
	Binding    BindingRepository
	Chat       ChatRepository
	Trip       TripRepository
	Shopping   ShoppingRepository
	VerifyCode VerifyCodeRepository
	RateLimit  RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db, log),
		Binding:    NewBindingRepository(db, log),
		Chat:       NewChatRepository(db, log),
		Trip:       NewTripRepository(db, log),
		Shopping:   NewShoppingRepository(db, log),
		VerifyCode: NewVerifyCodeRepository(redis, log),
		RateLimit:  NewRateLimitRepository(redis, log),
	}
}
