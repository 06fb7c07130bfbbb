package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type VerifyCodeRepository interface {
	Store(ctx context.Context, phone, code string, ttl time.Duration) error
	Check(ctx context.Context, phone, code string) error
	Invalidate(ctx context.Context, phone string) error
}

type verifyCodeRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewVerifyCodeRepository(redis *redis.Client, log logger.Logger) VerifyCodeRepository {
	return &verifyCodeRepository{redis: redis, log: log}
}

func codeKey(phone string) string {
	return "verify:" + phone
}

func (r *verifyCodeRepository) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := r.redis.Set(ctx, codeKey(phone), code, ttl).Err(); err != nil {
		r.log.Error("Failed to store verification code", "error", err, "phone", phone)
		return err
	}
	return nil
}

func (r *verifyCodeRepository) Check(ctx context.Context, phone, code string) error {
	stored, err := r.redis.Get(ctx, codeKey(phone)).Result()
	if err == redis.Nil {
		return apperrors.ErrInvalidCode
	}
	if err != nil {
		r.log.Error("Failed to check verification code", "error", err, "phone", phone)
		return err
	}
	if stored != code {
		return apperrors.ErrInvalidCode
	}
	return nil
}

func (r *verifyCodeRepository) Invalidate(ctx context.Context, phone string) error {
	return r.redis.Del(ctx, codeKey(phone)).Err()
}
