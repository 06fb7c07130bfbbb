package service

import (
	"context"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/repository"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	// ChooseRole — одноразовый выбор роли после регистрации
	ChooseRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ChooseRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	if role != domain.RoleAgent && role != domain.RoleBuyer {
		return nil, apperrors.ErrBadRequest
	}

	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}

	s.log.Info("User role selected", "user_id", userID, "role", role)
	return s.GetMe(ctx, userID)
}
