package service

import (
	"context"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/repository"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type ShoppingService interface {
	AddItem(ctx context.Context, userID uuid.UUID, name string, link *string, price float64, quantity int) (*domain.ShoppingItem, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	SaveCircle(ctx context.Context, userID uuid.UUID, remark string, publish bool) (*domain.ShoppingCircle, error)
	GetCircle(ctx context.Context, userID uuid.UUID) (*domain.ShoppingCircle, error)
	// ListCircles — витрина для закупщиков: опубликованные круги
	// покупателей, ещё не связанных ни с одним закупщиком
	ListCircles(ctx context.Context, viewerID uuid.UUID) ([]*domain.ShoppingCircle, error)
}

type shoppingService struct {
	shoppingRepo repository.ShoppingRepository
	userRepo     repository.UserRepository
	log          logger.Logger
}

func NewShoppingService(shoppingRepo repository.ShoppingRepository, userRepo repository.UserRepository, log logger.Logger) ShoppingService {
	return &shoppingService{
		shoppingRepo: shoppingRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

func (s *shoppingService) requireBuyer(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsBuyer() {
		return apperrors.ErrRoleViolation
	}
	return nil
}

func (s *shoppingService) AddItem(ctx context.Context, userID uuid.UUID, name string, link *string, price float64, quantity int) (*domain.ShoppingItem, error) {
	if err := s.requireBuyer(ctx, userID); err != nil {
		return nil, err
	}
	if name == "" || price < 0 || quantity < 1 {
		return nil, apperrors.ErrBadRequest
	}

	item := &domain.ShoppingItem{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Link:     link,
		Price:    price,
		Quantity: quantity,
	}

	if err := s.shoppingRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *shoppingService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingItem, error) {
	return s.shoppingRepo.ListItems(ctx, userID)
}

func (s *shoppingService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.shoppingRepo.DeleteItem(ctx, itemID, userID)
}

func (s *shoppingService) SaveCircle(ctx context.Context, userID uuid.UUID, remark string, publish bool) (*domain.ShoppingCircle, error) {
	if err := s.requireBuyer(ctx, userID); err != nil {
		return nil, err
	}

	circle := &domain.ShoppingCircle{
		UserID:      userID,
		Remark:      remark,
		IsPublished: publish,
	}

	if err := s.shoppingRepo.UpsertCircle(ctx, circle); err != nil {
		return nil, err
	}

	return circle, nil
}

func (s *shoppingService) GetCircle(ctx context.Context, userID uuid.UUID) (*domain.ShoppingCircle, error) {
	return s.shoppingRepo.GetCircle(ctx, userID)
}

func (s *shoppingService) ListCircles(ctx context.Context, viewerID uuid.UUID) ([]*domain.ShoppingCircle, error) {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAgent() {
		return nil, apperrors.ErrRoleViolation
	}

	return s.shoppingRepo.ListUnboundCircles(ctx)
}
