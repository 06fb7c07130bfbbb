package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/repository"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type TripService interface {
	Save(ctx context.Context, userID uuid.UUID, travelAt time.Time, location, itinerary string) (*domain.AgentTrip, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.AgentTrip, error)
	Publish(ctx context.Context, userID uuid.UUID) error
	// Delete удаляет маршрут и разрывает все привязки закупщика,
	// закрывая их чат-комнаты
	Delete(ctx context.Context, userID uuid.UUID) (int, error)
	ListPublished(ctx context.Context) ([]*domain.AgentTrip, error)
}

type tripService struct {
	tripRepo repository.TripRepository
	userRepo repository.UserRepository
	bindings BindingService
	log      logger.Logger
}

func NewTripService(tripRepo repository.TripRepository, userRepo repository.UserRepository, bindings BindingService, log logger.Logger) TripService {
	return &tripService{
		tripRepo: tripRepo,
		userRepo: userRepo,
		bindings: bindings,
		log:      log,
	}
}

func (s *tripService) requireAgent(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAgent() {
		return apperrors.ErrRoleViolation
	}
	return nil
}

func (s *tripService) Save(ctx context.Context, userID uuid.UUID, travelAt time.Time, location, itinerary string) (*domain.AgentTrip, error) {
	if err := s.requireAgent(ctx, userID); err != nil {
		return nil, err
	}
	if travelAt.IsZero() || location == "" {
		return nil, apperrors.ErrBadRequest
	}

	trip := &domain.AgentTrip{
		ID:        uuid.New(),
		UserID:    userID,
		TravelAt:  travelAt,
		Location:  location,
		Itinerary: itinerary,
	}

	if err := s.tripRepo.Upsert(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

func (s *tripService) Get(ctx context.Context, userID uuid.UUID) (*domain.AgentTrip, error) {
	if err := s.requireAgent(ctx, userID); err != nil {
		return nil, err
	}
	return s.tripRepo.GetByUserID(ctx, userID)
}

func (s *tripService) Publish(ctx context.Context, userID uuid.UUID) error {
	if err := s.requireAgent(ctx, userID); err != nil {
		return err
	}
	return s.tripRepo.SetPublished(ctx, userID, true)
}

func (s *tripService) Delete(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := s.requireAgent(ctx, userID); err != nil {
		return 0, err
	}

	if err := s.tripRepo.Delete(ctx, userID); err != nil {
		return 0, err
	}

	removed, err := s.bindings.UnbindAllForAgent(ctx, userID)
	if err != nil {
		s.log.Error("Failed to unbind after trip deletion", "error", err, "user_id", userID)
		return removed, err
	}

	s.log.Info("Trip deleted", "user_id", userID, "bindings_removed", removed)
	return removed, nil
}

func (s *tripService) ListPublished(ctx context.Context) ([]*domain.AgentTrip, error) {
	return s.tripRepo.ListPublished(ctx)
}
