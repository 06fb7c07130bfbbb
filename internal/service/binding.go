package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/repository"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

// RoomEvictor закрывает чат-комнату после удаления привязки
type RoomEvictor interface {
	Evict(roomID string)
}

type BindingService interface {
	// Request создаёт привязку в статусе pending. Направление определяется
	// ролью инициатора: закупщик привязывает покупателя и наоборот.
	// Если пара уже связана, возвращается существующая запись и true.
	Request(ctx context.Context, initiatorID, counterpartyID uuid.UUID) (*domain.Binding, bool, error)
	// RequestDirect — путь «связаться без подтверждения»: закупщик создаёт
	// привязку сразу в статусе confirmed
	RequestDirect(ctx context.Context, agentID, buyerID uuid.UUID) (*domain.Binding, bool, error)
	// Confirm переводит pending в confirmed; повторный вызов сообщает
	// об уже подтверждённой привязке без ошибки
	Confirm(ctx context.Context, actorID, bindingID uuid.UUID) (*domain.Binding, bool, error)
	// Unbind удаляет привязку независимо от статуса и закрывает её комнату
	Unbind(ctx context.Context, actorID, bindingID uuid.UUID) error
	// UnbindAllForAgent разрывает все привязки закупщика (удаление маршрута)
	UnbindAllForAgent(ctx context.Context, agentID uuid.UUID) (int, error)
	Get(ctx context.Context, actorID, bindingID uuid.UUID) (*domain.Binding, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Binding, error)
	// IsAuthorized — единственная точка допуска в чат-комнату: привязка
	// существует и пользователь является её стороной. Всегда читает живое
	// состояние хранилища, без кэша.
	IsAuthorized(ctx context.Context, userID uuid.UUID, roomID string) (bool, error)
}

type bindingService struct {
	bindingRepo repository.BindingRepository
	userRepo    repository.UserRepository
	rooms       RoomEvictor
	log         logger.Logger
}

func NewBindingService(bindingRepo repository.BindingRepository, userRepo repository.UserRepository, rooms RoomEvictor, log logger.Logger) BindingService {
	return &bindingService{
		bindingRepo: bindingRepo,
		userRepo:    userRepo,
		rooms:       rooms,
		log:         log,
	}
}

func (s *bindingService) Request(ctx context.Context, initiatorID, counterpartyID uuid.UUID) (*domain.Binding, bool, error) {
	initiator, err := s.userRepo.GetByID(ctx, initiatorID)
	if err != nil {
		return nil, false, err
	}
	if initiator.Role == nil {
		return nil, false, apperrors.ErrRoleViolation
	}

	var buyerID, agentID uuid.UUID
	var wantRole string
	if initiator.IsAgent() {
		agentID, buyerID = initiatorID, counterpartyID
		wantRole = domain.RoleBuyer
	} else {
		buyerID, agentID = initiatorID, counterpartyID
		wantRole = domain.RoleAgent
	}

	if err := s.checkCounterparty(ctx, initiatorID, counterpartyID, wantRole); err != nil {
		return nil, false, err
	}

	return s.create(ctx, buyerID, agentID, domain.BindingStatusPending)
}

func (s *bindingService) RequestDirect(ctx context.Context, agentID, buyerID uuid.UUID) (*domain.Binding, bool, error) {
	agent, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, false, err
	}
	if !agent.IsAgent() {
		return nil, false, apperrors.ErrRoleViolation
	}

	if err := s.checkCounterparty(ctx, agentID, buyerID, domain.RoleBuyer); err != nil {
		return nil, false, err
	}

	return s.create(ctx, buyerID, agentID, domain.BindingStatusConfirmed)
}

func (s *bindingService) checkCounterparty(ctx context.Context, initiatorID, counterpartyID uuid.UUID, wantRole string) error {
	if counterpartyID == initiatorID {
		return apperrors.ErrInvalidCounterparty
	}

	counterparty, err := s.userRepo.GetByID(ctx, counterpartyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidCounterparty
		}
		return err
	}
	if counterparty.Role == nil || *counterparty.Role != wantRole {
		return apperrors.ErrInvalidCounterparty
	}

	return nil
}

func (s *bindingService) create(ctx context.Context, buyerID, agentID uuid.UUID, status string) (*domain.Binding, bool, error) {
	existing, err := s.bindingRepo.Find(ctx, buyerID, agentID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	binding := &domain.Binding{
		ID:      uuid.New(),
		BuyerID: buyerID,
		AgentID: agentID,
		Status:  status,
	}

	err = s.bindingRepo.Create(ctx, binding)
	if errors.Is(err, apperrors.ErrAlreadyBound) {
		// Проиграли гонку конкурентному запросу той же пары: ограничение
		// уникальности гарантирует, что победитель ровно один
		existing, findErr := s.bindingRepo.Find(ctx, buyerID, agentID)
		if findErr != nil || existing == nil {
			return nil, false, apperrors.ErrAlreadyBound
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create binding: %w", err)
	}

	s.log.Info("Binding created", "binding_id", binding.ID, "buyer_id", buyerID, "agent_id", agentID, "status", status)
	return binding, false, nil
}

func (s *bindingService) Confirm(ctx context.Context, actorID, bindingID uuid.UUID) (*domain.Binding, bool, error) {
	binding, err := s.bindingRepo.GetByID(ctx, bindingID)
	if err != nil {
		return nil, false, err
	}
	if !binding.HasParty(actorID) {
		return nil, false, apperrors.ErrForbidden
	}
	if binding.Status == domain.BindingStatusConfirmed {
		return binding, true, nil
	}

	if err := s.bindingRepo.SetStatus(ctx, bindingID, domain.BindingStatusConfirmed); err != nil {
		return nil, false, err
	}
	binding.Status = domain.BindingStatusConfirmed

	s.log.Info("Binding confirmed", "binding_id", bindingID, "actor_id", actorID)
	return binding, false, nil
}

func (s *bindingService) Unbind(ctx context.Context, actorID, bindingID uuid.UUID) error {
	binding, err := s.bindingRepo.GetByID(ctx, bindingID)
	if err != nil {
		return err
	}
	if !binding.HasParty(actorID) {
		return apperrors.ErrForbidden
	}

	// Жёсткое удаление записи; история чата остаётся в хранилище,
	// но становится недоступной через API
	if err := s.bindingRepo.Delete(ctx, bindingID); err != nil && !errors.Is(err, apperrors.ErrBindingNotFound) {
		return err
	}

	s.rooms.Evict(binding.RoomID())
	s.log.Info("Binding removed", "binding_id", bindingID, "actor_id", actorID)
	return nil
}

func (s *bindingService) UnbindAllForAgent(ctx context.Context, agentID uuid.UUID) (int, error) {
	bindings, err := s.bindingRepo.ListForAgent(ctx, agentID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, binding := range bindings {
		if err := s.bindingRepo.Delete(ctx, binding.ID); err != nil {
			if errors.Is(err, apperrors.ErrBindingNotFound) {
				continue
			}
			return removed, err
		}
		s.rooms.Evict(binding.RoomID())
		removed++
	}

	s.log.Info("Agent bindings removed", "agent_id", agentID, "count", removed)
	return removed, nil
}

func (s *bindingService) Get(ctx context.Context, actorID, bindingID uuid.UUID) (*domain.Binding, error) {
	binding, err := s.bindingRepo.GetByID(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	if !binding.HasParty(actorID) {
		return nil, apperrors.ErrForbidden
	}

	return binding, nil
}

func (s *bindingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Binding, error) {
	return s.bindingRepo.ListForUser(ctx, userID)
}

func (s *bindingService) IsAuthorized(ctx context.Context, userID uuid.UUID, roomID string) (bool, error) {
	bindingID, err := uuid.Parse(roomID)
	if err != nil {
		return false, nil
	}

	binding, err := s.bindingRepo.GetByID(ctx, bindingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrBindingNotFound) {
			return false, nil
		}
		return false, err
	}

	return binding.HasParty(userID), nil
}
