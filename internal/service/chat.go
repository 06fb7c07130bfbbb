package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/repository"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

// Broadcaster рассылает событие всем подключённым участникам комнаты
type Broadcaster interface {
	Broadcast(roomID string, event domain.ChatEvent)
}

type ChatService interface {
	// Send сохраняет сообщение и после успешной записи рассылает его в
	// комнату, включая соединение отправителя. Авторизация проверяется
	// по живому состоянию привязки на каждый вызов.
	Send(ctx context.Context, roomID string, senderID uuid.UUID, content string) (*domain.ChatMessage, error)
	// History возвращает все сообщения комнаты по возрастанию времени.
	// Доступ закрыт, если привязка удалена, строки при этом сохраняются.
	History(ctx context.Context, roomID string, requesterID uuid.UUID) ([]*domain.ChatMessage, error)
	// Authorize — проверка допуска для входа в комнату
	Authorize(ctx context.Context, roomID string, userID uuid.UUID) error
}

type chatService struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	bindingAuth BindingService
	broadcaster Broadcaster
	log         logger.Logger
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, bindingAuth BindingService, broadcaster Broadcaster, log logger.Logger) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		bindingAuth: bindingAuth,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (s *chatService) Send(ctx context.Context, roomID string, senderID uuid.UUID, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	if err := s.Authorize(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := &domain.ChatMessage{
		RoomID:     roomID,
		SenderID:   senderID,
		SenderName: sender.Username,
		Content:    content,
	}

	// Запись обязана завершиться до рассылки; created_at назначает БД,
	// порядок в комнате — порядок коммитов
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(roomID, domain.ChatEvent{
		Type:      domain.EventTypeMessage,
		RoomID:    roomID,
		Sender:    message.SenderName,
		SenderID:  &message.SenderID,
		Content:   message.Content,
		CreatedAt: &message.CreatedAt,
	})

	return message, nil
}

func (s *chatService) History(ctx context.Context, roomID string, requesterID uuid.UUID) ([]*domain.ChatMessage, error) {
	if err := s.Authorize(ctx, roomID, requesterID); err != nil {
		return nil, err
	}

	return s.chatRepo.GetHistory(ctx, roomID)
}

func (s *chatService) Authorize(ctx context.Context, roomID string, userID uuid.UUID) error {
	ok, err := s.bindingAuth.IsAuthorized(ctx, userID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrForbidden
	}
	return nil
}
