package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agent_shopping/internal/domain"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *domain.ChatMessage) error
	GetHistory(ctx context.Context, roomID string) ([]*domain.ChatMessage, error)
}

type chatRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRepository(db *pgxpool.Pool, log logger.Logger) ChatRepository {
	return &chatRepository{db: db, log: log}
}

// CreateMessage вставляет сообщение одним запросом с проверкой, что привязка
// комнаты ещё существует. Гонка send/unbind решается внутри БД: либо строка
// вставлена до удаления привязки, либо вставки нет вовсе.
func (r *chatRepository) CreateMessage(ctx context.Context, message *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room_id, sender_id, sender_name, content)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM bindings WHERE id = $5)
		RETURNING id, created_at
	`

	roomUUID, err := uuid.Parse(message.RoomID)
	if err != nil {
		return apperrors.ErrBindingNotFound
	}

	err = r.db.QueryRow(ctx, query,
		message.RoomID, message.SenderID, message.SenderName, message.Content, roomUUID,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Привязка удалена: сообщение не сохранено
			return apperrors.ErrForbidden
		}
		r.log.Error("Failed to create message", "error", err, "room_id", message.RoomID)
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *chatRepository) GetHistory(ctx context.Context, roomID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, sender_name, content, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		r.log.Error("Failed to get chat history", "error", err, "room_id", roomID)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		message := &domain.ChatMessage{}
		err := rows.Scan(
			&message.ID, &message.RoomID, &message.SenderID, &message.SenderName,
			&message.Content, &message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
