package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage неизменяемая запись сообщения. SenderName — снимок имени
// на момент отправки, история не зависит от последующих переименований.
type ChatMessage struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"room_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	MessageTypeUser   = "user"
	MessageTypeSystem = "system"
)

// ChatEvent — кадр, уходящий в websocket-комнату
type ChatEvent struct {
	Type      string         `json:"type"`
	RoomID    string         `json:"room_id,omitempty"`
	Sender    string         `json:"sender,omitempty"`
	SenderID  *uuid.UUID     `json:"sender_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	Messages  []*ChatMessage `json:"messages,omitempty"`
	Error     string         `json:"error,omitempty"`
}

const (
	EventTypeMessage = "message"
	EventTypeSystem  = "system"
	EventTypeHistory = "history"
	EventTypeError   = "error"
)
