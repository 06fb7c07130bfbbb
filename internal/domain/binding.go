package domain

import (
	"time"

	"github.com/google/uuid"
)

// Binding связывает ровно одного покупателя и одного закупщика.
// Пара (buyer_id, agent_id) уникальна на уровне БД.
type Binding struct {
	ID        uuid.UUID `json:"id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	BindingStatusPending   = "pending"
	BindingStatusConfirmed = "confirmed"
)

// RoomID возвращает идентификатор чат-комнаты привязки
func (b *Binding) RoomID() string {
	return b.ID.String()
}

// HasParty проверяет, является ли пользователь стороной привязки
func (b *Binding) HasParty(userID uuid.UUID) bool {
	return b.BuyerID == userID || b.AgentID == userID
}

// CounterpartyOf возвращает вторую сторону привязки
func (b *Binding) CounterpartyOf(userID uuid.UUID) uuid.UUID {
	if b.BuyerID == userID {
		return b.AgentID
	}
	return b.BuyerID
}
