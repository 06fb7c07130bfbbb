package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShoppingItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Link      *string   `json:"link,omitempty"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingCircle — профиль покупателя в «покупательском кругу»
type ShoppingCircle struct {
	UserID      uuid.UUID `json:"user_id"`
	Remark      string    `json:"remark"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
