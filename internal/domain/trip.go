package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgentTrip — маршрут закупщика. Публикуется в «круг закупщиков»
// флагом IsPublished.
type AgentTrip struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	TravelAt    time.Time `json:"travel_at"`
	Location    string    `json:"location"`
	Itinerary   string    `json:"itinerary"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
