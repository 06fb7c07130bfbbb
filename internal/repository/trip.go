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

type TripRepository interface {
	Upsert(ctx context.Context, trip *domain.AgentTrip) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.AgentTrip, error)
	SetPublished(ctx context.Context, userID uuid.UUID, published bool) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListPublished(ctx context.Context) ([]*domain.AgentTrip, error)
}

type tripRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewTripRepository(db *pgxpool.Pool, log logger.Logger) TripRepository {
	return &tripRepository{db: db, log: log}
}

// Upsert сохраняет маршрут закупщика; у пользователя не больше одного маршрута
func (r *tripRepository) Upsert(ctx context.Context, trip *domain.AgentTrip) error {
	query := `
		INSERT INTO agent_trips (id, user_id, travel_at, location, itinerary, is_published)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET travel_at = EXCLUDED.travel_at,
		    location = EXCLUDED.location,
		    itinerary = EXCLUDED.itinerary,
		    updated_at = now()
		RETURNING id, is_published, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		trip.ID, trip.UserID, trip.TravelAt, trip.Location, trip.Itinerary, trip.IsPublished,
	).Scan(&trip.ID, &trip.IsPublished, &trip.CreatedAt, &trip.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to upsert trip", "error", err, "user_id", trip.UserID)
		return fmt.Errorf("failed to upsert trip: %w", err)
	}

	return nil
}

func (r *tripRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.AgentTrip, error) {
	query := `
		SELECT id, user_id, travel_at, location, itinerary, is_published, created_at, updated_at
		FROM agent_trips
		WHERE user_id = $1
	`

	trip := &domain.AgentTrip{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&trip.ID, &trip.UserID, &trip.TravelAt, &trip.Location, &trip.Itinerary,
		&trip.IsPublished, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get trip", "error", err, "user_id", userID)
		return nil, err
	}

	return trip, nil
}

func (r *tripRepository) SetPublished(ctx context.Context, userID uuid.UUID, published bool) error {
	query := `UPDATE agent_trips SET is_published = $2, updated_at = now() WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query, userID, published)
	if err != nil {
		r.log.Error("Failed to publish trip", "error", err, "user_id", userID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *tripRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM agent_trips WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to delete trip", "error", err, "user_id", userID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *tripRepository) ListPublished(ctx context.Context) ([]*domain.AgentTrip, error) {
	query := `
		SELECT id, user_id, travel_at, location, itinerary, is_published, created_at, updated_at
		FROM agent_trips
		WHERE is_published = true
		ORDER BY travel_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list published trips", "error", err)
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.AgentTrip
	for rows.Next() {
		trip := &domain.AgentTrip{}
		err := rows.Scan(
			&trip.ID, &trip.UserID, &trip.TravelAt, &trip.Location, &trip.Itinerary,
			&trip.IsPublished, &trip.CreatedAt, &trip.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan trip", "error", err)
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}
