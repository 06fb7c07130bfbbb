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

type ShoppingRepository interface {
	CreateItem(ctx context.Context, item *domain.ShoppingItem) error
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingItem, error)
	DeleteItem(ctx context.Context, id, userID uuid.UUID) error
	UpsertCircle(ctx context.Context, circle *domain.ShoppingCircle) error
	GetCircle(ctx context.Context, userID uuid.UUID) (*domain.ShoppingCircle, error)
	ListUnboundCircles(ctx context.Context) ([]*domain.ShoppingCircle, error)
}

type shoppingRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewShoppingRepository(db *pgxpool.Pool, log logger.Logger) ShoppingRepository {
	return &shoppingRepository{db: db, log: log}
}

func (r *shoppingRepository) CreateItem(ctx context.Context, item *domain.ShoppingItem) error {
	query := `
		INSERT INTO shopping_items (id, user_id, name, link, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		item.ID, item.UserID, item.Name, item.Link, item.Price, item.Quantity,
	).Scan(&item.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create shopping item", "error", err, "user_id", item.UserID)
		return fmt.Errorf("failed to create shopping item: %w", err)
	}

	return nil
}

func (r *shoppingRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingItem, error) {
	query := `
		SELECT id, user_id, name, link, price, quantity, created_at
		FROM shopping_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list shopping items", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ShoppingItem
	for rows.Next() {
		item := &domain.ShoppingItem{}
		err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Link, &item.Price, &item.Quantity, &item.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan shopping item", "error", err)
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *shoppingRepository) DeleteItem(ctx context.Context, id, userID uuid.UUID) error {
	// Удалять может только владелец
	query := `DELETE FROM shopping_items WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.log.Error("Failed to delete shopping item", "error", err, "item_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *shoppingRepository) UpsertCircle(ctx context.Context, circle *domain.ShoppingCircle) error {
	query := `
		INSERT INTO shopping_circles (user_id, remark, is_published)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET remark = EXCLUDED.remark,
		    is_published = EXCLUDED.is_published,
		    updated_at = now()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		circle.UserID, circle.Remark, circle.IsPublished,
	).Scan(&circle.CreatedAt, &circle.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to upsert shopping circle", "error", err, "user_id", circle.UserID)
		return fmt.Errorf("failed to upsert shopping circle: %w", err)
	}

	return nil
}

func (r *shoppingRepository) GetCircle(ctx context.Context, userID uuid.UUID) (*domain.ShoppingCircle, error) {
	query := `
		SELECT user_id, remark, is_published, created_at, updated_at
		FROM shopping_circles
		WHERE user_id = $1
	`

	circle := &domain.ShoppingCircle{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&circle.UserID, &circle.Remark, &circle.IsPublished, &circle.CreatedAt, &circle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get shopping circle", "error", err, "user_id", userID)
		return nil, err
	}

	return circle, nil
}

// ListUnboundCircles возвращает круги покупателей без действующей привязки:
// уже связанный покупатель не показывается закупщикам
func (r *shoppingRepository) ListUnboundCircles(ctx context.Context) ([]*domain.ShoppingCircle, error) {
	query := `
		SELECT sc.user_id, sc.remark, sc.is_published, sc.created_at, sc.updated_at
		FROM shopping_circles sc
		WHERE sc.is_published = true
		  AND NOT EXISTS (SELECT 1 FROM bindings b WHERE b.buyer_id = sc.user_id)
		ORDER BY sc.updated_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list unbound circles", "error", err)
		return nil, err
	}
	defer rows.Close()

	var circles []*domain.ShoppingCircle
	for rows.Next() {
		circle := &domain.ShoppingCircle{}
		err := rows.Scan(&circle.UserID, &circle.Remark, &circle.IsPublished, &circle.CreatedAt, &circle.UpdatedAt)
		if err != nil {
			r.log.Error("Failed to scan shopping circle", "error", err)
			return nil, err
		}
		circles = append(circles, circle)
	}

	return circles, rows.Err()
}
