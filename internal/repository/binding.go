package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agent_shopping/internal/domain"
	apperrors "agent_shopping/pkg/errors"
	"agent_shopping/pkg/logger"
)

type BindingRepository interface {
	Create(ctx context.Context, binding *domain.Binding) error
	Find(ctx context.Context, buyerID, agentID uuid.UUID) (*domain.Binding, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Binding, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Binding, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID) ([]*domain.Binding, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bindingRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewBindingRepository(db *pgxpool.Pool, log logger.Logger) BindingRepository {
	return &bindingRepository{db: db, log: log}
}

func (r *bindingRepository) Create(ctx context.Context, binding *domain.Binding) error {
	query := `
		INSERT INTO bindings (id, buyer_id, agent_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		binding.ID, binding.BuyerID, binding.AgentID, binding.Status,
	).Scan(&binding.CreatedAt)

	if err != nil {
		// Код 23505 = unique_violation: пара (buyer_id, agent_id) уже связана
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrAlreadyBound
		}
		r.log.Error("Failed to create binding", "error", err, "buyer_id", binding.BuyerID, "agent_id", binding.AgentID)
		return fmt.Errorf("failed to create binding: %w", err)
	}

	return nil
}

func (r *bindingRepository) Find(ctx context.Context, buyerID, agentID uuid.UUID) (*domain.Binding, error) {
	query := `
		SELECT id, buyer_id, agent_id, status, created_at
		FROM bindings
		WHERE buyer_id = $1 AND agent_id = $2
	`

	binding := &domain.Binding{}
	err := r.db.QueryRow(ctx, query, buyerID, agentID).Scan(
		&binding.ID, &binding.BuyerID, &binding.AgentID, &binding.Status, &binding.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to find binding", "error", err)
		return nil, err
	}

	return binding, nil
}

func (r *bindingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Binding, error) {
	query := `
		SELECT id, buyer_id, agent_id, status, created_at
		FROM bindings
		WHERE id = $1
	`

	binding := &domain.Binding{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&binding.ID, &binding.BuyerID, &binding.AgentID, &binding.Status, &binding.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBindingNotFound
		}
		r.log.Error("Failed to get binding", "error", err, "binding_id", id)
		return nil, err
	}

	return binding, nil
}

func (r *bindingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Binding, error) {
	query := `
		SELECT id, buyer_id, agent_id, status, created_at
		FROM bindings
		WHERE buyer_id = $1 OR agent_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userID)
}

func (r *bindingRepository) ListForAgent(ctx context.Context, agentID uuid.UUID) ([]*domain.Binding, error) {
	query := `
		SELECT id, buyer_id, agent_id, status, created_at
		FROM bindings
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, agentID)
}

func (r *bindingRepository) list(ctx context.Context, query string, arg any) ([]*domain.Binding, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.log.Error("Failed to list bindings", "error", err)
		return nil, err
	}
	defer rows.Close()

	var bindings []*domain.Binding
	for rows.Next() {
		binding := &domain.Binding{}
		err := rows.Scan(&binding.ID, &binding.BuyerID, &binding.AgentID, &binding.Status, &binding.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan binding", "error", err)
			return nil, err
		}
		bindings = append(bindings, binding)
	}

	return bindings, rows.Err()
}

func (r *bindingRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE bindings SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to set binding status", "error", err, "binding_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBindingNotFound
	}

	return nil
}

func (r *bindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bindings WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete binding", "error", err, "binding_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBindingNotFound
	}

	return nil
}
