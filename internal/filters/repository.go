package filters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Repository stores the per-user default filter record in Postgres.
type Repository interface {
	DefaultSource
	SaveDefault(ctx context.Context, userID int64, criteria []Criterion) error
	DeleteDefault(ctx context.Context, userID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetDefault(ctx context.Context, userID int64) ([]Criterion, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		"SELECT filters_data FROM user_default_filters WHERE user_id = $1", userID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("filters: get default: %w", err)
	}
	var criteria []Criterion
	if err := json.Unmarshal(data, &criteria); err != nil {
		return nil, fmt.Errorf("filters: parse default: %w", err)
	}
	return criteria, nil
}

func (r *repository) SaveDefault(ctx context.Context, userID int64, criteria []Criterion) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("filters: serialize default: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_default_filters (user_id, filters_data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET filters_data = EXCLUDED.filters_data, updated_at = NOW()`,
		userID, data)
	if err != nil {
		return fmt.Errorf("filters: save default: %w", err)
	}
	return nil
}

func (r *repository) DeleteDefault(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM user_default_filters WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("filters: delete default: %w", err)
	}
	return nil
}
