package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Repository provides store persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Store, error)
	List(ctx context.Context, activeOnly bool) ([]Store, error)
	Create(ctx context.Context, store Store) (*Store, error)
	Update(ctx context.Context, id int64, store Store) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const storeColumns = `s.id, s.name, s.city, s.address, s.phone, s.is_active, s.created_at, s.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores s WHERE s.id = $1`, storeColumns)

	var store Store
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&store.ID, &store.Name, &store.City, &store.Address, &store.Phone,
		&store.IsActive, &store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &store, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores s`, storeColumns)
	if activeOnly {
		query += ` WHERE s.is_active`
	}
	query += ` ORDER BY s.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var store Store
		if err := rows.Scan(
			&store.ID, &store.Name, &store.City, &store.Address, &store.Phone,
			&store.IsActive, &store.CreatedAt, &store.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, store)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, store Store) (*Store, error) {
	query := `
		INSERT INTO stores (name, city, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	created := store
	created.IsActive = true
	err := r.pool.QueryRow(ctx, query, store.Name, store.City, store.Address, store.Phone).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, store Store) error {
	query := `
		UPDATE stores
		SET name = $1, city = $2, address = $3, phone = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query, store.Name, store.City, store.Address, store.Phone, store.IsActive, id)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
