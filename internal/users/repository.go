package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Repository provides read access to user accounts.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// ListUsersRequest narrows the user listing.
type ListUsersRequest struct {
	Role      *Role
	StoreID   *int64
	CompanyID *int64
	Limit     int
	Offset    int
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `
	u.id, u.email, u.first_name, u.last_name, u.role, u.position,
	u.store_id, u.company_id, c.name, u.company_owner_only, u.services,
	u.is_active, u.created_at, u.updated_at, u.last_login_at`

const userFrom = `
	FROM users u
	LEFT JOIN companies c ON u.company_id = c.id`

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, "SELECT"+userColumns+userFrom+" WHERE u.id = $1", id)
	return scanUser(row)
}

func (r *repository) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	conditions := []string{"u.is_active"}
	var args []interface{}
	argPos := 1

	if req.Role != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argPos))
		args = append(args, *req.Role)
		argPos++
	}
	if req.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("u.store_id = $%d", argPos))
		args = append(args, *req.StoreID)
		argPos++
	}
	if req.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("u.company_id = $%d", argPos))
		args = append(args, *req.CompanyID)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) %s %s", userFrom, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf("SELECT%s%s %s ORDER BY u.last_name, u.first_name LIMIT $%d OFFSET $%d",
		userColumns, userFrom, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *u)
	}
	return result, total, rows.Err()
}

func (r *repository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = NOW() WHERE id = $1", id)
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var position, companyName pgtype.Text
	var storeID, companyID pgtype.Int8
	var lastLogin pgtype.Timestamptz

	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &position,
		&storeID, &companyID, &companyName, &u.CompanyOwnerOnly, &u.Services,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if position.Valid {
		u.Position = &position.String
	}
	if storeID.Valid {
		u.StoreID = &storeID.Int64
	}
	if companyID.Valid {
		u.CompanyID = &companyID.Int64
	}
	if companyName.Valid {
		u.CompanyName = &companyName.String
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}
