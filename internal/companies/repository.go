package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Repository provides company persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Company, error)
	List(ctx context.Context, activeOnly bool) ([]Company, error)
	ListInstallers(ctx context.Context, companyID int64) ([]Installer, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `c.id, c.name, c.nip, c.phone, c.email, c.owner_only, c.services, c.is_active, c.created_at, c.updated_at`

func scanCompany(row pgx.Row) (*Company, error) {
	var company Company
	var nip, phone, email pgtype.Text
	err := row.Scan(
		&company.ID, &company.Name, &nip, &phone, &email,
		&company.OwnerOnly, &company.Services, &company.IsActive,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	company.NIP = nip.String
	company.Phone = phone.String
	company.Email = email.String
	return &company, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies c WHERE c.id = $1`, companyColumns)

	company, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies c`, companyColumns)
	if activeOnly {
		query += ` WHERE c.is_active`
	}
	query += ` ORDER BY c.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, *company)
	}
	return out, rows.Err()
}

// ListInstallers returns active installer accounts attached to a company.
func (r *repository) ListInstallers(ctx context.Context, companyID int64) ([]Installer, error) {
	query := `
		SELECT u.id, u.company_id, u.first_name, u.last_name, u.services, u.is_active
		FROM users u
		WHERE u.company_id = $1 AND u.role = 'installer' AND u.is_active
		ORDER BY u.last_name, u.first_name`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list installers: %w", err)
	}
	defer rows.Close()

	var out []Installer
	for rows.Next() {
		var installer Installer
		if err := rows.Scan(
			&installer.ID, &installer.CompanyID, &installer.FirstName,
			&installer.LastName, &installer.Services, &installer.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan installer: %w", err)
		}
		out = append(out, installer)
	}
	return out, rows.Err()
}
