package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/belpol-ops/belpol-ops/internal/platform/db"
)

// ErrNotFound indicates the order does not exist.
var ErrNotFound = errors.New("order not found")

// Repository provides order persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error)
	Create(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateFinancialStatus(ctx context.Context, id int64, invoiceIssued, willBeSettled *bool) error
	UpdateSettlement(ctx context.Context, id int64, value bool) error
	AssignInstaller(ctx context.Context, id, installerID int64, date time.Time, status InstallationStatus) error
	AssignTransporter(ctx context.Context, id, transporterID int64, date time.Time, status TransportStatus) error
	GenerateNumber(ctx context.Context, storeID int64, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderColumns = `
	o.id, o.number, o.store_id, o.client_name, o.client_phone, o.client_address,
	o.service_type, o.installation_status, o.transport_status,
	o.with_transport, o.will_be_settled, o.invoice_issued,
	o.installation_date, o.transport_date,
	o.company_id, o.installer_id, o.transporter_id,
	o.amount, o.installer_rate, o.notes,
	o.created_by, o.created_at, o.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, "SELECT"+orderColumns+" FROM orders o WHERE o.id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(o.number ILIKE $%d OR o.client_name ILIKE $%d OR o.client_phone ILIKE $%d OR o.client_address ILIKE $%d)",
			argPos, argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.installation_status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.StoreID != nil {
		conditions = append(conditions, fmt.Sprintf("o.store_id = $%d", argPos))
		args = append(args, *req.StoreID)
		argPos++
	}
	if req.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("o.company_id = $%d", argPos))
		args = append(args, *req.CompanyID)
		argPos++
	}
	if req.InstallerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.installer_id = $%d", argPos))
		args = append(args, *req.InstallerID)
		argPos++
	}
	if req.TransporterID != nil {
		conditions = append(conditions, fmt.Sprintf("o.transporter_id = $%d", argPos))
		args = append(args, *req.TransporterID)
		argPos++
	}
	if req.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("(o.installer_id = $%d OR o.transporter_id = $%d)", argPos, argPos))
		args = append(args, *req.AssigneeID)
		argPos++
	}
	if req.InstallationDateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.installation_date >= $%d", argPos))
		args = append(args, *req.InstallationDateFrom)
		argPos++
	}
	if req.InstallationDateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.installation_date <= $%d", argPos))
		args = append(args, *req.InstallationDateTo)
		argPos++
	}
	if req.TransportDateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.transport_date >= $%d", argPos))
		args = append(args, *req.TransportDateFrom)
		argPos++
	}
	if req.TransportDateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.transport_date <= $%d", argPos))
		args = append(args, *req.TransportDateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT%s,
		       s.name AS store_name,
		       c.name AS company_name,
		       iu.first_name || ' ' || iu.last_name AS installer_name,
		       tu.first_name || ' ' || tu.last_name AS transporter_name
		FROM orders o
		JOIN stores s ON o.store_id = s.id
		LEFT JOIN companies c ON o.company_id = c.id
		LEFT JOIN users iu ON o.installer_id = iu.id
		LEFT JOIN users tu ON o.transporter_id = tu.id
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []OrderWithDetails
	for rows.Next() {
		var d OrderWithDetails
		var companyName, installerName, transporterName pgtype.Text
		o, err := scanOrderFields(rows, func(dest []interface{}) []interface{} {
			return append(dest, &d.StoreName, &companyName, &installerName, &transporterName)
		})
		if err != nil {
			return nil, 0, err
		}
		d.Order = *o
		if companyName.Valid {
			d.CompanyName = &companyName.String
		}
		if installerName.Valid {
			d.InstallerName = &installerName.String
		}
		if transporterName.Valid {
			d.TransporterName = &transporterName.String
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (
			number, store_id, client_name, client_phone, client_address,
			service_type, installation_status, transport_status,
			with_transport, will_be_settled, invoice_issued,
			installation_date, transport_date,
			amount, installer_rate, notes, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14::numeric, $15::numeric, $16, $17
		) RETURNING id`,
		o.Number, o.StoreID, o.ClientName, o.ClientPhone, o.ClientAddress,
		o.ServiceType, o.InstallationStatus, o.TransportStatus,
		o.WithTransport, o.WillBeSettled, o.InvoiceIssued,
		dateArg(o.InstallationDate), dateArg(o.TransportDate),
		o.Amount.String(), o.InstallerRate.String(), o.Notes, o.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"client_name", "client_phone", "client_address", "service_type",
		"with_transport", "installation_date", "transport_date", "notes",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateFinancialStatus(ctx context.Context, id int64, invoiceIssued, willBeSettled *bool) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	if invoiceIssued != nil {
		query += fmt.Sprintf(", invoice_issued = $%d", argPos)
		args = append(args, *invoiceIssued)
		argPos++
	}
	if willBeSettled != nil {
		query += fmt.Sprintf(", will_be_settled = $%d", argPos)
		args = append(args, *willBeSettled)
		argPos++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateSettlement(ctx context.Context, id int64, value bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE orders SET will_be_settled = $1, updated_at = NOW() WHERE id = $2", value, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AssignInstaller(ctx context.Context, id, installerID int64, date time.Time, status InstallationStatus) error {
	// Assigning an installer also attaches the order to the installer's
	// company, which drives company and solo-installer visibility.
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET installer_id = $1,
		    company_id = (SELECT company_id FROM users WHERE id = $1),
		    installation_date = $2, installation_status = $3, updated_at = NOW()
		WHERE id = $4`,
		installerID, date, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AssignTransporter(ctx context.Context, id, transporterID int64, date time.Time, status TransportStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET transporter_id = $1, transport_date = $2, transport_status = $3, updated_at = NOW()
		WHERE id = $4`,
		transporterID, date, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// orderNumberLockKey namespaces the advisory lock taken while generating
// order numbers.
const orderNumberLockKey = 1913

// GenerateNumber issues the next ZL-{YYMM}-{store}-{seq} number. The
// sequence restarts per store and month and is derived from the highest
// number already issued, so deleted orders never free a number for reuse.
// Callers must run it inside a transaction: the advisory lock serializes
// concurrent creates for one store and is released on commit or rollback.
func (r *repository) GenerateNumber(ctx context.Context, storeID int64, date time.Time) (string, error) {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1::int, $2::int)", orderNumberLockKey, storeID); err != nil {
		return "", err
	}

	prefix := fmt.Sprintf("ZL-%s-%02d-", date.Format("0601"), storeID)
	var seq int
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(MAX(split_part(number, '-', 4)::int), 0) FROM orders WHERE number LIKE $1 || '%'",
		prefix).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	return scanOrderInto(row, nil)
}

// scanOrderFields scans the base order columns and lets the caller append
// extra scan targets for joined columns.
func scanOrderFields(row pgx.Row, extend func([]interface{}) []interface{}) (*Order, error) {
	return scanOrderInto(row, extend)
}

func scanOrderInto(row pgx.Row, extend func([]interface{}) []interface{}) (*Order, error) {
	var o Order
	var installationDate, transportDate pgtype.Date
	var companyID, installerID, transporterID pgtype.Int8
	var amount, installerRate pgtype.Numeric
	var notes pgtype.Text

	dest := []interface{}{
		&o.ID, &o.Number, &o.StoreID, &o.ClientName, &o.ClientPhone, &o.ClientAddress,
		&o.ServiceType, &o.InstallationStatus, &o.TransportStatus,
		&o.WithTransport, &o.WillBeSettled, &o.InvoiceIssued,
		&installationDate, &transportDate,
		&companyID, &installerID, &transporterID,
		&amount, &installerRate, &notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	}
	if extend != nil {
		dest = extend(dest)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if installationDate.Valid {
		t := installationDate.Time
		o.InstallationDate = &t
	}
	if transportDate.Valid {
		t := transportDate.Time
		o.TransportDate = &t
	}
	if companyID.Valid {
		o.CompanyID = &companyID.Int64
	}
	if installerID.Valid {
		o.InstallerID = &installerID.Int64
	}
	if transporterID.Valid {
		o.TransporterID = &transporterID.Int64
	}
	if amount.Valid {
		o.Amount = decimal.NewFromBigInt(amount.Int, amount.Exp)
	}
	if installerRate.Valid {
		o.InstallerRate = decimal.NewFromBigInt(installerRate.Int, installerRate.Exp)
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	return &o, nil
}

func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
