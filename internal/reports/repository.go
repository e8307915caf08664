// Package reports computes sales summaries across stores.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StoreSales is the aggregated result for one store over a period.
type StoreSales struct {
	StoreID        int64           `json:"storeId"`
	StoreName      string          `json:"storeName"`
	OrderCount     int             `json:"orderCount"`
	CompletedCount int             `json:"completedCount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
}

// SalesSummary is the full report payload.
type SalesSummary struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Stores      []StoreSales    `json:"stores"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Repository runs the report aggregation queries.
type Repository interface {
	SalesByStore(ctx context.Context, from, to time.Time) ([]StoreSales, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) SalesByStore(ctx context.Context, from, to time.Time) ([]StoreSales, error) {
	query := `
		SELECT s.id, s.name,
			COUNT(o.id),
			COUNT(o.id) FILTER (WHERE o.installation_status = 'wykonane'),
			COALESCE(SUM(o.amount), 0),
			COALESCE(SUM(o.amount) FILTER (WHERE o.will_be_settled), 0)
		FROM stores s
		LEFT JOIN orders o
			ON o.store_id = s.id
			AND o.created_at >= $1
			AND o.created_at < $2
		WHERE s.is_active
		GROUP BY s.id, s.name
		ORDER BY s.name`

	rows, err := r.pool.Query(ctx, query, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("sales by store: %w", err)
	}
	defer rows.Close()

	var out []StoreSales
	for rows.Next() {
		var row StoreSales
		var total, settled pgtype.Numeric
		if err := rows.Scan(&row.StoreID, &row.StoreName, &row.OrderCount, &row.CompletedCount, &total, &settled); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		row.TotalAmount = numericToDecimal(total)
		row.SettledAmount = numericToDecimal(settled)
		out = append(out, row)
	}
	return out, rows.Err()
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
