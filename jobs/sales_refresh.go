package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belpol-ops/belpol-ops/internal/reports"
)

// NewSalesReportRefreshHandler returns the handler for sales report refresh
// tasks. An empty payload refreshes the current month, resolved when the
// task runs, so the nightly cron stays correct across month rollover.
// Malformed payloads skip retry, the task would fail the same way every
// attempt.
func NewSalesReportRefreshHandler(service *reports.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SalesReportRefreshPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
		}

		from, to, err := refreshPeriod(payload, time.Now().UTC())
		if err != nil {
			logger.Warn("sales refresh payload", slog.Any("error", err))
			return asynq.SkipRetry
		}

		if err := service.Refresh(ctx, from, to); err != nil {
			logger.Error("sales report refresh", slog.Any("error", err))
			return err
		}
		logger.Info("sales report refreshed",
			slog.String("from", from.Format("2006-01-02")),
			slog.String("to", to.Format("2006-01-02")))
		return nil
	}
}

// refreshPeriod resolves the payload to day bounds. An empty payload means
// the current month up to now.
func refreshPeriod(payload SalesReportRefreshPayload, now time.Time) (time.Time, time.Time, error) {
	if payload.From == "" && payload.To == "" {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, now, nil
	}
	from, err := time.Parse("2006-01-02", payload.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", payload.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// NewSessionSweepHandler deletes expired user_sessions rows.
func NewSessionSweepHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at < NOW()`)
		if err != nil {
			logger.Error("session sweep", slog.Any("error", err))
			return err
		}
		if tag.RowsAffected() > 0 {
			logger.Info("session sweep", slog.Int64("removed", tag.RowsAffected()))
		}
		return nil
	}
}
