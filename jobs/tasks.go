package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSalesReportRefresh recomputes and re-caches the sales report.
	TaskTypeSalesReportRefresh = "reports:sales:refresh"
	// TaskTypeSessionSweep purges expired session rows.
	TaskTypeSessionSweep = "sessions:sweep"
)

// SalesReportRefreshPayload bounds the report period to refresh. Day
// precision, inclusive on both ends.
type SalesReportRefreshPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewCurrentMonthSalesRefreshTask constructs a refresh task with no payload.
// The handler resolves the period, month start to now, at execution time.
func NewCurrentMonthSalesRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSalesReportRefresh, nil)
}

// NewSalesReportRefreshTask constructs an Asynq task for an explicit period.
func NewSalesReportRefreshTask(from, to time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(SalesReportRefreshPayload{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSalesReportRefresh, data), nil
}

// NewSessionSweepTask constructs the session cleanup task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionSweep, nil)
}
