package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	rows  []StoreSales
	calls int
}

func (m *mockRepo) SalesByStore(ctx context.Context, from, to time.Time) ([]StoreSales, error) {
	m.calls++
	return m.rows, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(slog.Default(), repo, client, time.Minute)
}

func period() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestSalesSummaryComputesGrandTotal(t *testing.T) {
	repo := &mockRepo{rows: []StoreSales{
		{StoreID: 1, StoreName: "Katowice", OrderCount: 3, TotalAmount: decimal.NewFromInt(4200)},
		{StoreID: 2, StoreName: "Gliwice", OrderCount: 1, TotalAmount: decimal.NewFromFloat(999.50)},
	}}
	svc := newTestService(t, repo)
	from, to := period()

	summary, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, summary.Stores, 2)
	assert.True(t, summary.GrandTotal.Equal(decimal.NewFromFloat(5199.50)),
		"got %s", summary.GrandTotal)
}

func TestSalesSummaryCachesResult(t *testing.T) {
	repo := &mockRepo{rows: []StoreSales{
		{StoreID: 1, StoreName: "Katowice", TotalAmount: decimal.NewFromInt(100)},
	}}
	svc := newTestService(t, repo)
	from, to := period()

	_, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)
	cached, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.True(t, cached.GrandTotal.Equal(decimal.NewFromInt(100)))
}

func TestSalesSummaryDistinctPeriodsDoNotShareCache(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(t, repo)
	from, to := period()

	_, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)
	_, err = svc.SalesSummary(context.Background(), from.AddDate(0, 1, 0), to.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestRefreshOverwritesCache(t *testing.T) {
	repo := &mockRepo{rows: []StoreSales{
		{StoreID: 1, StoreName: "Katowice", TotalAmount: decimal.NewFromInt(100)},
	}}
	svc := newTestService(t, repo)
	from, to := period()

	_, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)

	repo.rows = []StoreSales{
		{StoreID: 1, StoreName: "Katowice", TotalAmount: decimal.NewFromInt(250)},
	}
	require.NoError(t, svc.Refresh(context.Background(), from, to))

	summary, err := svc.SalesSummary(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, summary.GrandTotal.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 2, repo.calls)
}
