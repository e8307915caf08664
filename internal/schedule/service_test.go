package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/orders"
	"github.com/belpol-ops/belpol-ops/internal/users"
)

type stubOrderRepo struct {
	mu    sync.Mutex
	rows  []orders.OrderWithDetails
	calls []orders.ListOrdersRequest
}

func (s *stubOrderRepo) WithTx(ctx context.Context, fn func(context.Context, orders.Repository) error) error {
	return fn(ctx, s)
}

func (s *stubOrderRepo) Get(ctx context.Context, id int64) (*orders.Order, error) {
	return nil, orders.ErrNotFound
}

func (s *stubOrderRepo) List(ctx context.Context, req orders.ListOrdersRequest) ([]orders.OrderWithDetails, int, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	var out []orders.OrderWithDetails
	for _, row := range s.rows {
		if req.InstallationDateFrom != nil {
			if row.InstallationDate == nil ||
				row.InstallationDate.Before(*req.InstallationDateFrom) ||
				row.InstallationDate.After(*req.InstallationDateTo) {
				continue
			}
		}
		if req.TransportDateFrom != nil {
			if row.TransportDate == nil ||
				row.TransportDate.Before(*req.TransportDateFrom) ||
				row.TransportDate.After(*req.TransportDateTo) {
				continue
			}
		}
		out = append(out, row)
	}
	return out, len(out), nil
}

func (s *stubOrderRepo) Create(ctx context.Context, order orders.Order) (int64, error) {
	return 0, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

func (s *stubOrderRepo) UpdateFinancialStatus(ctx context.Context, id int64, invoiceIssued, willBeSettled *bool) error {
	return nil
}

func (s *stubOrderRepo) UpdateSettlement(ctx context.Context, id int64, value bool) error {
	return nil
}

func (s *stubOrderRepo) AssignInstaller(ctx context.Context, id, installerID int64, date time.Time, status orders.InstallationStatus) error {
	return nil
}

func (s *stubOrderRepo) AssignTransporter(ctx context.Context, id, transporterID int64, date time.Time, status orders.TransportStatus) error {
	return nil
}

func (s *stubOrderRepo) GenerateNumber(ctx context.Context, storeID int64, date time.Time) (string, error) {
	return "ZL-0000", nil
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func detailed(id int64, number string, install, transport *time.Time, withTransport bool) orders.OrderWithDetails {
	return orders.OrderWithDetails{
		Order: orders.Order{
			ID:                 id,
			Number:             number,
			StoreID:            1,
			ClientName:         "Jan Kowalski",
			ClientAddress:      "ul. Polna 3",
			InstallationStatus: orders.InstallationStatusPlanned,
			TransportStatus:    orders.TransportStatusPlanned,
			WithTransport:      withTransport,
			InstallationDate:   install,
			TransportDate:      transport,
		},
		StoreName: "Katowice",
	}
}

func adminActor() access.Actor {
	u := users.User{ID: 1, Role: users.RoleAdmin}
	return access.Actor{User: u, Caps: access.Resolve(u)}
}

func TestWeekGroupsEntriesByDay(t *testing.T) {
	repo := &stubOrderRepo{rows: []orders.OrderWithDetails{
		detailed(1, "ZL-2603-0001", date(2026, 3, 2), nil, false),
		detailed(2, "ZL-2603-0002", date(2026, 3, 2), date(2026, 3, 4), true),
		detailed(3, "ZL-2603-0003", date(2026, 3, 8), nil, false),
	}}
	svc := NewService(orders.NewService(repo))

	// Monday 2026-03-02.
	week, err := svc.Week(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), adminActor())
	require.NoError(t, err)

	require.Len(t, week.Days, 7)
	assert.Equal(t, "2026-03-02", week.Days[0].Date)

	require.Len(t, week.Days[0].Entries, 2)
	for _, e := range week.Days[0].Entries {
		assert.Equal(t, kindInstallation, e.Kind)
	}

	require.Len(t, week.Days[2].Entries, 1)
	assert.Equal(t, kindTransport, week.Days[2].Entries[0].Kind)

	// Sunday 2026-03-08 is inside the week.
	require.Len(t, week.Days[6].Entries, 1)

	for _, d := range []int{1, 3, 4} {
		assert.Empty(t, week.Days[d].Entries)
	}
}

func TestWeekSkipsTransportEntriesWithoutTransportFlag(t *testing.T) {
	repo := &stubOrderRepo{rows: []orders.OrderWithDetails{
		detailed(1, "ZL-2603-0001", nil, date(2026, 3, 3), false),
	}}
	svc := NewService(orders.NewService(repo))

	week, err := svc.Week(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), adminActor())
	require.NoError(t, err)

	for _, d := range week.Days {
		assert.Empty(t, d.Entries)
	}
}

func TestWeekQueriesBothDateFields(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := NewService(orders.NewService(repo))

	_, err := svc.Week(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), adminActor())
	require.NoError(t, err)

	require.Len(t, repo.calls, 2)
	var sawInstall, sawTransport bool
	for _, call := range repo.calls {
		if call.InstallationDateFrom != nil {
			sawInstall = true
			assert.Equal(t, "2026-03-02", call.InstallationDateFrom.Format("2006-01-02"))
			assert.Equal(t, "2026-03-08", call.InstallationDateTo.Format("2006-01-02"))
		}
		if call.TransportDateFrom != nil {
			sawTransport = true
		}
	}
	assert.True(t, sawInstall)
	assert.True(t, sawTransport)
}
