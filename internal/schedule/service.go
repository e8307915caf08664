// Package schedule assembles week views of installation and transport jobs.
package schedule

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/orders"
)

// Entry is one scheduled job on a given day.
type Entry struct {
	OrderID       int64     `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Kind          string    `json:"kind"` // installation or transport
	Status        string    `json:"status"`
	ClientName    string    `json:"clientName"`
	ClientAddress string    `json:"clientAddress"`
	StoreName     string    `json:"storeName"`
	AssigneeName  *string   `json:"assigneeName,omitempty"`
	Date          time.Time `json:"date"`
}

// Day groups entries under one calendar day.
type Day struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Week is seven consecutive days starting at the requested Monday.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  []Day     `json:"days"`
}

const (
	kindInstallation = "installation"
	kindTransport    = "transport"
)

// Service composes week schedules from the orders service.
type Service struct {
	orders *orders.Service
}

// NewService constructs a schedule Service.
func NewService(orderService *orders.Service) *Service {
	return &Service{orders: orderService}
}

// Week loads all installation and transport jobs falling within the seven
// days starting at start. Both job lists load concurrently and the result is
// scoped to what the actor may see.
func (s *Service) Week(ctx context.Context, start time.Time, actor access.Actor) (*Week, error) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	var installations, transports []orders.OrderWithDetails

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, _, err := s.orders.List(ctx, orders.ListOrdersRequest{
			InstallationDateFrom: &start,
			InstallationDateTo:   &end,
			Limit:                scheduleQueryLimit,
		}, actor)
		if err != nil {
			return err
		}
		installations = result
		return nil
	})

	g.Go(func() error {
		result, _, err := s.orders.List(ctx, orders.ListOrdersRequest{
			TransportDateFrom: &start,
			TransportDateTo:   &end,
			Limit:             scheduleQueryLimit,
		}, actor)
		if err != nil {
			return err
		}
		transports = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildWeek(start, end, installations, transports), nil
}

// A week of jobs at a single retailer fits comfortably under this cap.
const scheduleQueryLimit = 500

func buildWeek(start, end time.Time, installations, transports []orders.OrderWithDetails) *Week {
	byDay := make(map[string][]Entry)

	for _, order := range installations {
		if order.InstallationDate == nil {
			continue
		}
		entry := Entry{
			OrderID:       order.ID,
			OrderNumber:   order.Number,
			Kind:          kindInstallation,
			Status:        string(order.InstallationStatus),
			ClientName:    order.ClientName,
			ClientAddress: order.ClientAddress,
			StoreName:     order.StoreName,
			AssigneeName:  order.InstallerName,
			Date:          *order.InstallationDate,
		}
		key := entry.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], entry)
	}

	for _, order := range transports {
		if order.TransportDate == nil || !order.WithTransport {
			continue
		}
		entry := Entry{
			OrderID:       order.ID,
			OrderNumber:   order.Number,
			Kind:          kindTransport,
			Status:        string(order.TransportStatus),
			ClientName:    order.ClientName,
			ClientAddress: order.ClientAddress,
			StoreName:     order.StoreName,
			AssigneeName:  order.TransporterName,
			Date:          *order.TransportDate,
		}
		key := entry.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], entry)
	}

	week := &Week{Start: start, End: end}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		entries := byDay[key]
		if entries == nil {
			entries = []Entry{}
		}
		week.Days = append(week.Days, Day{Date: key, Entries: entries})
	}
	return week
}
