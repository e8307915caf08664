package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/platform/httpx"
	"github.com/belpol-ops/belpol-ops/internal/users"
)

// Service wraps order business rules and visibility scoping.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new order in status "nowe".
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, createdBy int64) (*Order, error) {
	if !req.ServiceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown service type %q", httpx.ErrValidation, req.ServiceType)
	}

	order := Order{
		StoreID:            req.StoreID,
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		ClientAddress:      req.ClientAddress,
		ServiceType:        req.ServiceType,
		InstallationStatus: InstallationStatusNew,
		TransportStatus:    TransportStatusNew,
		WithTransport:      req.WithTransport,
		InstallationDate:   req.InstallationDate,
		TransportDate:      req.TransportDate,
		Amount:             req.Amount,
		InstallerRate:      req.InstallerRate,
		Notes:              req.Notes,
		CreatedBy:          createdBy,
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, req.StoreID, time.Now())
		if err != nil {
			return fmt.Errorf("generate order number: %w", err)
		}
		order.Number = number
		id, err := repo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

// Get fetches an order visible to the actor.
func (s *Service) Get(ctx context.Context, id int64, actor access.Actor) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(order, actor) {
		return nil, ErrNotFound
	}
	return order, nil
}

// List returns orders matching the request, scoped to what the actor may see.
func (s *Service) List(ctx context.Context, req ListOrdersRequest, actor access.Actor) ([]OrderWithDetails, int, error) {
	scoped := s.scope(req, actor)
	return s.repo.List(ctx, scoped)
}

// UpdateGeneral patches non-financial order fields.
func (s *Service) UpdateGeneral(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	updates := make(map[string]interface{})
	if req.ClientName != nil {
		updates["client_name"] = *req.ClientName
	}
	if req.ClientPhone != nil {
		updates["client_phone"] = *req.ClientPhone
	}
	if req.ClientAddress != nil {
		updates["client_address"] = *req.ClientAddress
	}
	if req.ServiceType != nil {
		if !req.ServiceType.IsValid() {
			return nil, fmt.Errorf("%w: unknown service type %q", httpx.ErrValidation, *req.ServiceType)
		}
		updates["service_type"] = *req.ServiceType
	}
	if req.WithTransport != nil {
		updates["with_transport"] = *req.WithTransport
	}
	if req.InstallationDate != nil {
		updates["installation_date"] = *req.InstallationDate
	}
	if req.TransportDate != nil {
		updates["transport_date"] = *req.TransportDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// UpdateFinancialStatus patches invoice and settlement flags. The caller must
// hold the financial-fields capability; no state is changed on failure.
func (s *Service) UpdateFinancialStatus(ctx context.Context, id int64, req FinancialStatusRequest) (*Order, error) {
	if req.InvoiceIssued == nil && req.WillBeSettled == nil {
		return nil, fmt.Errorf("%w: no fields to update", httpx.ErrValidation)
	}
	if err := s.repo.UpdateFinancialStatus(ctx, id, req.InvoiceIssued, req.WillBeSettled); err != nil {
		return nil, fmt.Errorf("update financial status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// UpdateSettlement toggles the settlement flag through the dedicated path for
// one-person companies.
func (s *Service) UpdateSettlement(ctx context.Context, id int64, value bool) (*Order, error) {
	if err := s.repo.UpdateSettlement(ctx, id, value); err != nil {
		return nil, fmt.Errorf("update settlement: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// AssignInstaller books an installer and moves the installation status.
func (s *Service) AssignInstaller(ctx context.Context, id int64, req AssignInstallerRequest) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown installation status %q", httpx.ErrValidation, req.Status)
	}
	if err := s.repo.AssignInstaller(ctx, id, req.InstallerID, req.Date, req.Status); err != nil {
		return nil, fmt.Errorf("assign installer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// AssignTransporter books a transporter and moves the transport status.
func (s *Service) AssignTransporter(ctx context.Context, id int64, req AssignTransporterRequest) (*Order, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown transport status %q", httpx.ErrValidation, req.Status)
	}
	if err := s.repo.AssignTransporter(ctx, id, req.TransporterID, req.Date, req.Status); err != nil {
		return nil, fmt.Errorf("assign transporter: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// scope narrows a listing request to the orders the actor is allowed to see.
// Admins see everything. Workers are pinned to their store unless they may
// change the store filter. Companies see their company's orders; individual
// installers see orders assigned to them.
func (s *Service) scope(req ListOrdersRequest, actor access.Actor) ListOrdersRequest {
	switch actor.User.Role {
	case users.RoleAdmin:
		return req
	case users.RoleWorker:
		if !actor.Caps.CanChangeStoreFilter && actor.User.StoreID != nil {
			req.StoreID = actor.User.StoreID
		}
		return req
	case users.RoleCompany:
		req.CompanyID = actor.User.CompanyID
		return req
	case users.RoleInstaller:
		if actor.Caps.IsOnePersonCompany && actor.User.CompanyID != nil {
			req.CompanyID = actor.User.CompanyID
		} else {
			id := actor.User.ID
			req.AssigneeID = &id
		}
		return req
	default:
		// Unknown roles see nothing.
		zero := int64(-1)
		req.AssigneeID = &zero
		return req
	}
}

func (s *Service) visible(order *Order, actor access.Actor) bool {
	switch actor.User.Role {
	case users.RoleAdmin:
		return true
	case users.RoleWorker:
		if actor.Caps.CanChangeStoreFilter || actor.User.StoreID == nil {
			return true
		}
		return order.StoreID == *actor.User.StoreID
	case users.RoleCompany:
		return actor.User.CompanyID != nil && order.CompanyID != nil && *order.CompanyID == *actor.User.CompanyID
	case users.RoleInstaller:
		if actor.Caps.IsOnePersonCompany && actor.User.CompanyID != nil {
			return order.CompanyID != nil && *order.CompanyID == *actor.User.CompanyID
		}
		id := actor.User.ID
		return (order.InstallerID != nil && *order.InstallerID == id) ||
			(order.TransporterID != nil && *order.TransporterID == id)
	default:
		return false
	}
}
