package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest creates a new order.
type CreateOrderRequest struct {
	StoreID          int64           `json:"storeId" validate:"required,gt=0"`
	ClientName       string          `json:"clientName" validate:"required,max=200"`
	ClientPhone      string          `json:"clientPhone" validate:"required,max=30"`
	ClientAddress    string          `json:"clientAddress" validate:"required,max=400"`
	ServiceType      ServiceType     `json:"serviceType" validate:"required"`
	WithTransport    bool            `json:"withTransport"`
	InstallationDate *time.Time      `json:"installationDate,omitempty"`
	TransportDate    *time.Time      `json:"transportDate,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	InstallerRate    decimal.Decimal `json:"installerRate"`
	Notes            *string         `json:"notes,omitempty"`
}

// UpdateOrderRequest patches order fields. Nil fields stay unchanged.
type UpdateOrderRequest struct {
	ClientName       *string     `json:"clientName,omitempty" validate:"omitempty,max=200"`
	ClientPhone      *string     `json:"clientPhone,omitempty" validate:"omitempty,max=30"`
	ClientAddress    *string     `json:"clientAddress,omitempty" validate:"omitempty,max=400"`
	ServiceType      *ServiceType `json:"serviceType,omitempty"`
	WithTransport    *bool       `json:"withTransport,omitempty"`
	InstallationDate *time.Time  `json:"installationDate,omitempty"`
	TransportDate    *time.Time  `json:"transportDate,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
}

// FinancialStatusRequest patches the financial flags. Requires the
// financial-fields capability.
type FinancialStatusRequest struct {
	InvoiceIssued *bool `json:"invoiceIssued,omitempty"`
	WillBeSettled *bool `json:"willBeSettled,omitempty"`
}

// SettlementStatusRequest is the dedicated settlement toggle for one-person
// companies without the full financial capability.
type SettlementStatusRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// AssignInstallerRequest books an installer for a date.
type AssignInstallerRequest struct {
	InstallerID int64              `json:"installerId" validate:"required,gt=0"`
	Date        time.Time          `json:"date" validate:"required"`
	Status      InstallationStatus `json:"status" validate:"required"`
}

// AssignTransporterRequest books a transporter for a date.
type AssignTransporterRequest struct {
	TransporterID int64           `json:"transporterId" validate:"required,gt=0"`
	Date          time.Time       `json:"date" validate:"required"`
	Status        TransportStatus `json:"status" validate:"required"`
}

// ListOrdersRequest is the coarse server-side filter. The exact narrowing
// happens against the compiled predicate afterwards.
type ListOrdersRequest struct {
	Search               string
	Status               *InstallationStatus
	StoreID              *int64
	CompanyID            *int64
	InstallerID          *int64
	TransporterID        *int64
	AssigneeID           *int64 // matches installer_id OR transporter_id
	InstallationDateFrom *time.Time
	InstallationDateTo   *time.Time
	TransportDateFrom    *time.Time
	TransportDateTo      *time.Time
	Limit                int
	Offset               int
}
