package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/belpol-ops/belpol-ops/internal/filters"
)

// InstallationStatus tracks the montaż lifecycle of an order.
type InstallationStatus string

const (
	InstallationStatusNew        InstallationStatus = "nowe"
	InstallationStatusPlanned    InstallationStatus = "zaplanowany"
	InstallationStatusInProgress InstallationStatus = "w realizacji"
	InstallationStatusDone       InstallationStatus = "wykonane"
	InstallationStatusCancelled  InstallationStatus = "anulowane"
)

// IsValid reports whether the status is a known value.
func (s InstallationStatus) IsValid() bool {
	switch s {
	case InstallationStatusNew, InstallationStatusPlanned, InstallationStatusInProgress,
		InstallationStatusDone, InstallationStatusCancelled:
		return true
	default:
		return false
	}
}

// TransportStatus tracks the delivery lifecycle of an order.
type TransportStatus string

const (
	TransportStatusNew       TransportStatus = "nowe"
	TransportStatusPlanned   TransportStatus = "zaplanowany"
	TransportStatusDelivered TransportStatus = "dostarczone"
)

// IsValid reports whether the status is a known value.
func (s TransportStatus) IsValid() bool {
	switch s {
	case TransportStatusNew, TransportStatusPlanned, TransportStatusDelivered:
		return true
	default:
		return false
	}
}

// ServiceType names the service sold with the order.
type ServiceType string

const (
	ServiceTypeInstallation ServiceType = "montaż"
	ServiceTypeTransport    ServiceType = "transport"
	ServiceTypeMeasurement  ServiceType = "pomiar"
)

// IsValid reports whether the service type is a known value.
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeInstallation, ServiceTypeTransport, ServiceTypeMeasurement:
		return true
	default:
		return false
	}
}

// Order is a door/flooring sale with its installation and transport state.
type Order struct {
	ID                 int64              `json:"id"`
	Number             string             `json:"number"`
	StoreID            int64              `json:"storeId"`
	ClientName         string             `json:"clientName"`
	ClientPhone        string             `json:"clientPhone"`
	ClientAddress      string             `json:"clientAddress"`
	ServiceType        ServiceType        `json:"serviceType"`
	InstallationStatus InstallationStatus `json:"installationStatus"`
	TransportStatus    TransportStatus    `json:"transportStatus"`
	WithTransport      bool               `json:"withTransport"`
	WillBeSettled      bool               `json:"willBeSettled"`
	InvoiceIssued      bool               `json:"invoiceIssued"`
	InstallationDate   *time.Time         `json:"installationDate,omitempty"`
	TransportDate      *time.Time         `json:"transportDate,omitempty"`
	CompanyID          *int64             `json:"companyId,omitempty"`
	InstallerID        *int64             `json:"installerId,omitempty"`
	TransporterID      *int64             `json:"transporterId,omitempty"`
	Amount             decimal.Decimal    `json:"amount"`
	InstallerRate      decimal.Decimal    `json:"installerRate"`
	Notes              *string            `json:"notes,omitempty"`
	CreatedBy          int64              `json:"createdBy"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// OrderWithDetails includes joined display data.
type OrderWithDetails struct {
	Order
	StoreName       string  `json:"storeName"`
	CompanyName     *string `json:"companyName,omitempty"`
	InstallerName   *string `json:"installerName,omitempty"`
	TransporterName *string `json:"transporterName,omitempty"`
}

// Subject projects the order into the shape the filter predicate evaluates.
func (o Order) Subject() filters.Subject {
	return filters.Subject{
		InstallationStatus: string(o.InstallationStatus),
		TransportStatus:    string(o.TransportStatus),
		ServiceType:        string(o.ServiceType),
		WillBeSettled:      o.WillBeSettled,
		WithTransport:      o.WithTransport,
		StoreID:            o.StoreID,
		InstallationDate:   o.InstallationDate,
		TransportDate:      o.TransportDate,
	}
}
