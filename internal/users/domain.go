package users

import "time"

// Role classifies an account within the organisation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleWorker    Role = "worker"
	RoleCompany   Role = "company"
	RoleInstaller Role = "installer"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleCompany, RoleInstaller:
		return true
	default:
		return false
	}
}

// Store worker positions. Kierownik and zastępca carry extra privileges.
const (
	PositionManager = "kierownik"
	PositionDeputy  = "zastępca"
	PositionSeller  = "sprzedawca"
)

// User describes an account together with the attributes the permission
// resolver derives capabilities from. Loaded once per request and treated as
// immutable afterwards.
type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Role             Role       `json:"role"`
	Position         *string    `json:"position,omitempty"`
	StoreID          *int64     `json:"storeId,omitempty"`
	CompanyID        *int64     `json:"companyId,omitempty"`
	CompanyName      *string    `json:"companyName,omitempty"`
	CompanyOwnerOnly bool       `json:"companyOwnerOnly"`
	Services         []string   `json:"services"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}
