package companies

import "time"

// Company is an external installer or transport company working orders.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	NIP       string    `json:"nip"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	OwnerOnly bool      `json:"ownerOnly"`
	Services  []string  `json:"services"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Installer is a company employee assignable to orders.
type Installer struct {
	ID        int64    `json:"id"`
	CompanyID int64    `json:"companyId"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Services  []string `json:"services"`
	IsActive  bool     `json:"isActive"`
}
