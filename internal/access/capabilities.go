// Package access derives per-session capabilities from user attributes.
//
// All call sites consult the resolved Capabilities value instead of re-testing
// role or service strings, so a rule changes in exactly one place.
package access

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/belpol-ops/belpol-ops/internal/users"
)

// Service names carried on installer accounts. Matching is case-insensitive
// substring, the service list is free text entered per installer.
const (
	serviceTransport    = "transport"
	serviceInstallation = "montaż"
)

// Capabilities describes what the current user may see and change. Computed
// once per request from the immutable user record; every field is derived
// independently.
type Capabilities struct {
	CanCreateOrders          bool `json:"canCreateOrders"`
	CanModifyFinancialFields bool `json:"canModifyFinancialFields"`
	CanMarkSettlement        bool `json:"canMarkSettlement"`
	IsOnePersonCompany       bool `json:"isOnePersonCompany"`
	IsInstaller              bool `json:"isInstaller"`
	IsTransporter            bool `json:"isTransporter"`
	CanChangeStoreFilter     bool `json:"canChangeStoreFilter"`
}

var fold = cases.Fold()

// Resolve computes the capability set for a user. Pure function, no I/O.
func Resolve(u users.User) Capabilities {
	caps := Capabilities{
		CanCreateOrders:      u.Role == users.RoleAdmin || u.Role == users.RoleWorker,
		CanChangeStoreFilter: u.Role == users.RoleAdmin,
	}

	caps.CanModifyFinancialFields = u.Role == users.RoleAdmin ||
		(u.Role == users.RoleWorker && isPrivilegedPosition(u.Position)) ||
		(u.Role == users.RoleCompany && u.CompanyOwnerOnly)

	// Solo installer companies and multi-employee companies intentionally
	// share one visibility profile.
	caps.IsOnePersonCompany = (u.Role == users.RoleInstaller && u.CompanyID != nil && u.CompanyName != nil) ||
		u.Role == users.RoleCompany

	caps.CanMarkSettlement = caps.CanModifyFinancialFields || caps.IsOnePersonCompany

	caps.IsTransporter = u.Role == users.RoleInstaller && anyServiceContains(u.Services, serviceTransport)
	caps.IsInstaller = u.Role == users.RoleInstaller || anyServiceContains(u.Services, serviceInstallation)

	return caps
}

func isPrivilegedPosition(position *string) bool {
	if position == nil {
		return false
	}
	switch *position {
	case users.PositionManager, users.PositionDeputy:
		return true
	default:
		return false
	}
}

func anyServiceContains(services []string, needle string) bool {
	folded := fold.String(needle)
	for _, s := range services {
		if strings.Contains(fold.String(s), folded) {
			return true
		}
	}
	return false
}
