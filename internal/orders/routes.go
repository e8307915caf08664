package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/belpol-ops/belpol-ops/internal/access"
)

// MountRoutes registers order routes on the provided router. The router is
// expected to run behind the authenticate middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)

	r.Group(func(r chi.Router) {
		r.Use(access.Require(func(c access.Capabilities) bool { return c.CanCreateOrders }))
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
	})

	r.Group(func(r chi.Router) {
		r.Use(access.Require(func(c access.Capabilities) bool { return c.CanModifyFinancialFields }))
		r.Patch("/{id}/financial-status", h.FinancialStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(access.Require(func(c access.Capabilities) bool { return c.CanMarkSettlement }))
		r.Patch("/{id}/settlement-status", h.SettlementStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(access.Require(func(c access.Capabilities) bool { return c.CanCreateOrders || c.IsOnePersonCompany }))
		r.Patch("/{id}/assign-installer", h.AssignInstaller)
		r.Patch("/{id}/assign-transporter", h.AssignTransporter)
	})
}
