package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/auth"
	"github.com/belpol-ops/belpol-ops/internal/companies"
	"github.com/belpol-ops/belpol-ops/internal/filters"
	"github.com/belpol-ops/belpol-ops/internal/observability"
	"github.com/belpol-ops/belpol-ops/internal/orders"
	"github.com/belpol-ops/belpol-ops/internal/reports"
	"github.com/belpol-ops/belpol-ops/internal/schedule"
	"github.com/belpol-ops/belpol-ops/internal/shared"
	"github.com/belpol-ops/belpol-ops/internal/stores"
	"github.com/belpol-ops/belpol-ops/internal/users"
	"github.com/belpol-ops/belpol-ops/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AccessMiddleware access.Middleware

	AuthHandler      *auth.Handler
	FiltersHandler   *filters.Handler
	OrdersHandler    *orders.Handler
	UsersHandler     *users.Handler
	StoresHandler    *stores.Handler
	CompaniesHandler *companies.Handler
	ScheduleHandler  *schedule.Handler
	ReportsHandler   *reports.Handler
	JobsHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AccessMiddleware.Authenticate)
				params.AuthHandler.MountSessionRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AccessMiddleware.Authenticate)

			r.Route("/orders", params.OrdersHandler.MountRoutes)
			r.Route("/filters", params.FiltersHandler.MountRoutes)
			r.Route("/schedule", params.ScheduleHandler.MountRoutes)
			r.Route("/companies", params.CompaniesHandler.MountRoutes)

			r.Route("/stores", func(r chi.Router) {
				params.StoresHandler.MountRoutes(r)
				r.Group(func(r chi.Router) {
					r.Use(access.RequireRole(users.RoleAdmin))
					params.StoresHandler.MountAdminRoutes(r)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(access.RequireRole(users.RoleAdmin))
				params.UsersHandler.MountRoutes(r)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(access.Require(func(c access.Capabilities) bool { return c.CanModifyFinancialFields }))
				params.ReportsHandler.MountRoutes(r)
			})

			if params.JobsHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(access.RequireRole(users.RoleAdmin))
					params.JobsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
