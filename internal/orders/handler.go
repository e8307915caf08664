package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/filters"
	"github.com/belpol-ops/belpol-ops/internal/platform/httpx"
	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Handler wires the order REST endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

type listResponse struct {
	Orders     []OrderWithDetails `json:"orders"`
	Pagination shared.Pagination  `json:"pagination"`
}

// List serves the order listing. Date parameters are normalized to closed
// day windows so the SQL filter carries the exact bounds; the compiled
// predicate re-checks the fetched page with the same semantics.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())
	q := r.URL.Query()

	req := ListOrdersRequest{Search: q.Get("search")}

	if status := q.Get("status"); status != "" && status != "all" {
		s := InstallationStatus(status)
		req.Status = &s
	}
	if store := q.Get("store"); store != "" {
		id, err := strconv.ParseInt(store, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid store parameter")
			return
		}
		req.StoreID = &id
	}
	req.InstallationDateFrom = parseDay(q.Get("installationDateFrom"))
	req.InstallationDateTo = parseDay(q.Get("installationDateTo"))
	req.TransportDateFrom = parseDay(q.Get("transportDateFrom"))
	req.TransportDateTo = parseDay(q.Get("transportDateTo"))
	pinSingleDayBounds(&req)

	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	req.Limit = perPage
	req.Offset = (page - 1) * perPage

	result, total, err := h.service.List(r.Context(), req, actor)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if pred := datePredicate(req); pred != nil {
		narrowed := result[:0]
		for _, o := range result {
			if pred(o.Subject()) {
				narrowed = append(narrowed, o)
			}
		}
		result = narrowed
	}
	if result == nil {
		result = []OrderWithDetails{}
	}

	httpx.JSON(w, http.StatusOK, listResponse{
		Orders:     result,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

// Show serves a single order.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Create inserts a new order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.Create(r.Context(), req, actor.User.ID)
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// Update patches general order fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req UpdateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.UpdateGeneral(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// FinancialStatus patches invoice and settlement flags.
func (h *Handler) FinancialStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req FinancialStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	order, err := h.service.UpdateFinancialStatus(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// SettlementStatus toggles the settlement flag via the dedicated path.
func (h *Handler) SettlementStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req SettlementStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.UpdateSettlement(r.Context(), id, *req.Value)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// AssignInstaller books an installer onto the order.
func (h *Handler) AssignInstaller(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req AssignInstallerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.AssignInstaller(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// AssignTransporter books a transporter onto the order.
func (h *Handler) AssignTransporter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req AssignTransporterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.AssignTransporter(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error("order operation failed", slog.Int64("order_id", id), slog.Any("error", err))
	httpx.RespondError(w, err)
}

// pinSingleDayBounds closes from-only date parameters to a same-day window.
// A from without a to means that exact day, and carrying both bounds into
// the SQL filter keeps the counted total in step with the predicate.
func pinSingleDayBounds(req *ListOrdersRequest) {
	if req.InstallationDateFrom != nil && req.InstallationDateTo == nil {
		req.InstallationDateTo = req.InstallationDateFrom
	}
	if req.TransportDateFrom != nil && req.TransportDateTo == nil {
		req.TransportDateTo = req.TransportDateFrom
	}
}

// datePredicate compiles the date-range parameters into an exact predicate.
// Returns nil when no date filter applies.
func datePredicate(req ListOrdersRequest) filters.Predicate {
	var criteria []filters.Criterion
	if req.InstallationDateFrom != nil || req.InstallationDateTo != nil {
		criteria = append(criteria, filters.NewDateRange(
			filters.DateFieldInstallation, req.InstallationDateFrom, req.InstallationDateTo, ""))
	}
	if req.TransportDateFrom != nil || req.TransportDateTo != nil {
		criteria = append(criteria, filters.NewDateRange(
			filters.DateFieldTransport, req.TransportDateFrom, req.TransportDateTo, ""))
	}
	if len(criteria) == 0 {
		return nil
	}
	return filters.Compile(criteria)
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
