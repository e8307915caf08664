package filters

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/belpol-ops/belpol-ops/internal/access"
	"github.com/belpol-ops/belpol-ops/internal/platform/httpx"
	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Handler exposes the active filter set and default-filter record endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	storage   Storage
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository, storage Storage) *Handler {
	return &Handler{logger: logger, repo: repo, storage: storage, validator: validator.New()}
}

// MountRoutes registers filter routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.getActive)
	r.Post("/", h.addCriterion)
	r.Delete("/{id}", h.removeCriterion)
	r.Delete("/", h.clearActive)

	r.Get("/default", h.getDefault)
	r.Put("/default", h.putDefault)
	r.Delete("/default", h.deleteDefault)
}

type activeFilterResponse struct {
	Criteria []Criterion `json:"criteria"`
}

func (h *Handler) set(userID int64) *Set {
	return NewSet(h.logger, h.storage, h.repo, userID)
}

func (h *Handler) getActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())
	criteria := h.set(actor.User.ID).Load(r.Context())
	httpx.JSON(w, http.StatusOK, activeFilterResponse{Criteria: criteria})
}

func (h *Handler) addCriterion(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	var criterion Criterion
	if err := httpx.DecodeJSON(r, &criterion); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed criterion")
		return
	}

	set := h.set(actor.User.ID)
	set.Load(r.Context())
	criteria := set.Add(r.Context(), criterion)
	httpx.JSON(w, http.StatusOK, activeFilterResponse{Criteria: criteria})
}

func (h *Handler) removeCriterion(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	set := h.set(actor.User.ID)
	set.Load(r.Context())
	criteria := set.Remove(r.Context(), chi.URLParam(r, "id"))
	httpx.JSON(w, http.StatusOK, activeFilterResponse{Criteria: criteria})
}

func (h *Handler) clearActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	set := h.set(actor.User.ID)
	set.Clear(r.Context())
	httpx.NoContent(w)
}

type defaultFilterResponse struct {
	FiltersData []Criterion `json:"filtersData"`
}

type defaultFilterRequest struct {
	FiltersData []Criterion `json:"filtersData" validate:"required"`
}

func (h *Handler) getDefault(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	criteria, err := h.repo.GetDefault(r.Context(), actor.User.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get default filter", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if criteria == nil {
		criteria = []Criterion{}
	}
	httpx.JSON(w, http.StatusOK, defaultFilterResponse{FiltersData: criteria})
}

func (h *Handler) putDefault(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	var req defaultFilterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.repo.SaveDefault(r.Context(), actor.User.ID, dedupe(req.FiltersData)); err != nil {
		h.logger.Error("save default filter", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, defaultFilterResponse{FiltersData: req.FiltersData})
}

func (h *Handler) deleteDefault(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.ActorFromContext(r.Context())

	if err := h.repo.DeleteDefault(r.Context(), actor.User.ID); err != nil {
		h.logger.Error("delete default filter", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
