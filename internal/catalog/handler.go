package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	manager *Manager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, manager *Manager) *Handler {
	return &Handler{logger: logger, manager: manager}
}

// MountRoutes registers routes relative to /businesses/{businessID}/catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/services", h.list)
	r.Get("/services/{id}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Post("/services", h.create)
		r.Patch("/services/{id}", h.update)
		r.Delete("/services/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	includeArchived := r.URL.Query().Get("archived") == "1"
	services, err := h.manager.List(r.Context(), scope.BusinessID, includeArchived)
	if err != nil {
		h.logger.Error("list catalog services", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, services, len(services))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	service, err := h.manager.Get(r.Context(), scope.BusinessID, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, service)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req CreateServiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	service, err := h.manager.Create(r.Context(), scope.BusinessID, req)
	if err != nil {
		h.logger.Error("create catalog service", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, service)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	var patch UpdateServiceRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	service, err := h.manager.Update(r.Context(), scope.BusinessID, id, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, service)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	if err := h.manager.Delete(r.Context(), scope.BusinessID, id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}
