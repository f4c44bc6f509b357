package clients

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes client directory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes relative to /businesses/{businessID}/clients.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	req := ListClientsRequest{
		BusinessID: scope.BusinessID,
		Search:     r.URL.Query().Get("search"),
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		k := Kind(kind)
		req.Kind = &k
	}
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	req.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	clients, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, clients, total)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	client, err := h.service.Get(r.Context(), scope.BusinessID, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, client)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req CreateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	client, err := h.service.Create(r.Context(), scope.BusinessID, req)
	if err != nil {
		h.logger.Error("create client", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, client)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	var patch UpdateClientRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	client, err := h.service.Update(r.Context(), scope.BusinessID, id, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, client)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), scope.BusinessID, id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}
