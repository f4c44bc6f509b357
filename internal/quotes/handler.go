package quotes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes quote endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers quote-scoped routes relative to /quotes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{quoteID}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Patch("/{quoteID}", h.update)
		r.Delete("/{quoteID}", h.delete)
		r.Post("/{quoteID}/transition", h.transition)
	})
}

// MountProjectRoutes registers project-scoped routes relative to /projects.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.Get("/{projectID}/quotes", h.listByProject)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Post("/{projectID}/quotes", h.create)
		r.Post("/{projectID}/reference-quote", h.setReference)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	quote, err := h.service.Create(r.Context(), scope.BusinessID, projectID, req)
	if err != nil {
		h.logger.Error("create quote", slog.Int64("projectId", projectID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, quote)
}

func (h *Handler) listByProject(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	quotes, err := h.service.ListByProject(r.Context(), scope.BusinessID, projectID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, quotes, len(quotes))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	quoteID, err := pathID(r, "quoteID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	quote, err := h.service.Get(r.Context(), scope.BusinessID, quoteID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, quote)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	quoteID, err := pathID(r, "quoteID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch UpdateQuoteRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	quote, err := h.service.Update(r.Context(), scope.BusinessID, quoteID, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, quote)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	quoteID, err := pathID(r, "quoteID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	quote, err := h.service.Transition(r.Context(), scope.BusinessID, quoteID, req)
	if err != nil {
		h.logger.Error("quote transition", slog.Int64("quoteId", quoteID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, quote)
}

func (h *Handler) setReference(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := pathID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req SetReferenceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	if err := h.service.SetAsReference(r.Context(), scope.BusinessID, projectID, req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	quoteID, err := pathID(r, "quoteID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), scope.BusinessID, quoteID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
