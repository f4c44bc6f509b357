package invoices

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers invoice-scoped routes relative to /invoices.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{invoiceID}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Patch("/{invoiceID}", h.update)
		r.Delete("/{invoiceID}", h.delete)
		r.Post("/{invoiceID}/transition", h.transition)
	})
}

// MountQuoteRoutes registers the invoice-from-quote route relative to
// /quotes.
func (h *Handler) MountQuoteRoutes(r chi.Router) {
	r.With(businesses.RequirePrivileged).Post("/{quoteID}/invoices", h.createFromQuote)
}

// MountProjectRoutes registers project-scoped routes relative to /projects.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.Get("/{projectID}/invoices", h.listByProject)
	r.With(businesses.RequirePrivileged).Post("/{projectID}/invoices/staged", h.createStaged)
}

func (h *Handler) createFromQuote(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	quoteID, err := routeID(r, "quoteID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	invoice, err := h.service.CreateFromQuote(r.Context(), scope.BusinessID, quoteID)
	if err != nil {
		h.logger.Error("create invoice from quote", slog.Int64("quoteId", quoteID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, invoice)
}

func (h *Handler) createStaged(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := routeID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req CreateStagedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	invoice, err := h.service.CreateStaged(r.Context(), scope.BusinessID, projectID, req)
	if err != nil {
		h.logger.Error("create staged invoice", slog.Int64("projectId", projectID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, invoice)
}

func (h *Handler) listByProject(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := routeID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	invoices, err := h.service.ListByProject(r.Context(), scope.BusinessID, projectID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, invoices, len(invoices))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := routeID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	invoice, err := h.service.Get(r.Context(), scope.BusinessID, invoiceID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, invoice)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := routeID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch UpdateInvoiceRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	invoice, err := h.service.Update(r.Context(), scope.BusinessID, invoiceID, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, invoice)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := routeID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	invoice, err := h.service.Transition(r.Context(), scope.BusinessID, invoiceID, req)
	if err != nil {
		h.logger.Error("invoice transition", slog.Int64("invoiceId", invoiceID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, invoice)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := routeID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), scope.BusinessID, invoiceID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func routeID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
