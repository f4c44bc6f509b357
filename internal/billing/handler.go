package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes the billing summary endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes relative to /projects.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{projectID}/billing/summary", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil || projectID <= 0 {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	summary, err := h.service.GetSummary(r.Context(), scope.BusinessID, projectID)
	if err != nil {
		h.logger.Error("billing summary", slog.Int64("projectId", projectID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, summary)
}
