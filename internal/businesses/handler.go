package businesses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes business settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes relative to /businesses/{businessID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.With(RequirePrivileged).Patch("/", h.updateSettings)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	business, err := h.service.Get(r.Context(), scope.BusinessID)
	if err != nil {
		h.logger.Error("get business", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, business)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var patch UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	business, err := h.service.UpdateSettings(r.Context(), scope.BusinessID, patch)
	if err != nil {
		h.logger.Error("update business settings", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, business)
}
