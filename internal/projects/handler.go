package projects

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes project and pricing-line endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes relative to /businesses/{businessID}/projects.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{projectID}", h.show)
	r.Get("/{projectID}/services", h.listLines)
	r.Get("/{projectID}/pricing", h.pricing)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Post("/", h.create)
		r.Patch("/{projectID}", h.update)
		r.Post("/{projectID}/services", h.addLine)
		r.Patch("/{projectID}/services/{lineID}", h.updateLine)
		r.Delete("/{projectID}/services/{lineID}", h.deleteLine)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	req := ListProjectsRequest{BusinessID: scope.BusinessID}
	if clientID, err := strconv.ParseInt(r.URL.Query().Get("clientId"), 10, 64); err == nil && clientID > 0 {
		req.ClientID = &clientID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
	}
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	req.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	projects, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list projects", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, projects, total)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	project, err := h.service.Get(r.Context(), scope.BusinessID, projectID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, project)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req CreateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	project, err := h.service.Create(r.Context(), scope.BusinessID, req)
	if err != nil {
		h.logger.Error("create project", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, project)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch UpdateProjectRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	project, err := h.service.Update(r.Context(), scope.BusinessID, projectID, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, project)
}

func (h *Handler) listLines(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if _, err := h.service.Get(r.Context(), scope.BusinessID, projectID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	lines, err := h.service.repo.ListLines(r.Context(), projectID)
	if err != nil {
		h.logger.Error("list project lines", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, lines, len(lines))
}

func (h *Handler) pricing(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	priced, err := h.service.ResolvedPricing(r.Context(), scope.BusinessID, projectID)
	if err != nil {
		h.logger.Error("resolve pricing", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	total, missing := PricingTotal(priced)
	httpx.Item(w, http.StatusOK, map[string]any{
		"lines":        priced,
		"totalCents":   total,
		"missingPrice": missing,
	})
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req AddLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	line, err := h.service.AddLine(r.Context(), scope.BusinessID, projectID, req)
	if err != nil {
		h.logger.Error("add project line", slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, line)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	lineID, err := parseID(r, "lineID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch UpdateLineRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	line, err := h.service.UpdateLine(r.Context(), scope.BusinessID, projectID, lineID, patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, line)
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	projectID, err := parseID(r, "projectID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	lineID, err := parseID(r, "lineID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteLine(r.Context(), scope.BusinessID, projectID, lineID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
