package payments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Handler exposes ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes relative to /invoices.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{invoiceID}/payments", h.list)
	r.Get("/{invoiceID}/payments/prefill", h.prefill)
	r.Group(func(r chi.Router) {
		r.Use(businesses.RequirePrivileged)
		r.Post("/{invoiceID}/payments", h.record)
		r.Delete("/{invoiceID}/payments/{paymentID}", h.delete)
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := ledgerID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, httpx.ErrValidation)
		return
	}
	payment, invoice, err := h.service.Record(r.Context(), scope.BusinessID, invoiceID, req)
	if err != nil {
		h.logger.Error("record payment", slog.Int64("invoiceId", invoiceID), slog.Any("error", err))
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusCreated, map[string]any{"payment": payment, "invoice": invoice})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := ledgerID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	paymentID, err := ledgerID(r, "paymentID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	invoice, err := h.service.Delete(r.Context(), scope.BusinessID, invoiceID, paymentID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, invoice)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := ledgerID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	payments, err := h.service.ListByInvoice(r.Context(), scope.BusinessID, invoiceID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Items(w, http.StatusOK, payments, len(payments))
}

func (h *Handler) prefill(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	invoiceID, err := ledgerID(r, "invoiceID")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	fraction, _ := strconv.Atoi(r.URL.Query().Get("fraction"))
	prefill, err := h.service.PrefillAmount(r.Context(), scope.BusinessID, invoiceID, fraction)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Item(w, http.StatusOK, prefill)
}

func ledgerID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
