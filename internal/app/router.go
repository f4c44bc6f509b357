package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/studiofief/lune/internal/auth"
	"github.com/studiofief/lune/internal/billing"
	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/clients"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/payments"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
	"github.com/studiofief/lune/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthService     *auth.Service
	BusinessService *businesses.Service

	AuthHandler     *auth.Handler
	BusinessHandler *businesses.Handler
	ClientsHandler  *clients.Handler
	CatalogHandler  *catalog.Handler
	ProjectsHandler *projects.Handler
	QuotesHandler   *quotes.Handler
	InvoicesHandler *invoices.Handler
	PaymentsHandler *payments.Handler
	BillingHandler  *billing.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with the application defaults. All
// tenant data hangs off /businesses/{businessID}; the scope middleware turns
// that parameter into the request's tenant context so handlers never read a
// business id from anywhere else.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	authenticated := AuthMiddleware(params.AuthService)

	if params.JobsHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(authenticated)
			params.JobsHandler.MountRoutes(r)
		})
	}

	r.Route("/businesses/{businessID}", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(businesses.ScopeMiddleware(params.BusinessService))

		params.BusinessHandler.MountRoutes(r)

		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/catalog", params.CatalogHandler.MountRoutes)

		r.Route("/projects", func(r chi.Router) {
			params.ProjectsHandler.MountRoutes(r)
			params.QuotesHandler.MountProjectRoutes(r)
			params.InvoicesHandler.MountProjectRoutes(r)
			params.BillingHandler.MountRoutes(r)
		})

		r.Route("/quotes", func(r chi.Router) {
			params.QuotesHandler.MountRoutes(r)
			params.InvoicesHandler.MountQuoteRoutes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			params.InvoicesHandler.MountRoutes(r)
			params.PaymentsHandler.MountRoutes(r)
		})
	})

	return r
}
