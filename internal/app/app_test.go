package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/auth"
	"github.com/studiofief/lune/internal/billing"
	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/clients"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/payments"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, 10*time.Minute, cfg.SummaryCacheTTL)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func testRouter() http.Handler {
	logger := slog.Default()
	return NewRouter(RouterParams{
		Logger:          logger,
		Config:          &Config{AppRequestTimeout: 5 * time.Second},
		AuthService:     nil,
		BusinessService: nil,
		AuthHandler:     auth.NewHandler(logger, nil),
		BusinessHandler: businesses.NewHandler(logger, nil),
		ClientsHandler:  clients.NewHandler(logger, nil),
		CatalogHandler:  catalog.NewHandler(logger, nil),
		ProjectsHandler: projects.NewHandler(logger, nil),
		QuotesHandler:   quotes.NewHandler(logger, nil),
		InvoicesHandler: invoices.NewHandler(logger, nil),
		PaymentsHandler: payments.NewHandler(logger, nil),
		BillingHandler:  billing.NewHandler(logger, nil),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterRejectsMissingBearerToken(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/businesses/1/projects", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	require.False(t, InTestMode())
}
