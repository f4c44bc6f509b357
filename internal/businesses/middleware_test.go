package businesses

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

type memBusinessRepo struct {
	biz   *Business
	roles map[int64]shared.Role
}

func (m *memBusinessRepo) Get(_ context.Context, id int64) (*Business, error) {
	if m.biz == nil || m.biz.ID != id {
		return nil, fmt.Errorf("%w: business", httpx.ErrNotFound)
	}
	return m.biz, nil
}

func (m *memBusinessRepo) UpdateSettings(_ context.Context, _ int64, _ UpdateSettingsRequest) (*Business, error) {
	return m.biz, nil
}

func (m *memBusinessRepo) MemberRole(_ context.Context, _, userID int64) (shared.Role, error) {
	role, ok := m.roles[userID]
	if !ok {
		return "", fmt.Errorf("%w: not a member", httpx.ErrForbidden)
	}
	return role, nil
}

func scopedRouter(service *Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/businesses/{businessID}", func(r chi.Router) {
		r.Use(ScopeMiddleware(service))
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			scope := shared.ScopeFromContext(r.Context())
			fmt.Fprintf(w, "business=%d role=%s", scope.BusinessID, shared.ActorFromContext(r.Context()).Role)
		})
		r.With(RequirePrivileged).Post("/admin", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func newScopedService() *Service {
	return NewService(&memBusinessRepo{
		biz: &Business{ID: 1, Name: "StudioFief", Currency: "EUR"},
		roles: map[int64]shared.Role{
			10: shared.RoleAdmin,
			11: shared.RoleMember,
		},
	})
}

func asActor(req *http.Request, userID int64) *http.Request {
	actor := &shared.Actor{UserID: userID, Email: "user@studiofief.fr"}
	return req.WithContext(shared.ContextWithActor(req.Context(), actor))
}

func TestScopeMiddlewareRejectsAnonymous(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/businesses/1/ping", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScopeMiddlewareRejectsNonMember(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodGet, "/businesses/1/ping", nil), 99))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScopeMiddlewareResolvesRoleAndScope(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodGet, "/businesses/1/ping", nil), 10))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "business=1 role=ADMIN", rec.Body.String())
}

func TestScopeMiddlewareRejectsBadBusinessID(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodGet, "/businesses/zero/ping", nil), 10))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequirePrivilegedBlocksMember(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodPost, "/businesses/1/admin", nil), 11))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePrivilegedAllowsAdmin(t *testing.T) {
	router := scopedRouter(newScopedService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodPost, "/businesses/1/admin", nil), 10))

	require.Equal(t, http.StatusNoContent, rec.Code)
}
