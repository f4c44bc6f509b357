package businesses

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// ScopeMiddleware resolves the {businessID} route param into a tenant scope
// and the actor's membership role. Requests from non-members are rejected.
func ScopeMiddleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromContext(r.Context())
			if actor == nil {
				httpx.Error(w, r, httpx.ErrUnauthenticated)
				return
			}
			businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
			if err != nil || businessID <= 0 {
				httpx.Error(w, r, fmt.Errorf("%w: invalid business id", httpx.ErrValidation))
				return
			}
			role, err := service.ResolveRole(r.Context(), businessID, actor.UserID)
			if err != nil {
				httpx.Error(w, r, err)
				return
			}
			scoped := *actor
			scoped.Role = role
			ctx := shared.ContextWithActor(r.Context(), &scoped)
			ctx = shared.ContextWithScope(ctx, shared.Scope{BusinessID: businessID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrivileged rejects members without the ADMIN or OWNER role.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := shared.ActorFromContext(r.Context())
		if actor == nil {
			httpx.Error(w, r, httpx.ErrUnauthenticated)
			return
		}
		if !actor.Role.Privileged() {
			httpx.Error(w, r, fmt.Errorf("%w: admin role required", httpx.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}
