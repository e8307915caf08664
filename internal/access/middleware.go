package access

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/belpol-ops/belpol-ops/internal/platform/httpx"
	"github.com/belpol-ops/belpol-ops/internal/shared"
	"github.com/belpol-ops/belpol-ops/internal/users"
)

// Middleware resolves the session user into an Actor and gates routes on
// capability checks.
type Middleware struct {
	Users  *users.Service
	Logger *slog.Logger
}

// Authenticate loads the current user, resolves capabilities and stores the
// actor in the request context. Requests without a valid session get a 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || strings.TrimSpace(sess.User()) == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, err := m.Users.Get(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("load session user", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		actor := Actor{User: *user, Caps: Resolve(*user)}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole gates a route group on membership in the given roles.
func RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.User.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

// Require gates a route group on a capability predicate.
func Require(check func(Capabilities) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !check(actor.Caps) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
