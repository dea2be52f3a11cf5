package middleware

import (
	"net/http"
	"strings"

	"github.com/lmsweb/portal/internal/auth"
	"go.uber.org/zap"
)

// RoleCookieName holds the role returned by the backend at login
const RoleCookieName = "lms_role"

// LoginPath is where pages send callers without a usable token
const LoginPath = "/login"

// SessionMiddleware builds the request's AuthContext once, from the Authorization header or the
// session cookie. Requests without a usable token continue as auth.Anonymous
func SessionMiddleware(parser *auth.TokenParser, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(cookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			var fallback auth.Role
			if cookie, err := r.Cookie(RoleCookieName); err == nil {
				fallback, _ = auth.ParseRole(cookie.Value)
			}

			authCtx, err := parser.Parse(token, fallback)
			if err != nil {
				logger.Debug("ignoring unusable session token",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), authCtx)))
		})
	}
}

// RequireAuth blocks callers without a token, and callers whose role is not listed when roles
// are given. API callers get a JSON 401/403, page callers are redirected to the login page
func RequireAuth(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.FromContext(r.Context())

			var status int
			switch {
			case !authCtx.Authenticated():
				status = http.StatusUnauthorized
			case len(roles) > 0 && authCtx.RequireRole(roles...) != nil:
				status = http.StatusForbidden
			default:
				next.ServeHTTP(w, r)
				return
			}

			if wantsJSON(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if status == http.StatusUnauthorized {
					_, _ = w.Write([]byte(`{"error":"authentication required"}`))
				} else {
					_, _ = w.Write([]byte(`{"error":"insufficient permissions"}`))
				}
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
