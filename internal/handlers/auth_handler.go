package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/views"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps the login flow
type AuthService interface {
	// Method Login authenticates against the backend.
	//
	// Returns the session's AuthContext, or a ValidationFailed/RequestFailed error.
	Login(ctx context.Context, email, password string) (auth.AuthContext, error)
}

// SessionOptions configures the session cookies
type SessionOptions struct {
	CookieName string
	Secure     bool
}

// loginResponse is the JSON login answer
type loginResponse struct {
	Token    string    `json:"token"`
	Role     auth.Role `json:"role"`
	Redirect string    `json:"redirect"`
}

// AuthHandler handles login and logout
type AuthHandler struct {
	BaseHandler
	service AuthService
	session SessionOptions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, session SessionOptions, renderer *views.Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger, Views: renderer},
		service:     svc,
		session:     session,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if authCtx := auth.FromContext(r.Context()); authCtx.Authenticated() && authCtx.Role != "" {
		http.Redirect(w, r, authCtx.Role.DashboardPath(), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", h.page(r, "Login", ""))
}

// Login handles POST /login and POST /api/auth/login
// @Summary Log in
// @Description Authenticate with email and password. Stores the token in the session cookie and returns the dashboard for the role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 400 {object} errorResponse "Invalid credentials format"
// @Failure 401 {object} errorResponse "Invalid email or password"
// @Failure 502 {object} errorResponse "Backend unavailable"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			h.RespondAppError(w, r, err)
			return
		}
	} else {
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}

	authCtx, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if wantsJSON(r) {
			h.RespondAppError(w, r, err)
			return
		}
		status, body := errorBody(err)
		p := h.page(r, "Login", req.Email)
		p.Error = body.Error
		p.Fields = fieldMessages(err)
		h.render(w, r, status, "login", p)
		return
	}

	h.setSession(w, authCtx)
	h.Logger.Info("user logged in",
		zap.String("subject", authCtx.Subject),
		zap.String("role", string(authCtx.Role)),
	)

	if wantsJSON(r) {
		h.RespondJSON(w, http.StatusOK, loginResponse{
			Token:    authCtx.Token,
			Role:     authCtx.Role,
			Redirect: authCtx.Role.DashboardPath(),
		})
		return
	}
	http.Redirect(w, r, authCtx.Role.DashboardPath(), http.StatusSeeOther)
}

// Logout handles POST /logout and POST /api/auth/logout
// @Summary Log out
// @Description Clear the session cookies
// @Tags auth
// @Success 204 "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) setSession(w http.ResponseWriter, authCtx auth.AuthContext) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    authCtx.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RoleCookieName,
		Value:    string(authCtx.Role),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	for _, name := range []string{h.session.CookieName, middleware.RoleCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   h.session.Secure,
		})
	}
}
