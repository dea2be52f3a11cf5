package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/services"
	"github.com/lmsweb/portal/internal/views"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps the moderation flows
type AdminService interface {
	// Method Dashboard loads users and pending courses together.
	Dashboard(ctx context.Context, authCtx auth.AuthContext) (services.Dashboard, error)
	// Method RegisterUser creates an account with the given role.
	RegisterUser(ctx context.Context, authCtx auth.AuthContext, req models.RegisterUserRequest) error
}

// CommandDispatcher runs dashboard row actions
type CommandDispatcher interface {
	Dispatch(ctx context.Context, authCtx auth.AuthContext, req services.CommandRequest) (services.CommandResult, error)
}

// AdminHandler handles the admin dashboard and the row action commands
type AdminHandler struct {
	BaseHandler
	service    AdminService
	dispatcher CommandDispatcher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, dispatcher CommandDispatcher, renderer *views.Renderer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger, Views: renderer},
		service:     svc,
		dispatcher:  dispatcher,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth.RoleAdmin))

		r.Get("/dashboard-admin", h.Dashboard)
		r.Post("/admin/register", h.RegisterSubmit)
		r.Get("/api/admin/dashboard", h.DashboardJSON)
		r.Post("/api/admin/register", h.Register)
	})

	// Commands are shared by the admin and instructor dashboards; each command checks its own role
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())

		r.Post("/commands", h.CommandSubmit)
		r.Post("/api/commands", h.Command)
	})
}

// Dashboard handles GET /dashboard-admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_dashboard", h.page(r, "Admin Dashboard", d))
}

// DashboardJSON handles GET /api/admin/dashboard
// @Summary Admin dashboard
// @Description Return all users and the courses awaiting approval. Either failing fails the request
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Dashboard
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Failure 502 {object} errorResponse "Backend unavailable"
// @Router /admin/dashboard [get]
func (h *AdminHandler) DashboardJSON(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, d)
}

// RegisterSubmit handles POST /admin/register
func (h *AdminHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	req := models.RegisterUserRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     auth.Role(r.FormValue("role")),
	}
	if err := h.service.RegisterUser(r.Context(), auth.FromContext(r.Context()), req); err != nil {
		if apperr.KindOf(err) == apperr.KindAuthMissing {
			h.renderError(w, r, err)
			return
		}
		_, body := errorBody(err)
		redirectWithFlash(w, r, "/dashboard-admin", "Registration failed: "+body.Error)
		return
	}
	redirectWithFlash(w, r, "/dashboard-admin", "User created successfully!")
}

// Register handles POST /api/admin/register
// @Summary Register a user
// @Description Create an account with a role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RegisterUserRequest true "New account"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} errorResponse "Invalid request or email taken"
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Router /admin/register [post]
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	if err := h.service.RegisterUser(r.Context(), auth.FromContext(r.Context()), req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, models.MessageResponse{Message: "User created successfully!"})
}

// CommandSubmit handles POST /commands from the dashboard row buttons
func (h *AdminHandler) CommandSubmit(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())
	req := services.CommandRequest{
		Command: services.Command(r.FormValue("command")),
		Role:    auth.Role(r.FormValue("role")),
	}
	if raw := r.FormValue("userId"); raw != "" {
		id, err := parseID(raw, "userId")
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		req.UserID = id
	}
	if raw := r.FormValue("courseId"); raw != "" {
		id, err := parseID(raw, "courseId")
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		req.CourseID = id
	}

	result, err := h.dispatcher.Dispatch(r.Context(), authCtx, req)
	if err != nil {
		if e, ok := apperr.As(err); ok && e.HTTPStatus() == http.StatusUnauthorized {
			h.renderError(w, r, err)
			return
		}
		_, body := errorBody(err)
		redirectWithFlash(w, r, authCtx.Role.DashboardPath(), body.Error)
		return
	}
	if result.Redirect != "" {
		http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
		return
	}
	redirectWithFlash(w, r, authCtx.Role.DashboardPath(), result.Message)
}

// Command handles POST /api/commands
// @Summary Run a dashboard command
// @Description Dispatch a row action: save-role, delete-user, approve-course, remove-course, edit-course, delete-course or publish-course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CommandRequest true "Command"
// @Success 200 {object} services.CommandResult
// @Failure 400 {object} errorResponse "Unknown command or missing reference"
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Router /commands [post]
func (h *AdminHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req services.CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	result, err := h.dispatcher.Dispatch(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}
