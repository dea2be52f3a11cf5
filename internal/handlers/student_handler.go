package handlers

import (
	"context"
	"fmt"
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

// StudentService is the interface that wraps the catalog, enrollment and progression flows
type StudentService interface {
	// Method Catalog lists the approved courses. No token is required.
	Catalog(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error)
	// Method Enroll enrolls the caller. Only students may enroll.
	Enroll(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	// Method MyCourses lists the caller's enrolled courses with their progress.
	MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]services.EnrolledCourseView, error)
	// Method CourseView loads an enrolled course as ordered lesson cards.
	CourseView(ctx context.Context, authCtx auth.AuthContext, courseID int64) (services.CourseView, error)
	// Method CompleteLesson completes an accessible lesson once the backend confirms it.
	//
	// Returns the transition and the updated course view.
	CompleteLesson(ctx context.Context, authCtx auth.AuthContext, courseID, lessonID int64) (services.CompletionResult, error)
}

// StudentHandler handles the catalog and the student pages and API
type StudentHandler struct {
	BaseHandler
	service StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(svc StudentService, renderer *views.Renderer, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: BaseHandler{Logger: logger, Views: renderer},
		service:     svc,
	}
}

// RegisterRoutes registers all student handler routes
func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/home", h.Home)
	r.Get("/api/courses", h.Catalog)

	// Enroll is open to every role so non-students get a clear refusal
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/student/enroll/{id}", h.EnrollSubmit)
		r.Post("/api/student/enroll/{id}", h.Enroll)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth.RoleStudent))

		r.Get("/dashboard-student", h.Dashboard)
		r.Get("/mycourse", h.Dashboard)
		r.Get("/student/course/{id}", h.CoursePage)
		r.Post("/student/course/{id}/lessons/{lessonId}/complete", h.CompleteSubmit)

		r.Route("/api/student", func(r chi.Router) {
			r.Get("/my-courses", h.MyCourses)
			r.Get("/courses/{id}", h.Course)
			r.Post("/courses/{id}/lessons/{lessonId}/complete", h.CompleteLesson)
		})
	})
}

// Home handles GET /
func (h *StudentHandler) Home(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.Catalog(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home", h.page(r, "Available Courses", courses))
}

// Catalog handles GET /api/courses
// @Summary List approved courses
// @Description Public catalog of approved courses
// @Tags student
// @Produce json
// @Success 200 {array} models.Course
// @Failure 502 {object} errorResponse "Backend unavailable"
// @Router /courses [get]
func (h *StudentHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.Catalog(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// EnrollSubmit handles POST /student/enroll/{id}
func (h *StudentHandler) EnrollSubmit(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.service.Enroll(r.Context(), auth.FromContext(r.Context()), courseID); err != nil {
		if e, ok := apperr.As(err); ok && e.HTTPStatus() != http.StatusUnauthorized {
			_, body := errorBody(err)
			redirectWithFlash(w, r, "/", "Enroll failed: "+body.Error)
			return
		}
		h.renderError(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/dashboard-student", "Enrolled successfully")
}

// Enroll handles POST /api/student/enroll/{id}
// @Summary Enroll in a course
// @Description Enroll the calling student in a course. Other roles are refused with 403
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} errorResponse "Already enrolled"
// @Failure 403 {object} errorResponse "Only students can enroll in courses."
// @Router /student/enroll/{id} [post]
func (h *StudentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	if err := h.service.Enroll(r.Context(), auth.FromContext(r.Context()), courseID); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Enrolled successfully"})
}

// Dashboard handles GET /dashboard-student
func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "student_dashboard", h.page(r, "My Courses", courses))
}

// CoursePage handles GET /student/course/{id}
func (h *StudentHandler) CoursePage(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view, err := h.service.CourseView(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "student_course", h.page(r, view.Course.Title, view))
}

// CompleteSubmit handles POST /student/course/{id}/lessons/{lessonId}/complete
func (h *StudentHandler) CompleteSubmit(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	lessonID, err := pathID(r, "lessonId")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	back := fmt.Sprintf("/student/course/%d", courseID)
	if _, err := h.service.CompleteLesson(r.Context(), auth.FromContext(r.Context()), courseID, lessonID); err != nil {
		if e, ok := apperr.As(err); ok && e.HTTPStatus() != http.StatusUnauthorized {
			_, body := errorBody(err)
			redirectWithFlash(w, r, back, body.Error)
			return
		}
		h.renderError(w, r, err)
		return
	}
	redirectWithFlash(w, r, back, "Lesson marked as complete.")
}

// MyCourses handles GET /api/student/my-courses
// @Summary List my enrolled courses
// @Description List the calling student's courses with completed/total lesson counts and progress
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.EnrolledCourseView
// @Failure 401 {object} errorResponse "Authentication required"
// @Router /student/my-courses [get]
func (h *StudentHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// Course handles GET /api/student/courses/{id}
// @Summary Get an enrolled course
// @Description Return the course lessons in order with their locked/accessible/completed state and the aggregate progress
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} services.CourseView
// @Failure 400 {object} errorResponse "Invalid course ID"
// @Failure 403 {object} errorResponse "Not enrolled"
// @Router /student/courses/{id} [get]
func (h *StudentHandler) Course(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	view, err := h.service.CourseView(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, view)
}

// CompleteLesson handles POST /api/student/courses/{id}/lessons/{lessonId}/complete
// @Summary Complete a lesson
// @Description Mark an accessible lesson complete. The next lesson unlocks only after the backend confirms
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} services.CompletionResult
// @Failure 400 {object} errorResponse "Lesson locked or already completed"
// @Failure 401 {object} errorResponse "Authentication required"
// @Router /student/courses/{id}/lessons/{lessonId}/complete [post]
func (h *StudentHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	lessonID, err := pathID(r, "lessonId")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	result, err := h.service.CompleteLesson(r.Context(), auth.FromContext(r.Context()), courseID, lessonID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}
