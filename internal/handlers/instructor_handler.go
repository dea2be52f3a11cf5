package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/services"
	"github.com/lmsweb/portal/internal/views"
	"go.uber.org/zap"
)

// InstructorService is the interface that wraps the course authoring flows
type InstructorService interface {
	// Method CreateCourse validates the draft, uploads its files in lesson order and saves the course.
	//
	// Nothing is saved when validation or an upload fails.
	CreateCourse(ctx context.Context, authCtx auth.AuthContext, draft composer.CourseDraft) (models.CreatedCourse, error)
	// Method LoadForEdit reads a saved course into a draft ordered by lessonOrder.
	LoadForEdit(ctx context.Context, authCtx auth.AuthContext, courseID int64) (composer.CourseDraft, error)
	// Method UpdateCourse validates the draft, uploads its files and replaces the saved course.
	UpdateCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64, draft composer.CourseDraft) error
	// Method MyCourses lists the caller's courses.
	MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error)
	// Method EnrolledStudents lists a course's students with their progress.
	EnrolledStudents(ctx context.Context, authCtx auth.AuthContext, courseID int64) ([]services.StudentProgressView, error)
}

// lessonRowResponse is a draft row as the JSON editor API returns it
type lessonRowResponse struct {
	ID              *int64             `json:"id,omitempty"`
	Title           string             `json:"title"`
	ContentType     models.ContentType `json:"contentType"`
	ExistingContent string             `json:"existingContent"`
	LessonOrder     int                `json:"lessonOrder"`
}

// courseDraftResponse is a course loaded for editing
type courseDraftResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Lessons     []lessonRowResponse `json:"lessons"`
}

// enrolledStudentsPage is the enrolled students page data
type enrolledStudentsPage struct {
	CourseID int64
	Students []services.StudentProgressView
}

// InstructorHandler handles course authoring pages and API
type InstructorHandler struct {
	BaseHandler
	service       InstructorService
	maxUploadSize int64
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(svc InstructorService, maxUploadSize int64, renderer *views.Renderer, logger *zap.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler:   BaseHandler{Logger: logger, Views: renderer},
		service:       svc,
		maxUploadSize: maxUploadSize,
	}
}

// RegisterRoutes registers all instructor handler routes
func (h *InstructorHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth.RoleInstructor, auth.RoleAdmin))

		r.Get("/dashboard-instructor", h.Dashboard)
		r.Get("/instructor/create-course", h.CreatePage)
		r.Post("/instructor/create-course", h.CreateSubmit)
		r.Get("/instructor/update-course", h.UpdatePage)
		r.Post("/instructor/update-course", h.UpdateSubmit)
		r.Get("/instructor/enrolled-students", h.EnrolledStudentsPage)

		r.Route("/api/instructor", func(r chi.Router) {
			r.Get("/my-courses", h.MyCourses)
			r.Post("/courses", h.CreateCourse)
			r.Get("/courses/{id}", h.GetCourse)
			r.Put("/courses/{id}", h.UpdateCourse)
			r.Get("/courses/{id}/enrolled-students", h.EnrolledStudents)
		})
	})
}

// Dashboard handles GET /dashboard-instructor
func (h *InstructorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "instructor_dashboard", h.page(r, "My Courses", courses))
}

// CreatePage handles GET /instructor/create-course
func (h *InstructorHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	form := courseForm{
		Action: "/instructor/create-course",
		Draft:  composer.CourseDraft{Rows: []*composer.LessonRow{composer.NewLessonRow()}},
	}
	h.render(w, r, http.StatusOK, "course_form", h.page(r, "Create Course", form))
}

// CreateSubmit handles POST /instructor/create-course
func (h *InstructorHandler) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	h.submitCourse(w, r, 0)
}

// UpdatePage handles GET /instructor/update-course?id=
func (h *InstructorHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	draft, err := h.service.LoadForEdit(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	form := courseForm{CourseID: courseID, Action: services.EditCoursePath(courseID), Draft: draft}
	h.render(w, r, http.StatusOK, "course_form", h.page(r, "Update Course", form))
}

// UpdateSubmit handles POST /instructor/update-course?id=
func (h *InstructorHandler) UpdateSubmit(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.submitCourse(w, r, courseID)
}

// submitCourse handles both editor forms. Add/remove buttons re-render the form, save runs the composer
func (h *InstructorHandler) submitCourse(w http.ResponseWriter, r *http.Request, courseID int64) {
	authCtx := auth.FromContext(r.Context())
	draft, closeFiles, err := parseCourseForm(r, h.maxUploadSize)
	defer closeFiles()

	form := courseForm{CourseID: courseID, Action: "/instructor/create-course", Draft: draft}
	title := "Create Course"
	if courseID > 0 {
		form.Action = services.EditCoursePath(courseID)
		title = "Update Course"
	}

	if parseFormOp(r).apply(&form.Draft) {
		forgetFiles(form.Draft)
		h.render(w, r, http.StatusOK, "course_form", h.page(r, title, form))
		return
	}

	message := "Course created successfully!"
	if err == nil {
		if courseID == 0 {
			var created models.CreatedCourse
			created, err = h.service.CreateCourse(r.Context(), authCtx, form.Draft)
			courseID = created.ID
		} else {
			err = h.service.UpdateCourse(r.Context(), authCtx, courseID, form.Draft)
			message = "Course updated successfully!"
		}
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuthMissing {
			h.renderError(w, r, err)
			return
		}
		if form.Draft.Rows == nil {
			form.Draft.Rows = []*composer.LessonRow{composer.NewLessonRow()}
		}
		forgetFiles(form.Draft)
		status, body := errorBody(err)
		p := h.page(r, title, form)
		p.Error = body.Error
		p.Fields = fieldMessages(err)
		h.render(w, r, status, "course_form", p)
		return
	}

	h.Logger.Info("course saved", zap.Int64("course_id", courseID))
	redirectWithFlash(w, r, "/dashboard-instructor", message)
}

// EnrolledStudentsPage handles GET /instructor/enrolled-students?courseId=
func (h *InstructorHandler) EnrolledStudentsPage(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "courseId")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	students, err := h.service.EnrolledStudents(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "enrolled_students", h.page(r, "Enrolled Students", enrolledStudentsPage{CourseID: courseID, Students: students}))
}

// MyCourses handles GET /api/instructor/my-courses
// @Summary List my courses
// @Description List the courses owned by the calling instructor
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Course
// @Failure 401 {object} errorResponse "Authentication required"
// @Failure 502 {object} errorResponse "Backend unavailable"
// @Router /instructor/my-courses [get]
func (h *InstructorHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.MyCourses(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /api/instructor/courses
// @Summary Create a course
// @Description Create a course from a multipart form. Lesson files are uploaded one at a time in lesson order before the course is saved; the first failed upload aborts the save
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Course title"
// @Param description formData string false "Course description"
// @Param lessonCount formData int false "Number of lesson rows"
// @Success 201 {object} models.CreatedCourse
// @Failure 400 {object} errorResponse "Invalid course"
// @Failure 401 {object} errorResponse "Authentication required"
// @Failure 502 {object} errorResponse "Upload or backend failure"
// @Router /instructor/courses [post]
func (h *InstructorHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	draft, closeFiles, err := parseCourseForm(r, h.maxUploadSize)
	defer closeFiles()
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	created, err := h.service.CreateCourse(r.Context(), auth.FromContext(r.Context()), draft)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, created)
}

// GetCourse handles GET /api/instructor/courses/{id}
// @Summary Load a course for editing
// @Description Return the course with its lessons in lessonOrder and their existing content
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} courseDraftResponse
// @Failure 400 {object} errorResponse "Invalid course ID"
// @Failure 404 {object} errorResponse "Course not found"
// @Router /instructor/courses/{id} [get]
func (h *InstructorHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	draft, err := h.service.LoadForEdit(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	resp := courseDraftResponse{
		ID:          courseID,
		Title:       draft.Title,
		Description: draft.Description,
		Lessons:     make([]lessonRowResponse, 0, len(draft.Rows)),
	}
	for i, row := range draft.Rows {
		resp.Lessons = append(resp.Lessons, lessonRowResponse{
			ID:              row.ID,
			Title:           row.Title,
			ContentType:     row.ContentType(),
			ExistingContent: row.Existing(),
			LessonOrder:     i + 1,
		})
	}
	h.RespondJSON(w, http.StatusOK, resp)
}

// UpdateCourse handles PUT /api/instructor/courses/{id}
// @Summary Update a course
// @Description Replace a course from a multipart form. Rows carrying an id keep that lesson; rows without one are added
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} errorResponse "Invalid course"
// @Failure 502 {object} errorResponse "Upload or backend failure"
// @Router /instructor/courses/{id} [put]
func (h *InstructorHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	draft, closeFiles, err := parseCourseForm(r, h.maxUploadSize)
	defer closeFiles()
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.service.UpdateCourse(r.Context(), auth.FromContext(r.Context()), courseID, draft); err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Course updated successfully!"})
}

// EnrolledStudents handles GET /api/instructor/courses/{id}/enrolled-students
// @Summary List enrolled students
// @Description List the students enrolled in a course with their completed and total lesson counts
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {array} services.StudentProgressView
// @Failure 400 {object} errorResponse "Invalid course ID"
// @Router /instructor/courses/{id}/enrolled-students [get]
func (h *InstructorHandler) EnrolledStudents(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	students, err := h.service.EnrolledStudents(r.Context(), auth.FromContext(r.Context()), courseID)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, students)
}
