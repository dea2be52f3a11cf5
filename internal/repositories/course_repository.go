package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

type courseRepository struct {
	backend *Backend
}

// NewCourseRepository creates the instructor course gateway
func NewCourseRepository(backend *Backend) *courseRepository {
	return &courseRepository{backend: backend}
}

func instructorCoursePath(courseID int64) string {
	return fmt.Sprintf("/api/instructor/courses/%d", courseID)
}

// Method Create posts a new course with its lessons and returns the created course ID.
func (r *courseRepository) Create(ctx context.Context, authCtx auth.AuthContext, sub models.CourseSubmission) (models.CreatedCourse, error) {
	if err := authCtx.Require(); err != nil {
		return models.CreatedCourse{}, err
	}
	var created models.CreatedCourse
	err := r.backend.execute(r.backend.request(ctx, authCtx).SetBody(sub), http.MethodPost, "/api/instructor/courses", &created)
	return created, err
}

// Method Get fetches one of the instructor's courses with its lessons.
func (r *courseRepository) Get(ctx context.Context, authCtx auth.AuthContext, courseID int64) (models.Course, error) {
	if err := authCtx.Require(); err != nil {
		return models.Course{}, err
	}
	var course models.Course
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, instructorCoursePath(courseID), &course)
	return course, err
}

// Method Update replaces a course's fields and lessons.
func (r *courseRepository) Update(ctx context.Context, authCtx auth.AuthContext, courseID int64, sub models.CourseSubmission) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx).SetBody(sub), http.MethodPut, instructorCoursePath(courseID), nil)
}

// Method Delete removes one of the instructor's courses.
func (r *courseRepository) Delete(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodDelete, instructorCoursePath(courseID), nil)
}

// Method Approve marks a course approved through the instructor endpoint.
func (r *courseRepository) Approve(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodPost, instructorCoursePath(courseID)+"/approve", nil)
}

// Method ListMine lists the instructor's own courses.
func (r *courseRepository) ListMine(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error) {
	if err := authCtx.Require(); err != nil {
		return nil, err
	}
	var courses []models.Course
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, "/api/instructor/my-courses", &courses)
	return courses, err
}

// Method EnrolledStudents lists the students enrolled in a course with their lesson counts.
func (r *courseRepository) EnrolledStudents(ctx context.Context, authCtx auth.AuthContext, courseID int64) ([]models.StudentProgress, error) {
	if err := authCtx.Require(); err != nil {
		return nil, err
	}
	var students []models.StudentProgress
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, instructorCoursePath(courseID)+"/enrolled-students", &students)
	return students, err
}
