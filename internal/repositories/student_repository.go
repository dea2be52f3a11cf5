package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

type studentRepository struct {
	backend *Backend
}

// NewStudentRepository creates the student gateway
func NewStudentRepository(backend *Backend) *studentRepository {
	return &studentRepository{backend: backend}
}

// Method Catalog lists approved courses. It is the only call made without a token.
func (r *studentRepository) Catalog(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error) {
	var courses []models.Course
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, "/api/student/courses", &courses)
	return courses, err
}

// Method MyCourses lists the student's enrolled courses with lesson counts.
func (r *studentRepository) MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.EnrolledCourse, error) {
	if err := authCtx.Require(); err != nil {
		return nil, err
	}
	var courses []models.EnrolledCourse
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, "/api/student/my-courses", &courses)
	return courses, err
}

// Method Course fetches an enrolled course with per-lesson completed and accessible flags.
func (r *studentRepository) Course(ctx context.Context, authCtx auth.AuthContext, courseID int64) (models.StudentCourse, error) {
	if err := authCtx.Require(); err != nil {
		return models.StudentCourse{}, err
	}
	var course models.StudentCourse
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, fmt.Sprintf("/api/student/courses/%d", courseID), &course)
	return course, err
}

// Method CompleteLesson records a lesson completion.
func (r *studentRepository) CompleteLesson(ctx context.Context, authCtx auth.AuthContext, lessonID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodPost, fmt.Sprintf("/api/student/lessons/%d/complete", lessonID), nil)
}

// Method Enroll enrolls the student in a course.
func (r *studentRepository) Enroll(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodPost, fmt.Sprintf("/api/student/enroll/%d", courseID), nil)
}
