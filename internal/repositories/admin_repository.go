package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

type adminRepository struct {
	backend *Backend
}

// NewAdminRepository creates the admin moderation gateway
func NewAdminRepository(backend *Backend) *adminRepository {
	return &adminRepository{backend: backend}
}

// Method Users lists every account.
func (r *adminRepository) Users(ctx context.Context, authCtx auth.AuthContext) ([]models.User, error) {
	if err := authCtx.Require(); err != nil {
		return nil, err
	}
	var users []models.User
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, "/api/admin/users", &users)
	return users, err
}

// Method Register creates an account with the given role.
func (r *adminRepository) Register(ctx context.Context, authCtx auth.AuthContext, req models.RegisterUserRequest) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx).SetBody(req), http.MethodPost, "/api/admin/register", nil)
}

// Method UpdateRole changes an account's role.
func (r *adminRepository) UpdateRole(ctx context.Context, authCtx auth.AuthContext, userID int64, role auth.Role) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(
		r.backend.request(ctx, authCtx).SetBody(models.RoleUpdateRequest{Role: role}),
		http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", userID), nil,
	)
}

// Method DeleteUser removes an account.
func (r *adminRepository) DeleteUser(ctx context.Context, authCtx auth.AuthContext, userID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", userID), nil)
}

// Method PendingCourses lists courses awaiting approval.
func (r *adminRepository) PendingCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error) {
	if err := authCtx.Require(); err != nil {
		return nil, err
	}
	var courses []models.Course
	err := r.backend.execute(r.backend.request(ctx, authCtx), http.MethodGet, "/api/admin/courses/pending", &courses)
	return courses, err
}

// Method ApproveCourse approves a pending course.
func (r *adminRepository) ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodPut, fmt.Sprintf("/api/admin/courses/%d/approve", courseID), nil)
}

// Method RemoveCourse deletes a course.
func (r *adminRepository) RemoveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	return r.backend.execute(r.backend.request(ctx, authCtx), http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", courseID), nil)
}
