package services

import (
	"context"
	"strings"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminRepository is the interface that wraps the backend moderation endpoints
type AdminRepository interface {
	// Method Users retrieves every account.
	Users(ctx context.Context, authCtx auth.AuthContext) ([]models.User, error)
	// Method Register creates an account.
	//
	// A taken email or username is reported by the backend as a RequestFailed error with its message.
	Register(ctx context.Context, authCtx auth.AuthContext, req models.RegisterUserRequest) error
	// Method UpdateRole changes an account's role.
	UpdateRole(ctx context.Context, authCtx auth.AuthContext, userID int64, role auth.Role) error
	// Method DeleteUser removes an account.
	DeleteUser(ctx context.Context, authCtx auth.AuthContext, userID int64) error
	// Method PendingCourses retrieves the courses awaiting approval.
	PendingCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error)
	// Method ApproveCourse approves a pending course.
	ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	// Method RemoveCourse deletes a course.
	RemoveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
}

// Dashboard is the admin page data
type Dashboard struct {
	Users          []models.User   `json:"users"`
	PendingCourses []models.Course `json:"pendingCourses"`
}

type adminService struct {
	repo   AdminRepository
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repo AdminRepository, logger *zap.Logger) *adminService {
	return &adminService{
		repo:   repo,
		logger: logger,
	}
}

// Dashboard loads users and pending courses concurrently. Either failure fails the whole load
func (s *adminService) Dashboard(ctx context.Context, authCtx auth.AuthContext) (Dashboard, error) {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.repo.Users(gctx, authCtx)
		if err != nil {
			return err
		}
		d.Users = users
		return nil
	})
	g.Go(func() error {
		courses, err := s.repo.PendingCourses(gctx, authCtx)
		if err != nil {
			return err
		}
		d.PendingCourses = courses
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load admin dashboard", zap.Error(err))
		return Dashboard{}, err
	}
	return d, nil
}

// RegisterUser creates an account after local validation
func (s *adminService) RegisterUser(ctx context.Context, authCtx auth.AuthContext, req models.RegisterUserRequest) error {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return err
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if role, err := auth.ParseRole(string(req.Role)); err == nil {
		req.Role = role
	}
	if err := validation.Struct("invalid registration", req); err != nil {
		return err
	}

	if err := s.repo.Register(ctx, authCtx, req); err != nil {
		s.logger.Warn("failed to register user", zap.String("email", req.Email), zap.Error(err))
		return err
	}
	s.logger.Info("user registered", zap.String("email", req.Email), zap.String("role", string(req.Role)))
	return nil
}

// ChangeRole assigns a new role to an account
func (s *adminService) ChangeRole(ctx context.Context, authCtx auth.AuthContext, userID int64, role auth.Role) error {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return err
	}
	if parsed, err := auth.ParseRole(string(role)); err == nil {
		role = parsed
	}
	if err := validation.Struct("invalid role", models.RoleUpdateRequest{Role: role}); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, authCtx, userID, role); err != nil {
		s.logger.Error("failed to change role", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteUser removes an account
func (s *adminService) DeleteUser(ctx context.Context, authCtx auth.AuthContext, userID int64) error {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, authCtx, userID); err != nil {
		s.logger.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ApproveCourse approves a pending course
func (s *adminService) ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.ApproveCourse(ctx, authCtx, courseID); err != nil {
		s.logger.Error("failed to approve course", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// RemoveCourse deletes a course
func (s *adminService) RemoveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.RequireRole(auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.RemoveCourse(ctx, authCtx, courseID); err != nil {
		s.logger.Error("failed to remove course", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}
