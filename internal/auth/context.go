// Package auth carries the caller's identity through the portal.
//
// An AuthContext is built once per request from the session cookie (or Authorization header)
// and passed explicitly into services and repositories. Nothing re-reads the token ad hoc.
package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
)

// Role is the LMS user role
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// Roles lists every assignable role in display order
var Roles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(Roles, role) {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// DashboardPath is the landing page for the role after login
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard-admin"
	case RoleInstructor:
		return "/dashboard-instructor"
	case RoleStudent:
		return "/dashboard-student"
	default:
		return "/"
	}
}

// AuthContext is the caller's token and the claims read from it
type AuthContext struct {
	Token   string
	Role    Role
	Subject string
}

// Anonymous is the context of a caller without a token
var Anonymous = AuthContext{}

// Authenticated reports whether a token is present
func (a AuthContext) Authenticated() bool {
	return a.Token != ""
}

// Require returns AuthMissing when no token is present
func (a AuthContext) Require() error {
	if !a.Authenticated() {
		return apperr.AuthMissing("authentication required")
	}
	return nil
}

// RequireRole returns AuthMissing without a token, Forbidden when the role is not allowed
func (a AuthContext) RequireRole(roles ...Role) error {
	if err := a.Require(); err != nil {
		return err
	}
	if !slices.Contains(roles, a.Role) {
		return apperr.Forbidden("insufficient permissions")
	}
	return nil
}

type contextKey string

const authContextKey contextKey = "authContext"

// WithContext stores the AuthContext in ctx
func WithContext(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, a)
}

// FromContext retrieves the AuthContext, Anonymous when none was stored
func FromContext(ctx context.Context) AuthContext {
	if a, ok := ctx.Value(authContextKey).(AuthContext); ok {
		return a
	}
	return Anonymous
}
