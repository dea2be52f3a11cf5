package models

import "github.com/lmsweb/portal/internal/auth"

// User is an LMS account as the admin endpoints return it
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
}

// RegisterUserRequest is the admin request to create an account
type RegisterUserRequest struct {
	Username string    `json:"username" validate:"notblank,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     auth.Role `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR ADMIN"`
}

// RoleUpdateRequest changes a user's role
type RoleUpdateRequest struct {
	Role auth.Role `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR ADMIN"`
}

// LoginRequest is the credentials body for the backend login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the backend login answer
type LoginResponse struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
}
