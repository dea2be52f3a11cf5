package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/validation"
	"go.uber.org/zap"
)

// AuthRepository is the interface that wraps the backend login call
type AuthRepository interface {
	// Method Login exchanges credentials for a token and the account role.
	//
	// Bad credentials come back as a RequestFailed error carrying the backend status.
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
}

type authService struct {
	repo   AuthRepository
	parser *auth.TokenParser
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo AuthRepository, parser *auth.TokenParser, logger *zap.Logger) *authService {
	return &authService{
		repo:   repo,
		parser: parser,
		logger: logger,
	}
}

// Login authenticates against the backend and returns the session's AuthContext.
//
// The role reported by the backend wins over a role claim in the token.
func (s *authService) Login(ctx context.Context, email, password string) (auth.AuthContext, error) {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct("invalid credentials", req); err != nil {
		return auth.Anonymous, err
	}

	resp, err := s.repo.Login(ctx, req)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", req.Email), zap.Error(err))
		return auth.Anonymous, err
	}

	authCtx, err := s.parser.Parse(resp.Token, resp.Role)
	if err != nil {
		s.logger.Error("backend issued an unusable token", zap.String("email", req.Email), zap.Error(err))
		return auth.Anonymous, apperr.RequestFailed(http.StatusBadGateway, "login failed", "", err)
	}
	if resp.Role != "" {
		authCtx.Role = resp.Role
	}
	if authCtx.Role == "" {
		return auth.Anonymous, apperr.RequestFailed(http.StatusBadGateway, "login response has no role", "", nil)
	}
	return authCtx, nil
}
