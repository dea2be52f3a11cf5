package repositories

import (
	"context"
	"net/http"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

type authRepository struct {
	backend *Backend
}

// NewAuthRepository creates the login gateway
func NewAuthRepository(backend *Backend) *authRepository {
	return &authRepository{backend: backend}
}

// Method Login exchanges credentials for a backend token and the account role.
func (r *authRepository) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := r.backend.execute(
		r.backend.request(ctx, auth.Anonymous).SetBody(req),
		http.MethodPost, "/api/auth/login", &resp,
	)
	if err != nil {
		// The backend rejects bad credentials with 401/403; neither means a missing session here
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindAuthMissing {
			return models.LoginResponse{}, apperr.RequestFailed(e.Status, "Invalid email or password.", e.Detail, nil)
		}
		return models.LoginResponse{}, err
	}
	if resp.Token == "" {
		return models.LoginResponse{}, apperr.RequestFailed(http.StatusBadGateway, "login response has no token", "", nil)
	}
	return resp, nil
}
