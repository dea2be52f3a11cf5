// Package repositories holds the gateways to the LMS REST backend
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/middleware"
	"go.uber.org/zap"
)

// Backend is the shared REST client for every repository
type Backend struct {
	client *resty.Client
	logger *zap.Logger
}

// NewBackend creates a client for the backend at baseURL.
// A zero timeout leaves the transport default in place
func NewBackend(baseURL string, timeout time.Duration, logger *zap.Logger) *Backend {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Backend{client: client, logger: logger}
}

// request starts a backend request carrying the caller's token and request ID
func (b *Backend) request(ctx context.Context, authCtx auth.AuthContext) *resty.Request {
	req := b.client.R().SetContext(ctx)
	if authCtx.Authenticated() {
		req.SetAuthToken(authCtx.Token)
	}
	if id := middleware.GetRequestID(ctx); id != "" {
		req.SetHeader(middleware.RequestIDHeader, id)
	}
	return req
}

// execute sends req and decodes a JSON success body into result when result is non-nil
func (b *Backend) execute(req *resty.Request, method, path string, result any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		b.logger.Error("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return apperr.RequestFailed(0, "request was cancelled or timed out", "", err)
		}
		return apperr.RequestFailed(0, "backend is unreachable", "", err)
	}

	if !statusOK(resp.StatusCode()) {
		return b.statusError(method, path, resp)
	}

	if result == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		b.logger.Error("failed to decode backend response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return apperr.RequestFailed(resp.StatusCode(), "invalid response from backend", resp.String(), err)
	}
	return nil
}

func (b *Backend) statusError(method, path string, resp *resty.Response) error {
	status := resp.StatusCode()
	body := resp.String()
	b.logger.Warn("backend returned an error status",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("body", truncate(body, 512)),
	)

	msg := backendMessage(resp.Body(), status)
	if status == http.StatusUnauthorized {
		return &apperr.Error{Kind: apperr.KindAuthMissing, Status: status, Message: msg, Detail: body}
	}
	return apperr.RequestFailed(status, msg, body, nil)
}

// backendMessage extracts a human readable message from an error body.
// The backend answers with {"error": ...}, {"message": ...} or plain text
func backendMessage(body []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		return truncate(text, 300)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// statusOK reports whether a status is a success
func statusOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
