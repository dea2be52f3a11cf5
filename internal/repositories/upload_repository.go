package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
	"go.uber.org/zap"
)

const uploadPath = "/api/files/upload"

var urlPattern = regexp.MustCompile(`https?://\S+`)

type uploadRepository struct {
	backend *Backend
}

// NewUploadRepository creates the lesson file upload gateway
func NewUploadRepository(backend *Backend) *uploadRepository {
	return &uploadRepository{backend: backend}
}

// Method Upload is a composer.Uploader implementation posting one file as the multipart "file" field.
func (r *uploadRepository) Upload(ctx context.Context, authCtx auth.AuthContext, file *composer.File) (string, error) {
	if err := authCtx.Require(); err != nil {
		return "", err
	}
	if file == nil || file.Content == nil {
		return "", apperr.UploadFailed(0, 0, "no file to upload", nil)
	}

	resp, err := r.backend.request(ctx, authCtx).
		SetMultipartField("file", file.UploadName(), file.MIMEType, file.Content).
		Post(uploadPath)
	if err != nil {
		return "", apperr.UploadFailed(0, 0, err.Error(), err)
	}
	if !statusOK(resp.StatusCode()) {
		r.backend.logger.Warn("upload rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("file", file.Name),
		)
		return "", apperr.UploadFailed(0, resp.StatusCode(), resp.String(), nil)
	}

	url, err := ParseUploadURL(resp.Body())
	if err != nil {
		return "", apperr.UploadFailed(0, resp.StatusCode(), resp.String(), err)
	}
	return url, nil
}

// ParseUploadURL reads the stored file URL from an upload response. A JSON body with a "url"
// field is preferred. Plain text bodies are scanned for the first http(s) URL, and a bare
// single-token body is taken as the URL itself
func ParseUploadURL(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("upload response is empty")
	}

	var structured models.UploadResponse
	if err := json.Unmarshal(body, &structured); err == nil && structured.URL != "" {
		return structured.URL, nil
	}
	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil {
		text = strings.TrimSpace(quoted)
	}

	if match := urlPattern.FindString(text); match != "" {
		return match, nil
	}
	if !strings.ContainsAny(text, " \t\r\n{}") {
		return text, nil
	}
	return "", fmt.Errorf("no URL in upload response (%d bytes)", len(body))
}

var _ composer.Uploader = (*uploadRepository)(nil)
