package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/views"
	"go.uber.org/zap"
)

// flashCookieName carries a one-shot message across a redirect
const flashCookieName = "lms_flash"

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
	Views  *views.Renderer
}

// errorResponse is the JSON error body
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, errorResponse{Error: message})
}

// RespondAppError maps an error to its status and sends it as JSON
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.RespondJSON(w, status, body)
}

func errorBody(err error) (int, errorResponse) {
	e, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}
	msg := e.Message
	if msg == "" {
		msg = e.Error()
	}
	if e.LessonIndex > 0 {
		msg = e.Error()
	}
	return e.HTTPStatus(), errorResponse{Error: msg, Fields: e.Fields}
}

// page builds the common page data for the request
func (h *BaseHandler) page(r *http.Request, title string, data any) views.Page {
	return views.Page{
		Title: title,
		Auth:  auth.FromContext(r.Context()),
		CSRF:  csrf.TemplateField(r),
		Data:  data,
	}
}

// render writes a page, consuming any pending flash message
func (h *BaseHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, p views.Page) {
	if p.Flash == "" {
		p.Flash = popFlash(w, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Views.Render(w, name, p); err != nil {
		h.Logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
	}
}

// renderError handles a failed page request. Callers without a token go to the login page
func (h *BaseHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok && e.Kind == apperr.KindAuthMissing && e.HTTPStatus() == http.StatusUnauthorized {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("page request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	p := h.page(r, http.StatusText(status), nil)
	p.Error = body.Error
	h.render(w, r, status, "error", p)
}

// redirectWithFlash stores a message for the next page and redirects with 303
func redirectWithFlash(w http.ResponseWriter, r *http.Request, to, message string) {
	if message != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    url.QueryEscape(message),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

// fieldMessages indexes validation messages by field for form re-rendering
func fieldMessages(err error) map[string]string {
	e, ok := apperr.As(err)
	if !ok || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// pathID reads a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(chi.URLParam(r, name), name)
}

// queryID reads a positive integer query parameter
func queryID(r *http.Request, name string) (int64, error) {
	return parseID(r.URL.Query().Get(name), name)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid "+name, apperr.FieldError{Field: name, Message: name + " must be a positive integer"})
	}
	return id, nil
}

// isJSON reports whether the request body is JSON
func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// wantsJSON reports whether the caller expects a JSON answer
func wantsJSON(r *http.Request) bool {
	return isJSON(r) ||
		strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeJSON decodes a JSON request body
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
