// Package apperr defines the portal's error taxonomy.
//
// Every failure that reaches a handler is one of four kinds. AuthMissing means no call was
// attempted because the caller has no usable token. RequestFailed means the backend answered
// with a non-success status or could not be reached. UploadFailed is a RequestFailed raised by
// the lesson file upload and aborts the whole course save. ValidationFailed is raised before
// any network call.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an Error
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthMissing
	KindRequestFailed
	KindUploadFailed
	KindValidationFailed
)

func (k Kind) String() string {
	switch k {
	case KindAuthMissing:
		return "auth_missing"
	case KindRequestFailed:
		return "request_failed"
	case KindUploadFailed:
		return "upload_failed"
	case KindValidationFailed:
		return "validation_failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching on kind
var (
	ErrAuthMissing      = &Error{Kind: KindAuthMissing}
	ErrRequestFailed    = &Error{Kind: KindRequestFailed}
	ErrUploadFailed     = &Error{Kind: KindUploadFailed}
	ErrValidationFailed = &Error{Kind: KindValidationFailed}
)

// FieldError is a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the portal error type
type Error struct {
	Kind Kind
	// Status is the backend HTTP status for request failures, 0 when the backend was unreachable
	Status  int
	Message string
	// Detail holds the raw backend response body
	Detail string
	// LessonIndex is the 1-based lesson position for upload and lesson validation failures
	LessonIndex int
	Fields      []FieldError
	Err         error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.LessonIndex > 0 {
		msg = fmt.Sprintf("lesson %d: %s", e.LessonIndex, msg)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Message)
		}
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(parts, "; "))
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind. An upload failure also matches ErrRequestFailed
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindRequestFailed && e.Kind == KindUploadFailed
}

// HTTPStatus maps the error to the status the portal answers with
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuthMissing:
		if e.Status == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindUploadFailed:
		return http.StatusBadGateway
	case KindRequestFailed:
		if e.Status >= 400 && e.Status < 600 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AuthMissing reports a missing or unusable token
func AuthMissing(message string) *Error {
	return &Error{Kind: KindAuthMissing, Message: message}
}

// Forbidden reports a token whose role may not perform the action
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthMissing, Status: http.StatusForbidden, Message: message}
}

// RequestFailed reports a non-success backend response or transport error
func RequestFailed(status int, message, detail string, err error) *Error {
	return &Error{Kind: KindRequestFailed, Status: status, Message: message, Detail: detail, Err: err}
}

// UploadFailed reports a failed lesson file upload
func UploadFailed(lessonIndex, status int, detail string, err error) *Error {
	msg := "upload failed"
	if d := strings.TrimSpace(detail); d != "" {
		msg = "upload failed: " + d
	}
	return &Error{Kind: KindUploadFailed, LessonIndex: lessonIndex, Status: status, Message: msg, Detail: detail, Err: err}
}

// Validation reports client-side invalid input
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Fields: fields}
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindUnknown when err is not an *Error
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}
