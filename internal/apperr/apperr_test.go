package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  error
		matches bool
	}{
		{name: "auth missing", err: AuthMissing("no token"), target: ErrAuthMissing, matches: true},
		{name: "upload is a request failure", err: UploadFailed(2, 500, "boom", nil), target: ErrRequestFailed, matches: true},
		{name: "upload is upload", err: UploadFailed(2, 500, "boom", nil), target: ErrUploadFailed, matches: true},
		{name: "request is not upload", err: RequestFailed(500, "x", "", nil), target: ErrUploadFailed, matches: false},
		{name: "wrapped validation", err: fmt.Errorf("save: %w", Validation("bad")), target: ErrValidationFailed, matches: true},
		{name: "plain error", err: errors.New("x"), target: ErrRequestFailed, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "lesson 2: upload failed: disk full", UploadFailed(2, 500, "disk full\n", nil).Error())
	assert.Equal(t, "course is invalid: Title is required", Validation("course is invalid", FieldError{Field: "title", Message: "Title is required"}).Error())
	assert.Equal(t, "request_failed", (&Error{Kind: KindRequestFailed}).Error())
	assert.Equal(t, "dial failed", RequestFailed(0, "", "", errors.New("dial failed")).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{name: "auth missing", err: AuthMissing("x"), expected: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("x"), expected: http.StatusForbidden},
		{name: "validation", err: Validation("x"), expected: http.StatusBadRequest},
		{name: "upload", err: UploadFailed(1, 400, "x", nil), expected: http.StatusBadGateway},
		{name: "backend status kept", err: RequestFailed(404, "x", "", nil), expected: http.StatusNotFound},
		{name: "unreachable backend", err: RequestFailed(0, "x", "", nil), expected: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUploadFailed, KindOf(fmt.Errorf("wrap: %w", UploadFailed(1, 0, "", nil))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
}
