// Package composer builds course submissions from authored lesson rows.
//
// A save runs in three steps. The draft is checked locally and nothing goes over the network if
// it is invalid. Files are then uploaded one lesson at a time, in order, stopping at the first
// failure. Finally the payload is assembled with lessons numbered by row position. A course is
// only ever saved from a complete payload.
package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
	"go.uber.org/zap"
)

// Composer turns course drafts into submissions
type Composer struct {
	pipeline *UploadPipeline
	logger   *zap.Logger
}

// NewComposer creates a composer that uploads lesson files through uploader
func NewComposer(uploader Uploader, logger *zap.Logger) *Composer {
	return &Composer{
		pipeline: NewUploadPipeline(uploader, logger),
		logger:   logger,
	}
}

// Pipeline exposes the upload pipeline, for progress callbacks
func (c *Composer) Pipeline() *UploadPipeline {
	return c.pipeline
}

// Check validates a draft without any network call
func Check(draft CourseDraft) error {
	var fields []apperr.FieldError
	if strings.TrimSpace(draft.Title) == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "Course title is required."})
	}

	for i, row := range draft.Rows {
		if row == nil {
			return apperr.Validation("lesson row is missing")
		}
		switch {
		case !row.ContentType().Valid():
			fields = append(fields, apperr.FieldError{
				Field:   fmt.Sprintf("lessons[%d].contentType", i),
				Message: fmt.Sprintf("Lesson %d has no valid content type.", i+1),
			})
		case row.FileError() != "":
			fields = append(fields, apperr.FieldError{
				Field:   fmt.Sprintf("lessons[%d].file", i),
				Message: fmt.Sprintf("Lesson %d: %s", i+1, row.FileError()),
			})
		case row.File() != nil && !ValidateFile(row.File(), row.ContentType()):
			fields = append(fields, apperr.FieldError{
				Field:   fmt.Sprintf("lessons[%d].file", i),
				Message: fmt.Sprintf("Lesson %d: file does not match the content type.", i+1),
			})
		}
	}

	if len(fields) > 0 {
		return apperr.Validation("course is invalid", fields...)
	}
	return nil
}

// Compose checks the draft, uploads its files in order and builds the submission.
// On any upload failure no submission is returned
func (c *Composer) Compose(ctx context.Context, authCtx auth.AuthContext, draft CourseDraft) (models.CourseSubmission, error) {
	if err := authCtx.Require(); err != nil {
		return models.CourseSubmission{}, err
	}
	if err := Check(draft); err != nil {
		return models.CourseSubmission{}, err
	}

	uploaded, err := c.pipeline.Run(ctx, authCtx, Tasks(draft.Rows))
	if err != nil {
		return models.CourseSubmission{}, err
	}

	return BuildSubmission(draft, uploaded)
}
