package composer

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"go.uber.org/zap"
)

// Uploader stores one lesson file and returns its resolvable URL
type Uploader interface {
	// Upload sends the file to the storage endpoint.
	// Returns an apperr UploadFailed error carrying the response body on a non-success status.
	Upload(ctx context.Context, authCtx auth.AuthContext, file *File) (string, error)
}

// UploadTask is one file upload in a course save
type UploadTask struct {
	ID string
	// Index is the row position, 0-based
	Index int
	File  *File
}

// LessonNumber is the 1-based lesson position shown to the user
func (t UploadTask) LessonNumber() int { return t.Index + 1 }

// UploadPipeline runs upload tasks strictly in order, one at a time,
// and stops at the first failure
type UploadPipeline struct {
	uploader Uploader
	logger   *zap.Logger
	// OnStart is called before each upload begins
	OnStart func(task UploadTask, total int)
}

// NewUploadPipeline creates a pipeline over an uploader
func NewUploadPipeline(uploader Uploader, logger *zap.Logger) *UploadPipeline {
	return &UploadPipeline{uploader: uploader, logger: logger}
}

// Tasks builds one task per row that has a file attached, in row order
func Tasks(rows []*LessonRow) []UploadTask {
	tasks := make([]UploadTask, 0, len(rows))
	for i, row := range rows {
		if row.File() == nil {
			continue
		}
		tasks = append(tasks, UploadTask{ID: uuid.New().String(), Index: i, File: row.File()})
	}
	return tasks
}

// Run uploads every task and returns the URLs keyed by row index. Task N+1 never starts before
// task N has resolved. The first failure is returned as UploadFailed naming the lesson, and any
// URLs obtained so far are discarded
func (p *UploadPipeline) Run(ctx context.Context, authCtx auth.AuthContext, tasks []UploadTask) (map[int]string, error) {
	urls := make(map[int]string, len(tasks))

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, apperr.UploadFailed(task.LessonNumber(), 0, "", err)
		}
		if p.OnStart != nil {
			p.OnStart(task, len(tasks))
		}

		url, err := p.uploader.Upload(ctx, authCtx, task.File)
		if err != nil {
			failure := uploadFailure(task, err)
			p.logger.Warn("lesson upload failed",
				zap.String("task_id", task.ID),
				zap.Int("lesson_index", task.LessonNumber()),
				zap.String("file", task.File.Name),
				zap.Error(failure),
			)
			return nil, failure
		}

		p.logger.Debug("lesson uploaded",
			zap.String("task_id", task.ID),
			zap.Int("lesson_index", task.LessonNumber()),
			zap.String("url", url),
		)
		urls[task.Index] = url
	}

	return urls, nil
}

// uploadFailure attributes err to the task's lesson
func uploadFailure(task UploadTask, err error) *apperr.Error {
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindAuthMissing:
			return apperr.UploadFailed(task.LessonNumber(), http.StatusUnauthorized, e.Message, err)
		case apperr.KindUploadFailed, apperr.KindRequestFailed:
			return apperr.UploadFailed(task.LessonNumber(), e.Status, e.Detail, e.Err)
		}
	}
	return apperr.UploadFailed(task.LessonNumber(), 0, err.Error(), err)
}
