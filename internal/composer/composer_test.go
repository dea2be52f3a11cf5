package composer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUploader is a mock implementation of Uploader
type mockUploader struct {
	calls  []string
	failOn string
	err    error
}

func (m *mockUploader) Upload(ctx context.Context, authCtx auth.AuthContext, file *File) (string, error) {
	m.calls = append(m.calls, file.Name)
	if m.failOn == file.Name {
		return "", m.err
	}
	return "https://cdn.test/" + file.Name, nil
}

var instructor = auth.AuthContext{Token: "tok", Role: auth.RoleInstructor}

func newFile(name, mimeType string) *File {
	return &File{Name: name, MIMEType: mimeType, Content: strings.NewReader("data")}
}

func rowWith(t *testing.T, ct models.ContentType) *LessonRow {
	t.Helper()
	row := NewLessonRow()
	require.NoError(t, row.SetContentType(ct))
	return row
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		file     *File
		declared models.ContentType
		expected bool
	}{
		{name: "text without file", file: nil, declared: models.ContentTypeText, expected: true},
		{name: "text with any file", file: newFile("a.png", "image/png"), declared: models.ContentTypeText, expected: true},
		{name: "pdf exact", file: newFile("a.pdf", "application/pdf"), declared: models.ContentTypePDF, expected: true},
		{name: "pdf ignores parameters", file: newFile("a.pdf", "application/pdf; charset=binary"), declared: models.ContentTypePDF, expected: true},
		{name: "pdf rejects other application type", file: newFile("a.doc", "application/msword"), declared: models.ContentTypePDF, expected: false},
		{name: "video mp4", file: newFile("a.mp4", "video/mp4"), declared: models.ContentTypeVideo, expected: true},
		{name: "png declared video", file: newFile("a.png", "image/png"), declared: models.ContentTypeVideo, expected: false},
		{name: "image upper case", file: newFile("a.png", "IMAGE/PNG"), declared: models.ContentTypeImage, expected: true},
		{name: "audio", file: newFile("a.mp3", "audio/mpeg"), declared: models.ContentTypeAudio, expected: true},
		{name: "prefix must be a whole type", file: newFile("a.x", "videox/foo"), declared: models.ContentTypeVideo, expected: false},
		{name: "missing file for video", file: nil, declared: models.ContentTypeVideo, expected: false},
		{name: "unknown declared type", file: newFile("a.mp4", "video/mp4"), declared: "slides", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateFile(tt.file, tt.declared))
		})
	}
}

func TestFileDetectMIME(t *testing.T) {
	pdf := "%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"
	f := &File{Name: "notes.pdf", MIMEType: "application/octet-stream", Content: strings.NewReader(pdf)}

	require.NoError(t, f.DetectMIME())
	assert.Equal(t, "application/pdf", f.MediaType())

	// The sniffed bytes are still part of the content
	data, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	assert.Equal(t, pdf, string(data))

	declared := &File{Name: "a.mp4", MIMEType: "video/mp4", Content: strings.NewReader("x")}
	require.NoError(t, declared.DetectMIME())
	assert.Equal(t, "video/mp4", declared.MIMEType)
}

func TestFileUploadName(t *testing.T) {
	tests := []struct {
		name     string
		file     *File
		expected string
	}{
		{name: "keeps extension", file: &File{Name: "deck.pdf", MIMEType: "application/pdf"}, expected: "deck.pdf"},
		{name: "adds extension from type", file: &File{Name: "photo", MIMEType: "image/png"}, expected: "photo.png"},
		{name: "unknown type", file: &File{Name: "blob", MIMEType: "application/x-unknown-thing"}, expected: "blob"},
		{name: "no name", file: &File{MIMEType: "application/pdf"}, expected: "lesson.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.file.UploadName())
		})
	}
}

func TestLessonRowSetContentType(t *testing.T) {
	row := rowWith(t, models.ContentTypeVideo)
	require.NoError(t, row.SetURL("https://cdn.test/a.mp4"))
	require.NoError(t, row.AttachFile(newFile("b.mp4", "video/mp4")))
	row.KeepExisting(models.ContentTypeVideo, "https://cdn.test/old.mp4")
	assert.Equal(t, "https://cdn.test/old.mp4", row.Existing())
	assert.Equal(t, "video/*", row.Accept())

	for _, ct := range models.ContentTypes {
		t.Run(string(ct), func(t *testing.T) {
			require.NoError(t, row.AttachFile(nil))
			if ct != models.ContentTypeText {
				require.NoError(t, row.SetURL("https://cdn.test/x"))
			}

			require.NoError(t, row.SetContentType(ct))

			assert.Nil(t, row.File())
			assert.Empty(t, row.URL())
			assert.Empty(t, row.Text())
			assert.Empty(t, row.Existing())
			assert.Empty(t, row.FileError())
			assert.Empty(t, row.SavedType())
			assert.Equal(t, ct.AcceptFilter(), row.Accept())
		})
	}

	assert.Error(t, row.SetContentType("slides"))
}

func TestLessonRowKeepExisting(t *testing.T) {
	saved := models.Lesson{ID: 3, Title: "Intro", ContentType: models.ContentTypeVideo, ContentURL: "https://cdn.test/intro.mp4"}

	tests := []struct {
		name      string
		posted    models.ContentType
		savedType models.ContentType
		expected  Source
	}{
		{name: "same type keeps content", posted: models.ContentTypeVideo, savedType: models.ContentTypeVideo, expected: Source{Kind: SourceExisting, Value: "https://cdn.test/intro.mp4"}},
		{name: "switched to text drops url", posted: models.ContentTypeText, savedType: models.ContentTypeVideo, expected: Source{Kind: SourceNone}},
		{name: "switched to image drops url", posted: models.ContentTypeImage, savedType: models.ContentTypeVideo, expected: Source{Kind: SourceNone}},
		{name: "missing saved type drops content", posted: models.ContentTypeVideo, savedType: "", expected: Source{Kind: SourceNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := NewLessonRow()
			require.NoError(t, row.SetContentType(tt.posted))

			row.KeepExisting(tt.savedType, saved.ContentURL)

			assert.Equal(t, tt.expected, ResolveSource(row, ""))
			sub, err := BuildSubmission(CourseDraft{Title: "Go", Rows: []*LessonRow{row}}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Value, sub.Lessons[0].ContentURL)
		})
	}

	t.Run("row from lesson remembers its type", func(t *testing.T) {
		row := RowFromLesson(saved)
		assert.Equal(t, models.ContentTypeVideo, row.SavedType())
		assert.Equal(t, saved.ContentURL, row.Existing())
	})
}

func TestLessonRowDropFile(t *testing.T) {
	row := rowWith(t, models.ContentTypeVideo)
	require.NoError(t, row.AttachFile(newFile("a.mp4", "video/mp4")))

	row.DropFile()

	assert.Nil(t, row.File())
	assert.Contains(t, row.FileError(), "Select the file again: a.mp4")

	empty := rowWith(t, models.ContentTypeVideo)
	empty.DropFile()
	assert.Empty(t, empty.FileError())
}

func TestLessonRowAttachFile(t *testing.T) {
	t.Run("png for video is rejected and cleared", func(t *testing.T) {
		row := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, row.AttachFile(newFile("ok.mp4", "video/mp4")))

		err := row.AttachFile(newFile("cat.png", "image/png"))

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
		assert.Nil(t, row.File())
		assert.Contains(t, row.FileError(), "image/png")
	})

	t.Run("accepted file clears pasted url", func(t *testing.T) {
		row := rowWith(t, models.ContentTypeImage)
		require.NoError(t, row.SetURL("https://cdn.test/old.png"))

		require.NoError(t, row.AttachFile(newFile("new.png", "image/png")))

		assert.Empty(t, row.URL())
		assert.Equal(t, "new.png", row.File().Name)
	})

	t.Run("text rows take no file", func(t *testing.T) {
		row := rowWith(t, models.ContentTypeText)
		assert.Error(t, row.AttachFile(newFile("a.txt", "text/plain")))
	})

	t.Run("mismatched setters", func(t *testing.T) {
		text := rowWith(t, models.ContentTypeText)
		assert.Error(t, text.SetURL("https://cdn.test/a"))
		video := rowWith(t, models.ContentTypeVideo)
		assert.Error(t, video.SetText("hello"))
	})
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) *LessonRow
		uploaded string
		expected Source
	}{
		{
			name: "uploaded file beats pasted url and existing",
			build: func(t *testing.T) *LessonRow {
				row := RowFromLesson(models.Lesson{ID: 1, ContentType: models.ContentTypeVideo, ContentURL: "https://cdn.test/old.mp4"})
				require.NoError(t, row.SetURL("https://cdn.test/pasted.mp4"))
				row.file = newFile("new.mp4", "video/mp4")
				return row
			},
			uploaded: "https://cdn.test/new.mp4",
			expected: Source{Kind: SourceUploadedFile, Value: "https://cdn.test/new.mp4"},
		},
		{
			name: "pasted url beats existing",
			build: func(t *testing.T) *LessonRow {
				row := RowFromLesson(models.Lesson{ID: 1, ContentType: models.ContentTypeVideo, ContentURL: "https://cdn.test/old.mp4"})
				require.NoError(t, row.SetURL(" https://cdn.test/pasted.mp4 "))
				return row
			},
			expected: Source{Kind: SourcePastedURL, Value: "https://cdn.test/pasted.mp4"},
		},
		{
			name: "existing content",
			build: func(t *testing.T) *LessonRow {
				return RowFromLesson(models.Lesson{ID: 1, ContentType: models.ContentTypePDF, ContentURL: "https://cdn.test/a.pdf"})
			},
			expected: Source{Kind: SourceExisting, Value: "https://cdn.test/a.pdf"},
		},
		{
			name:     "none",
			build:    func(t *testing.T) *LessonRow { return NewLessonRow() },
			expected: Source{Kind: SourceNone},
		},
		{
			name: "inline text",
			build: func(t *testing.T) *LessonRow {
				row := rowWith(t, models.ContentTypeText)
				require.NoError(t, row.SetText("Read chapter one"))
				return row
			},
			expected: Source{Kind: SourceInlineText, Value: "Read chapter one"},
		},
		{
			name: "existing text",
			build: func(t *testing.T) *LessonRow {
				return RowFromLesson(models.Lesson{ID: 3, ContentType: models.ContentTypeText, ContentURL: "Old text"})
			},
			expected: Source{Kind: SourceExisting, Value: "Old text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveSource(tt.build(t), tt.uploaded))
		})
	}
}

func TestBuildSubmission(t *testing.T) {
	t.Run("orders are 1..N by position with default titles", func(t *testing.T) {
		rows := []*LessonRow{NewLessonRow(), NewLessonRow(), NewLessonRow(), NewLessonRow()}
		rows[0].Title = "Intro"
		rows[2].Title = "  "
		// remove the second row and append another, as the form would
		rows = append(rows[:1], rows[2:]...)
		rows = append(rows, rowWith(t, models.ContentTypeText))

		sub, err := BuildSubmission(CourseDraft{Title: "Go", Rows: rows}, nil)

		require.NoError(t, err)
		require.Len(t, sub.Lessons, 4)
		for i, l := range sub.Lessons {
			assert.Equal(t, i+1, l.LessonOrder)
		}
		assert.Equal(t, "Intro", sub.Lessons[0].Title)
		assert.Equal(t, "Lesson 2", sub.Lessons[1].Title)
		assert.Equal(t, "Lesson 4", sub.Lessons[3].Title)
		assert.Equal(t, models.ContentTypeText, sub.Lessons[3].ContentType)
	})

	t.Run("existing lessons carry their id", func(t *testing.T) {
		row := RowFromLesson(models.Lesson{ID: 42, Title: "Saved", ContentType: models.ContentTypeImage, ContentURL: "https://cdn.test/a.png", LessonOrder: 1})

		sub, err := BuildSubmission(CourseDraft{Title: "Go", Rows: []*LessonRow{row, NewLessonRow()}}, nil)

		require.NoError(t, err)
		require.NotNil(t, sub.Lessons[0].ID)
		assert.Equal(t, int64(42), *sub.Lessons[0].ID)
		assert.Nil(t, sub.Lessons[1].ID)
	})

	t.Run("blank course title", func(t *testing.T) {
		_, err := BuildSubmission(CourseDraft{Title: " "}, nil)
		assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
	})
}

func TestBuildSubmissionRoundTrip(t *testing.T) {
	saved := []models.Lesson{
		{ID: 7, Title: "Welcome", ContentType: models.ContentTypeVideo, ContentURL: "https://cdn.test/w.mp4", LessonOrder: 1},
		{ID: 8, Title: "Reading", ContentType: models.ContentTypeText, ContentURL: "Chapter one", LessonOrder: 2},
		{ID: 9, Title: "Slides", ContentType: models.ContentTypePDF, ContentURL: "https://cdn.test/s.pdf", LessonOrder: 3},
	}
	rows := make([]*LessonRow, 0, len(saved))
	for _, l := range saved {
		rows = append(rows, RowFromLesson(l))
	}

	sub, err := BuildSubmission(CourseDraft{Title: "Course", Description: "Desc", Rows: rows}, nil)

	require.NoError(t, err)
	require.Len(t, sub.Lessons, len(saved))
	for i, l := range saved {
		got := sub.Lessons[i]
		require.NotNil(t, got.ID)
		assert.Equal(t, l.ID, *got.ID)
		assert.Equal(t, l.Title, got.Title)
		assert.Equal(t, l.ContentType, got.ContentType)
		assert.Equal(t, l.ContentURL, got.ContentURL)
		assert.Equal(t, l.LessonOrder, got.LessonOrder)
	}
}

func TestComposerCompose(t *testing.T) {
	logger := zap.NewNop()

	t.Run("uploads in order and uses returned urls", func(t *testing.T) {
		uploader := &mockUploader{}
		c := NewComposer(uploader, logger)
		var started []int
		c.Pipeline().OnStart = func(task UploadTask, total int) {
			started = append(started, task.LessonNumber())
			assert.Equal(t, 2, total)
		}

		first := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, first.AttachFile(newFile("a.mp4", "video/mp4")))
		second := rowWith(t, models.ContentTypeText)
		require.NoError(t, second.SetText("notes"))
		third := rowWith(t, models.ContentTypeImage)
		require.NoError(t, third.AttachFile(newFile("c.png", "image/png")))

		sub, err := c.Compose(context.Background(), instructor, CourseDraft{Title: "Go", Rows: []*LessonRow{first, second, third}})

		require.NoError(t, err)
		assert.Equal(t, []string{"a.mp4", "c.png"}, uploader.calls)
		assert.Equal(t, []int{1, 3}, started)
		assert.Equal(t, "https://cdn.test/a.mp4", sub.Lessons[0].ContentURL)
		assert.Equal(t, "notes", sub.Lessons[1].ContentURL)
		assert.Equal(t, "https://cdn.test/c.png", sub.Lessons[2].ContentURL)
	})

	t.Run("second upload fails and names lesson 2", func(t *testing.T) {
		uploader := &mockUploader{failOn: "b.mp4", err: apperr.UploadFailed(0, 500, "storage unavailable", nil)}
		c := NewComposer(uploader, logger)

		first := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, first.AttachFile(newFile("a.mp4", "video/mp4")))
		second := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, second.AttachFile(newFile("b.mp4", "video/mp4")))
		third := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, third.AttachFile(newFile("c.mp4", "video/mp4")))

		sub, err := c.Compose(context.Background(), instructor, CourseDraft{Title: "Go", Rows: []*LessonRow{first, second, third}})

		require.Error(t, err)
		assert.Empty(t, sub.Lessons)
		assert.Equal(t, []string{"a.mp4", "b.mp4"}, uploader.calls)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindUploadFailed, e.Kind)
		assert.Equal(t, 2, e.LessonIndex)
		assert.Equal(t, "storage unavailable", e.Detail)
		assert.Contains(t, err.Error(), "lesson 2")
	})

	t.Run("invalid draft makes no upload", func(t *testing.T) {
		uploader := &mockUploader{}
		c := NewComposer(uploader, logger)
		row := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, row.AttachFile(newFile("a.mp4", "video/mp4")))

		_, err := c.Compose(context.Background(), instructor, CourseDraft{Title: "", Rows: []*LessonRow{row}})

		assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
		assert.Empty(t, uploader.calls)
	})

	t.Run("rejected file blocks the save", func(t *testing.T) {
		uploader := &mockUploader{}
		c := NewComposer(uploader, logger)
		row := rowWith(t, models.ContentTypeVideo)
		require.Error(t, row.AttachFile(newFile("cat.png", "image/png")))

		_, err := c.Compose(context.Background(), instructor, CourseDraft{Title: "Go", Rows: []*LessonRow{row}})

		assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
		assert.Empty(t, uploader.calls)
	})

	t.Run("no token", func(t *testing.T) {
		uploader := &mockUploader{}
		c := NewComposer(uploader, logger)

		_, err := c.Compose(context.Background(), auth.Anonymous, CourseDraft{Title: "Go"})

		assert.True(t, errors.Is(err, apperr.ErrAuthMissing))
	})

	t.Run("plain uploader error is attributed", func(t *testing.T) {
		uploader := &mockUploader{failOn: "a.mp4", err: errors.New("connection reset")}
		c := NewComposer(uploader, logger)
		row := rowWith(t, models.ContentTypeVideo)
		require.NoError(t, row.AttachFile(newFile("a.mp4", "video/mp4")))

		_, err := c.Compose(context.Background(), instructor, CourseDraft{Title: "Go", Rows: []*LessonRow{row}})

		assert.True(t, errors.Is(err, apperr.ErrUploadFailed))
		assert.True(t, errors.Is(err, apperr.ErrRequestFailed))
		assert.Contains(t, err.Error(), "lesson 1")
	})
}
