package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
)

// maxLessons bounds the lesson rows read from one form
const maxLessons = 200

// courseForm is the course editor page data
type courseForm struct {
	CourseID int64
	Action   string
	Draft    composer.CourseDraft
}

// formOp is the editor button that submitted the form
type formOp struct {
	add    bool
	remove int
}

func parseFormOp(r *http.Request) formOp {
	op := r.FormValue("op")
	switch {
	case op == "add":
		return formOp{add: true, remove: -1}
	case strings.HasPrefix(op, "remove-"):
		if i, err := strconv.Atoi(strings.TrimPrefix(op, "remove-")); err == nil {
			return formOp{remove: i}
		}
	}
	return formOp{remove: -1}
}

// apply edits the draft rows for add/remove buttons. It reports whether the form was only being edited
func (op formOp) apply(draft *composer.CourseDraft) bool {
	switch {
	case op.add:
		draft.Rows = append(draft.Rows, composer.NewLessonRow())
		return true
	case op.remove >= 0 && op.remove < len(draft.Rows):
		draft.Rows = append(draft.Rows[:op.remove], draft.Rows[op.remove+1:]...)
		return true
	}
	return false
}

// parseCourseForm reads a multipart course form into a draft. The returned closer releases the
// uploaded file handles and must be called once the draft is no longer used. A row-level problem
// is reported as a ValidationFailed error together with the partially built draft
func parseCourseForm(r *http.Request, maxMemory int64) (composer.CourseDraft, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return composer.CourseDraft{}, noop, apperr.Validation("failed to parse course form")
	}

	form := r.MultipartForm
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	count, err := strconv.Atoi(value("lessonCount"))
	if err != nil || count < 0 {
		count = countLessonRows(form)
	}
	if count > maxLessons {
		return composer.CourseDraft{}, noop, apperr.Validation(fmt.Sprintf("a course can have at most %d lessons", maxLessons))
	}

	draft := composer.CourseDraft{
		Title:       value("title"),
		Description: value("description"),
		Rows:        make([]*composer.LessonRow, 0, count),
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	var fields []apperr.FieldError
	fail := func(i int, name, message string) {
		fields = append(fields, apperr.FieldError{
			Field:   fmt.Sprintf("lessons[%d].%s", i, name),
			Message: fmt.Sprintf("Lesson %d: %s", i+1, message),
		})
	}

	for i := 0; i < count; i++ {
		key := func(name string) string { return fmt.Sprintf("lessons[%d].%s", i, name) }
		row := composer.NewLessonRow()
		row.Title = value(key("title"))

		if raw := value(key("id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				fail(i, "id", "invalid lesson id")
			} else {
				row.ID = &id
			}
		}

		ct, err := models.ParseContentType(value(key("contentType")))
		if err != nil {
			fail(i, "contentType", "unknown content type")
		} else if err := row.SetContentType(ct); err != nil {
			fail(i, "contentType", err.Error())
		}
		// The saved content only survives while the posted type matches the type it was saved under
		row.KeepExisting(models.ContentType(value(key("originalType"))), value(key("existing")))

		// Inputs the posted type does not take were left by the type the row had before the switch
		if row.ContentType() == models.ContentTypeText {
			if err := row.SetText(value(key("text"))); err != nil {
				fail(i, "text", err.Error())
			}
			draft.Rows = append(draft.Rows, row)
			continue
		}
		if err := row.SetURL(value(key("url"))); err != nil {
			fail(i, "url", err.Error())
		}

		if headers := form.File[key("file")]; len(headers) > 0 && headers[0].Filename != "" {
			file, closer, err := openPart(headers[0])
			if err != nil {
				fail(i, "file", "could not read the selected file")
			} else {
				closers = append(closers, closer)
				// A rejected file is kept on the row as its inline error and reported by the composer
				if err := row.AttachFile(file); err != nil && row.FileError() == "" {
					fail(i, "file", err.Error())
				}
			}
		}

		draft.Rows = append(draft.Rows, row)
	}

	if len(fields) > 0 {
		return draft, closeAll, apperr.Validation("course is invalid", fields...)
	}
	return draft, closeAll, nil
}

// forgetFiles clears the picked files of a draft that is rendered back into the form. File inputs
// come back empty, so each such row asks for its file again
func forgetFiles(draft composer.CourseDraft) {
	for _, row := range draft.Rows {
		row.DropFile()
	}
}

func openPart(fh *multipart.FileHeader) (*composer.File, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &composer.File{
		Name:     fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Content:  f,
	}, f, nil
}

// countLessonRows finds the number of rows when the form does not say
func countLessonRows(form *multipart.Form) int {
	count := 0
	for i := 0; i < maxLessons+1; i++ {
		prefix := fmt.Sprintf("lessons[%d].", i)
		if len(form.Value[prefix+"contentType"]) == 0 && len(form.File[prefix+"file"]) == 0 {
			break
		}
		count++
	}
	return count
}
