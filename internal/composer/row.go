package composer

import (
	"fmt"
	"strings"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/models"
)

// LessonRow is one lesson being authored in a create or edit session.
// A row carries at most the source variants its content type allows: text rows hold inline text,
// every other type holds a file and/or a pasted URL. Content loaded from the backend on edit is
// kept apart as the existing content
type LessonRow struct {
	// ID is set for lessons that already exist on the backend
	ID    *int64
	Title string

	contentType models.ContentType
	file        *File
	url         string
	text        string
	existing    string
	savedType   models.ContentType // type the existing content was saved under
	fileError   string
}

// NewLessonRow creates an empty row. Video is the form's first option
func NewLessonRow() *LessonRow {
	return &LessonRow{contentType: models.ContentTypeVideo}
}

// RowFromLesson seeds a row with a saved lesson for editing
func RowFromLesson(l models.Lesson) *LessonRow {
	id := l.ID
	ct := l.ContentType
	if !ct.Valid() {
		ct = models.ContentTypeVideo
	}
	return &LessonRow{
		ID:          &id,
		Title:       l.Title,
		contentType: ct,
		existing:    l.ContentURL,
		savedType:   ct,
	}
}

// ContentType returns the row's declared type
func (r *LessonRow) ContentType() models.ContentType {
	return r.contentType
}

// Accept returns the file picker filter for the row's type
func (r *LessonRow) Accept() string {
	return r.contentType.AcceptFilter()
}

// SetContentType switches the row's type and clears every chosen source, the existing content
// and the preview, so no content of the old type can be submitted under the new one
func (r *LessonRow) SetContentType(ct models.ContentType) error {
	if !ct.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown content type %q", ct))
	}
	r.contentType = ct
	r.file = nil
	r.url = ""
	r.text = ""
	r.existing = ""
	r.savedType = ""
	r.fileError = ""
	return nil
}

// AttachFile sets the row's file after checking it against the declared type.
// A rejected file leaves the picker empty and records an inline error. An accepted file
// clears any pasted URL since the upload result will supersede it
func (r *LessonRow) AttachFile(f *File) error {
	if f == nil {
		r.file = nil
		return nil
	}
	if r.contentType == models.ContentTypeText {
		return apperr.Validation("text lessons do not take a file")
	}
	if err := f.DetectMIME(); err != nil {
		r.file = nil
		r.fileError = "Could not read the selected file."
		return apperr.Validation(r.fileError)
	}
	if !ValidateFile(f, r.contentType) {
		r.file = nil
		r.fileError = fmt.Sprintf("Invalid file type. You selected %s, but the file is a %s.", r.contentType, describeMIME(f))
		return apperr.Validation(r.fileError)
	}
	r.file = f
	r.url = ""
	r.fileError = ""
	return nil
}

// SetURL records a pasted URL for a file-backed lesson
func (r *LessonRow) SetURL(u string) error {
	u = strings.TrimSpace(u)
	if u != "" && r.contentType == models.ContentTypeText {
		return apperr.Validation("text lessons do not take a URL")
	}
	r.url = u
	return nil
}

// SetText records inline content for a text lesson
func (r *LessonRow) SetText(s string) error {
	s = strings.TrimSpace(s)
	if s != "" && r.contentType != models.ContentTypeText {
		return apperr.Validation(fmt.Sprintf("%s lessons do not take inline text", r.contentType))
	}
	r.text = s
	return nil
}

// KeepExisting records the content already saved for this lesson under savedType.
// Content saved under another type is dropped, the row's type was switched away from it
func (r *LessonRow) KeepExisting(savedType models.ContentType, content string) {
	if savedType != r.contentType {
		r.existing = ""
		r.savedType = ""
		return
	}
	r.existing = strings.TrimSpace(content)
	r.savedType = savedType
}

// DropFile forgets the attached file and asks for it again. A file cannot be carried across a
// form reload, so the row must not keep claiming it
func (r *LessonRow) DropFile() {
	if r.file == nil {
		return
	}
	r.fileError = fmt.Sprintf("Select the file again: %s was not kept when the form was reloaded.", r.file.Name)
	r.file = nil
}

// File returns the attached file, nil when none
func (r *LessonRow) File() *File { return r.file }

// URL returns the pasted URL
func (r *LessonRow) URL() string { return r.url }

// Text returns the inline text
func (r *LessonRow) Text() string { return r.text }

// Existing returns the content loaded from the backend
func (r *LessonRow) Existing() string { return r.existing }

// SavedType returns the type the existing content was saved under, empty when there is none
func (r *LessonRow) SavedType() models.ContentType { return r.savedType }

// FileError returns the inline error left by a rejected file
func (r *LessonRow) FileError() string { return r.fileError }

func describeMIME(f *File) string {
	if mt := f.MediaType(); mt != "" {
		return mt
	}
	return "file of unknown type"
}
