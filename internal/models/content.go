package models

import (
	"fmt"
	"strings"
)

// ContentType is the declared type of a lesson's content
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"
	ContentTypeText  ContentType = "text"
)

// ContentTypes lists the content types in the order the authoring form offers them
var ContentTypes = []ContentType{
	ContentTypeVideo,
	ContentTypePDF,
	ContentTypeImage,
	ContentTypeAudio,
	ContentTypeText,
}

// PDFMimeType is the only MIME type accepted for pdf lessons
const PDFMimeType = "application/pdf"

// ParseContentType parses a content type name case-insensitively
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

// Valid reports whether ct is a known content type
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeVideo, ContentTypePDF, ContentTypeImage, ContentTypeAudio, ContentTypeText:
		return true
	}
	return false
}

// AcceptFilter is the file picker filter for the type; text lessons take no file
func (ct ContentType) AcceptFilter() string {
	switch ct {
	case ContentTypeVideo:
		return "video/*"
	case ContentTypeImage:
		return "image/*"
	case ContentTypeAudio:
		return "audio/*"
	case ContentTypePDF:
		return PDFMimeType
	default:
		return ""
	}
}

// TakesFile reports whether lessons of this type carry a file or URL rather than inline text
func (ct ContentType) TakesFile() bool {
	return ct.Valid() && ct != ContentTypeText
}
