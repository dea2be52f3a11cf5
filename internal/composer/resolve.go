package composer

import "github.com/lmsweb/portal/internal/models"

// SourceKind tells where a lesson's content comes from
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceUploadedFile
	SourcePastedURL
	SourceInlineText
	SourceExisting
)

func (k SourceKind) String() string {
	switch k {
	case SourceUploadedFile:
		return "uploaded_file"
	case SourcePastedURL:
		return "pasted_url"
	case SourceInlineText:
		return "inline_text"
	case SourceExisting:
		return "existing"
	default:
		return "none"
	}
}

// Source is a resolved lesson content source. Value is a URL, or the text itself for text lessons
type Source struct {
	Kind  SourceKind
	Value string
}

// ResolveSource picks a row's content. File-backed lessons use the uploaded file URL, then the
// pasted URL, then the existing content. Text lessons use the inline text, then the existing content
func ResolveSource(r *LessonRow, uploadedURL string) Source {
	if r.contentType == models.ContentTypeText {
		if r.text != "" {
			return Source{Kind: SourceInlineText, Value: r.text}
		}
		if r.existing != "" {
			return Source{Kind: SourceExisting, Value: r.existing}
		}
		return Source{Kind: SourceNone}
	}

	switch {
	case r.file != nil && uploadedURL != "":
		return Source{Kind: SourceUploadedFile, Value: uploadedURL}
	case r.url != "":
		return Source{Kind: SourcePastedURL, Value: r.url}
	case r.existing != "":
		return Source{Kind: SourceExisting, Value: r.existing}
	default:
		return Source{Kind: SourceNone}
	}
}
