package composer

import (
	"strings"

	"github.com/lmsweb/portal/internal/models"
)

// ValidateFile reports whether a file may be attached to a lesson of the declared type.
// Text lessons always pass since they take no file. Pdf lessons need exactly application/pdf.
// Every other type needs a MIME type under the type's own top-level prefix
func ValidateFile(f *File, declared models.ContentType) bool {
	if declared == models.ContentTypeText {
		return true
	}
	if f == nil || !declared.Valid() {
		return false
	}

	mt := f.MediaType()
	if declared == models.ContentTypePDF {
		return mt == models.PDFMimeType
	}
	return strings.HasPrefix(mt, string(declared)+"/")
}
