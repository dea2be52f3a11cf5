package composer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are read to detect a MIME type
const sniffLen = 3072

// File is a lesson file picked for upload
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// MediaType returns the lower-cased MIME type without parameters
func (f *File) MediaType() string {
	if f == nil {
		return ""
	}
	mt, _, err := mime.ParseMediaType(f.MIMEType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(f.MIMEType))
	}
	return mt
}

// DetectMIME fills MIMEType from the file content when the declared type is missing or generic.
// The sniffed bytes are stitched back in front of Content so the upload still sends the whole file
func (f *File) DetectMIME() error {
	if f == nil || f.Content == nil {
		return nil
	}
	if mt := f.MediaType(); mt != "" && mt != "application/octet-stream" {
		return nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	head = head[:n]

	f.MIMEType = mimetype.Detect(head).String()
	f.Content = io.MultiReader(bytes.NewReader(head), f.Content)
	return nil
}

// UploadName is the file name sent to storage. A name without an extension gets the one
// registered for its MIME type so the stored file stays servable
func (f *File) UploadName() string {
	if f == nil {
		return ""
	}
	name := f.Name
	if name == "" {
		name = "lesson"
	}
	if path.Ext(name) != "" {
		return name
	}
	if mt := mimetype.Lookup(f.MediaType()); mt != nil {
		return name + mt.Extension()
	}
	return name
}
