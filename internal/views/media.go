package views

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MediaMode selects the markup variant for a lesson's content
type MediaMode int

const (
	// MediaPreview is the authoring form preview
	MediaPreview MediaMode = iota
	// MediaLesson is the student lesson card
	MediaLesson
)

// markdown renders text lessons. Raw HTML in the source is dropped (goldmark's default)
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var mediaTemplates = template.Must(template.New("media").Parse(`
{{define "video"}}<video controls src="{{.URL}}" class="lesson-media"></video>{{end}}
{{define "audio"}}<audio controls src="{{.URL}}" class="lesson-media"></audio>{{end}}
{{define "image"}}<img src="{{.URL}}" alt="{{.Alt}}" class="lesson-media"/>{{end}}
{{define "pdf"}}<a href="{{.URL}}" target="_blank" rel="noopener" class="lesson-link">{{if .Lesson}}View PDF Document{{else}}View current PDF{{end}}</a>{{end}}
{{define "link"}}<a href="{{.URL}}" target="_blank" rel="noopener" class="lesson-link">{{if .Lesson}}Open Content{{else}}View current file{{end}}</a>{{end}}
{{define "empty"}}<p class="muted">{{if .Lesson}}No downloadable content for this lesson.{{else}}No file uploaded or URL provided.{{end}}</p>{{end}}
{{define "selected"}}<p class="muted">New file selected: {{.Alt}}</p>{{end}}
`))

type mediaData struct {
	URL    string
	Alt    string
	Lesson bool
}

// Media renders the content of a lesson of the given type. For text lessons content is the
// inline text and is rendered as Markdown; otherwise it is a URL
func Media(ct models.ContentType, content string, mode MediaMode) template.HTML {
	data := mediaData{URL: content, Lesson: mode == MediaLesson}
	if strings.TrimSpace(content) == "" {
		return execute("empty", data)
	}

	switch ct {
	case models.ContentTypeText:
		html, err := Markdown(content)
		if err != nil {
			return template.HTML("<p>" + template.HTMLEscapeString(content) + "</p>")
		}
		return html
	case models.ContentTypeVideo:
		return execute("video", data)
	case models.ContentTypeAudio:
		return execute("audio", data)
	case models.ContentTypeImage:
		return execute("image", data)
	case models.ContentTypePDF:
		return execute("pdf", data)
	default:
		return execute("link", data)
	}
}

// LessonPreview renders an authoring row's current source. A row with a picked file shows the file
// name, any other row shows the content it would submit
func LessonPreview(row *composer.LessonRow) template.HTML {
	if f := row.File(); f != nil {
		return SelectedFile(f.Name)
	}
	src := composer.ResolveSource(row, "")
	return Media(row.ContentType(), src.Value, MediaPreview)
}

// SelectedFile renders the preview of a picked file that has not been uploaded yet
func SelectedFile(name string) template.HTML {
	return execute("selected", mediaData{Alt: name})
}

// Markdown renders text lesson content to HTML
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func execute(name string, data mediaData) template.HTML {
	var buf bytes.Buffer
	if err := mediaTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
