// Package views renders the portal's HTML pages and lesson media fragments
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every page template receives
type Page struct {
	Title string
	Auth  auth.AuthContext
	// CSRF is the hidden form field, empty when protection is off
	CSRF  template.HTML
	Flash string
	Error string
	// Fields are per-field validation messages
	Fields map[string]string
	Data   any
}

var funcs = template.FuncMap{
	"media": func(ct models.ContentType, content string) template.HTML {
		return Media(ct, content, MediaLesson)
	},
	"preview":      LessonPreview,
	"contentTypes": func() []models.ContentType { return models.ContentTypes },
	"roles":        func() []auth.Role { return auth.Roles },
	"lessonField": func(i int, name string) string {
		return fmt.Sprintf("lessons[%d].%s", i, name)
	},
	"inc": func(i int) int { return i + 1 },
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded layout and pages
func NewRenderer() (*Renderer, error) {
	layout, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		page := strings.TrimSuffix(path.Base(name), ".html")
		if page == "layout" {
			continue
		}
		src, err := templateFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		tmpl, err := template.New(page).Funcs(funcs).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := tmpl.Parse(string(src)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes the named page wrapped in the layout
func (r *Renderer) Render(w io.Writer, page string, data Page) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Has reports whether a page exists
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}
