package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
	"gopkg.in/yaml.v3"
)

// manifest is a course described on disk
type manifest struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Lessons     []manifestLesson `yaml:"lessons"`
}

// manifestLesson takes exactly one of file, url or text. File paths are relative to the manifest
type manifestLesson struct {
	Title string `yaml:"title"`
	Type  string `yaml:"type"`
	File  string `yaml:"file"`
	URL   string `yaml:"url"`
	Text  string `yaml:"text"`
}

func loadManifest(path string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return m, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

// draft turns the manifest into lesson rows. The returned closer releases the opened files
func (m manifest) draft(baseDir string) (composer.CourseDraft, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	draft := composer.CourseDraft{Title: m.Title, Description: m.Description}
	for i, l := range m.Lessons {
		row, f, err := l.row(baseDir)
		if f != nil {
			files = append(files, f)
		}
		if err != nil {
			closeAll()
			return composer.CourseDraft{}, func() {}, fmt.Errorf("lesson %d: %w", i+1, err)
		}
		draft.Rows = append(draft.Rows, row)
	}
	return draft, closeAll, nil
}

func (l manifestLesson) row(baseDir string) (*composer.LessonRow, *os.File, error) {
	row := composer.NewLessonRow()
	row.Title = l.Title

	ct, err := models.ParseContentType(l.Type)
	if err != nil {
		return nil, nil, err
	}
	if err := row.SetContentType(ct); err != nil {
		return nil, nil, err
	}
	if err := row.SetURL(l.URL); err != nil {
		return nil, nil, err
	}
	if err := row.SetText(l.Text); err != nil {
		return nil, nil, err
	}
	if l.File == "" {
		return row, nil, nil
	}

	path := l.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, f, err
	}
	// No declared type: the content is sniffed
	file := &composer.File{Name: filepath.Base(path), Size: info.Size(), Content: f}
	if err := row.AttachFile(file); err != nil {
		return nil, f, err
	}
	return row, f, nil
}

func (cli *commandLine) publish(ctx context.Context, authCtx auth.AuthContext, manifestPath string) error {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	draft, closeFiles, err := m.draft(filepath.Dir(manifestPath))
	if err != nil {
		return err
	}
	defer closeFiles()

	created, err := cli.instructor.CreateCourse(ctx, authCtx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Course %q created with id %d (%d lessons), awaiting approval\n", m.Title, created.ID, len(draft.Rows))
	return nil
}
