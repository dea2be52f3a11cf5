package composer

import (
	"fmt"
	"strings"

	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/validation"
)

// CourseDraft is a course being authored: its fields and lesson rows in display order
type CourseDraft struct {
	Title       string
	Description string
	Rows        []*LessonRow
}

// DefaultLessonTitle is used for rows left without a title
func DefaultLessonTitle(order int) string {
	return fmt.Sprintf("Lesson %d", order)
}

// BuildSubmission assembles the create/update payload. Lessons are numbered 1..N by row
// position, blank titles get a default, and each row's source is resolved with the upload
// results keyed by row index
func BuildSubmission(draft CourseDraft, uploaded map[int]string) (models.CourseSubmission, error) {
	sub := models.CourseSubmission{
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Lessons:     make([]models.LessonPayload, 0, len(draft.Rows)),
	}

	for i, row := range draft.Rows {
		order := i + 1
		title := strings.TrimSpace(row.Title)
		if title == "" {
			title = DefaultLessonTitle(order)
		}

		payload := models.LessonPayload{
			Title:       title,
			ContentType: row.ContentType(),
			ContentURL:  ResolveSource(row, uploaded[i]).Value,
			LessonOrder: order,
		}
		if row.ID != nil {
			id := *row.ID
			payload.ID = &id
		}
		sub.Lessons = append(sub.Lessons, payload)
	}

	if err := validation.Struct("course is invalid", sub); err != nil {
		return models.CourseSubmission{}, err
	}
	return sub, nil
}
