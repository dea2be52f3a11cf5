package models

// LessonView is a lesson as the backend returns it to an enrolled student
type LessonView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"contentType"`
	// ContentURL holds the inline text for text lessons
	ContentURL  string `json:"contentUrl"`
	LessonOrder int    `json:"lessonOrder"`
	Completed   bool   `json:"completed"`
	Accessible  bool   `json:"accessible"`
}

// Lesson is a lesson as the backend returns it to the course's instructor
type Lesson struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"contentType"`
	ContentURL  string      `json:"contentUrl"`
	LessonOrder int         `json:"lessonOrder"`
}

// LessonPayload is one lesson of a create or update request.
// ID is set only for lessons that already exist on edit
type LessonPayload struct {
	ID          *int64      `json:"id,omitempty"`
	Title       string      `json:"title" validate:"notblank,max=255"`
	ContentType ContentType `json:"contentType" validate:"required,oneof=video pdf image audio text"`
	ContentURL  string      `json:"contentUrl"`
	LessonOrder int         `json:"lessonOrder" validate:"min=1"`
}
