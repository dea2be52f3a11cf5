package models

import "time"

// UserSummary is the nested user object the backend embeds in courses
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Course is a course with its lessons as the instructor and admin endpoints return it
type Course struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Approved    bool         `json:"approved"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	Instructor  *UserSummary `json:"instructor,omitempty"`
	Lessons     []Lesson     `json:"lessons"`
}

// InstructorName returns the instructor's username or a placeholder
func (c Course) InstructorName() string {
	if c.Instructor == nil || c.Instructor.Username == "" {
		return "N/A"
	}
	return c.Instructor.Username
}

// StudentCourse is a course as an enrolled student sees it, with per-lesson progress flags
type StudentCourse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Lessons     []LessonView `json:"lessons"`
}

// CourseSubmission is the create/update payload built by the lesson composer
type CourseSubmission struct {
	Title       string          `json:"title" validate:"notblank,max=255"`
	Description string          `json:"description"`
	Lessons     []LessonPayload `json:"lessons" validate:"dive"`
}

// CreatedCourse is the backend answer to a course create
type CreatedCourse struct {
	ID int64 `json:"id"`
}

// EnrolledCourse is a course in the student's own list, with lesson counts
type EnrolledCourse struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TotalLessons     int    `json:"totalLessons"`
	CompletedLessons int    `json:"completedLessons"`
}

// StudentProgress is one enrolled student's progress in an instructor's course
type StudentProgress struct {
	StudentID        int64  `json:"studentId"`
	StudentName      string `json:"studentName"`
	StudentEmail     string `json:"studentEmail"`
	CompletedLessons int    `json:"completedLessons"`
	TotalLessons     int    `json:"totalLessons"`
}

// MessageResponse is the backend's generic success body
type MessageResponse struct {
	Message string `json:"message"`
}
