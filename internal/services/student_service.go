package services

import (
	"context"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/progression"
	"go.uber.org/zap"
)

// StudentRepository is the interface that wraps the backend student endpoints
type StudentRepository interface {
	// Method Catalog retrieves the approved courses. It is the only call allowed without a token.
	Catalog(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error)
	// Method MyCourses retrieves the caller's enrolled courses with lesson counts.
	MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.EnrolledCourse, error)
	// Method Course retrieves an enrolled course with per-lesson completed and accessible flags.
	//
	// The lessons are returned in whatever order the backend stores them.
	Course(ctx context.Context, authCtx auth.AuthContext, courseID int64) (models.StudentCourse, error)
	// Method Enroll enrolls the caller in a course.
	Enroll(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	// Method CompleteLesson records a completion. The backend rejects already completed and locked lessons.
	CompleteLesson(ctx context.Context, authCtx auth.AuthContext, lessonID int64) error
}

// EnrollOnlyStudents is returned to non-student callers of Enroll
const EnrollOnlyStudents = "Only students can enroll in courses."

// CourseView is a student's course page: the course, its lesson cards in order and the progress
type CourseView struct {
	Course   models.StudentCourse `json:"course"`
	Cards    []progression.Card   `json:"cards"`
	Progress progression.Progress `json:"progress"`
}

// EnrolledCourseView is one course on the student dashboard
type EnrolledCourseView struct {
	models.EnrolledCourse
	Progress progression.Progress `json:"progress"`
}

// CompletionResult is the outcome of completing a lesson together with the updated page
type CompletionResult struct {
	Transition progression.Transition `json:"transition"`
	View       CourseView             `json:"view"`
}

type studentService struct {
	repo   StudentRepository
	logger *zap.Logger
}

// NewStudentService creates a new student service
func NewStudentService(repo StudentRepository, logger *zap.Logger) *studentService {
	return &studentService{
		repo:   repo,
		logger: logger,
	}
}

// Catalog lists approved courses. The caller's token is forwarded when present
func (s *studentService) Catalog(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error) {
	courses, err := s.repo.Catalog(ctx, authCtx)
	if err != nil {
		s.logger.Error("failed to load catalog", zap.Error(err))
		return nil, err
	}
	return courses, nil
}

// Enroll enrolls a student in a course. Other roles are refused before any call
func (s *studentService) Enroll(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.Require(); err != nil {
		return err
	}
	if authCtx.Role != auth.RoleStudent {
		return apperr.Forbidden(EnrollOnlyStudents)
	}
	if err := s.repo.Enroll(ctx, authCtx, courseID); err != nil {
		s.logger.Warn("enroll failed", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// MyCourses lists the student's courses with their progress
func (s *studentService) MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]EnrolledCourseView, error) {
	courses, err := s.repo.MyCourses(ctx, authCtx)
	if err != nil {
		s.logger.Error("failed to load enrolled courses", zap.Error(err))
		return nil, err
	}

	views := make([]EnrolledCourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, EnrolledCourseView{
			EnrolledCourse: c,
			Progress:       progression.Progress{Completed: c.CompletedLessons, Total: c.TotalLessons},
		})
	}
	return views, nil
}

// CourseView loads an enrolled course and folds it into lesson cards
func (s *studentService) CourseView(ctx context.Context, authCtx auth.AuthContext, courseID int64) (CourseView, error) {
	course, err := s.repo.Course(ctx, authCtx, courseID)
	if err != nil {
		s.logger.Error("failed to load course", zap.Int64("course_id", courseID), zap.Error(err))
		return CourseView{}, err
	}
	return newCourseView(course, progression.NewTracker(course.Lessons)), nil
}

// CompleteLesson re-reads the course, completes the lesson through the tracker and returns the
// updated page. The page only changes once the backend has confirmed the completion
func (s *studentService) CompleteLesson(ctx context.Context, authCtx auth.AuthContext, courseID, lessonID int64) (CompletionResult, error) {
	if err := authCtx.Require(); err != nil {
		return CompletionResult{}, err
	}

	course, err := s.repo.Course(ctx, authCtx, courseID)
	if err != nil {
		s.logger.Error("failed to load course", zap.Int64("course_id", courseID), zap.Error(err))
		return CompletionResult{}, err
	}

	tracker := progression.NewTracker(course.Lessons)
	tr, err := tracker.Complete(ctx, authCtx, lessonID, s.repo)
	if err != nil {
		s.logger.Warn("lesson completion failed",
			zap.Int64("course_id", courseID),
			zap.Int64("lesson_id", lessonID),
			zap.Error(err),
		)
		return CompletionResult{}, err
	}

	return CompletionResult{Transition: tr, View: newCourseView(course, tracker)}, nil
}

func newCourseView(course models.StudentCourse, tracker *progression.Tracker) CourseView {
	cards := tracker.Cards()
	course.Lessons = make([]models.LessonView, len(cards))
	for i, c := range cards {
		course.Lessons[i] = c.Lesson
	}
	return CourseView{Course: course, Cards: cards, Progress: tracker.Progress()}
}
