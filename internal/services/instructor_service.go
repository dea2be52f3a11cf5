package services

import (
	"context"
	"sort"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/models"
	"github.com/lmsweb/portal/internal/progression"
	"go.uber.org/zap"
)

// CourseRepository is the interface that wraps the backend instructor course endpoints
type CourseRepository interface {
	// Method Create saves a new course with its lessons.
	//
	// Returns the backend course ID.
	Create(ctx context.Context, authCtx auth.AuthContext, sub models.CourseSubmission) (models.CreatedCourse, error)
	// Method Get retrieves one of the caller's courses with its lessons.
	Get(ctx context.Context, authCtx auth.AuthContext, courseID int64) (models.Course, error)
	// Method Update replaces the course fields and lessons.
	//
	// Lessons carrying an ID are updated in place, lessons without one are added.
	Update(ctx context.Context, authCtx auth.AuthContext, courseID int64, sub models.CourseSubmission) error
	// Method Delete removes the course.
	Delete(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	// Method Approve publishes the course.
	Approve(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	// Method ListMine retrieves the caller's courses.
	ListMine(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error)
	// Method EnrolledStudents retrieves the students of a course with their lesson counts.
	EnrolledStudents(ctx context.Context, authCtx auth.AuthContext, courseID int64) ([]models.StudentProgress, error)
}

// CourseComposer turns a draft into a submission, uploading lesson files on the way
type CourseComposer interface {
	Compose(ctx context.Context, authCtx auth.AuthContext, draft composer.CourseDraft) (models.CourseSubmission, error)
}

// StudentProgressView is one row of the enrolled students page
type StudentProgressView struct {
	models.StudentProgress
	Progress progression.Progress `json:"progress"`
}

type instructorService struct {
	repo     CourseRepository
	composer CourseComposer
	logger   *zap.Logger
}

// NewInstructorService creates a new instructor service
func NewInstructorService(repo CourseRepository, composer CourseComposer, logger *zap.Logger) *instructorService {
	return &instructorService{
		repo:     repo,
		composer: composer,
		logger:   logger,
	}
}

// CreateCourse composes the draft and saves it as a new course.
// Nothing is saved when validation or any upload fails
func (s *instructorService) CreateCourse(ctx context.Context, authCtx auth.AuthContext, draft composer.CourseDraft) (models.CreatedCourse, error) {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return models.CreatedCourse{}, err
	}

	sub, err := s.composer.Compose(ctx, authCtx, draft)
	if err != nil {
		s.logger.Warn("course draft rejected", zap.Error(err))
		return models.CreatedCourse{}, err
	}

	created, err := s.repo.Create(ctx, authCtx, sub)
	if err != nil {
		s.logger.Error("failed to create course", zap.String("title", sub.Title), zap.Error(err))
		return models.CreatedCourse{}, err
	}
	s.logger.Info("course created",
		zap.Int64("course_id", created.ID),
		zap.Int("lessons", len(sub.Lessons)),
	)
	return created, nil
}

// LoadForEdit reads a saved course into a draft, lessons in lessonOrder and each row seeded
// with its saved content and ID
func (s *instructorService) LoadForEdit(ctx context.Context, authCtx auth.AuthContext, courseID int64) (composer.CourseDraft, error) {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return composer.CourseDraft{}, err
	}

	course, err := s.repo.Get(ctx, authCtx, courseID)
	if err != nil {
		s.logger.Error("failed to load course for edit", zap.Int64("course_id", courseID), zap.Error(err))
		return composer.CourseDraft{}, err
	}

	lessons := sortLessons(course.Lessons)
	draft := composer.CourseDraft{
		Title:       course.Title,
		Description: course.Description,
		Rows:        make([]*composer.LessonRow, 0, len(lessons)),
	}
	for _, l := range lessons {
		draft.Rows = append(draft.Rows, composer.RowFromLesson(l))
	}
	return draft, nil
}

// UpdateCourse composes the draft and replaces the saved course with it
func (s *instructorService) UpdateCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64, draft composer.CourseDraft) error {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return err
	}

	sub, err := s.composer.Compose(ctx, authCtx, draft)
	if err != nil {
		s.logger.Warn("course draft rejected", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}

	if err := s.repo.Update(ctx, authCtx, courseID, sub); err != nil {
		s.logger.Error("failed to update course", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	s.logger.Info("course updated", zap.Int64("course_id", courseID), zap.Int("lessons", len(sub.Lessons)))
	return nil
}

// DeleteCourse removes one of the caller's courses
func (s *instructorService) DeleteCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, authCtx, courseID); err != nil {
		s.logger.Error("failed to delete course", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// ApproveCourse publishes one of the caller's courses
func (s *instructorService) ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Approve(ctx, authCtx, courseID); err != nil {
		s.logger.Error("failed to approve course", zap.Int64("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// MyCourses lists the caller's courses
func (s *instructorService) MyCourses(ctx context.Context, authCtx auth.AuthContext) ([]models.Course, error) {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListMine(ctx, authCtx)
	if err != nil {
		s.logger.Error("failed to load instructor courses", zap.Error(err))
		return nil, err
	}
	return courses, nil
}

// EnrolledStudents lists a course's students with their progress
func (s *instructorService) EnrolledStudents(ctx context.Context, authCtx auth.AuthContext, courseID int64) ([]StudentProgressView, error) {
	if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	students, err := s.repo.EnrolledStudents(ctx, authCtx, courseID)
	if err != nil {
		s.logger.Error("failed to load enrolled students", zap.Int64("course_id", courseID), zap.Error(err))
		return nil, err
	}

	views := make([]StudentProgressView, 0, len(students))
	for _, st := range students {
		views = append(views, StudentProgressView{
			StudentProgress: st,
			Progress:        progression.Progress{Completed: st.CompletedLessons, Total: st.TotalLessons},
		})
	}
	return views, nil
}

// sortLessons orders saved lessons by lessonOrder, keeping the backend order for ties
func sortLessons(lessons []models.Lesson) []models.Lesson {
	sorted := make([]models.Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LessonOrder < sorted[j].LessonOrder
	})
	return sorted
}
